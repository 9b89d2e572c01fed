package lead

import "gorm.io/gorm"

// Filter narrows a lead listing. Every field is optional and typed; nil
// means "don't filter on this".
type Filter struct {
	CampaignID   *uint
	StageID      *uint
	AssignedToID *uint
	Priority     *string
	IsArchived   *bool
	Search       *string
}

type Repository interface {
	Create(db *gorm.DB, l *Lead) error
	Save(db *gorm.DB, l *Lead) error
	FindByID(db *gorm.DB, id uint) (*Lead, error)
	FindInCampaign(db *gorm.DB, campaignID, leadID uint) (*Lead, error)
	List(db *gorm.DB, f Filter) ([]Lead, error)
	FindDuplicate(db *gorm.DB, campaignID uint, email, mobile string) (*Lead, error)
	Delete(db *gorm.DB, id uint) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Create(db *gorm.DB, l *Lead) error {
	return db.Create(l).Error
}

func (r *repositoryImpl) Save(db *gorm.DB, l *Lead) error {
	return db.Save(l).Error
}

func (r *repositoryImpl) FindByID(db *gorm.DB, id uint) (*Lead, error) {
	var l Lead
	err := db.First(&l, id).Error
	return &l, err
}

func (r *repositoryImpl) FindInCampaign(db *gorm.DB, campaignID, leadID uint) (*Lead, error) {
	var l Lead
	err := db.Where("campaign_id = ?", campaignID).First(&l, leadID).Error
	return &l, err
}

func (r *repositoryImpl) List(db *gorm.DB, f Filter) ([]Lead, error) {
	q := db.Model(&Lead{})
	if f.CampaignID != nil {
		q = q.Where("campaign_id = ?", *f.CampaignID)
	}
	if f.StageID != nil {
		q = q.Where("current_stage_id = ?", *f.StageID)
	}
	if f.AssignedToID != nil {
		q = q.Where("assigned_to_id = ?", *f.AssignedToID)
	}
	if f.Priority != nil {
		q = q.Where("priority = ?", *f.Priority)
	}
	if f.IsArchived != nil {
		q = q.Where("is_archived = ?", *f.IsArchived)
	}
	if f.Search != nil {
		like := "%" + *f.Search + "%"
		q = q.Where("first_name LIKE ? OR last_name LIKE ? OR email LIKE ?", like, like, like)
	}

	var leads []Lead
	err := q.Order("created_at DESC").Find(&leads).Error
	return leads, err
}

// FindDuplicate matches an existing lead in the campaign by email or mobile.
// Empty values never match.
func (r *repositoryImpl) FindDuplicate(db *gorm.DB, campaignID uint, email, mobile string) (*Lead, error) {
	var l Lead
	if email != "" {
		if err := db.Where("campaign_id = ? AND email = ?", campaignID, email).First(&l).Error; err == nil {
			return &l, nil
		}
	}
	if mobile != "" {
		if err := db.Where("campaign_id = ? AND mobile = ?", campaignID, mobile).First(&l).Error; err == nil {
			return &l, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *repositoryImpl) Delete(db *gorm.DB, id uint) error {
	return db.Delete(&Lead{}, id).Error
}
