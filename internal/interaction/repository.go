package interaction

import "gorm.io/gorm"

type Repository interface {
	Create(db *gorm.DB, i *Interaction) error
	ListByLead(db *gorm.DB, leadID uint) ([]Interaction, error)
	CountByLead(db *gorm.DB, leadID uint) (int64, error)
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Create(db *gorm.DB, i *Interaction) error {
	return db.Create(i).Error
}

func (r *repositoryImpl) ListByLead(db *gorm.DB, leadID uint) ([]Interaction, error) {
	var interactions []Interaction
	err := db.Where("lead_id = ?", leadID).Order("created_at DESC").Find(&interactions).Error
	return interactions, err
}

func (r *repositoryImpl) CountByLead(db *gorm.DB, leadID uint) (int64, error) {
	var count int64
	err := db.Model(&Interaction{}).Where("lead_id = ?", leadID).Count(&count).Error
	return count, err
}
