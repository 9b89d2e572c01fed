package meeting

import "gorm.io/gorm"

type Repository interface {
	Create(db *gorm.DB, m *Meeting) error
	Save(db *gorm.DB, m *Meeting) error
	FindByID(db *gorm.DB, id uint) (*Meeting, error)
	ListByOrganizer(db *gorm.DB, userID uint) ([]Meeting, error)
	ListByLead(db *gorm.DB, leadID uint) ([]Meeting, error)
	Delete(db *gorm.DB, id uint) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Create(db *gorm.DB, m *Meeting) error {
	return db.Create(m).Error
}

func (r *repositoryImpl) Save(db *gorm.DB, m *Meeting) error {
	return db.Session(&gorm.Session{FullSaveAssociations: true}).Save(m).Error
}

func (r *repositoryImpl) FindByID(db *gorm.DB, id uint) (*Meeting, error) {
	var m Meeting
	err := db.Preload("Attendees").First(&m, id).Error
	return &m, err
}

func (r *repositoryImpl) ListByOrganizer(db *gorm.DB, userID uint) ([]Meeting, error) {
	var meetings []Meeting
	err := db.Where("organizer_id = ?", userID).Preload("Attendees").Order("starts_at").Find(&meetings).Error
	return meetings, err
}

func (r *repositoryImpl) ListByLead(db *gorm.DB, leadID uint) ([]Meeting, error) {
	var meetings []Meeting
	err := db.Where("lead_id = ?", leadID).Preload("Attendees").Order("starts_at").Find(&meetings).Error
	return meetings, err
}

func (r *repositoryImpl) Delete(db *gorm.DB, id uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("meeting_id = ?", id).Delete(&MeetingAttendee{}).Error; err != nil {
			return err
		}
		return tx.Delete(&Meeting{}, id).Error
	})
}
