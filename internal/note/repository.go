package note

import "gorm.io/gorm"

type Repository interface {
	Create(db *gorm.DB, n *Note) error
	ListByLead(db *gorm.DB, leadID uint) ([]Note, error)
	FindByID(db *gorm.DB, id uint) (*Note, error)
	UpdateText(db *gorm.DB, id uint, text string) error
	Delete(db *gorm.DB, id uint) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Create(db *gorm.DB, n *Note) error {
	return db.Create(n).Error
}

func (r *repositoryImpl) ListByLead(db *gorm.DB, leadID uint) ([]Note, error) {
	var notes []Note
	err := db.Where("lead_id = ?", leadID).Order("created_at DESC").Find(&notes).Error
	return notes, err
}

func (r *repositoryImpl) FindByID(db *gorm.DB, id uint) (*Note, error) {
	var n Note
	err := db.First(&n, id).Error
	return &n, err
}

func (r *repositoryImpl) UpdateText(db *gorm.DB, id uint, text string) error {
	return db.Model(&Note{}).Where("id = ?", id).Update("text", text).Error
}

func (r *repositoryImpl) Delete(db *gorm.DB, id uint) error {
	return db.Delete(&Note{}, id).Error
}
