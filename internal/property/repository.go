package property

import "gorm.io/gorm"

type Repository interface {
	Create(db *gorm.DB, p *Property) error
	FindByID(db *gorm.DB, id uint) (*Property, error)
	List(db *gorm.DB, status string) ([]Property, error)
	Update(db *gorm.DB, id uint, updated *Property) error
	Delete(db *gorm.DB, id uint) error

	AddInterests(db *gorm.DB, interests []PropertyInterest) error
	ListInterestsByLead(db *gorm.DB, leadID uint) ([]PropertyInterest, error)
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Create(db *gorm.DB, p *Property) error {
	return db.Create(p).Error
}

func (r *repositoryImpl) FindByID(db *gorm.DB, id uint) (*Property, error) {
	var p Property
	err := db.Preload("Interests").First(&p, id).Error
	return &p, err
}

func (r *repositoryImpl) List(db *gorm.DB, status string) ([]Property, error) {
	q := db.Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var properties []Property
	err := q.Find(&properties).Error
	return properties, err
}

func (r *repositoryImpl) Update(db *gorm.DB, id uint, updated *Property) error {
	var existing Property
	if err := db.First(&existing, id).Error; err != nil {
		return err
	}

	existing.Address = updated.Address
	existing.City = updated.City
	existing.State = updated.State
	existing.ZipCode = updated.ZipCode
	existing.Type = updated.Type
	existing.Status = updated.Status
	existing.Price = updated.Price
	existing.Bedrooms = updated.Bedrooms
	existing.Bathrooms = updated.Bathrooms
	existing.SquareFt = updated.SquareFt
	existing.Photos = updated.Photos

	return db.Save(&existing).Error
}

func (r *repositoryImpl) Delete(db *gorm.DB, id uint) error {
	return db.Delete(&Property{}, id).Error
}

// AddInterests inserts the batch atomically: either every interest is
// recorded or none are.
func (r *repositoryImpl) AddInterests(db *gorm.DB, interests []PropertyInterest) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for i := range interests {
			if err := tx.Create(&interests[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repositoryImpl) ListInterestsByLead(db *gorm.DB, leadID uint) ([]PropertyInterest, error) {
	var interests []PropertyInterest
	err := db.Where("lead_id = ?", leadID).Find(&interests).Error
	return interests, err
}
