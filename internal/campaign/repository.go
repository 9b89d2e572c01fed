package campaign

import (
	"github.com/estatecrm/api/internal/auth"
	"gorm.io/gorm"
)

type Repository interface {
	Create(db *gorm.DB, c *Campaign) error
	FindByID(db *gorm.DB, id uint) (*Campaign, error)
	ListForActor(db *gorm.DB, actor auth.Actor) ([]Campaign, error)
	Update(db *gorm.DB, id uint, updated *Campaign) error
	Delete(db *gorm.DB, id uint) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Create(db *gorm.DB, c *Campaign) error {
	return db.Create(c).Error
}

func (r *repositoryImpl) FindByID(db *gorm.DB, id uint) (*Campaign, error) {
	var c Campaign
	err := db.First(&c, id).Error
	return &c, err
}

// ListForActor returns every campaign for staff and only assigned campaigns
// for employees. Assignment lives in a JSONB array, so the employee filter
// runs over the fetched rows.
func (r *repositoryImpl) ListForActor(db *gorm.DB, actor auth.Actor) ([]Campaign, error) {
	var campaigns []Campaign
	if err := db.Order("created_at DESC").Find(&campaigns).Error; err != nil {
		return nil, err
	}
	if actor.IsStaff() {
		return campaigns, nil
	}
	visible := campaigns[:0]
	for _, c := range campaigns {
		if c.IsAssignedTo(actor.ID) {
			visible = append(visible, c)
		}
	}
	return visible, nil
}

// Update whitelists mutable fields. PipelineID is deliberately never copied:
// a campaign stays bound to its pipeline for life.
func (r *repositoryImpl) Update(db *gorm.DB, id uint, updated *Campaign) error {
	var existing Campaign
	if err := db.First(&existing, id).Error; err != nil {
		return err
	}

	existing.Name = updated.Name
	existing.Description = updated.Description
	existing.Status = updated.Status
	existing.AssignedToIDs = updated.AssignedToIDs
	existing.Budget = updated.Budget
	existing.ActualSpend = updated.ActualSpend

	return db.Save(&existing).Error
}

func (r *repositoryImpl) Delete(db *gorm.DB, id uint) error {
	return db.Delete(&Campaign{}, id).Error
}
