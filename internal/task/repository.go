package task

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Create(db *gorm.DB, t *Task) error
	Save(db *gorm.DB, t *Task) error
	FindByID(db *gorm.DB, id uint) (*Task, error)
	ListByAssignee(db *gorm.DB, userID uint) ([]Task, error)
	ListByLead(db *gorm.DB, leadID uint) ([]Task, error)
	Delete(db *gorm.DB, id uint) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Create(db *gorm.DB, t *Task) error {
	return db.Create(t).Error
}

func (r *repositoryImpl) Save(db *gorm.DB, t *Task) error {
	return db.Save(t).Error
}

func (r *repositoryImpl) FindByID(db *gorm.DB, id uint) (*Task, error) {
	var t Task
	err := db.First(&t, id).Error
	return &t, err
}

func (r *repositoryImpl) ListByAssignee(db *gorm.DB, userID uint) ([]Task, error) {
	var tasks []Task
	err := db.Where("assigned_to_id = ?", userID).Order("due_date").Find(&tasks).Error
	return tasks, err
}

func (r *repositoryImpl) ListByLead(db *gorm.DB, leadID uint) ([]Task, error) {
	var tasks []Task
	err := db.Where("lead_id = ?", leadID).Order("due_date").Find(&tasks).Error
	return tasks, err
}

func (r *repositoryImpl) Delete(db *gorm.DB, id uint) error {
	return db.Delete(&Task{}, id).Error
}

// SyncFollowUp keeps at most one open FOLLOW_UP task per lead aligned with
// the lead's next follow-up date: the existing open task is moved, otherwise
// a new one is created. A nil date leaves tasks alone.
func SyncFollowUp(db *gorm.DB, leadID, assignedTo uint, leadName string, dueAt *time.Time) error {
	if dueAt == nil {
		return nil
	}

	var existing Task
	err := db.Where("lead_id = ? AND type = ? AND is_completed = ?", leadID, TypeFollowUp, false).
		First(&existing).Error
	if err == nil {
		existing.DueDate = dueAt
		existing.AssignedToID = assignedTo
		return db.Save(&existing).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return db.Create(&Task{
		Title:        fmt.Sprintf("Follow up with %s", leadName),
		Type:         TypeFollowUp,
		LeadID:       &leadID,
		AssignedToID: assignedTo,
		DueDate:      dueAt,
		Priority:     "MEDIUM",
	}).Error
}
