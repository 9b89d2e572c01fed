package campaign

import (
	"github.com/estatecrm/api/internal/auth"
	"gorm.io/gorm"
)

// Campaign statuses.
const (
	StatusActive    = "ACTIVE"
	StatusPaused    = "PAUSED"
	StatusCompleted = "COMPLETED"
	StatusDraft     = "DRAFT"
	StatusArchived  = "ARCHIVED"
)

// Campaign groups leads under a single pipeline. PipelineID never changes
// after creation.
type Campaign struct {
	gorm.Model
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
	PipelineID  uint   `json:"pipelineId"`

	// Assigned user ids, stored as JSONB
	AssignedToIDs []uint `json:"assignedToIds" gorm:"type:jsonb;serializer:json"`

	Budget      float64 `json:"budget"`
	ActualSpend float64 `json:"actualSpend"`
}

// IsAssignedTo reports whether userID is on the campaign's assignment list.
func (c *Campaign) IsAssignedTo(userID uint) bool {
	for _, id := range c.AssignedToIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// CanAccess applies the campaign access rule: staff see every campaign,
// employees only those they are assigned to.
func CanAccess(c *Campaign, actor auth.Actor) bool {
	if actor.IsStaff() {
		return true
	}
	return c.IsAssignedTo(actor.ID)
}

// ValidStatus reports whether s names a known campaign status.
func ValidStatus(s string) bool {
	switch s {
	case StatusActive, StatusPaused, StatusCompleted, StatusDraft, StatusArchived:
		return true
	}
	return false
}
