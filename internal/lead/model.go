package lead

import (
	"time"

	"gorm.io/gorm"
)

// Lead priorities.
const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
	PriorityUrgent = "URGENT"
)

// Pre-approval statuses.
const (
	PreApprovalNotStarted = "NOT_STARTED"
	PreApprovalInProgress = "IN_PROGRESS"
	PreApprovalApproved   = "PRE_APPROVED"
	PreApprovalDenied     = "DENIED"
)

// Lead is a prospective client moving through a campaign's pipeline.
// CurrentStageID always references a stage of the campaign's pipeline; the
// archive fields are orthogonal to the stage.
type Lead struct {
	gorm.Model
	CampaignID     uint `json:"campaignId" gorm:"index"`
	CurrentStageID uint `json:"currentStageId" gorm:"index"`
	AssignedToID   uint `json:"assignedToId"`

	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Mobile    string `json:"mobile"`
	Source    string `json:"source"`

	Priority          string  `json:"priority"`
	PreApprovalStatus string  `json:"preApprovalStatus"`
	BudgetMin         float64 `json:"budgetMin"`
	BudgetMax         float64 `json:"budgetMax"`

	// Free-form labels, stored as JSONB
	Tags []string `json:"tags" gorm:"type:jsonb;serializer:json"`

	IsArchived     bool       `json:"isArchived"`
	ArchivedAt     *time.Time `json:"archivedAt,omitempty"`
	ArchivedReason *string    `json:"archivedReason,omitempty"`

	NextFollowUpAt *time.Time `json:"nextFollowUpAt,omitempty"`
}

// FullName joins the lead's name parts.
func (l *Lead) FullName() string {
	if l.FirstName == "" {
		return l.LastName
	}
	if l.LastName == "" {
		return l.FirstName
	}
	return l.FirstName + " " + l.LastName
}

// ValidPriority reports whether p names a known priority.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// ValidPreApproval reports whether s names a known pre-approval status.
func ValidPreApproval(s string) bool {
	switch s {
	case PreApprovalNotStarted, PreApprovalInProgress, PreApprovalApproved, PreApprovalDenied:
		return true
	}
	return false
}
