package task

import (
	"time"

	"gorm.io/gorm"
)

// Task types.
const (
	TypeFollowUp = "FOLLOW_UP"
	TypeCall     = "CALL"
	TypeEmail    = "EMAIL"
	TypeGeneral  = "GENERAL"
)

// Task is a work item, optionally linked to a lead. Its due date and
// priority are independent of the lead's follow-up date, except for the one
// open FOLLOW_UP task the system keeps in sync per lead.
type Task struct {
	gorm.Model
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Type         string     `json:"type"`
	LeadID       *uint      `json:"leadId,omitempty" gorm:"index"`
	AssignedToID uint       `json:"assignedToId"`
	DueDate      *time.Time `json:"dueDate,omitempty"`
	Priority     string     `json:"priority"`
	IsCompleted  bool       `json:"isCompleted"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
}

// ValidType reports whether t names a known task type.
func ValidType(t string) bool {
	switch t {
	case TypeFollowUp, TypeCall, TypeEmail, TypeGeneral:
		return true
	}
	return false
}
