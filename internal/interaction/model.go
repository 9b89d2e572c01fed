package interaction

import "gorm.io/gorm"

// Interaction types. STAGE_CHANGE and NOTE entries are written by the lead
// engine itself; the rest are logged manually.
const (
	TypeStageChange = "STAGE_CHANGE"
	TypeNote        = "NOTE"
	TypeCall        = "CALL"
	TypeEmail       = "EMAIL"
	TypeShowing     = "SHOWING"
)

// Interaction is an immutable audit entry on a lead. There is no update or
// delete path.
type Interaction struct {
	gorm.Model
	LeadID  uint   `json:"leadId" gorm:"index"`
	UserID  uint   `json:"userId"`
	Type    string `json:"type"`
	Content string `json:"content"`
}

// ValidType reports whether t is a loggable interaction type.
func ValidType(t string) bool {
	switch t {
	case TypeStageChange, TypeNote, TypeCall, TypeEmail, TypeShowing:
		return true
	}
	return false
}
