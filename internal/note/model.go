package note

import "gorm.io/gorm"

type Note struct {
	gorm.Model
	Text   string `json:"text"`
	LeadID uint   `json:"leadId" gorm:"index"`
	UserID uint   `json:"userId"`
}
