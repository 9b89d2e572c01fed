package meeting

import (
	"time"

	"gorm.io/gorm"
)

// Meeting statuses.
const (
	StatusScheduled = "SCHEDULED"
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
)

type Meeting struct {
	gorm.Model
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartsAt    time.Time `json:"startsAt"`
	EndsAt      time.Time `json:"endsAt"`
	Status      string    `json:"status"`
	OrganizerID uint      `json:"organizerId"`
	LeadID      *uint     `json:"leadId,omitempty" gorm:"index"`

	// Id of the synced external calendar event, empty until the webhook
	// round-trips
	CalendarEventID string `json:"calendarEventId,omitempty"`

	Attendees []MeetingAttendee `json:"attendees" gorm:"foreignKey:MeetingID;constraint:OnDelete:CASCADE"`
}

type MeetingAttendee struct {
	gorm.Model
	MeetingID uint   `json:"meetingId" gorm:"index"`
	UserID    *uint  `json:"userId,omitempty"`
	Email     string `json:"email"`
	Response  string `json:"response"`
}
