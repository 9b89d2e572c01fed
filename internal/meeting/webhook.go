package meeting

import (
	"bytes"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// Notifier pushes meeting changes to the external calendar bridge. The
// bridge owns the Google Calendar API; this side only posts the event.
type Notifier struct {
	URL    string
	Logger *zap.Logger
}

type calendarEvent struct {
	Action    string   `json:"action"`
	MeetingID uint     `json:"meetingId"`
	Title     string   `json:"title"`
	StartsAt  string   `json:"startsAt"`
	EndsAt    string   `json:"endsAt"`
	Attendees []string `json:"attendees"`
}

// Notify fires the webhook for m. Failures are logged and swallowed: the
// meeting is saved regardless of whether the calendar heard about it.
func (n *Notifier) Notify(action string, m *Meeting) {
	if n == nil || n.URL == "" {
		return
	}

	event := calendarEvent{
		Action:    action,
		MeetingID: m.ID,
		Title:     m.Title,
		StartsAt:  m.StartsAt.Format("2006-01-02T15:04:05Z07:00"),
		EndsAt:    m.EndsAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	for _, a := range m.Attendees {
		event.Attendees = append(event.Attendees, a.Email)
	}
	body, _ := json.Marshal(event)

	resp, err := http.Post(n.URL, "application/json", bytes.NewBuffer(body))
	if err != nil {
		n.Logger.Warn("calendar webhook failed", zap.Error(err), zap.Uint("meetingId", m.ID))
		return
	}
	defer resp.Body.Close()
}
