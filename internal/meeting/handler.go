package meeting

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/estatecrm/api/internal/apperror"
	"github.com/estatecrm/api/internal/auth"
	"github.com/estatecrm/api/internal/utils"
	"gorm.io/gorm"
)

type attendeeInput struct {
	UserID *uint  `json:"userId"`
	Email  string `json:"email"`
}

type meetingRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Location    string          `json:"location"`
	StartsAt    time.Time       `json:"startsAt"`
	EndsAt      time.Time       `json:"endsAt"`
	LeadID      *uint           `json:"leadId"`
	Attendees   []attendeeInput `json:"attendees"`
}

type Handler struct {
	DB         *gorm.DB
	Repository Repository
	Notifier   *Notifier
}

func NewHandler(db *gorm.DB, notifier *Notifier) *Handler {
	return &Handler{DB: db, Repository: NewRepository(), Notifier: notifier}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r)

	var req meetingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperror.Write(w, apperror.Validation("invalid payload"))
		return
	}
	fields := map[string]string{}
	if req.Title == "" {
		fields["title"] = "required"
	}
	if req.StartsAt.IsZero() {
		fields["startsAt"] = "required"
	}
	if !req.EndsAt.IsZero() && req.EndsAt.Before(req.StartsAt) {
		fields["endsAt"] = "must be after startsAt"
	}
	if len(fields) > 0 {
		apperror.Write(w, apperror.ValidationFields("invalid meeting", fields))
		return
	}

	m := Meeting{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		Status:      StatusScheduled,
		OrganizerID: actor.ID,
		LeadID:      req.LeadID,
	}
	for _, a := range req.Attendees {
		m.Attendees = append(m.Attendees, MeetingAttendee{UserID: a.UserID, Email: a.Email})
	}

	if err := h.Repository.Create(h.DB, &m); err != nil {
		apperror.Write(w, apperror.Internal("could not save meeting"))
		return
	}
	h.Notifier.Notify("created", &m)
	utils.RespondJSON(w, http.StatusCreated, m)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r)
	meetings, err := h.Repository.ListByOrganizer(h.DB, actor.ID)
	if err != nil {
		apperror.Write(w, apperror.Internal("could not list meetings"))
		return
	}
	utils.RespondJSON(w, http.StatusOK, meetings)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	m, err := h.findForActor(r)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, m)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	m, err := h.findForActor(r)
	if err != nil {
		apperror.Write(w, err)
		return
	}

	var req meetingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperror.Write(w, apperror.Validation("invalid payload"))
		return
	}

	m.Title = req.Title
	m.Description = req.Description
	m.Location = req.Location
	if !req.StartsAt.IsZero() {
		m.StartsAt = req.StartsAt
	}
	if !req.EndsAt.IsZero() {
		m.EndsAt = req.EndsAt
	}
	if err := h.Repository.Save(h.DB, m); err != nil {
		apperror.Write(w, apperror.Internal("could not save meeting"))
		return
	}
	h.Notifier.Notify("updated", m)
	utils.RespondJSON(w, http.StatusOK, m)
}

// Cancel marks the meeting cancelled and notifies the calendar; the record
// stays for history.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	m, err := h.findForActor(r)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	m.Status = StatusCancelled
	if err := h.Repository.Save(h.DB, m); err != nil {
		apperror.Write(w, apperror.Internal("could not save meeting"))
		return
	}
	h.Notifier.Notify("cancelled", m)
	utils.RespondJSON(w, http.StatusOK, m)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	m, err := h.findForActor(r)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	if err := h.Repository.Delete(h.DB, m.ID); err != nil {
		apperror.Write(w, apperror.Internal("could not delete meeting"))
		return
	}
	h.Notifier.Notify("deleted", m)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) findForActor(r *http.Request) (*Meeting, error) {
	actor := auth.ActorFrom(r)
	id, ok := utils.PathID(r, "id")
	if !ok {
		return nil, apperror.Validation("invalid id")
	}
	m, err := h.Repository.FindByID(h.DB, id)
	if err != nil {
		return nil, apperror.NotFound("meeting not found")
	}
	if !actor.IsStaff() && m.OrganizerID != actor.ID {
		return nil, apperror.AccessDenied("access denied")
	}
	return m, nil
}
