package task

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/estatecrm/api/internal/apperror"
	"github.com/estatecrm/api/internal/auth"
	"github.com/estatecrm/api/internal/utils"
	"gorm.io/gorm"
)

type createTaskRequest struct {
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Type         string     `json:"type"`
	LeadID       *uint      `json:"leadId"`
	AssignedToID uint       `json:"assignedToId"`
	DueDate      *time.Time `json:"dueDate"`
	Priority     string     `json:"priority"`
}

type Handler struct {
	DB         *gorm.DB
	Repository Repository
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{DB: db, Repository: NewRepository()}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r)

	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperror.Write(w, apperror.Validation("invalid payload"))
		return
	}
	fields := map[string]string{}
	if req.Title == "" {
		fields["title"] = "required"
	}
	if req.Type == "" {
		req.Type = TypeGeneral
	} else if !ValidType(req.Type) {
		fields["type"] = "unknown task type"
	}
	if len(fields) > 0 {
		apperror.Write(w, apperror.ValidationFields("invalid task", fields))
		return
	}

	assignedTo := req.AssignedToID
	if assignedTo == 0 {
		assignedTo = actor.ID
	}

	t := Task{
		Title:        req.Title,
		Description:  req.Description,
		Type:         req.Type,
		LeadID:       req.LeadID,
		AssignedToID: assignedTo,
		DueDate:      req.DueDate,
		Priority:     req.Priority,
	}
	if err := h.Repository.Create(h.DB, &t); err != nil {
		apperror.Write(w, apperror.Internal("could not save task"))
		return
	}
	utils.RespondJSON(w, http.StatusCreated, t)
}

// List returns the actor's tasks; staff can list another user's with
// ?assignedToId=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r)

	userID := actor.ID
	if v := r.URL.Query().Get("assignedToId"); v != "" && actor.IsStaff() {
		if id, ok := parseUint(v); ok {
			userID = id
		}
	}

	tasks, err := h.Repository.ListByAssignee(h.DB, userID)
	if err != nil {
		apperror.Write(w, apperror.Internal("could not list tasks"))
		return
	}
	utils.RespondJSON(w, http.StatusOK, tasks)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.findForActor(r)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, t)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	t, err := h.findForActor(r)
	if err != nil {
		apperror.Write(w, err)
		return
	}

	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperror.Write(w, apperror.Validation("invalid payload"))
		return
	}
	if req.Type != "" && !ValidType(req.Type) {
		apperror.Write(w, apperror.Validation("unknown task type"))
		return
	}

	t.Title = req.Title
	t.Description = req.Description
	if req.Type != "" {
		t.Type = req.Type
	}
	t.DueDate = req.DueDate
	t.Priority = req.Priority
	if req.AssignedToID != 0 {
		t.AssignedToID = req.AssignedToID
	}

	if err := h.Repository.Save(h.DB, t); err != nil {
		apperror.Write(w, apperror.Internal("could not save task"))
		return
	}
	utils.RespondJSON(w, http.StatusOK, t)
}

// Complete toggles the task done, stamping the completion time.
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	t, err := h.findForActor(r)
	if err != nil {
		apperror.Write(w, err)
		return
	}

	now := time.Now()
	t.IsCompleted = true
	t.CompletedAt = &now
	if err := h.Repository.Save(h.DB, t); err != nil {
		apperror.Write(w, apperror.Internal("could not save task"))
		return
	}
	utils.RespondJSON(w, http.StatusOK, t)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	t, err := h.findForActor(r)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	if err := h.Repository.Delete(h.DB, t.ID); err != nil {
		apperror.Write(w, apperror.Internal("could not delete task"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) findForActor(r *http.Request) (*Task, error) {
	actor := auth.ActorFrom(r)
	id, ok := utils.PathID(r, "id")
	if !ok {
		return nil, apperror.Validation("invalid id")
	}
	t, err := h.Repository.FindByID(h.DB, id)
	if err != nil {
		return nil, apperror.NotFound("task not found")
	}
	if !actor.IsStaff() && t.AssignedToID != actor.ID {
		return nil, apperror.AccessDenied("access denied")
	}
	return t, nil
}

func parseUint(v string) (uint, bool) {
	id, err := strconv.ParseUint(v, 10, 32)
	return uint(id), err == nil
}
