package campaign

import (
	"encoding/json"
	"net/http"

	"github.com/estatecrm/api/internal/apperror"
	"github.com/estatecrm/api/internal/auth"
	"github.com/estatecrm/api/internal/pipeline"
	"github.com/estatecrm/api/internal/utils"
	"gorm.io/gorm"
)

type createCampaignRequest struct {
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Status        string  `json:"status"`
	PipelineID    uint    `json:"pipelineId"`
	AssignedToIDs []uint  `json:"assignedToIds"`
	Budget        float64 `json:"budget"`
}

type Handler struct {
	DB           *gorm.DB
	Repository   Repository
	PipelineRepo pipeline.Repository
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{
		DB:           db,
		Repository:   NewRepository(),
		PipelineRepo: pipeline.NewRepository(),
	}
}

// Create opens a campaign bound to an existing pipeline.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperror.Write(w, apperror.Validation("invalid payload"))
		return
	}

	fields := map[string]string{}
	if req.Name == "" {
		fields["name"] = "required"
	}
	if req.Status == "" {
		req.Status = StatusDraft
	} else if !ValidStatus(req.Status) {
		fields["status"] = "unknown status"
	}
	if req.PipelineID == 0 {
		fields["pipelineId"] = "required"
	}
	if len(fields) > 0 {
		apperror.Write(w, apperror.ValidationFields("invalid campaign", fields))
		return
	}

	if _, err := h.PipelineRepo.FindByID(h.DB, req.PipelineID); err != nil {
		apperror.Write(w, apperror.NotFound("pipeline not found"))
		return
	}

	c := Campaign{
		Name:          req.Name,
		Description:   req.Description,
		Status:        req.Status,
		PipelineID:    req.PipelineID,
		AssignedToIDs: req.AssignedToIDs,
		Budget:        req.Budget,
	}
	if err := h.Repository.Create(h.DB, &c); err != nil {
		apperror.Write(w, apperror.Internal("could not save campaign"))
		return
	}
	utils.RespondJSON(w, http.StatusCreated, c)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r)
	campaigns, err := h.Repository.ListForActor(h.DB, actor)
	if err != nil {
		apperror.Write(w, apperror.Internal("could not list campaigns"))
		return
	}
	utils.RespondJSON(w, http.StatusOK, campaigns)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r)
	id, ok := utils.PathID(r, "id")
	if !ok {
		apperror.Write(w, apperror.Validation("invalid id"))
		return
	}
	c, err := h.Repository.FindByID(h.DB, id)
	if err != nil {
		apperror.Write(w, apperror.NotFound("campaign not found"))
		return
	}
	if !CanAccess(c, actor) {
		apperror.Write(w, apperror.AccessDenied("access denied"))
		return
	}
	utils.RespondJSON(w, http.StatusOK, c)
}

// Update changes campaign fields. The pipeline binding cannot change.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := utils.PathID(r, "id")
	if !ok {
		apperror.Write(w, apperror.Validation("invalid id"))
		return
	}
	var updated Campaign
	if err := json.NewDecoder(r.Body).Decode(&updated); err != nil {
		apperror.Write(w, apperror.Validation("invalid payload"))
		return
	}
	if updated.Status != "" && !ValidStatus(updated.Status) {
		apperror.Write(w, apperror.Validation("unknown status"))
		return
	}
	if err := h.Repository.Update(h.DB, id, &updated); err != nil {
		apperror.Write(w, apperror.NotFound("campaign not found"))
		return
	}
	c, _ := h.Repository.FindByID(h.DB, id)
	utils.RespondJSON(w, http.StatusOK, c)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := utils.PathID(r, "id")
	if !ok {
		apperror.Write(w, apperror.Validation("invalid id"))
		return
	}
	if err := h.Repository.Delete(h.DB, id); err != nil {
		apperror.Write(w, apperror.Internal("could not delete campaign"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
