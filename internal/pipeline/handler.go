package pipeline

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/estatecrm/api/internal/apperror"
	"github.com/estatecrm/api/internal/utils"
	"gorm.io/gorm"
)

type createPipelineRequest struct {
	Name   string       `json:"name"`
	Type   string       `json:"type"`
	Stages []StageInput `json:"stages"`
}

type addStageRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Order       *int   `json:"order"`
}

type updateStageRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
	Order       *int    `json:"order"`
}

type Handler struct {
	DB         *gorm.DB
	Repository Repository
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{DB: db, Repository: NewRepository()}
}

// Create builds a pipeline with the user's stages plus the terminal pair.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createPipelineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperror.Write(w, apperror.Validation("invalid payload"))
		return
	}

	fields := map[string]string{}
	if req.Name == "" {
		fields["name"] = "required"
	}
	if !ValidType(req.Type) {
		fields["type"] = "must be BUYER, SELLER, INVESTOR or RENTER"
	}
	if len(req.Stages) == 0 {
		fields["stages"] = "at least one stage required"
	}
	for _, s := range req.Stages {
		if s.Name == "" {
			fields["stages"] = "stage name required"
		}
	}
	if len(fields) > 0 {
		apperror.Write(w, apperror.ValidationFields("invalid pipeline", fields))
		return
	}

	p := New(req.Name, req.Type, req.Stages)
	if err := h.Repository.Create(h.DB, p); err != nil {
		apperror.Write(w, apperror.Internal("could not save pipeline"))
		return
	}
	utils.RespondJSON(w, http.StatusCreated, p)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	pipelines, err := h.Repository.ListAll(h.DB)
	if err != nil {
		apperror.Write(w, apperror.Internal("could not list pipelines"))
		return
	}
	utils.RespondJSON(w, http.StatusOK, pipelines)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := utils.PathID(r, "id")
	if !ok {
		apperror.Write(w, apperror.Validation("invalid id"))
		return
	}
	p, err := h.Repository.FindByID(h.DB, id)
	if err != nil {
		apperror.Write(w, apperror.NotFound("pipeline not found"))
		return
	}
	utils.RespondJSON(w, http.StatusOK, p)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := utils.PathID(r, "id")
	if !ok {
		apperror.Write(w, apperror.Validation("invalid id"))
		return
	}
	var updated Pipeline
	if err := json.NewDecoder(r.Body).Decode(&updated); err != nil {
		apperror.Write(w, apperror.Validation("invalid payload"))
		return
	}
	if updated.Type != "" && !ValidType(updated.Type) {
		apperror.Write(w, apperror.Validation("unknown pipeline type"))
		return
	}
	if err := h.Repository.Update(h.DB, id, &updated); err != nil {
		apperror.Write(w, apperror.NotFound("pipeline not found"))
		return
	}
	p, _ := h.Repository.FindByID(h.DB, id)
	utils.RespondJSON(w, http.StatusOK, p)
}

// AddStage appends or inserts a stage into the pipeline.
func (h *Handler) AddStage(w http.ResponseWriter, r *http.Request) {
	pipelineID, ok := utils.PathID(r, "id")
	if !ok {
		apperror.Write(w, apperror.Validation("invalid id"))
		return
	}
	if _, err := h.Repository.FindByID(h.DB, pipelineID); err != nil {
		apperror.Write(w, apperror.NotFound("pipeline not found"))
		return
	}

	var req addStageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperror.Write(w, apperror.Validation("invalid payload"))
		return
	}
	if req.Name == "" {
		apperror.Write(w, apperror.ValidationFields("invalid stage", map[string]string{"name": "required"}))
		return
	}

	s := PipelineStage{Name: req.Name, Description: req.Description, Color: req.Color}
	if err := h.Repository.AddStage(h.DB, pipelineID, &s, req.Order); err != nil {
		apperror.Write(w, apperror.Internal("could not save stage"))
		return
	}
	utils.RespondJSON(w, http.StatusCreated, s)
}

// UpdateStage renames, recolors or reorders a stage within its pipeline.
func (h *Handler) UpdateStage(w http.ResponseWriter, r *http.Request) {
	pipelineID, ok := utils.PathID(r, "id")
	if !ok {
		apperror.Write(w, apperror.Validation("invalid id"))
		return
	}
	stageID, ok := utils.PathID(r, "stageId")
	if !ok {
		apperror.Write(w, apperror.Validation("invalid stage id"))
		return
	}

	s, err := h.Repository.FindStageInPipeline(h.DB, pipelineID, stageID)
	if err != nil {
		apperror.Write(w, apperror.NotFound("stage not found in pipeline"))
		return
	}

	var req updateStageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperror.Write(w, apperror.Validation("invalid payload"))
		return
	}

	if req.Name != nil {
		s.Name = *req.Name
	}
	if req.Description != nil {
		s.Description = *req.Description
	}
	if req.Color != nil {
		s.Color = *req.Color
	}
	if err := h.Repository.UpdateStage(h.DB, s); err != nil {
		apperror.Write(w, apperror.Internal("could not save stage"))
		return
	}

	if req.Order != nil {
		if err := h.Repository.ReorderStage(h.DB, stageID, *req.Order); err != nil {
			apperror.Write(w, apperror.Internal("could not reorder stage"))
			return
		}
	}

	s, _ = h.Repository.FindStage(h.DB, stageID)
	utils.RespondJSON(w, http.StatusOK, s)
}

// DeleteStage removes a stage unless it is terminal or leads still occupy it.
func (h *Handler) DeleteStage(w http.ResponseWriter, r *http.Request) {
	pipelineID, ok := utils.PathID(r, "id")
	if !ok {
		apperror.Write(w, apperror.Validation("invalid id"))
		return
	}
	stageID, ok := utils.PathID(r, "stageId")
	if !ok {
		apperror.Write(w, apperror.Validation("invalid stage id"))
		return
	}
	if _, err := h.Repository.FindStageInPipeline(h.DB, pipelineID, stageID); err != nil {
		apperror.Write(w, apperror.NotFound("stage not found in pipeline"))
		return
	}

	if err := h.Repository.DeleteStage(h.DB, stageID); err != nil {
		if errors.Is(err, ErrStageHasLeads) {
			apperror.Write(w, apperror.Conflict("stage has leads assigned and cannot be deleted"))
			return
		}
		if errors.Is(err, ErrStageIsFinal) {
			apperror.Write(w, apperror.Conflict("terminal stages cannot be deleted"))
			return
		}
		apperror.Write(w, apperror.Internal("could not delete stage"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
