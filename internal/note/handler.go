package note

import (
	"encoding/json"
	"net/http"

	"github.com/estatecrm/api/internal/apperror"
	"github.com/estatecrm/api/internal/auth"
	"github.com/estatecrm/api/internal/campaign"
	"github.com/estatecrm/api/internal/utils"
	"gorm.io/gorm"
)

type noteRequest struct {
	Text string `json:"text"`
}

type Handler struct {
	DB           *gorm.DB
	Repository   Repository
	CampaignRepo campaign.Repository
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{
		DB:           db,
		Repository:   NewRepository(),
		CampaignRepo: campaign.NewRepository(),
	}
}

// leadForActor resolves the lead route var, then walks up to its campaign
// and applies the access rule. The lead lookup is a table query rather
// than an import of the lead package, which sits above this one.
func (h *Handler) leadForActor(r *http.Request) (uint, error) {
	leadID, ok := utils.PathID(r, "leadId")
	if !ok {
		return 0, apperror.Validation("invalid lead id")
	}
	var campaignID uint
	err := h.DB.Table("leads").
		Select("campaign_id").
		Where("id = ? AND deleted_at IS NULL", leadID).
		Scan(&campaignID).Error
	if err != nil || campaignID == 0 {
		return 0, apperror.NotFound("lead not found")
	}
	c, err := h.CampaignRepo.FindByID(h.DB, campaignID)
	if err != nil {
		return 0, apperror.NotFound("campaign not found")
	}
	if !campaign.CanAccess(c, auth.ActorFrom(r)) {
		return 0, apperror.AccessDenied("access denied to campaign")
	}
	return leadID, nil
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	leadID, err := h.leadForActor(r)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
		apperror.Write(w, apperror.Validation("invalid payload"))
		return
	}

	n := Note{Text: req.Text, LeadID: leadID, UserID: auth.ActorFrom(r).ID}
	if err := h.Repository.Create(h.DB, &n); err != nil {
		apperror.Write(w, apperror.Internal("could not save note"))
		return
	}
	utils.RespondJSON(w, http.StatusCreated, n)
}

func (h *Handler) ListByLead(w http.ResponseWriter, r *http.Request) {
	leadID, err := h.leadForActor(r)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	notes, err := h.Repository.ListByLead(h.DB, leadID)
	if err != nil {
		apperror.Write(w, apperror.Internal("could not list notes"))
		return
	}
	utils.RespondJSON(w, http.StatusOK, notes)
}

// Update edits a note's text. Only the author or staff may edit.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r)
	id, ok := utils.PathID(r, "noteId")
	if !ok {
		apperror.Write(w, apperror.Validation("invalid id"))
		return
	}
	n, err := h.Repository.FindByID(h.DB, id)
	if err != nil {
		apperror.Write(w, apperror.NotFound("note not found"))
		return
	}
	if !actor.IsStaff() && n.UserID != actor.ID {
		apperror.Write(w, apperror.AccessDenied("access denied"))
		return
	}

	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
		apperror.Write(w, apperror.Validation("invalid payload"))
		return
	}
	if err := h.Repository.UpdateText(h.DB, id, req.Text); err != nil {
		apperror.Write(w, apperror.Internal("could not save note"))
		return
	}
	n.Text = req.Text
	utils.RespondJSON(w, http.StatusOK, n)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r)
	id, ok := utils.PathID(r, "noteId")
	if !ok {
		apperror.Write(w, apperror.Validation("invalid id"))
		return
	}
	n, err := h.Repository.FindByID(h.DB, id)
	if err != nil {
		apperror.Write(w, apperror.NotFound("note not found"))
		return
	}
	if !actor.IsStaff() && n.UserID != actor.ID {
		apperror.Write(w, apperror.AccessDenied("access denied"))
		return
	}
	if err := h.Repository.Delete(h.DB, id); err != nil {
		apperror.Write(w, apperror.Internal("could not delete note"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
