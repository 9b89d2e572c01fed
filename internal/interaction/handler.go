package interaction

import (
	"encoding/json"
	"net/http"

	"github.com/estatecrm/api/internal/apperror"
	"github.com/estatecrm/api/internal/auth"
	"github.com/estatecrm/api/internal/campaign"
	"github.com/estatecrm/api/internal/utils"
	"gorm.io/gorm"
)

type logInteractionRequest struct {
	Type    string `json:"type"`
	Content string `json:"content"`
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

func (h *Handler) checkAccess(r *http.Request) (uint, error) {
	campaignID, ok := utils.PathID(r, "id")
	if !ok {
		return 0, apperror.Validation("invalid campaign id")
	}
	c, err := h.CampaignRepo.FindByID(h.DB, campaignID)
	if err != nil {
		return 0, apperror.NotFound("campaign not found")
	}
	if !campaign.CanAccess(c, auth.ActorFrom(r)) {
		return 0, apperror.AccessDenied("access denied to campaign")
	}
	leadID, ok := utils.PathID(r, "leadId")
	if !ok {
		return 0, apperror.Validation("invalid lead id")
	}
	var count int64
	if err := h.DB.Table("leads").Where("id = ? AND campaign_id = ? AND deleted_at IS NULL", leadID, campaignID).Count(&count).Error; err != nil || count == 0 {
		return 0, apperror.NotFound("lead not found")
	}
	return leadID, nil
}

// List returns the lead's interaction history, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	leadID, err := h.checkAccess(r)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	interactions, err := h.Repository.ListByLead(h.DB, leadID)
	if err != nil {
		apperror.Write(w, apperror.Internal("could not list interactions"))
		return
	}
	utils.RespondJSON(w, http.StatusOK, interactions)
}

// Log records a manual interaction (call, email, showing, note).
func (h *Handler) Log(w http.ResponseWriter, r *http.Request) {
	leadID, err := h.checkAccess(r)
	if err != nil {
		apperror.Write(w, err)
		return
	}

	var req logInteractionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperror.Write(w, apperror.Validation("invalid payload"))
		return
	}
	if !ValidType(req.Type) || req.Type == TypeStageChange {
		apperror.Write(w, apperror.Validation("unknown interaction type"))
		return
	}
	if req.Content == "" {
		apperror.Write(w, apperror.ValidationFields("invalid interaction", map[string]string{"content": "required"}))
		return
	}

	i := Interaction{
		LeadID:  leadID,
		UserID:  auth.ActorFrom(r).ID,
		Type:    req.Type,
		Content: req.Content,
	}
	if err := h.Repository.Create(h.DB, &i); err != nil {
		apperror.Write(w, apperror.Internal("could not save interaction"))
		return
	}
	utils.RespondJSON(w, http.StatusCreated, i)
}
