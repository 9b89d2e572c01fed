package property

import (
	"encoding/json"
	"net/http"

	"github.com/estatecrm/api/internal/apperror"
	"github.com/estatecrm/api/internal/auth"
	"github.com/estatecrm/api/internal/campaign"
	"github.com/estatecrm/api/internal/utils"
	"gorm.io/gorm"
)

type interestInput struct {
	PropertyID uint   `json:"propertyId"`
	Level      string `json:"level"`
	Notes      string `json:"notes"`
}

type addInterestsRequest struct {
	Interests []interestInput `json:"interests"`
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
	var p Property
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		apperror.Write(w, apperror.Validation("invalid payload"))
		return
	}
	if p.Address == "" {
		apperror.Write(w, apperror.ValidationFields("invalid property", map[string]string{"address": "required"}))
		return
	}
	if p.Status == "" {
		p.Status = StatusAvailable
	}
	if err := h.Repository.Create(h.DB, &p); err != nil {
		apperror.Write(w, apperror.Internal("could not save property"))
		return
	}
	utils.RespondJSON(w, http.StatusCreated, p)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	properties, err := h.Repository.List(h.DB, r.URL.Query().Get("status"))
	if err != nil {
		apperror.Write(w, apperror.Internal("could not list properties"))
		return
	}
	utils.RespondJSON(w, http.StatusOK, properties)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := utils.PathID(r, "id")
	if !ok {
		apperror.Write(w, apperror.Validation("invalid id"))
		return
	}
	p, err := h.Repository.FindByID(h.DB, id)
	if err != nil {
		apperror.Write(w, apperror.NotFound("property not found"))
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
	var updated Property
	if err := json.NewDecoder(r.Body).Decode(&updated); err != nil {
		apperror.Write(w, apperror.Validation("invalid payload"))
		return
	}
	if err := h.Repository.Update(h.DB, id, &updated); err != nil {
		apperror.Write(w, apperror.NotFound("property not found"))
		return
	}
	p, _ := h.Repository.FindByID(h.DB, id)
	utils.RespondJSON(w, http.StatusOK, p)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := utils.PathID(r, "id")
	if !ok {
		apperror.Write(w, apperror.Validation("invalid id"))
		return
	}
	if err := h.Repository.Delete(h.DB, id); err != nil {
		apperror.Write(w, apperror.Internal("could not delete property"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddInterests records a batch of property interests for a lead in one
// transaction.
func (h *Handler) AddInterests(w http.ResponseWriter, r *http.Request) {
	leadID, err := h.leadForActor(r)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	var req addInterestsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Interests) == 0 {
		apperror.Write(w, apperror.Validation("invalid payload"))
		return
	}

	interests := make([]PropertyInterest, 0, len(req.Interests))
	for _, in := range req.Interests {
		if in.PropertyID == 0 {
			apperror.Write(w, apperror.ValidationFields("invalid interest", map[string]string{"propertyId": "required"}))
			return
		}
		level := in.Level
		if level == "" {
			level = LevelMedium
		}
		interests = append(interests, PropertyInterest{
			PropertyID: in.PropertyID,
			LeadID:     leadID,
			Level:      level,
			Notes:      in.Notes,
		})
	}

	if err := h.Repository.AddInterests(h.DB, interests); err != nil {
		apperror.Write(w, apperror.Internal("could not save interests"))
		return
	}
	utils.RespondJSON(w, http.StatusCreated, interests)
}

// ListInterests returns a lead's property interests.
func (h *Handler) ListInterests(w http.ResponseWriter, r *http.Request) {
	leadID, err := h.leadForActor(r)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	interests, err := h.Repository.ListInterestsByLead(h.DB, leadID)
	if err != nil {
		apperror.Write(w, apperror.Internal("could not list interests"))
		return
	}
	utils.RespondJSON(w, http.StatusOK, interests)
}
