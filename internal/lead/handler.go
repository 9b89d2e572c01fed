package lead

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/estatecrm/api/internal/apperror"
	"github.com/estatecrm/api/internal/auth"
	"github.com/estatecrm/api/internal/campaign"
	"github.com/estatecrm/api/internal/task"
	"github.com/estatecrm/api/internal/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type createLeadRequest struct {
	FirstName         string     `json:"firstName"`
	LastName          string     `json:"lastName"`
	Email             string     `json:"email"`
	Mobile            string     `json:"mobile"`
	Source            string     `json:"source"`
	Priority          string     `json:"priority"`
	PreApprovalStatus string     `json:"preApprovalStatus"`
	BudgetMin         float64    `json:"budgetMin"`
	BudgetMax         float64    `json:"budgetMax"`
	Tags              []string   `json:"tags"`
	StageID           uint       `json:"stageId"`
	AssignedToID      uint       `json:"assignedToId"`
	NextFollowUpAt    *time.Time `json:"nextFollowUpAt"`
}

type moveStageRequest struct {
	StageID uint `json:"stageId"`
}

type archiveRequest struct {
	IsArchived bool    `json:"isArchived"`
	Reason     *string `json:"reason"`
}

type Handler struct {
	DB      *gorm.DB
	Service *Service
}

func NewHandler(db *gorm.DB, logger *zap.Logger) *Handler {
	svc := NewService()
	svc.Logger = logger
	return &Handler{DB: db, Service: svc}
}

// campaignForActor resolves the campaign route var and applies the access
// rule.
func (h *Handler) campaignForActor(r *http.Request) (*campaign.Campaign, error) {
	campaignID, ok := utils.PathID(r, "id")
	if !ok {
		return nil, apperror.Validation("invalid campaign id")
	}
	c, err := h.Service.CampaignRepo.FindByID(h.DB, campaignID)
	if err != nil {
		return nil, apperror.NotFound("campaign not found")
	}
	if !campaign.CanAccess(c, auth.ActorFrom(r)) {
		return nil, apperror.AccessDenied("access denied to campaign")
	}
	return c, nil
}

// Create adds a lead to the campaign, landing it in the requested stage or
// the pipeline's default stage.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r)
	c, err := h.campaignForActor(r)
	if err != nil {
		apperror.Write(w, err)
		return
	}

	var req createLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperror.Write(w, apperror.Validation("invalid payload"))
		return
	}

	fields := map[string]string{}
	if req.FirstName == "" {
		fields["firstName"] = "required"
	}
	if req.LastName == "" {
		fields["lastName"] = "required"
	}
	if req.Priority == "" {
		req.Priority = PriorityMedium
	} else if !ValidPriority(req.Priority) {
		fields["priority"] = "unknown priority"
	}
	if req.PreApprovalStatus == "" {
		req.PreApprovalStatus = PreApprovalNotStarted
	} else if !ValidPreApproval(req.PreApprovalStatus) {
		fields["preApprovalStatus"] = "unknown status"
	}
	if len(fields) > 0 {
		apperror.Write(w, apperror.ValidationFields("invalid lead", fields))
		return
	}

	stageID := req.StageID
	if stageID == 0 {
		p, err := h.Service.PipelineRepo.FindByID(h.DB, c.PipelineID)
		if err != nil {
			apperror.Write(w, apperror.Internal("could not load pipeline"))
			return
		}
		stageID = p.DefaultStage().ID
	} else {
		stage, err := h.Service.PipelineRepo.FindStage(h.DB, stageID)
		if err != nil {
			apperror.Write(w, apperror.NotFound("stage not found"))
			return
		}
		if stage.PipelineID != c.PipelineID {
			apperror.Write(w, apperror.Validation("stage does not belong to the campaign's pipeline"))
			return
		}
	}

	assignedTo := req.AssignedToID
	if assignedTo == 0 {
		assignedTo = actor.ID
	}

	l := Lead{
		CampaignID:        c.ID,
		CurrentStageID:    stageID,
		AssignedToID:      assignedTo,
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Email:             req.Email,
		Mobile:            req.Mobile,
		Source:            req.Source,
		Priority:          req.Priority,
		PreApprovalStatus: req.PreApprovalStatus,
		BudgetMin:         req.BudgetMin,
		BudgetMax:         req.BudgetMax,
		Tags:              req.Tags,
		NextFollowUpAt:    req.NextFollowUpAt,
	}
	if err := h.Service.Repo.Create(h.DB, &l); err != nil {
		apperror.Write(w, apperror.Internal("could not save lead"))
		return
	}
	if err := task.SyncFollowUp(h.DB, l.ID, assignedTo, l.FullName(), l.NextFollowUpAt); err != nil {
		apperror.Write(w, apperror.Internal("could not sync follow-up task"))
		return
	}
	utils.RespondJSON(w, http.StatusCreated, l)
}

// List returns the campaign's leads, narrowed by query filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	c, err := h.campaignForActor(r)
	if err != nil {
		apperror.Write(w, err)
		return
	}

	f := Filter{CampaignID: &c.ID}
	q := r.URL.Query()
	if v := q.Get("stageId"); v != "" {
		if id, ok := parseUintParam(v); ok {
			f.StageID = &id
		}
	}
	if v := q.Get("assignedToId"); v != "" {
		if id, ok := parseUintParam(v); ok {
			f.AssignedToID = &id
		}
	}
	if v := q.Get("priority"); v != "" {
		f.Priority = &v
	}
	if v := q.Get("archived"); v != "" {
		archived := v == "true"
		f.IsArchived = &archived
	}
	if v := q.Get("search"); v != "" {
		f.Search = &v
	}

	leads, err := h.Service.Repo.List(h.DB, f)
	if err != nil {
		apperror.Write(w, apperror.Internal("could not list leads"))
		return
	}
	utils.RespondJSON(w, http.StatusOK, leads)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.campaignForActor(r)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	leadID, ok := utils.PathID(r, "leadId")
	if !ok {
		apperror.Write(w, apperror.Validation("invalid lead id"))
		return
	}
	l, err := h.Service.Repo.FindInCampaign(h.DB, c.ID, leadID)
	if err != nil {
		apperror.Write(w, apperror.NotFound("lead not found"))
		return
	}
	utils.RespondJSON(w, http.StatusOK, l)
}

// Update changes the lead's profile fields. The stage and archive state have
// their own endpoints and never change here.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	c, err := h.campaignForActor(r)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	leadID, ok := utils.PathID(r, "leadId")
	if !ok {
		apperror.Write(w, apperror.Validation("invalid lead id"))
		return
	}
	l, err := h.Service.Repo.FindInCampaign(h.DB, c.ID, leadID)
	if err != nil {
		apperror.Write(w, apperror.NotFound("lead not found"))
		return
	}

	var req createLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperror.Write(w, apperror.Validation("invalid payload"))
		return
	}
	if req.Priority != "" && !ValidPriority(req.Priority) {
		apperror.Write(w, apperror.Validation("unknown priority"))
		return
	}
	if req.PreApprovalStatus != "" && !ValidPreApproval(req.PreApprovalStatus) {
		apperror.Write(w, apperror.Validation("unknown pre-approval status"))
		return
	}

	l.FirstName = req.FirstName
	l.LastName = req.LastName
	l.Email = req.Email
	l.Mobile = req.Mobile
	l.Source = req.Source
	if req.Priority != "" {
		l.Priority = req.Priority
	}
	if req.PreApprovalStatus != "" {
		l.PreApprovalStatus = req.PreApprovalStatus
	}
	l.BudgetMin = req.BudgetMin
	l.BudgetMax = req.BudgetMax
	l.Tags = req.Tags
	if req.AssignedToID != 0 {
		l.AssignedToID = req.AssignedToID
	}
	l.NextFollowUpAt = req.NextFollowUpAt

	if err := h.Service.Repo.Save(h.DB, l); err != nil {
		apperror.Write(w, apperror.Internal("could not save lead"))
		return
	}
	if err := task.SyncFollowUp(h.DB, l.ID, l.AssignedToID, l.FullName(), l.NextFollowUpAt); err != nil {
		apperror.Write(w, apperror.Internal("could not sync follow-up task"))
		return
	}
	utils.RespondJSON(w, http.StatusOK, l)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	c, err := h.campaignForActor(r)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	leadID, ok := utils.PathID(r, "leadId")
	if !ok {
		apperror.Write(w, apperror.Validation("invalid lead id"))
		return
	}
	if _, err := h.Service.Repo.FindInCampaign(h.DB, c.ID, leadID); err != nil {
		apperror.Write(w, apperror.NotFound("lead not found"))
		return
	}
	if err := h.Service.Repo.Delete(h.DB, leadID); err != nil {
		apperror.Write(w, apperror.Internal("could not delete lead"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MoveStage handles PUT /campaigns/{id}/leads/{leadId}/stage.
func (h *Handler) MoveStage(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r)
	campaignID, ok := utils.PathID(r, "id")
	if !ok {
		apperror.Write(w, apperror.Validation("invalid campaign id"))
		return
	}
	leadID, ok := utils.PathID(r, "leadId")
	if !ok {
		apperror.Write(w, apperror.Validation("invalid lead id"))
		return
	}
	var req moveStageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.StageID == 0 {
		apperror.Write(w, apperror.Validation("invalid payload"))
		return
	}

	l, err := h.Service.MoveStage(h.DB, actor, campaignID, leadID, req.StageID)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, l)
}

// Archive handles PUT /campaigns/{id}/leads/{leadId}/archive for both
// archiving and bare unarchiving.
func (h *Handler) Archive(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r)
	campaignID, ok := utils.PathID(r, "id")
	if !ok {
		apperror.Write(w, apperror.Validation("invalid campaign id"))
		return
	}
	leadID, ok := utils.PathID(r, "leadId")
	if !ok {
		apperror.Write(w, apperror.Validation("invalid lead id"))
		return
	}
	var req archiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperror.Write(w, apperror.Validation("invalid payload"))
		return
	}

	var l *Lead
	var err error
	if req.IsArchived {
		l, err = h.Service.Archive(h.DB, actor, campaignID, leadID, req.Reason)
	} else {
		l, err = h.Service.Unarchive(h.DB, actor, campaignID, leadID)
	}
	if err != nil {
		apperror.Write(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, l)
}

// ConvertToLead handles PUT /campaigns/{id}/leads/{leadId}/convert-to-lead.
func (h *Handler) ConvertToLead(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r)
	campaignID, ok := utils.PathID(r, "id")
	if !ok {
		apperror.Write(w, apperror.Validation("invalid campaign id"))
		return
	}
	leadID, ok := utils.PathID(r, "leadId")
	if !ok {
		apperror.Write(w, apperror.Validation("invalid lead id"))
		return
	}
	var req moveStageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.StageID == 0 {
		apperror.Write(w, apperror.Validation("invalid payload"))
		return
	}

	l, err := h.Service.ConvertToLead(h.DB, actor, campaignID, leadID, req.StageID)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, l)
}

// Stats handles GET /campaigns/{id}/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	c, err := h.campaignForActor(r)
	if err != nil {
		apperror.Write(w, err)
		return
	}
	p, err := h.Service.PipelineRepo.FindByID(h.DB, c.PipelineID)
	if err != nil {
		apperror.Write(w, apperror.Internal("could not load pipeline"))
		return
	}
	stats, err := Stats(h.DB, c.ID, p.Stages)
	if err != nil {
		apperror.Write(w, apperror.Internal("could not aggregate stats"))
		return
	}
	utils.RespondJSON(w, http.StatusOK, stats)
}

// ImportBulk handles POST /leads/import/bulk. The multipart body carries an
// importData JSON part and either a CSV file part or a rows JSON part.
func (h *Handler) ImportBulk(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r)

	if err := r.ParseMultipartForm(16 << 20); err != nil {
		apperror.Write(w, apperror.Validation("invalid multipart body"))
		return
	}

	var req ImportRequest
	if err := json.Unmarshal([]byte(r.FormValue("importData")), &req); err != nil {
		apperror.Write(w, apperror.Validation("invalid importData"))
		return
	}
	if req.DuplicateHandling == "" {
		req.DuplicateHandling = DuplicateCreateNew
	}

	if rowsJSON := r.FormValue("rows"); rowsJSON != "" {
		if err := json.Unmarshal([]byte(rowsJSON), &req.Rows); err != nil {
			apperror.Write(w, apperror.Validation("invalid rows"))
			return
		}
	} else {
		file, _, err := r.FormFile("file")
		if err != nil {
			apperror.Write(w, apperror.Validation("missing file or rows"))
			return
		}
		defer file.Close()
		rows, err := readCSVRows(file)
		if err != nil {
			apperror.Write(w, apperror.Validation("invalid CSV file"))
			return
		}
		req.Rows = rows
	}

	c, err := h.Service.CampaignRepo.FindByID(h.DB, req.CampaignID)
	if err != nil {
		apperror.Write(w, apperror.NotFound("campaign not found"))
		return
	}
	if !campaign.CanAccess(c, actor) {
		apperror.Write(w, apperror.AccessDenied("access denied to campaign"))
		return
	}
	stage, err := h.Service.PipelineRepo.FindStage(h.DB, req.StageID)
	if err != nil {
		apperror.Write(w, apperror.NotFound("stage not found"))
		return
	}
	if stage.PipelineID != c.PipelineID {
		apperror.Write(w, apperror.Validation("stage does not belong to the campaign's pipeline"))
		return
	}

	result := h.Service.Import(h.DB, actor, &req)
	utils.RespondJSON(w, http.StatusOK, result)
}

// readCSVRows maps a CSV stream into header-keyed rows.
func readCSVRows(r io.Reader) ([]map[string]string, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return nil, err
	}
	var rows []map[string]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseUintParam(v string) (uint, bool) {
	id, err := strconv.ParseUint(v, 10, 32)
	return uint(id), err == nil
}
