package lead

import (
	"strconv"
	"strings"
	"time"

	"github.com/estatecrm/api/internal/auth"
	"github.com/estatecrm/api/internal/task"
	"gorm.io/gorm"
)

// Column transforms applied during import.
const (
	TransformNone        = "NONE"
	TransformUppercase   = "UPPERCASE"
	TransformLowercase   = "LOWERCASE"
	TransformTrim        = "TRIM"
	TransformSplitComma  = "SPLIT_COMMA"
	TransformParseNumber = "PARSE_NUMBER"
	TransformParseDate   = "PARSE_DATE"
)

// Duplicate handling modes.
const (
	DuplicateCreateNew = "CREATE_NEW"
	DuplicateSkip      = "SKIP"
	DuplicateUpdate    = "UPDATE"
)

// Row outcome statuses.
const (
	RowSuccess = "success"
	RowSkipped = "skipped"
	RowFailed  = "failed"
)

// FieldMapping maps one spreadsheet column to a lead field.
type FieldMapping struct {
	Column    string `json:"column"`
	Field     string `json:"field"`
	Transform string `json:"transform"`
}

// ImportRequest is the decoded importData payload for a bulk import.
type ImportRequest struct {
	CampaignID        uint           `json:"campaignId"`
	StageID           uint           `json:"stageId"`
	DuplicateHandling string         `json:"duplicateHandling"`
	CheckFields       []string       `json:"checkFields"`
	Mappings          []FieldMapping `json:"mappings"`
	Rows              []map[string]string
}

// RowResult is the outcome of one imported row.
type RowResult struct {
	Row     int    `json:"row"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	LeadID  uint   `json:"leadId,omitempty"`
}

// ImportSummary is the aggregate over all rows.
type ImportSummary struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
}

// ImportResult is the full bulk-import response body.
type ImportResult struct {
	Summary ImportSummary `json:"summary"`
	Results []RowResult   `json:"results"`
	LeadIDs []uint        `json:"leadIds"`
}

// enumSynonyms normalizes common spellings of enum values after uppercasing.
var enumSynonyms = map[string]map[string]string{
	"priority": {
		"LOW": PriorityLow, "MEDIUM": PriorityMedium, "MED": PriorityMedium,
		"NORMAL": PriorityMedium, "HIGH": PriorityHigh, "URGENT": PriorityUrgent,
		"CRITICAL": PriorityUrgent,
	},
	"preApprovalStatus": {
		"NOT_STARTED": PreApprovalNotStarted, "NONE": PreApprovalNotStarted,
		"IN_PROGRESS": PreApprovalInProgress, "PENDING": PreApprovalInProgress,
		"PRE_APPROVED": PreApprovalApproved, "PRE-APPROVED": PreApprovalApproved,
		"PREAPPROVED": PreApprovalApproved, "APPROVED": PreApprovalApproved,
		"DENIED": PreApprovalDenied, "REJECTED": PreApprovalDenied,
	},
}

var importDateLayouts = []string{
	time.RFC3339, "2006-01-02", "01/02/2006", "2006-01-02 15:04:05",
}

func applyTransform(value, transform string) string {
	switch transform {
	case TransformUppercase:
		return strings.ToUpper(value)
	case TransformLowercase:
		return strings.ToLower(value)
	case TransformTrim:
		return strings.TrimSpace(value)
	default:
		return value
	}
}

func parseImportDate(value string) *time.Time {
	for _, layout := range importDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}

// buildLead maps one raw row onto a candidate lead via the configured
// mappings. Unknown fields are ignored; enum fields pass through the synonym
// table after uppercasing.
func buildLead(row map[string]string, mappings []FieldMapping) *Lead {
	l := &Lead{Priority: PriorityMedium, PreApprovalStatus: PreApprovalNotStarted}
	for _, m := range mappings {
		raw, ok := row[m.Column]
		if !ok {
			continue
		}
		value := applyTransform(strings.TrimSpace(raw), m.Transform)
		if value == "" {
			continue
		}

		switch m.Field {
		case "firstName":
			l.FirstName = value
		case "lastName":
			l.LastName = value
		case "email":
			l.Email = value
		case "mobile":
			l.Mobile = value
		case "source":
			l.Source = value
		case "priority":
			if normalized, ok := enumSynonyms["priority"][strings.ToUpper(value)]; ok {
				l.Priority = normalized
			}
		case "preApprovalStatus":
			if normalized, ok := enumSynonyms["preApprovalStatus"][strings.ToUpper(value)]; ok {
				l.PreApprovalStatus = normalized
			}
		case "budgetMin":
			if n, err := strconv.ParseFloat(value, 64); err == nil {
				l.BudgetMin = n
			}
		case "budgetMax":
			if n, err := strconv.ParseFloat(value, 64); err == nil {
				l.BudgetMax = n
			}
		case "tags":
			if m.Transform == TransformSplitComma {
				for _, tag := range strings.Split(value, ",") {
					if tag = strings.TrimSpace(tag); tag != "" {
						l.Tags = append(l.Tags, tag)
					}
				}
			} else {
				l.Tags = append(l.Tags, value)
			}
		case "nextFollowUpAt":
			l.NextFollowUpAt = parseImportDate(value)
		}
	}
	return l
}

func checkField(fields []string, name string) bool {
	for _, f := range fields {
		if f == name {
			return true
		}
	}
	return false
}

// Import runs the bulk import. Rows are processed independently: one bad row
// is recorded as failed and never aborts its siblings.
func (s *Service) Import(db *gorm.DB, actor auth.Actor, req *ImportRequest) *ImportResult {
	result := &ImportResult{Summary: ImportSummary{Total: len(req.Rows)}}

	for i, row := range req.Rows {
		outcome := s.importRow(db, actor, req, row)
		outcome.Row = i
		result.Results = append(result.Results, outcome)
		switch outcome.Status {
		case RowSuccess:
			result.Summary.Successful++
			result.LeadIDs = append(result.LeadIDs, outcome.LeadID)
		case RowSkipped:
			result.Summary.Skipped++
		default:
			result.Summary.Failed++
		}
	}
	return result
}

func (s *Service) importRow(db *gorm.DB, actor auth.Actor, req *ImportRequest, row map[string]string) RowResult {
	l := buildLead(row, req.Mappings)
	if l.FirstName == "" || l.LastName == "" {
		return RowResult{Status: RowFailed, Message: "firstName and lastName are required"}
	}

	if req.DuplicateHandling != DuplicateCreateNew {
		email, mobile := "", ""
		if checkField(req.CheckFields, "email") {
			email = l.Email
		}
		if checkField(req.CheckFields, "mobile") {
			mobile = l.Mobile
		}
		if existing, err := s.Repo.FindDuplicate(db, req.CampaignID, email, mobile); err == nil {
			if req.DuplicateHandling == DuplicateSkip {
				return RowResult{Status: RowSkipped, Message: "duplicate lead", LeadID: existing.ID}
			}
			// UPDATE: refresh contact fields in place, keep stage and id
			existing.FirstName = l.FirstName
			existing.LastName = l.LastName
			if l.Email != "" {
				existing.Email = l.Email
			}
			if l.Mobile != "" {
				existing.Mobile = l.Mobile
			}
			existing.Priority = l.Priority
			existing.PreApprovalStatus = l.PreApprovalStatus
			if l.NextFollowUpAt != nil {
				existing.NextFollowUpAt = l.NextFollowUpAt
			}
			if err := s.Repo.Save(db, existing); err != nil {
				return RowResult{Status: RowFailed, Message: "could not update existing lead"}
			}
			if err := task.SyncFollowUp(db, existing.ID, actor.ID, existing.FullName(), existing.NextFollowUpAt); err != nil {
				return RowResult{Status: RowFailed, Message: "could not sync follow-up task"}
			}
			return RowResult{Status: RowSuccess, LeadID: existing.ID}
		}
	}

	l.CampaignID = req.CampaignID
	l.CurrentStageID = req.StageID
	l.AssignedToID = actor.ID
	if err := s.Repo.Create(db, l); err != nil {
		return RowResult{Status: RowFailed, Message: "could not save lead"}
	}
	if err := task.SyncFollowUp(db, l.ID, actor.ID, l.FullName(), l.NextFollowUpAt); err != nil {
		return RowResult{Status: RowFailed, Message: "could not sync follow-up task"}
	}
	return RowResult{Status: RowSuccess, LeadID: l.ID}
}
