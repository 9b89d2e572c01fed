package lead_test

import (
	"testing"

	"github.com/estatecrm/api/internal/lead"
	"github.com/estatecrm/api/internal/task"
)

func importRequest(f *fixture, rows []map[string]string) *lead.ImportRequest {
	return &lead.ImportRequest{
		CampaignID:        f.campaign.ID,
		StageID:           f.pipeline.Stages[0].ID,
		DuplicateHandling: lead.DuplicateCreateNew,
		Mappings: []lead.FieldMapping{
			{Column: "First Name", Field: "firstName", Transform: lead.TransformTrim},
			{Column: "Last Name", Field: "lastName", Transform: lead.TransformTrim},
			{Column: "Email", Field: "email", Transform: lead.TransformLowercase},
			{Column: "Phone", Field: "mobile", Transform: lead.TransformNone},
			{Column: "Priority", Field: "priority", Transform: lead.TransformUppercase},
			{Column: "Approval", Field: "preApprovalStatus", Transform: lead.TransformNone},
			{Column: "Budget", Field: "budgetMax", Transform: lead.TransformParseNumber},
			{Column: "Labels", Field: "tags", Transform: lead.TransformSplitComma},
			{Column: "Follow Up", Field: "nextFollowUpAt", Transform: lead.TransformParseDate},
		},
		Rows: rows,
	}
}

func TestImportMapsAndTransformsColumns(t *testing.T) {
	f := newFixture(t)

	req := importRequest(f, []map[string]string{{
		"First Name": "  Maya ",
		"Last Name":  "Lopez",
		"Email":      "Maya@Example.COM",
		"Priority":   "urgent",
		"Approval":   "approved",
		"Budget":     "450000",
		"Labels":     "first-time, waterfront",
		"Follow Up":  "2026-09-15",
	}})

	result := f.svc.Import(f.db, manager, req)
	if result.Summary.Successful != 1 || result.Summary.Failed != 0 {
		t.Fatalf("summary = %+v, want 1 success", result.Summary)
	}

	l, err := f.svc.Repo.FindByID(f.db, result.LeadIDs[0])
	if err != nil {
		t.Fatalf("load imported lead: %v", err)
	}
	if l.FirstName != "Maya" || l.LastName != "Lopez" {
		t.Errorf("name = %q %q", l.FirstName, l.LastName)
	}
	if l.Email != "maya@example.com" {
		t.Errorf("email = %q, want lowercased", l.Email)
	}
	if l.Priority != lead.PriorityUrgent {
		t.Errorf("priority = %q, want URGENT", l.Priority)
	}
	// "approved" normalizes through the synonym table
	if l.PreApprovalStatus != lead.PreApprovalApproved {
		t.Errorf("preApprovalStatus = %q, want PRE_APPROVED", l.PreApprovalStatus)
	}
	if l.BudgetMax != 450000 {
		t.Errorf("budgetMax = %v, want 450000", l.BudgetMax)
	}
	if len(l.Tags) != 2 || l.Tags[0] != "first-time" || l.Tags[1] != "waterfront" {
		t.Errorf("tags = %v", l.Tags)
	}
	if l.NextFollowUpAt == nil {
		t.Error("nextFollowUpAt not parsed")
	}

	// the follow-up date must also have produced an open FOLLOW_UP task
	tasks, err := task.NewRepository().ListByLead(f.db, l.ID)
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Type != task.TypeFollowUp || tasks[0].IsCompleted {
		t.Errorf("tasks = %+v, want one open follow-up", tasks)
	}
}

func TestImportIsolatesRowFailures(t *testing.T) {
	f := newFixture(t)

	req := importRequest(f, []map[string]string{
		{"First Name": "Ana", "Last Name": "One"},
		{"Last Name": "NoFirstName"},
		{"First Name": "Cleo", "Last Name": "Three"},
	})

	result := f.svc.Import(f.db, manager, req)
	s := result.Summary
	if s.Failed != 1 {
		t.Errorf("failed = %d, want 1", s.Failed)
	}
	if s.Successful+s.Skipped+s.Failed != s.Total || s.Total != 3 {
		t.Errorf("summary does not add up: %+v", s)
	}
	if result.Results[1].Status != lead.RowFailed {
		t.Errorf("row 1 status = %q, want failed", result.Results[1].Status)
	}
	if len(result.LeadIDs) != 2 {
		t.Errorf("leadIds = %v, want 2 entries", result.LeadIDs)
	}
}

func TestImportSkipsDuplicates(t *testing.T) {
	f := newFixture(t)

	req := importRequest(f, []map[string]string{
		{"First Name": "Ana", "Last Name": "Reed", "Email": "ana@example.com"},
	})
	req.DuplicateHandling = lead.DuplicateSkip
	req.CheckFields = []string{"email"}

	// fixture already has ana@example.com in this campaign
	result := f.svc.Import(f.db, manager, req)
	if result.Summary.Skipped != 1 || result.Summary.Successful != 0 {
		t.Fatalf("summary = %+v, want 1 skipped", result.Summary)
	}
}

func TestImportUpdatesDuplicatesInPlace(t *testing.T) {
	f := newFixture(t)

	req := importRequest(f, []map[string]string{
		{"First Name": "Anabel", "Last Name": "Reed", "Email": "ana@example.com", "Priority": "high"},
	})
	req.DuplicateHandling = lead.DuplicateUpdate
	req.CheckFields = []string{"email"}

	result := f.svc.Import(f.db, manager, req)
	if result.Summary.Successful != 1 {
		t.Fatalf("summary = %+v, want 1 success", result.Summary)
	}
	if result.LeadIDs[0] != f.lead.ID {
		t.Fatalf("leadId = %d, want existing %d", result.LeadIDs[0], f.lead.ID)
	}

	l, _ := f.svc.Repo.FindByID(f.db, f.lead.ID)
	if l.FirstName != "Anabel" || l.Priority != lead.PriorityHigh {
		t.Errorf("existing lead not updated: %+v", l)
	}

	var count int64
	f.db.Model(&lead.Lead{}).Where("campaign_id = ?", f.campaign.ID).Count(&count)
	if count != 1 {
		t.Errorf("lead count = %d, want 1 (no duplicate insert)", count)
	}
}
