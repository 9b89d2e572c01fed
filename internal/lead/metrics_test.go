package lead_test

import (
	"testing"

	"github.com/estatecrm/api/internal/lead"
	"github.com/estatecrm/api/internal/pipeline"
)

func stageCount(t *testing.T, stats *lead.CampaignStats, stageID uint) int64 {
	t.Helper()
	for _, sc := range stats.Stages {
		if sc.StageID == stageID {
			return sc.Count
		}
	}
	t.Fatalf("stage %d missing from stats", stageID)
	return 0
}

func TestArchivingNonTerminalLeadLeavesActiveCount(t *testing.T) {
	f := newFixture(t)
	newStage := f.stage(t, "New")

	stats, err := lead.Stats(f.db, f.campaign.ID, f.pipeline.Stages)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if got := stageCount(t, stats, newStage.ID); got != 1 {
		t.Fatalf("active count = %d, want 1", got)
	}

	if _, err := f.svc.Archive(f.db, manager, f.campaign.ID, f.lead.ID, nil); err != nil {
		t.Fatalf("archive: %v", err)
	}

	stats, err = lead.Stats(f.db, f.campaign.ID, f.pipeline.Stages)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if got := stageCount(t, stats, newStage.ID); got != 0 {
		t.Errorf("active count after archive = %d, want 0", got)
	}
}

func TestArchivingTerminalLeadKeepsCount(t *testing.T) {
	f := newFixture(t)
	won := f.stage(t, pipeline.StageClosedWon)

	if _, err := f.svc.MoveStage(f.db, manager, f.campaign.ID, f.lead.ID, won.ID); err != nil {
		t.Fatalf("move: %v", err)
	}
	if _, err := f.svc.Archive(f.db, manager, f.campaign.ID, f.lead.ID, nil); err != nil {
		t.Fatalf("archive: %v", err)
	}

	stats, err := lead.Stats(f.db, f.campaign.ID, f.pipeline.Stages)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if got := stageCount(t, stats, won.ID); got != 1 {
		t.Errorf("terminal count after archive = %d, want 1", got)
	}
}

func TestConversionRateIgnoresArchiveState(t *testing.T) {
	f := newFixture(t)
	won := f.stage(t, pipeline.StageClosedWon)
	lost := f.stage(t, pipeline.StageClosedLost)

	// second lead, closed lost
	other := &lead.Lead{
		CampaignID:     f.campaign.ID,
		CurrentStageID: lost.ID,
		FirstName:      "Ben",
		LastName:       "Okafor",
	}
	if err := f.svc.Repo.Create(f.db, other); err != nil {
		t.Fatalf("create lead: %v", err)
	}

	if _, err := f.svc.MoveStage(f.db, manager, f.campaign.ID, f.lead.ID, won.ID); err != nil {
		t.Fatalf("move: %v", err)
	}
	if _, err := f.svc.Archive(f.db, manager, f.campaign.ID, f.lead.ID, nil); err != nil {
		t.Fatalf("archive: %v", err)
	}

	stats, err := lead.Stats(f.db, f.campaign.ID, f.pipeline.Stages)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalLeads != 2 {
		t.Fatalf("total = %d, want 2", stats.TotalLeads)
	}
	if stats.WonLeads != 1 || stats.LostLeads != 1 {
		t.Fatalf("won/lost = %d/%d, want 1/1", stats.WonLeads, stats.LostLeads)
	}
	if stats.ConversionRate != 0.5 {
		t.Errorf("conversion rate = %v, want 0.5", stats.ConversionRate)
	}
}
