package pipeline_test

import (
	"errors"
	"testing"

	"github.com/estatecrm/api/internal/lead"
	"github.com/estatecrm/api/internal/pipeline"
	"github.com/estatecrm/api/internal/testutil"
	"gorm.io/gorm"
)

func createPipeline(t *testing.T, db *gorm.DB, stages ...string) *pipeline.Pipeline {
	t.Helper()
	inputs := make([]pipeline.StageInput, len(stages))
	for i, name := range stages {
		inputs[i] = pipeline.StageInput{Name: name}
	}
	p := pipeline.New("Buyers", pipeline.TypeBuyer, inputs)
	if err := pipeline.NewRepository().Create(db, p); err != nil {
		t.Fatalf("create pipeline: %v", err)
	}
	return p
}

func assertContiguousOrders(t *testing.T, db *gorm.DB, pipelineID uint) []pipeline.PipelineStage {
	t.Helper()
	var stages []pipeline.PipelineStage
	if err := db.Where("pipeline_id = ?", pipelineID).Order("stage_order").Find(&stages).Error; err != nil {
		t.Fatalf("load stages: %v", err)
	}
	for i, s := range stages {
		if s.Order != i {
			t.Fatalf("stage %q has order %d, want %d", s.Name, s.Order, i)
		}
	}
	return stages
}

func TestNewPipelineAppendsTerminalStages(t *testing.T) {
	db := testutil.SetupTestDB(t)
	p := createPipeline(t, db, "New", "Qualified")

	stages := assertContiguousOrders(t, db, p.ID)
	if len(stages) != 4 {
		t.Fatalf("got %d stages, want 4", len(stages))
	}

	wantNames := []string{"New", "Qualified", pipeline.StageClosedWon, pipeline.StageClosedLost}
	for i, want := range wantNames {
		if stages[i].Name != want {
			t.Errorf("stage %d = %q, want %q", i, stages[i].Name, want)
		}
	}
	if !stages[2].IsFinal || !stages[3].IsFinal {
		t.Error("last two stages must be final")
	}
	if stages[0].IsFinal || stages[1].IsFinal {
		t.Error("user stages must not be final")
	}
	if !stages[0].IsDefault {
		t.Error("first user stage must be default")
	}
}

func TestAddStageDefaultsBeforeTerminalPair(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := pipeline.NewRepository()
	p := createPipeline(t, db, "New")

	s := pipeline.PipelineStage{Name: "Offer"}
	if err := repo.AddStage(db, p.ID, &s, nil); err != nil {
		t.Fatalf("add stage: %v", err)
	}

	got := assertContiguousOrders(t, db, p.ID)
	wantNames := []string{"New", "Offer", pipeline.StageClosedWon, pipeline.StageClosedLost}
	for i, want := range wantNames {
		if got[i].Name != want {
			t.Errorf("stage %d = %q, want %q", i, got[i].Name, want)
		}
	}
}

func TestAddStageOrderClampedBeforeTerminalPair(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := pipeline.NewRepository()
	p := createPipeline(t, db, "New", "Qualified")

	order := 99
	s := pipeline.PipelineStage{Name: "Offer"}
	if err := repo.AddStage(db, p.ID, &s, &order); err != nil {
		t.Fatalf("add stage: %v", err)
	}

	got := assertContiguousOrders(t, db, p.ID)
	wantNames := []string{"New", "Qualified", "Offer", pipeline.StageClosedWon, pipeline.StageClosedLost}
	for i, want := range wantNames {
		if got[i].Name != want {
			t.Errorf("stage %d = %q, want %q", i, got[i].Name, want)
		}
	}
}

func TestAddStageInsertsAndShifts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := pipeline.NewRepository()
	p := createPipeline(t, db, "New", "Qualified")

	order := 1
	s := pipeline.PipelineStage{Name: "Contacted"}
	if err := repo.AddStage(db, p.ID, &s, &order); err != nil {
		t.Fatalf("add stage: %v", err)
	}

	stages := assertContiguousOrders(t, db, p.ID)
	wantNames := []string{"New", "Contacted", "Qualified", pipeline.StageClosedWon, pipeline.StageClosedLost}
	for i, want := range wantNames {
		if stages[i].Name != want {
			t.Errorf("stage %d = %q, want %q", i, stages[i].Name, want)
		}
	}
}

func TestReorderStageEarlierAndLater(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := pipeline.NewRepository()
	p := createPipeline(t, db, "A", "B", "C", "D")

	stages := assertContiguousOrders(t, db, p.ID)

	// move "D" (order 3) to order 1
	if err := repo.ReorderStage(db, stages[3].ID, 1); err != nil {
		t.Fatalf("reorder earlier: %v", err)
	}
	got := assertContiguousOrders(t, db, p.ID)
	wantNames := []string{"A", "D", "B", "C", pipeline.StageClosedWon, pipeline.StageClosedLost}
	for i, want := range wantNames {
		if got[i].Name != want {
			t.Fatalf("after move earlier, stage %d = %q, want %q", i, got[i].Name, want)
		}
	}

	// move "D" (now order 1) to order 3
	if err := repo.ReorderStage(db, stages[3].ID, 3); err != nil {
		t.Fatalf("reorder later: %v", err)
	}
	got = assertContiguousOrders(t, db, p.ID)
	wantNames = []string{"A", "B", "C", "D", pipeline.StageClosedWon, pipeline.StageClosedLost}
	for i, want := range wantNames {
		if got[i].Name != want {
			t.Fatalf("after move later, stage %d = %q, want %q", i, got[i].Name, want)
		}
	}
}

func TestReorderStageClampsOutOfRangeTargets(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := pipeline.NewRepository()
	p := createPipeline(t, db, "A", "B", "C")

	stages := assertContiguousOrders(t, db, p.ID)

	if err := repo.ReorderStage(db, stages[0].ID, 99); err != nil {
		t.Fatalf("reorder past end: %v", err)
	}
	got := assertContiguousOrders(t, db, p.ID)
	if got[len(got)-1].Name != "A" {
		t.Errorf("last stage = %q, want %q", got[len(got)-1].Name, "A")
	}

	if err := repo.ReorderStage(db, stages[1].ID, -5); err != nil {
		t.Fatalf("reorder before start: %v", err)
	}
	got = assertContiguousOrders(t, db, p.ID)
	if got[0].Name != "B" {
		t.Errorf("first stage = %q, want %q", got[0].Name, "B")
	}
}

func TestReorderStageSameOrderIsNoOp(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := pipeline.NewRepository()
	p := createPipeline(t, db, "A", "B")

	stages := assertContiguousOrders(t, db, p.ID)
	if err := repo.ReorderStage(db, stages[1].ID, 1); err != nil {
		t.Fatalf("reorder: %v", err)
	}
	assertContiguousOrders(t, db, p.ID)
}

func TestDeleteStageShiftsDown(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := pipeline.NewRepository()
	p := createPipeline(t, db, "A", "B", "C")

	stages := assertContiguousOrders(t, db, p.ID)
	if err := repo.DeleteStage(db, stages[1].ID); err != nil {
		t.Fatalf("delete stage: %v", err)
	}

	got := assertContiguousOrders(t, db, p.ID)
	if len(got) != 4 {
		t.Fatalf("got %d stages, want 4", len(got))
	}
	wantNames := []string{"A", "C", pipeline.StageClosedWon, pipeline.StageClosedLost}
	for i, want := range wantNames {
		if got[i].Name != want {
			t.Errorf("stage %d = %q, want %q", i, got[i].Name, want)
		}
	}
}

func TestDeleteStageRejectedWhenLeadsAssigned(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := pipeline.NewRepository()
	p := createPipeline(t, db, "A", "B")

	stages := assertContiguousOrders(t, db, p.ID)
	l := lead.Lead{CampaignID: 1, CurrentStageID: stages[0].ID, FirstName: "Ana", LastName: "Reed"}
	if err := db.Create(&l).Error; err != nil {
		t.Fatalf("create lead: %v", err)
	}

	err := repo.DeleteStage(db, stages[0].ID)
	if !errors.Is(err, pipeline.ErrStageHasLeads) {
		t.Fatalf("got err %v, want ErrStageHasLeads", err)
	}
	assertContiguousOrders(t, db, p.ID)
}

func TestDeleteStageRejectedForTerminalStages(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := pipeline.NewRepository()
	p := createPipeline(t, db, "A")

	stages := assertContiguousOrders(t, db, p.ID)
	for _, s := range stages[1:] {
		if err := repo.DeleteStage(db, s.ID); !errors.Is(err, pipeline.ErrStageIsFinal) {
			t.Fatalf("delete %q: got err %v, want ErrStageIsFinal", s.Name, err)
		}
	}
	assertContiguousOrders(t, db, p.ID)
}

func TestStageSequenceKeepsOrdersDense(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := pipeline.NewRepository()
	p := createPipeline(t, db, "A", "B", "C")

	order := 0
	s := pipeline.PipelineStage{Name: "Z"}
	if err := repo.AddStage(db, p.ID, &s, &order); err != nil {
		t.Fatalf("add: %v", err)
	}
	assertContiguousOrders(t, db, p.ID)

	if err := repo.ReorderStage(db, s.ID, 2); err != nil {
		t.Fatalf("reorder: %v", err)
	}
	assertContiguousOrders(t, db, p.ID)

	if err := repo.DeleteStage(db, s.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	assertContiguousOrders(t, db, p.ID)
}
