package task_test

import (
	"testing"
	"time"

	"github.com/estatecrm/api/internal/task"
	"github.com/estatecrm/api/internal/testutil"
	"gorm.io/gorm"
)

func openFollowUps(t *testing.T, db *gorm.DB, leadID uint) []task.Task {
	t.Helper()
	var tasks []task.Task
	err := db.Where("lead_id = ? AND type = ? AND is_completed = ?", leadID, task.TypeFollowUp, false).
		Find(&tasks).Error
	if err != nil {
		t.Fatalf("list follow-ups: %v", err)
	}
	return tasks
}

func TestSyncFollowUpCreatesOnce(t *testing.T) {
	db := testutil.SetupTestDB(t)
	due := time.Now().Add(48 * time.Hour)

	if err := task.SyncFollowUp(db, 7, 1, "Ana Reed", &due); err != nil {
		t.Fatalf("sync: %v", err)
	}
	tasks := openFollowUps(t, db, 7)
	if len(tasks) != 1 {
		t.Fatalf("got %d open follow-ups, want 1", len(tasks))
	}

	// second sync moves the same task instead of duplicating it
	later := due.Add(24 * time.Hour)
	if err := task.SyncFollowUp(db, 7, 1, "Ana Reed", &later); err != nil {
		t.Fatalf("resync: %v", err)
	}
	tasks = openFollowUps(t, db, 7)
	if len(tasks) != 1 {
		t.Fatalf("got %d open follow-ups after resync, want 1", len(tasks))
	}
	if tasks[0].DueDate.Unix() != later.Unix() {
		t.Errorf("dueDate = %v, want %v", tasks[0].DueDate, later)
	}
}

func TestSyncFollowUpNilDateIsNoOp(t *testing.T) {
	db := testutil.SetupTestDB(t)
	if err := task.SyncFollowUp(db, 7, 1, "Ana Reed", nil); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if tasks := openFollowUps(t, db, 7); len(tasks) != 0 {
		t.Fatalf("got %d tasks, want none", len(tasks))
	}
}

func TestSyncFollowUpIgnoresCompletedTasks(t *testing.T) {
	db := testutil.SetupTestDB(t)
	due := time.Now().Add(24 * time.Hour)

	if err := task.SyncFollowUp(db, 7, 1, "Ana Reed", &due); err != nil {
		t.Fatalf("sync: %v", err)
	}
	tasks := openFollowUps(t, db, 7)
	tasks[0].IsCompleted = true
	if err := db.Save(&tasks[0]).Error; err != nil {
		t.Fatalf("complete: %v", err)
	}

	// a completed follow-up stays; a fresh open one is created
	if err := task.SyncFollowUp(db, 7, 1, "Ana Reed", &due); err != nil {
		t.Fatalf("resync: %v", err)
	}
	if open := openFollowUps(t, db, 7); len(open) != 1 {
		t.Fatalf("got %d open follow-ups, want 1", len(open))
	}
	var total int64
	db.Model(&task.Task{}).Where("lead_id = ?", 7).Count(&total)
	if total != 2 {
		t.Errorf("total tasks = %d, want 2", total)
	}
}
