package testutil

import (
	"testing"

	"github.com/estatecrm/api/internal/campaign"
	"github.com/estatecrm/api/internal/document"
	"github.com/estatecrm/api/internal/interaction"
	"github.com/estatecrm/api/internal/lead"
	"github.com/estatecrm/api/internal/meeting"
	"github.com/estatecrm/api/internal/note"
	"github.com/estatecrm/api/internal/pipeline"
	"github.com/estatecrm/api/internal/property"
	"github.com/estatecrm/api/internal/task"
	"github.com/estatecrm/api/internal/user"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens an in-memory database with the full schema migrated.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	err = db.AutoMigrate(
		&user.User{},
		&pipeline.Pipeline{},
		&pipeline.PipelineStage{},
		&campaign.Campaign{},
		&lead.Lead{},
		&interaction.Interaction{},
		&task.Task{},
		&note.Note{},
		&property.Property{},
		&property.PropertyInterest{},
		&document.Folder{},
		&document.Document{},
		&meeting.Meeting{},
		&meeting.MeetingAttendee{},
	)
	if err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}
