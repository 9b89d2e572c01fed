package note_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/estatecrm/api/internal/auth"
	"github.com/estatecrm/api/internal/campaign"
	"github.com/estatecrm/api/internal/lead"
	"github.com/estatecrm/api/internal/note"
	"github.com/estatecrm/api/internal/testutil"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

func newTestRouter(t *testing.T) (*mux.Router, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	h := note.NewHandler(db)
	r := mux.NewRouter()
	r.HandleFunc("/leads/{leadId}/notes", h.Create).Methods("POST")
	r.HandleFunc("/leads/{leadId}/notes", h.ListByLead).Methods("GET")
	return r, db
}

func seedLead(t *testing.T, db *gorm.DB, assignedTo uint) *lead.Lead {
	t.Helper()
	c := campaign.Campaign{Name: "Spring Buyers", Status: campaign.StatusActive, PipelineID: 1, AssignedToIDs: []uint{assignedTo}}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("create campaign: %v", err)
	}
	l := lead.Lead{CampaignID: c.ID, CurrentStageID: 1, FirstName: "Ana", LastName: "Reed"}
	if err := db.Create(&l).Error; err != nil {
		t.Fatalf("create lead: %v", err)
	}
	return &l
}

func doJSON(t *testing.T, r *mux.Router, actor auth.Actor, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req = auth.WithActor(req, actor)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestNotesRequireCampaignAccess(t *testing.T) {
	r, db := newTestRouter(t)
	seedLead(t, db, 5)

	assigned := auth.Actor{ID: 5, Role: auth.RoleEmployee}
	outsider := auth.Actor{ID: 9, Role: auth.RoleEmployee}

	rec := doJSON(t, r, outsider, "POST", "/leads/1/notes", map[string]string{"text": "call back"})
	if rec.Code != http.StatusForbidden {
		t.Errorf("outsider create status = %d, want 403", rec.Code)
	}
	rec = doJSON(t, r, outsider, "GET", "/leads/1/notes", nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("outsider list status = %d, want 403", rec.Code)
	}

	rec = doJSON(t, r, assigned, "POST", "/leads/1/notes", map[string]string{"text": "call back"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("assigned create status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, r, assigned, "GET", "/leads/1/notes", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("assigned list status = %d, want 200", rec.Code)
	}
	var notes []note.Note
	if err := json.NewDecoder(rec.Body).Decode(&notes); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(notes) != 1 {
		t.Errorf("got %d notes, want 1", len(notes))
	}
}

func TestNotesUnknownLeadIs404(t *testing.T) {
	r, _ := newTestRouter(t)

	manager := auth.Actor{ID: 1, Role: auth.RoleManager}
	rec := doJSON(t, r, manager, "POST", "/leads/999/notes", map[string]string{"text": "hi"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("create status = %d, want 404", rec.Code)
	}
	rec = doJSON(t, r, manager, "GET", "/leads/999/notes", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("list status = %d, want 404", rec.Code)
	}
}
