package property_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/estatecrm/api/internal/auth"
	"github.com/estatecrm/api/internal/campaign"
	"github.com/estatecrm/api/internal/lead"
	"github.com/estatecrm/api/internal/property"
	"github.com/estatecrm/api/internal/testutil"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

func newTestRouter(t *testing.T) (*mux.Router, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	h := property.NewHandler(db)
	r := mux.NewRouter()
	r.HandleFunc("/leads/{leadId}/property-interests", h.AddInterests).Methods("POST")
	r.HandleFunc("/leads/{leadId}/property-interests", h.ListInterests).Methods("GET")
	return r, db
}

func seedLeadWithProperty(t *testing.T, db *gorm.DB, assignedTo uint) {
	t.Helper()
	c := campaign.Campaign{Name: "Spring Buyers", Status: campaign.StatusActive, PipelineID: 1, AssignedToIDs: []uint{assignedTo}}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("create campaign: %v", err)
	}
	l := lead.Lead{CampaignID: c.ID, CurrentStageID: 1, FirstName: "Ana", LastName: "Reed"}
	if err := db.Create(&l).Error; err != nil {
		t.Fatalf("create lead: %v", err)
	}
	p := property.Property{Address: "12 Oak St", Status: property.StatusAvailable}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("create property: %v", err)
	}
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

func TestAddInterestsRequiresCampaignAccess(t *testing.T) {
	r, db := newTestRouter(t)
	seedLeadWithProperty(t, db, 5)

	body := map[string]interface{}{
		"interests": []map[string]interface{}{{"propertyId": 1, "level": property.LevelHigh}},
	}

	outsider := auth.Actor{ID: 9, Role: auth.RoleEmployee}
	rec := doJSON(t, r, outsider, "POST", "/leads/1/property-interests", body)
	if rec.Code != http.StatusForbidden {
		t.Errorf("outsider status = %d, want 403", rec.Code)
	}

	assigned := auth.Actor{ID: 5, Role: auth.RoleEmployee}
	rec = doJSON(t, r, assigned, "POST", "/leads/1/property-interests", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("assigned status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
}

func TestAddInterestsUnknownLeadIs404(t *testing.T) {
	r, _ := newTestRouter(t)

	manager := auth.Actor{ID: 1, Role: auth.RoleManager}
	body := map[string]interface{}{
		"interests": []map[string]interface{}{{"propertyId": 1}},
	}
	rec := doJSON(t, r, manager, "POST", "/leads/999/property-interests", body)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	rec = doJSON(t, r, manager, "GET", "/leads/999/property-interests", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("list status = %d, want 404", rec.Code)
	}
}
