package campaign_test

import (
	"testing"

	"github.com/estatecrm/api/internal/auth"
	"github.com/estatecrm/api/internal/campaign"
	"github.com/estatecrm/api/internal/testutil"
)

func TestListForActorFiltersByAssignment(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := campaign.NewRepository()

	a := campaign.Campaign{Name: "A", Status: campaign.StatusActive, PipelineID: 1, AssignedToIDs: []uint{5}}
	b := campaign.Campaign{Name: "B", Status: campaign.StatusActive, PipelineID: 1, AssignedToIDs: []uint{6}}
	for _, c := range []*campaign.Campaign{&a, &b} {
		if err := repo.Create(db, c); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	all, err := repo.ListForActor(db, auth.Actor{ID: 99, Role: auth.RoleManager})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("manager sees %d campaigns, want 2", len(all))
	}

	mine, err := repo.ListForActor(db, auth.Actor{ID: 5, Role: auth.RoleEmployee})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(mine) != 1 || mine[0].Name != "A" {
		t.Errorf("employee sees %v, want only campaign A", mine)
	}
}

func TestCanAccess(t *testing.T) {
	c := &campaign.Campaign{AssignedToIDs: []uint{5}}

	cases := []struct {
		name  string
		actor auth.Actor
		want  bool
	}{
		{"admin", auth.Actor{ID: 1, Role: auth.RoleAdmin}, true},
		{"manager", auth.Actor{ID: 2, Role: auth.RoleManager}, true},
		{"assigned employee", auth.Actor{ID: 5, Role: auth.RoleEmployee}, true},
		{"other employee", auth.Actor{ID: 6, Role: auth.RoleEmployee}, false},
	}
	for _, tc := range cases {
		if got := campaign.CanAccess(c, tc.actor); got != tc.want {
			t.Errorf("%s: CanAccess = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestUpdateNeverChangesPipeline(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := campaign.NewRepository()

	c := campaign.Campaign{Name: "A", Status: campaign.StatusDraft, PipelineID: 3}
	if err := repo.Create(db, &c); err != nil {
		t.Fatalf("create: %v", err)
	}

	updated := campaign.Campaign{Name: "A2", Status: campaign.StatusActive, PipelineID: 9}
	if err := repo.Update(db, c.ID, &updated); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := repo.FindByID(db, c.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.PipelineID != 3 {
		t.Errorf("pipelineId = %d, want 3 (immutable)", got.PipelineID)
	}
	if got.Name != "A2" || got.Status != campaign.StatusActive {
		t.Errorf("mutable fields not updated: %+v", got)
	}
}
