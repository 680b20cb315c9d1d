package districtstore_test

import (
	"testing"

	districtstore "github.com/dalemusser/ideatrack/internal/app/store/districts"
	"github.com/dalemusser/ideatrack/internal/domain/models"
	"github.com/dalemusser/ideatrack/internal/testutil"
)

func TestStore_ListByZone(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := districtstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	north := fixtures.CreateZone(ctx, "North")
	south := fixtures.CreateZone(ctx, "South")

	for _, d := range []models.District{
		{Name: "Pine", ZoneID: north.ID},
		{Name: "Elm", ZoneID: north.ID},
		{Name: "Oak", ZoneID: south.ID},
	} {
		if _, err := store.Create(ctx, d); err != nil {
			t.Fatalf("Create(%q) failed: %v", d.Name, err)
		}
	}

	got, err := store.ListByZone(ctx, north.ID)
	if err != nil {
		t.Fatalf("ListByZone failed: %v", err)
	}
	if len(got) != 2 || got[0].Name != "Elm" || got[1].Name != "Pine" {
		t.Errorf("ListByZone(north): got %+v", got)
	}

	byID, err := store.GetByID(ctx, got[0].ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if byID.ZoneID != north.ID {
		t.Errorf("zone id: got %q, want %q", byID.ZoneID, north.ID)
	}

	none, err := store.ListByZone(ctx, "missing")
	if err != nil {
		t.Fatalf("ListByZone(missing) failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no districts, got %d", len(none))
	}
}

func TestStore_EnsureByName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := districtstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a, created, err := store.EnsureByName(ctx, "z1", "Elm")
	if err != nil || !created {
		t.Fatalf("EnsureByName: created=%v err=%v", created, err)
	}
	b, created, err := store.EnsureByName(ctx, "z1", "Elm")
	if err != nil || created || b.ID != a.ID {
		t.Errorf("expected existing district, got %+v created=%v err=%v", b, created, err)
	}

	// Same name in another zone is a different district.
	c, created, err := store.EnsureByName(ctx, "z2", "Elm")
	if err != nil || !created || c.ID == a.ID {
		t.Errorf("expected a new district in z2, got %+v created=%v err=%v", c, created, err)
	}
}
