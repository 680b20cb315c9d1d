package organizationstore_test

import (
	"errors"
	"testing"

	organizationstore "github.com/dalemusser/ideatrack/internal/app/store/organizations"
	"github.com/dalemusser/ideatrack/internal/app/system/indexes"
	"github.com/dalemusser/ideatrack/internal/domain/models"
	"github.com/dalemusser/ideatrack/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := organizationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Organization{
		Code:       "  SCH-001 ",
		Title:      "North High",
		OrgType:    "school",
		DistrictID: "d1",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Verify ID was assigned
	if created.ID == "" {
		t.Error("expected ID to be assigned")
	}
	if created.Code != "SCH-001" {
		t.Errorf("expected trimmed code, got %q", created.Code)
	}

	// Verify timestamps
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}

	// Counters start at zero
	if created.Metrics != (models.Metrics{}) {
		t.Errorf("expected zero metrics, got %+v", created.Metrics)
	}
}

func TestStore_Create_DuplicateCode(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := organizationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	if _, err := store.Create(ctx, models.Organization{Code: "DUP", Title: "First"}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	_, err := store.Create(ctx, models.Organization{Code: "DUP", Title: "Second"})
	if !errors.Is(err, organizationstore.ErrDuplicateCode) {
		t.Errorf("expected ErrDuplicateCode, got %v", err)
	}
}

func TestStore_GetByID_And_GetByCode(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := organizationstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fixtures.CreateOrganization(ctx, "C-7", "Seven", "club", "d1")

	byID, err := store.GetByID(ctx, org.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if byID.Code != "C-7" || byID.Title != "Seven" {
		t.Errorf("GetByID: got %+v", byID)
	}

	byCode, err := store.GetByCode(ctx, "C-7")
	if err != nil {
		t.Fatalf("GetByCode failed: %v", err)
	}
	if byCode.ID != org.ID {
		t.Errorf("GetByCode id: got %q, want %q", byCode.ID, org.ID)
	}

	if _, err := store.GetByCode(ctx, "missing"); err != mongo.ErrNoDocuments {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
	if _, err := store.GetByID(ctx, "missing"); err != mongo.ErrNoDocuments {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
}

func TestStore_IDsByCode(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := organizationstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := fixtures.CreateOrganization(ctx, "A", "A", "school", "d1")
	b := fixtures.CreateOrganization(ctx, "B", "B", "school", "d1")
	fixtures.CreateOrganization(ctx, "C", "C", "school", "d1")

	got, err := store.IDsByCode(ctx, []string{"A", "B", "Z"})
	if err != nil {
		t.Fatalf("IDsByCode failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 resolved codes, got %v", got)
	}
	if got["A"] != a.ID || got["B"] != b.ID {
		t.Errorf("unexpected mapping: %v", got)
	}
	if _, ok := got["Z"]; ok {
		t.Error("unknown code must be absent")
	}

	empty, err := store.IDsByCode(ctx, nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("IDsByCode(nil): got %v, %v", empty, err)
	}
}

func TestStore_AddMetrics(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := organizationstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fixtures.CreateOrganizationWithMetrics(ctx, "M", "Metered", "school", "d1",
		models.Metrics{PreRegistration: 1, VOSCompleted: 2, GroupFormation: 3, IdeaSubmissions: 4})

	delta := models.Metrics{PreRegistration: 10, IdeaSubmissions: 1}
	if err := store.AddMetrics(ctx, org.ID, delta); err != nil {
		t.Fatalf("AddMetrics failed: %v", err)
	}
	if err := store.AddMetrics(ctx, org.ID, delta); err != nil {
		t.Fatalf("second AddMetrics failed: %v", err)
	}

	got := fixtures.Organization(ctx, org.ID)
	want := models.Metrics{PreRegistration: 21, VOSCompleted: 2, GroupFormation: 3, IdeaSubmissions: 6}
	if got.Metrics != want {
		t.Errorf("metrics: got %+v, want %+v", got.Metrics, want)
	}
}

func TestStore_AddMetrics_Rejections(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := organizationstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fixtures.CreateOrganization(ctx, "N", "Neg", "school", "d1")

	if err := store.AddMetrics(ctx, org.ID, models.Metrics{VOSCompleted: -1}); !errors.Is(err, organizationstore.ErrNegativeMetrics) {
		t.Errorf("expected ErrNegativeMetrics, got %v", err)
	}
	if err := store.AddMetrics(ctx, "missing", models.Metrics{VOSCompleted: 1}); err != mongo.ErrNoDocuments {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
	if got := fixtures.Organization(ctx, org.ID).Metrics; got != (models.Metrics{}) {
		t.Errorf("rejected increment changed counters: %+v", got)
	}
}

func TestStore_Find(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := organizationstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateOrganization(ctx, "S1", "S1", "school", "d1")
	fixtures.CreateOrganization(ctx, "S2", "S2", "school", "d2")
	fixtures.CreateOrganization(ctx, "K1", "K1", "club", "d1")

	schools, err := store.Find(ctx, bson.M{"org_type": "school"})
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if len(schools) != 2 {
		t.Errorf("expected 2 schools, got %d", len(schools))
	}

	inD1, err := store.Find(ctx, bson.M{"district_id": "d1"})
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if len(inD1) != 2 {
		t.Errorf("expected 2 in d1, got %d", len(inD1))
	}
}
