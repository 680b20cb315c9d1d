package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/ideatrack/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating hierarchy test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

func (f *Fixtures) insert(ctx context.Context, coll string, doc any) {
	f.t.Helper()
	if _, err := f.db.Collection(coll).InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("failed to insert into %s: %v", coll, err)
	}
}

// CreateZone creates a zone with the given name.
func (f *Fixtures) CreateZone(ctx context.Context, name string) models.Zone {
	f.t.Helper()

	now := time.Now().UTC()
	z := models.Zone{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "zones", z)
	return z
}

// CreateDistrict creates a district inside zoneID.
func (f *Fixtures) CreateDistrict(ctx context.Context, name, zoneID string) models.District {
	f.t.Helper()

	now := time.Now().UTC()
	d := models.District{
		ID:        uuid.NewString(),
		Name:      name,
		ZoneID:    zoneID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "districts", d)
	return d
}

// CreateOrganization creates an organization in districtID with zero counters.
func (f *Fixtures) CreateOrganization(ctx context.Context, code, title, orgType, districtID string) models.Organization {
	f.t.Helper()
	return f.CreateOrganizationWithMetrics(ctx, code, title, orgType, districtID, models.Metrics{})
}

// CreateOrganizationWithMetrics creates an organization with starting counters.
func (f *Fixtures) CreateOrganizationWithMetrics(ctx context.Context, code, title, orgType, districtID string, m models.Metrics) models.Organization {
	f.t.Helper()

	now := time.Now().UTC()
	org := models.Organization{
		ID:         uuid.NewString(),
		Code:       code,
		Title:      title,
		OrgType:    orgType,
		DistrictID: districtID,
		Metrics:    m,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	f.insert(ctx, "organizations", org)
	return org
}

// CreateUser creates a user with the given names and email.
func (f *Fixtures) CreateUser(ctx context.Context, firstName, lastName, email string) models.User {
	f.t.Helper()

	u := models.User{
		ID:        uuid.NewString(),
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		CreatedAt: time.Now().UTC(),
	}
	f.insert(ctx, "users", u)
	return u
}

// LinkIntern links a user to an organization.
func (f *Fixtures) LinkIntern(ctx context.Context, userID, orgID string) models.UserOrgLink {
	f.t.Helper()

	l := models.UserOrgLink{
		ID:        uuid.NewString(),
		UserID:    userID,
		OrgID:     orgID,
		CreatedAt: time.Now().UTC(),
	}
	f.insert(ctx, "user_org_links", l)
	return l
}

// Organization reads an organization back by id.
func (f *Fixtures) Organization(ctx context.Context, id string) models.Organization {
	f.t.Helper()

	var org models.Organization
	if err := f.db.Collection("organizations").FindOne(ctx, bson.M{"_id": id}).Decode(&org); err != nil {
		f.t.Fatalf("failed to load organization %s: %v", id, err)
	}
	return org
}
