// internal/app/store/organizations/organizationstore.go
package organizationstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/ideatrack/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrDuplicateCode   = errors.New("an organization with this code already exists")
	ErrNegativeMetrics = errors.New("metric increments must not be negative")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("organizations")}
}

// Create inserts an organization. Counters start at whatever the caller set
// (normally zero).
func (s *Store) Create(ctx context.Context, org models.Organization) (models.Organization, error) {
	now := time.Now().UTC()
	if org.ID == "" {
		org.ID = uuid.NewString()
	}
	org.Code = strings.TrimSpace(org.Code)
	org.CreatedAt = now
	org.UpdatedAt = now
	_, err := s.c.InsertOne(ctx, org)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.Organization{}, ErrDuplicateCode
		}
		return models.Organization{}, err
	}
	return org, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (models.Organization, error) {
	var org models.Organization
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&org)
	if err != nil {
		return models.Organization{}, err
	}
	return org, nil
}

// GetByCode returns mongo.ErrNoDocuments when no organization has the code.
func (s *Store) GetByCode(ctx context.Context, code string) (models.Organization, error) {
	var org models.Organization
	err := s.c.FindOne(ctx, bson.M{"code": code}).Decode(&org)
	if err != nil {
		return models.Organization{}, err
	}
	return org, nil
}

// IDsByCode resolves many codes in one round trip. Codes with no organization
// are absent from the returned map.
func (s *Store) IDsByCode(ctx context.Context, codes []string) (map[string]string, error) {
	out := make(map[string]string, len(codes))
	if len(codes) == 0 {
		return out, nil
	}
	opts := options.Find().SetProjection(bson.M{"_id": 1, "code": 1})
	cur, err := s.c.Find(ctx, bson.M{"code": bson.M{"$in": codes}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var row struct {
			ID   string `bson:"_id"`
			Code string `bson:"code"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		out[row.Code] = row.ID
	}
	return out, cur.Err()
}

// AddMetrics increments the four counters of one organization by delta.
// $inc keeps concurrent imports from losing each other's increments.
// Returns mongo.ErrNoDocuments when the id does not exist.
func (s *Store) AddMetrics(ctx context.Context, id string, delta models.Metrics) error {
	if delta.PreRegistration < 0 || delta.VOSCompleted < 0 || delta.GroupFormation < 0 || delta.IdeaSubmissions < 0 {
		return ErrNegativeMetrics
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{
		"$inc": bson.M{
			models.MetricPreRegistration: delta.PreRegistration,
			models.MetricVOSCompleted:    delta.VOSCompleted,
			models.MetricGroupFormation:  delta.GroupFormation,
			models.MetricIdeaSubmissions: delta.IdeaSubmissions,
		},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Find returns organizations matching the given filter with optional find options.
// The caller is responsible for building the filter and options (pagination, sorting, projection).
func (s *Store) Find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Organization, error) {
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var orgs []models.Organization
	if err := cur.All(ctx, &orgs); err != nil {
		return nil, err
	}
	return orgs, nil
}
