// internal/app/store/zones/zonestore.go
package zonestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/ideatrack/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("zones")}
}

func (s *Store) Create(ctx context.Context, z models.Zone) (models.Zone, error) {
	now := time.Now().UTC()
	if z.ID == "" {
		z.ID = uuid.NewString()
	}
	z.CreatedAt = now
	z.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, z); err != nil {
		return models.Zone{}, err
	}
	return z, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (models.Zone, error) {
	var z models.Zone
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&z); err != nil {
		return models.Zone{}, err
	}
	return z, nil
}

// List returns every zone ordered by name.
func (s *Store) List(ctx context.Context) ([]models.Zone, error) {
	cur, err := s.c.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Zone
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// EnsureByName returns the zone called name, creating it when none exists.
// The lookup is exact after trimming.
func (s *Store) EnsureByName(ctx context.Context, name string) (models.Zone, bool, error) {
	name = strings.TrimSpace(name)
	var z models.Zone
	err := s.c.FindOne(ctx, bson.M{"name": name}, options.FindOne().SetSort(bson.D{{Key: "_id", Value: 1}})).Decode(&z)
	if err == nil {
		return z, false, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.Zone{}, false, err
	}
	z, err = s.Create(ctx, models.Zone{Name: name})
	if err != nil {
		return models.Zone{}, false, err
	}
	return z, true, nil
}
