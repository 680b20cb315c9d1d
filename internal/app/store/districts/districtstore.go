// internal/app/store/districts/districtstore.go
package districtstore

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
	return &Store{c: db.Collection("districts")}
}

func (s *Store) Create(ctx context.Context, d models.District) (models.District, error) {
	now := time.Now().UTC()
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	d.CreatedAt = now
	d.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, d); err != nil {
		return models.District{}, err
	}
	return d, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (models.District, error) {
	var d models.District
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return models.District{}, err
	}
	return d, nil
}

// ListByZone returns the districts of one zone ordered by name.
func (s *Store) ListByZone(ctx context.Context, zoneID string) ([]models.District, error) {
	cur, err := s.c.Find(ctx, bson.M{"zone_id": zoneID}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.District
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// EnsureByName returns the district called name inside zoneID, creating it
// when none exists.
func (s *Store) EnsureByName(ctx context.Context, zoneID, name string) (models.District, bool, error) {
	name = strings.TrimSpace(name)
	var d models.District
	err := s.c.FindOne(ctx, bson.M{"zone_id": zoneID, "name": name}, options.FindOne().SetSort(bson.D{{Key: "_id", Value: 1}})).Decode(&d)
	if err == nil {
		return d, false, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.District{}, false, err
	}
	d, err = s.Create(ctx, models.District{Name: name, ZoneID: zoneID})
	if err != nil {
		return models.District{}, false, err
	}
	return d, true, nil
}
