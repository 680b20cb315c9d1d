// internal/app/store/orglinks/orglinkstore.go
package orglinkstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/ideatrack/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

var ErrDuplicateLink = errors.New("user is already linked to this organization")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("user_org_links")}
}

// Link assigns a user to an organization.
func (s *Store) Link(ctx context.Context, userID, orgID string) (models.UserOrgLink, error) {
	l := models.UserOrgLink{
		ID:        uuid.NewString(),
		UserID:    userID,
		OrgID:     orgID,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, l); err != nil {
		if wafflemongo.IsDup(err) {
			return models.UserOrgLink{}, ErrDuplicateLink
		}
		return models.UserOrgLink{}, err
	}
	return l, nil
}

// CountByOrg returns how many users are linked to one organization.
func (s *Store) CountByOrg(ctx context.Context, orgID string) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"org_id": orgID})
}
