// internal/app/store/users/upsert.go
package userstore

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/ideatrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
)

// EnsureByEmail returns the user with u's email, creating it from u when no
// such user exists. created reports which branch ran. Names on an existing
// user are left alone.
func (s *Store) EnsureByEmail(ctx context.Context, u models.User) (user models.User, created bool, err error) {
	u.Email = normalizeEmail(u.Email)
	u.FirstName = strings.TrimSpace(u.FirstName)
	u.LastName = strings.TrimSpace(u.LastName)
	if u.Email == "" {
		return models.User{}, false, ErrEmptyEmail
	}

	existing, findErr := s.GetByEmail(ctx, u.Email)
	switch {
	case findErr == nil:
		return *existing, false, nil
	case !errors.Is(findErr, mongo.ErrNoDocuments):
		return models.User{}, false, findErr
	}

	user, err = s.Create(ctx, u)
	if errors.Is(err, ErrDuplicateEmail) {
		// Lost a race with another writer; the row exists now.
		existing, findErr = s.GetByEmail(ctx, u.Email)
		if findErr != nil {
			return models.User{}, false, findErr
		}
		return *existing, false, nil
	}
	if err != nil {
		return models.User{}, false, err
	}
	return user, true, nil
}
