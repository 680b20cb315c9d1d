// Package hierarchy loads a zone → district → organization → intern tree
// from a JSON plan and lists the tree that is stored.
//
// Seeding is idempotent: zones and districts are matched by name,
// organizations by code, interns by email and links by (user, organization).
// Existing organizations are never modified, so their counters survive a
// re-seed.
package hierarchy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	districtstore "github.com/dalemusser/ideatrack/internal/app/store/districts"
	organizationstore "github.com/dalemusser/ideatrack/internal/app/store/organizations"
	orglinkstore "github.com/dalemusser/ideatrack/internal/app/store/orglinks"
	userstore "github.com/dalemusser/ideatrack/internal/app/store/users"
	zonestore "github.com/dalemusser/ideatrack/internal/app/store/zones"
	"github.com/dalemusser/ideatrack/internal/domain/models"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Plan is the seed file layout.
type Plan struct {
	Zones []ZonePlan `json:"zones" validate:"required,min=1,dive"`
}

type ZonePlan struct {
	Name      string         `json:"name" validate:"required,max=200"`
	Districts []DistrictPlan `json:"districts" validate:"dive"`
}

type DistrictPlan struct {
	Name          string    `json:"name" validate:"required,max=200"`
	Organizations []OrgPlan `json:"organizations" validate:"dive"`
}

type OrgPlan struct {
	Code    string       `json:"code" validate:"required,max=64"`
	Title   string       `json:"title" validate:"required,max=200"`
	OrgType string       `json:"org_type" validate:"required,max=64"`
	Interns []InternPlan `json:"interns" validate:"dive"`
}

type InternPlan struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name" validate:"max=100"`
	LastName  string `json:"last_name" validate:"max=100"`
}

// ErrInvalidPlan wraps every decode and validation failure.
var ErrInvalidPlan = errors.New("invalid hierarchy plan")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Decode reads and validates a plan. Unknown fields are rejected and an
// organization code may appear only once.
func Decode(r io.Reader) (Plan, error) {
	var p Plan
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return Plan{}, fmt.Errorf("%w: %v", ErrInvalidPlan, err)
	}
	if err := validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return Plan{}, fmt.Errorf("%w: %s failed %q", ErrInvalidPlan, verrs[0].Namespace(), verrs[0].Tag())
		}
		return Plan{}, fmt.Errorf("%w: %v", ErrInvalidPlan, err)
	}

	seen := make(map[string]bool)
	for _, z := range p.Zones {
		for _, d := range z.Districts {
			for _, o := range d.Organizations {
				code := strings.TrimSpace(o.Code)
				if seen[code] {
					return Plan{}, fmt.Errorf("%w: organization code %q appears more than once", ErrInvalidPlan, code)
				}
				seen[code] = true
			}
		}
	}
	return p, nil
}

// Summary counts what a seed created. Matched rows are not counted.
type Summary struct {
	Zones         int `json:"zones"`
	Districts     int `json:"districts"`
	Organizations int `json:"organizations"`
	Interns       int `json:"interns"`
	Links         int `json:"links"`
	Existing      int `json:"existing_organizations"`
}

// Seed writes p into db. Writes are not transactional; a failed seed can be
// re-run and continues where it stopped.
func Seed(ctx context.Context, db *mongo.Database, p Plan, log *zap.Logger) (Summary, error) {
	zones := zonestore.New(db)
	districts := districtstore.New(db)
	orgs := organizationstore.New(db)
	users := userstore.New(db)
	links := orglinkstore.New(db)

	var sum Summary
	for _, zp := range p.Zones {
		z, created, err := zones.EnsureByName(ctx, zp.Name)
		if err != nil {
			return sum, fmt.Errorf("zone %q: %w", zp.Name, err)
		}
		if created {
			sum.Zones++
		}

		for _, dp := range zp.Districts {
			d, created, err := districts.EnsureByName(ctx, z.ID, dp.Name)
			if err != nil {
				return sum, fmt.Errorf("district %q: %w", dp.Name, err)
			}
			if created {
				sum.Districts++
			}

			for _, op := range dp.Organizations {
				org, err := ensureOrg(ctx, orgs, d.ID, op, &sum, log)
				if err != nil {
					return sum, err
				}

				for _, ip := range op.Interns {
					u, created, err := users.EnsureByEmail(ctx, models.User{
						Email:     ip.Email,
						FirstName: ip.FirstName,
						LastName:  ip.LastName,
					})
					if err != nil {
						return sum, fmt.Errorf("intern %q: %w", ip.Email, err)
					}
					if created {
						sum.Interns++
					}

					_, err = links.Link(ctx, u.ID, org.ID)
					switch {
					case err == nil:
						sum.Links++
					case errors.Is(err, orglinkstore.ErrDuplicateLink):
					default:
						return sum, fmt.Errorf("link %q to %q: %w", ip.Email, org.Code, err)
					}
				}
			}
		}
	}

	log.Info("hierarchy seeded",
		zap.Int("zones", sum.Zones),
		zap.Int("districts", sum.Districts),
		zap.Int("organizations", sum.Organizations),
		zap.Int("existing_organizations", sum.Existing),
		zap.Int("interns", sum.Interns),
		zap.Int("links", sum.Links))
	return sum, nil
}

func ensureOrg(ctx context.Context, orgs *organizationstore.Store, districtID string, op OrgPlan, sum *Summary, log *zap.Logger) (models.Organization, error) {
	code := strings.TrimSpace(op.Code)
	org, err := orgs.GetByCode(ctx, code)
	if err == nil {
		sum.Existing++
		if org.DistrictID != districtID {
			log.Warn("organization already exists in another district; leaving it there",
				zap.String("code", code),
				zap.String("district_id", org.DistrictID))
		}
		return org, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.Organization{}, fmt.Errorf("organization %q: %w", code, err)
	}

	org, err = orgs.Create(ctx, models.Organization{
		Code:       code,
		Title:      strings.TrimSpace(op.Title),
		OrgType:    strings.TrimSpace(op.OrgType),
		DistrictID: districtID,
	})
	if err != nil {
		return models.Organization{}, fmt.Errorf("organization %q: %w", code, err)
	}
	sum.Organizations++
	return org, nil
}

// ZoneNode is one zone with its districts.
type ZoneNode struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Districts []DistrictNode `json:"districts"`
}

// DistrictNode is one district with the size of what sits below it.
type DistrictNode struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Organizations int    `json:"organizations"`
	Interns       int64  `json:"interns"`
}

// Tree lists every zone and district by name with organization and
// intern link counts per district.
func Tree(ctx context.Context, db *mongo.Database) ([]ZoneNode, error) {
	zones := zonestore.New(db)
	districts := districtstore.New(db)
	orgs := organizationstore.New(db)
	links := orglinkstore.New(db)

	zs, err := zones.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]ZoneNode, 0, len(zs))
	for _, z := range zs {
		node := ZoneNode{ID: z.ID, Name: z.Name, Districts: []DistrictNode{}}

		ds, err := districts.ListByZone(ctx, z.ID)
		if err != nil {
			return nil, err
		}
		for _, d := range ds {
			members, err := orgs.Find(ctx, bson.M{"district_id": d.ID},
				options.Find().SetProjection(bson.M{"_id": 1}))
			if err != nil {
				return nil, err
			}
			dn := DistrictNode{ID: d.ID, Name: d.Name, Organizations: len(members)}
			for _, o := range members {
				n, err := links.CountByOrg(ctx, o.ID)
				if err != nil {
					return nil, err
				}
				dn.Interns += n
			}
			node.Districts = append(node.Districts, dn)
		}
		out = append(out, node)
	}
	return out, nil
}
