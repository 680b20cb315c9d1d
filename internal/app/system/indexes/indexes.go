// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	sets := []struct {
		name   string
		ensure func(context.Context, *mongo.Database) error
	}{
		{"zones", ensureZones},
		{"districts", ensureDistricts},
		{"organizations", ensureOrganizations},
		{"users", ensureUsers},
		{"user_org_links", ensureUserOrgLinks},
		{"import_events", ensureImportEvents},
	}
	for _, s := range sets {
		if err := s.ensure(ctx, db); err != nil {
			problems = append(problems, s.name+": "+err.Error())
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func isUnique(b *bool) bool { return b != nil && *b }

// Best-effort duplicate-detector (works cross-vendors)
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 { // E11000 duplicate key error index
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

// Mongo/DocDB sometimes returns IndexOptionsConflict when an index with the
// same keys already exists under a different name (or options differ).
func isOptionsConflictErr(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "IndexOptionsConflict")
}

// duplicateFinder suggests a shell query for locating the rows that block a
// unique index.
var duplicateFinder = map[string]string{
	"organizations": `db.organizations.aggregate([{ $group: { _id: "$code", n: { $sum: 1 } } }, { $match: { n: { $gt: 1 } } }])`,
	"users":         `db.users.aggregate([{ $group: { _id: "$email", n: { $sum: 1 } } }, { $match: { n: { $gt: 1 } } }])`,
}

func listExisting(ctx context.Context, coll *mongo.Collection) (map[string]existingIndex, error) {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	existing := map[string]existingIndex{} // sig -> index
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		existing[keySig(idx.Key)] = idx
	}
	return existing, cur.Err()
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string

	for _, m := range models {
		var desiredName string
		var desiredUnique *bool
		if m.Options != nil {
			if m.Options.Name != nil {
				desiredName = *m.Options.Name
			}
			desiredUnique = m.Options.Unique
		}
		sig := keySig(m.Keys.(bson.D))
		start := time.Now()

		fields := []zap.Field{
			zap.String("collection", coll.Name()),
			zap.String("name", desiredName),
			zap.String("keys", sig),
			zap.Bool("unique", isUnique(desiredUnique)),
		}
		zap.L().Info("ensuring index", fields...)

		// A failed listing (e.g. the collection does not exist yet) just means
		// there is nothing to reconcile against.
		existing, _ := listExisting(ctx, coll)

		err := reconcileIndex(ctx, coll, m, existing[sig], existing[sig].Name != "", desiredName, desiredUnique)
		if err != nil && isOptionsConflictErr(err) {
			// Lost a race with another creator or the listing missed it: look again.
			if again, lerr := listExisting(ctx, coll); lerr == nil {
				ex, ok := again[sig]
				err = reconcileIndex(ctx, coll, m, ex, ok, "", desiredUnique)
			}
		}
		if err != nil {
			if isDuplicateKeyErr(err) && isUnique(desiredUnique) {
				helper := ""
				if q, ok := duplicateFinder[coll.Name()]; ok {
					helper = ". Duplicates can be found with:\n" + q
				}
				err = fmt.Errorf("cannot create unique index (duplicates present)%s", helper)
			}
			zap.L().Warn("index ensure failed", append(fields,
				zap.String("took", time.Since(start).String()),
				zap.Error(err))...)
			errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), desiredName, err))
			continue
		}
		zap.L().Info("index ensured", append(fields, zap.String("took", time.Since(start).String()))...)
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// reconcileIndex makes one desired index exist. An index with the same keys
// is reused when its uniqueness matches, renamed when only the name differs
// (desiredName "" skips the rename), and otherwise dropped and recreated.
func reconcileIndex(ctx context.Context, coll *mongo.Collection, m mongo.IndexModel, ex existingIndex, found bool, desiredName string, desiredUnique *bool) error {
	if found {
		if isUnique(desiredUnique) == isUnique(ex.Unique) && (desiredName == "" || ex.Name == desiredName) {
			return nil
		}
		if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
			return fmt.Errorf("drop %s: %w", ex.Name, err)
		}
	}
	_, err := coll.Indexes().CreateOne(ctx, m)
	return err
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                              */
/* -------------------------------------------------------------------------- */

func ensureZones(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("zones"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_zones_name__id"),
		},
	})
}

func ensureDistricts(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("districts"), []mongo.IndexModel{
		// Zone filter joins organizations -> districts and matches zone_id.
		{
			Keys:    bson.D{{Key: "zone_id", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index().SetName("idx_districts_zone_name"),
		},
	})
}

func ensureOrganizations(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("organizations"), []mongo.IndexModel{
		// Imports look organizations up by code; codes are globally unique.
		{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_orgs_code"),
		},
		{
			Keys:    bson.D{{Key: "district_id", Value: 1}, {Key: "org_type", Value: 1}},
			Options: options.Index().SetName("idx_orgs_district_type"),
		},
		{
			Keys:    bson.D{{Key: "org_type", Value: 1}},
			Options: options.Index().SetName("idx_orgs_type"),
		},
	})
}

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("users"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_email"),
		},
	})
}

func ensureUserOrgLinks(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("user_org_links"), []mongo.IndexModel{
		// One link per (user, organization).
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "org_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_links_user_org"),
		},
		{
			Keys:    bson.D{{Key: "org_id", Value: 1}},
			Options: options.Index().SetName("idx_links_org"),
		},
	})
}

func ensureImportEvents(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("import_events"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_import_events_ts"),
		},
		{
			Keys:    bson.D{{Key: "actor_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_import_events_actor_ts"),
		},
	})
}
