// internal/app/store/audit/store.go
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection holds one document per import attempt.
const Collection = "import_events"

// Sources of an import.
const (
	SourceAPI = "api"
	SourceCLI = "cli"
)

// Event records one import attempt, successful or not.
type Event struct {
	ID        string    `bson:"_id" json:"id"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
	Source    string    `bson:"source" json:"source"`

	// Who
	ActorID    string `bson:"actor_id,omitempty" json:"actor_id,omitempty"`
	ActorEmail string `bson:"actor_email,omitempty" json:"actor_email,omitempty"`
	IP         string `bson:"ip,omitempty" json:"ip,omitempty"`

	// What
	Filename string `bson:"filename" json:"filename"`
	Mode     string `bson:"mode" json:"mode"`
	Rows     int    `bson:"rows" json:"rows"`

	// Outcome
	Success       bool   `bson:"success" json:"success"`
	Applied       int    `bson:"applied" json:"applied"`
	Dropped       int    `bson:"dropped" json:"dropped"`
	Skipped       int    `bson:"skipped" json:"skipped"`
	FailureKind   string `bson:"failure_kind,omitempty" json:"failure_kind,omitempty"`
	FailureReason string `bson:"failure_reason,omitempty" json:"failure_reason,omitempty"`
}

// QueryFilter narrows Query and CountByFilter. Zero fields add no constraint.
type QueryFilter struct {
	ActorID   string
	Success   *bool
	StartTime *time.Time
	EndTime   *time.Time
	Limit     int64
	Offset    int64
}

func (f QueryFilter) bson() bson.M {
	query := bson.M{}
	if f.ActorID != "" {
		query["actor_id"] = f.ActorID
	}
	if f.Success != nil {
		query["success"] = *f.Success
	}
	if f.StartTime != nil || f.EndTime != nil {
		timeQuery := bson.M{}
		if f.StartTime != nil {
			timeQuery["$gte"] = *f.StartTime
		}
		if f.EndTime != nil {
			timeQuery["$lte"] = *f.EndTime
		}
		query["timestamp"] = timeQuery
	}
	return query
}

// Store manages import event records.
type Store struct {
	c *mongo.Collection
}

// New creates a new audit Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// Log records an import event.
func (s *Store) Log(ctx context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, event)
	return err
}

// Query returns events matching filter, most recent first. Limit defaults to 100.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(limit).
		SetSkip(filter.Offset)

	cursor, err := s.c.Find(ctx, filter.bson(), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []Event
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// CountByFilter returns the count of events matching the filter.
func (s *Store) CountByFilter(ctx context.Context, filter QueryFilter) (int64, error) {
	return s.c.CountDocuments(ctx, filter.bson())
}

// DeleteBefore removes events older than cutoff and returns how many were removed.
func (s *Store) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"timestamp": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

