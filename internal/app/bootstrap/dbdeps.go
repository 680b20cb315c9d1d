// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/ideatrack/internal/app/system/ratelimit"
	"github.com/dalemusser/ideatrack/internal/app/system/workers"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	IdeaTrackMongoClient   *mongo.Client
	IdeaTrackMongoDatabase *mongo.Database

	// HistoryPruner trims import_events; nil when retention is disabled.
	HistoryPruner *workers.HistoryPruner
	// ImportLimiter throttles uploads per user; nil when import_rate_limit is 0.
	ImportLimiter *ratelimit.Limiter
}
