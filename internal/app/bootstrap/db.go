// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/ideatrack/internal/app/store/audit"
	"github.com/dalemusser/ideatrack/internal/app/system/indexes"
	"github.com/dalemusser/ideatrack/internal/app/system/ratelimit"
	"github.com/dalemusser/ideatrack/internal/app/system/timeouts"
	"github.com/dalemusser/ideatrack/internal/app/system/validators"
	"github.com/dalemusser/ideatrack/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB connects to MongoDB using the app config.
// The import history pruner is built here and started in Startup. Both it and
// the import limiter are stopped in Shutdown.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	deps, err := ConnectMongo(ctx, appCfg, logger)
	if err != nil {
		return DBDeps{}, err
	}
	if appCfg.ImportHistoryRetention > 0 {
		deps.HistoryPruner = workers.NewHistoryPruner(audit.New(deps.IdeaTrackMongoDatabase), logger, time.Hour, appCfg.ImportHistoryRetention)
	}
	if appCfg.ImportRateLimit > 0 {
		deps.ImportLimiter = ratelimit.New(appCfg.ImportRateLimit, time.Minute)
	}
	return deps, nil
}

// ConnectMongo dials MongoDB, pings the primary and returns the client and
// database handles. The admin tool uses it directly.
func ConnectMongo(ctx context.Context, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetAppName("ideatrack")
	if appCfg.MongoMaxPoolSize > 0 {
		opts.SetMaxPoolSize(appCfg.MongoMaxPoolSize)
	}
	if appCfg.MongoMinPoolSize > 0 {
		opts.SetMinPoolSize(appCfg.MongoMinPoolSize)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}

	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase),
		zap.Uint64("max_pool", appCfg.MongoMaxPoolSize),
		zap.Uint64("min_pool", appCfg.MongoMinPoolSize))

	return DBDeps{
		IdeaTrackMongoClient:   client,
		IdeaTrackMongoDatabase: client.Database(appCfg.MongoDatabase),
	}, nil
}

// EnsureSchema creates the collections with their JSON-Schema validators and
// then reconciles the indexes every query relies on, including the unique
// organization code index imports depend on.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := validators.EnsureAll(ctx, deps.IdeaTrackMongoDatabase); err != nil {
		logger.Error("collection validator setup failed", zap.Error(err))
		return err
	}
	if err := indexes.EnsureAll(ctx, deps.IdeaTrackMongoDatabase); err != nil {
		logger.Error("index setup failed", zap.Error(err))
		return err
	}
	return nil
}
