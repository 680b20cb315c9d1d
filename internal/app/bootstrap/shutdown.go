// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown cleanly tears down DB connections and other resources.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.HistoryPruner != nil {
		deps.HistoryPruner.Stop()
	}
	if deps.ImportLimiter != nil {
		deps.ImportLimiter.Stop()
		select {
		case <-deps.ImportLimiter.Done():
		case <-ctx.Done():
			logger.Warn("import limiter did not stop before shutdown deadline")
		}
	}
	if deps.IdeaTrackMongoClient != nil {
		logger.Info("disconnecting IdeaTrack MongoDB client")
		if err := deps.IdeaTrackMongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
			return err
		}
	}
	return nil
}
