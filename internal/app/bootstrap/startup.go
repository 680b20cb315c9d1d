// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/ideatrack/internal/app/features/ideacount/orgimport"
	organizationstore "github.com/dalemusser/ideatrack/internal/app/store/organizations"
	"github.com/dalemusser/ideatrack/internal/app/system/timeouts"
	"github.com/dalemusser/ideatrack/internal/app/system/txn"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{
		Query:  appCfg.QueryTimeout,
		Import: appCfg.ImportTimeout,
	})
	cur := timeouts.Current()
	logger.Info("timeouts configured",
		zap.Duration("ping", cur.Ping),
		zap.Duration("query", cur.Query),
		zap.Duration("import", cur.Import))

	opts := importOptions(appCfg)
	logger.Info("import settings",
		zap.Bool("skip_first_row", opts.SkipFirstRow),
		zap.String("mode", opts.Mode.String()),
		zap.Int("max_rows", appCfg.ImportMaxRows))

	if deps.HistoryPruner != nil {
		deps.HistoryPruner.Start()
		logger.Info("import history pruner started", zap.Duration("retention", appCfg.ImportHistoryRetention))
	}
	return nil
}

func importOptions(appCfg AppConfig) orgimport.Options {
	opts := orgimport.Options{SkipFirstRow: appCfg.ImportSkipFirstRow, Mode: orgimport.ModeSequential}
	if appCfg.ImportAtomic {
		opts.Mode = orgimport.ModeAtomic
	}
	return opts
}

// NewReconciler builds the import reconciler the HTTP handler and the admin
// tool share. Atomic imports run their writes through txn.Run.
func NewReconciler(db *mongo.Database, appCfg AppConfig, logger *zap.Logger) *orgimport.Reconciler {
	run := func(ctx context.Context, fn func(context.Context) error) error {
		return txn.Run(ctx, db, logger, fn)
	}
	return orgimport.New(organizationstore.New(db), run, importOptions(appCfg), logger)
}
