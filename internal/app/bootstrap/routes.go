// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	healthfeature "github.com/dalemusser/ideatrack/internal/app/features/health"
	ideacountfeature "github.com/dalemusser/ideatrack/internal/app/features/ideacount"
	"github.com/dalemusser/ideatrack/internal/app/features/ideacount/tabular"
	"github.com/dalemusser/ideatrack/internal/app/store/audit"
	"github.com/dalemusser/ideatrack/internal/app/system/apiresp"
	"github.com/dalemusser/ideatrack/internal/app/system/auth"
	"github.com/dalemusser/ideatrack/internal/app/system/telemetry"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// Startup have completed. IdeaTrack mounts:
//   - /health: Mongo ping for load balancers (no auth)
//   - /metrics: Prometheus exposition (no auth)
//   - /api/v1/dashboard/idea-count: reports, import and import history (bearer auth)
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	verifier, err := auth.NewVerifier(appCfg.JWTSecret, appCfg.JWTIssuer, logger)
	if err != nil {
		logger.Error("token verifier init failed", zap.Error(err))
		return nil, err
	}

	db := deps.IdeaTrackMongoDatabase

	r := chi.NewRouter()

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.IdeaTrackMongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	r.Handle("/metrics", telemetry.Handler())

	importer := NewReconciler(db, appCfg, logger)
	ideaHandler := ideacountfeature.NewHandler(db, importer, tabular.Options{MaxRows: appCfg.ImportMaxRows}, logger)
	ideaHandler.Audit = audit.New(db)
	ideaHandler.ImportLimiter = deps.ImportLimiter

	r.Route("/api/v1/dashboard", func(api chi.Router) {
		api.Mount("/idea-count", ideacountfeature.Routes(ideaHandler, verifier))
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		apiresp.Failure(w, http.StatusNotFound, "Not found.")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		apiresp.Failure(w, http.StatusMethodNotAllowed, "Method not allowed.")
	})

	return r, nil
}
