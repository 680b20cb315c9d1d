// internal/app/features/ideacount/handler.go
package ideacount

import (
	"github.com/dalemusser/ideatrack/internal/app/features/ideacount/orgimport"
	"github.com/dalemusser/ideatrack/internal/app/features/ideacount/tabular"
	"github.com/dalemusser/ideatrack/internal/app/store/audit"
	"github.com/dalemusser/ideatrack/internal/app/system/ratelimit"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the idea-count report and import endpoints.
//
// A thin struct wrapping the shared Mongo handle, the import reconciler and
// the logger, constructed once in bootstrap and passed into Routes().
type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	Importer *orgimport.Reconciler
	Parse    tabular.Options

	// ImportLimiter throttles uploads per user. Nil disables throttling.
	ImportLimiter *ratelimit.Limiter
	// Audit records every import attempt. Nil disables the trail.
	Audit *audit.Store

	validate *validator.Validate
	policy   *bluemonday.Policy
}

// NewHandler constructs a Handler. importer applies uploaded batches; parse
// bounds what an upload may contain.
func NewHandler(db *mongo.Database, importer *orgimport.Reconciler, parse tabular.Options, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		Importer: importer,
		Parse:    parse,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		policy:   bluemonday.StrictPolicy(),
	}
}
