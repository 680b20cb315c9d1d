// internal/app/features/ideacount/routes.go
package ideacount

import (
	"github.com/dalemusser/ideatrack/internal/app/system/auth"
	"github.com/dalemusser/ideatrack/internal/app/system/ratelimit"
	"github.com/dalemusser/ideatrack/internal/app/system/telemetry"
	"github.com/go-chi/chi/v5"
)

// Routes mounts under /api/v1/dashboard/idea-count. Every endpoint requires a
// valid bearer token.
func Routes(h *Handler, v *auth.Verifier) chi.Router {
	r := chi.NewRouter()

	r.Group(func(rr chi.Router) {
		rr.Use(v.RequireBearer)
		rr.With(telemetry.Instrument("idea_count.list")).Get("/", h.ServeList)
		rr.With(telemetry.Instrument("idea_count.total")).Get("/total", h.ServeTotal)
		rr.With(telemetry.Instrument("idea_count.imports")).Get("/imports", h.ServeImports)

		importChain := rr.With(telemetry.Instrument("idea_count.import"))
		if h.ImportLimiter != nil {
			importChain = importChain.With(ratelimit.Middleware(h.ImportLimiter, h.ImportLimiter.Message("imports")))
		}
		importChain.Post("/import", h.HandleImport)
	})

	return r
}
