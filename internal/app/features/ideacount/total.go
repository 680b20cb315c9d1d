// internal/app/features/ideacount/total.go
package ideacount

import (
	"net/http"
	"time"

	"github.com/dalemusser/ideatrack/internal/app/store/queries/ideaqueries"
	"github.com/dalemusser/ideatrack/internal/app/system/apiresp"
	"github.com/dalemusser/ideatrack/internal/app/system/telemetry"
	"github.com/dalemusser/ideatrack/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// ServeTotal handles GET /idea-count/total: the four counters summed over
// every organization matching zone_id, district_id and org_type.
func (h *Handler) ServeTotal(w http.ResponseWriter, r *http.Request) {
	q := readFilterQuery(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Query(), h.Log, "idea count total")
	defer cancel()

	start := time.Now()
	totals, err := ideaqueries.Totals(ctx, h.DB, q.filter())
	telemetry.ObserveAggregation("total", start, err)
	if err != nil {
		h.Log.Error("idea count totals failed", zap.Error(err))
		apiresp.Failure(w, http.StatusInternalServerError, "A database error occurred.")
		return
	}

	apiresp.Success(w, "", totals)
}
