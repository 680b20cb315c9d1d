// internal/app/features/ideacount/list.go
package ideacount

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dalemusser/ideatrack/internal/app/store/queries/ideaqueries"
	"github.com/dalemusser/ideatrack/internal/app/system/apiresp"
	"github.com/dalemusser/ideatrack/internal/app/system/paging"
	"github.com/dalemusser/ideatrack/internal/app/system/telemetry"
	"github.com/dalemusser/ideatrack/internal/app/system/timeouts"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ServeList handles GET /idea-count.
// Query params:
//   - zone_id, district_id, org_type: hierarchy filter (all optional)
//   - type: organization (default), district, zone or intern
//   - is_pagination: "false"/"0" returns every row without pagination
//   - pageIndex, perPage, sortBy: see paging.ParseParams
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	q := readListQuery(r)
	if err := h.validate.Struct(q); err != nil {
		apiresp.Failure(w, http.StatusBadRequest, invalidQueryMessage(err))
		return
	}
	granularity, _ := ideaqueries.ParseGranularity(q.Type)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Query(), h.Log, "idea count list")
	defer cancel()

	f := q.filter()
	start := time.Now()
	var err error
	switch granularity {
	case ideaqueries.ByDistrict:
		err = respondRows(ctx, w, r, f, h.DB, ideaqueries.DistrictCounts)
	case ideaqueries.ByZone:
		err = respondRows(ctx, w, r, f, h.DB, ideaqueries.ZoneCounts)
	case ideaqueries.ByIntern:
		err = respondRows(ctx, w, r, f, h.DB, ideaqueries.InternCounts)
	default:
		err = respondRows(ctx, w, r, f, h.DB, ideaqueries.OrganizationCounts)
	}
	telemetry.ObserveAggregation(string(granularity), start, err)

	if err != nil {
		h.Log.Error("idea count aggregation failed",
			zap.String("type", string(granularity)),
			zap.Error(err))
		apiresp.Failure(w, http.StatusInternalServerError, "A database error occurred.")
	}
}

// respondRows runs one aggregation and writes it either as the full list or
// as one page. Nothing is written when the aggregation fails.
func respondRows[T paging.Metered](
	ctx context.Context,
	w http.ResponseWriter,
	r *http.Request,
	f ideaqueries.Filter,
	db *mongo.Database,
	load func(context.Context, *mongo.Database, ideaqueries.Filter) ([]T, error),
) error {
	rows, err := load(ctx, db, f)
	if err != nil {
		return err
	}
	if rows == nil {
		rows = []T{}
	}

	if !paging.ParseIsPagination(r) {
		apiresp.Success(w, "", rows)
		return nil
	}
	page := paging.Project(rows, paging.ParseParams(r))
	apiresp.Paginated(w, page.Rows, page.Pagination)
	return nil
}

// invalidQueryMessage names the offending query parameter. Only type is
// validated.
func invalidQueryMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Field() == "Type" {
		return "Invalid type."
	}
	return "Invalid query."
}
