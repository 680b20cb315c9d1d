// internal/app/features/ideacount/audit.go
package ideacount

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/ideatrack/internal/app/features/ideacount/orgimport"
	"github.com/dalemusser/ideatrack/internal/app/store/audit"
	"github.com/dalemusser/ideatrack/internal/app/system/apiresp"
	"github.com/dalemusser/ideatrack/internal/app/system/auth"
	"github.com/dalemusser/ideatrack/internal/app/system/ratelimit"
	"github.com/dalemusser/ideatrack/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

const (
	defaultImportHistory = 20
	maxImportHistory     = 100
)

// recordImport writes the audit event for one import attempt. The write uses
// its own short timeout so a request whose import timed out still leaves a
// trace. Failures to record are logged, never returned.
func (h *Handler) recordImport(r *http.Request, filename string, rows int, res orgimport.Result, importErr error) {
	if h.Audit == nil {
		return
	}

	ev := NewImportEvent(audit.SourceAPI, filename, rows, h.Importer.Options().Mode, res, importErr)
	ev.IP = ratelimit.ClientIP(r)
	if u, ok := auth.CurrentUser(r); ok {
		ev.ActorID = u.ID
		ev.ActorEmail = u.Email
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), timeouts.Ping())
	defer cancel()
	if err := h.Audit.Log(ctx, ev); err != nil {
		h.Log.Warn("failed to record import event",
			zap.String("filename", filename),
			zap.Error(err))
	}
}

// NewImportEvent builds the audit record for an import outcome.
func NewImportEvent(source, filename string, rows int, mode orgimport.Mode, res orgimport.Result, importErr error) audit.Event {
	ev := audit.Event{
		Source:   source,
		Filename: filename,
		Mode:     mode.String(),
		Rows:     rows,
		Success:  importErr == nil,
		Applied:  res.Applied,
		Dropped:  res.Dropped,
		Skipped:  res.Skipped,
	}
	if importErr != nil {
		ev.Applied = orgimport.AppliedOf(importErr)
		ev.FailureKind = orgimport.FailureKind(importErr)
		ev.FailureReason = importErr.Error()
	}
	return ev
}

// importPage describes one window of the import history.
type importPage struct {
	Total  int64 `json:"total"`
	Limit  int64 `json:"limit"`
	Offset int64 `json:"offset"`
}

// ServeImports handles GET /idea-count/imports: import attempts, newest
// first, with the number of attempts matching the filter.
// Query params:
//   - limit: 1..100, default 20
//   - offset: attempts to skip, default 0
//   - failed: "true" returns only failed attempts
//   - mine: "true" returns only the caller's attempts
func (h *Handler) ServeImports(w http.ResponseWriter, r *http.Request) {
	filter := audit.QueryFilter{Limit: defaultImportHistory}
	if n, err := strconv.Atoi(query.Get(r, "limit")); err == nil && n > 0 {
		filter.Limit = int64(min(n, maxImportHistory))
	}
	if n, err := strconv.ParseInt(query.Get(r, "offset"), 10, 64); err == nil && n > 0 {
		filter.Offset = n
	}
	if h.Audit == nil {
		apiresp.Paginated(w, []audit.Event{}, importPage{Limit: filter.Limit, Offset: filter.Offset})
		return
	}
	if strings.EqualFold(query.Get(r, "failed"), "true") {
		failed := false
		filter.Success = &failed
	}
	if strings.EqualFold(query.Get(r, "mine"), "true") {
		if u, ok := auth.CurrentUser(r); ok {
			filter.ActorID = u.ID
		}
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Query(), h.Log, "import history")
	defer cancel()

	events, err := h.Audit.Query(ctx, filter)
	if err != nil {
		h.Log.Error("import history query failed", zap.Error(err))
		apiresp.Failure(w, http.StatusInternalServerError, "A database error occurred.")
		return
	}
	total, err := h.Audit.CountByFilter(ctx, filter)
	if err != nil {
		h.Log.Error("import history count failed", zap.Error(err))
		apiresp.Failure(w, http.StatusInternalServerError, "A database error occurred.")
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	apiresp.Paginated(w, events, importPage{Total: total, Limit: filter.Limit, Offset: filter.Offset})
}
