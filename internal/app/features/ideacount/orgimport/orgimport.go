// Package orgimport adds imported activity counts onto existing
// organizations, matched by organization code.
package orgimport

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/ideatrack/internal/app/features/ideacount/tabular"
	"github.com/dalemusser/ideatrack/internal/app/system/telemetry"
	"github.com/dalemusser/ideatrack/internal/domain/models"
	"go.uber.org/zap"
)

// RequiredColumns are checked against the header in this order; the first
// one missing is reported.
var RequiredColumns = []string{
	"code",
	models.MetricPreRegistration,
	models.MetricVOSCompleted,
	models.MetricGroupFormation,
	models.MetricIdeaSubmissions,
}

// Mode selects what happens to already-applied rows when a later row fails.
type Mode int

const (
	// ModeSequential applies rows one by one; rows before a failure stay applied.
	ModeSequential Mode = iota
	// ModeAtomic resolves every code before writing and runs the writes in a
	// transaction, so an unknown code leaves every organization untouched.
	ModeAtomic
)

func (m Mode) String() string {
	if m == ModeAtomic {
		return "atomic"
	}
	return "sequential"
}

// Store is the slice of the organization store the reconciler needs.
type Store interface {
	// IDsByCode maps each known code to its organization id. Unknown codes
	// are absent from the map.
	IDsByCode(ctx context.Context, codes []string) (map[string]string, error)
	// AddMetrics increments the organization's counters by delta.
	AddMetrics(ctx context.Context, id string, delta models.Metrics) error
}

// TxRunner runs fn as one unit of work. fn must use the ctx it is given.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// Options configure a Reconciler.
type Options struct {
	// SkipFirstRow drops the first data row that survives the blank-row
	// filter before applying.
	SkipFirstRow bool
	Mode         Mode
}

// DefaultOptions keeps the first-row skip on and applies rows sequentially.
func DefaultOptions() Options {
	return Options{SkipFirstRow: true, Mode: ModeSequential}
}

// Reconciler applies parsed batches to the organization store.
type Reconciler struct {
	store Store
	run   TxRunner
	opts  Options
	log   *zap.Logger
}

// New builds a Reconciler. run may be nil, in which case atomic-mode writes
// run without a transaction (codes are still resolved up front).
func New(store Store, run TxRunner, opts Options, logger *zap.Logger) *Reconciler {
	if run == nil {
		run = func(ctx context.Context, fn func(context.Context) error) error { return fn(ctx) }
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{store: store, run: run, opts: opts, log: logger}
}

// Options returns the options the reconciler was built with.
func (rc *Reconciler) Options() Options { return rc.opts }

// Result summarizes a successful import.
type Result struct {
	Applied int `json:"applied"` // rows whose counters were added
	Dropped int `json:"dropped"` // blank or all-zero rows removed before applying
	Skipped int `json:"skipped"` // rows removed by the first-row skip
}

// Import validates the batch and applies each row's counters to the
// organization with the row's code.
func (rc *Reconciler) Import(ctx context.Context, batch tabular.Batch) (Result, error) {
	res, err := rc.doImport(ctx, batch)
	if err != nil {
		telemetry.ImportFailed(FailureKind(err))
		rc.log.Warn("import rejected",
			zap.String("mode", rc.opts.Mode.String()),
			zap.Int("rows", len(batch.Rows)),
			zap.Int("applied", AppliedOf(err)),
			zap.Error(err))
		return res, err
	}
	telemetry.RowsApplied(res.Applied)
	rc.log.Info("import applied",
		zap.String("mode", rc.opts.Mode.String()),
		zap.Int("rows", len(batch.Rows)),
		zap.Int("applied", res.Applied),
		zap.Int("dropped", res.Dropped),
		zap.Int("skipped", res.Skipped))
	return res, nil
}

func (rc *Reconciler) doImport(ctx context.Context, batch tabular.Batch) (Result, error) {
	for _, col := range RequiredColumns {
		if !batch.HasColumn(col) {
			return Result{}, &MissingColumnError{Column: col}
		}
	}

	var res Result
	records := make([]tabular.Record, 0, len(batch.Rows))
	for _, rec := range batch.Rows {
		if falsyRow(rec) {
			res.Dropped++
			continue
		}
		records = append(records, rec)
	}
	if rc.opts.SkipFirstRow && len(records) > 0 {
		records = records[1:]
		res.Skipped = 1
	}

	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		row, err := decodeRow(rec)
		if err != nil {
			return res, err
		}
		rows = append(rows, row)
	}

	var err error
	if rc.opts.Mode == ModeAtomic {
		res.Applied, err = rc.applyAtomic(ctx, rows)
	} else {
		res.Applied, err = rc.applySequential(ctx, rows)
	}
	return res, err
}

func (rc *Reconciler) applySequential(ctx context.Context, rows []Row) (int, error) {
	applied := 0
	for _, row := range rows {
		ids, err := rc.store.IDsByCode(ctx, []string{row.Code})
		if err != nil {
			return applied, &PersistenceError{Applied: applied, Err: fmt.Errorf("lookup %q: %w", row.Code, err)}
		}
		id, ok := ids[row.Code]
		if !ok {
			return applied, &UnknownCodeError{Code: row.Code, Line: row.Line, Applied: applied}
		}
		if err := rc.store.AddMetrics(ctx, id, row.Delta()); err != nil {
			return applied, &PersistenceError{Applied: applied, Err: fmt.Errorf("update %q: %w", row.Code, err)}
		}
		applied++
	}
	return applied, nil
}

func (rc *Reconciler) applyAtomic(ctx context.Context, rows []Row) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	codes := make([]string, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		if !seen[row.Code] {
			seen[row.Code] = true
			codes = append(codes, row.Code)
		}
	}

	ids, err := rc.store.IDsByCode(ctx, codes)
	if err != nil {
		return 0, &PersistenceError{Err: fmt.Errorf("resolve codes: %w", err)}
	}
	for _, row := range rows {
		if _, ok := ids[row.Code]; !ok {
			return 0, &UnknownCodeError{Code: row.Code, Line: row.Line}
		}
	}

	applied := 0
	err = rc.run(ctx, func(ctx context.Context) error {
		applied = 0 // the runner may retry fn
		for _, row := range rows {
			if err := rc.store.AddMetrics(ctx, ids[row.Code], row.Delta()); err != nil {
				return fmt.Errorf("update %q: %w", row.Code, err)
			}
			applied++
		}
		return nil
	})
	if err != nil {
		return 0, &PersistenceError{Err: err}
	}
	return applied, nil
}

// FailureKind names the telemetry failure bucket for an Import error.
func FailureKind(err error) string {
	var (
		mc *MissingColumnError
		uc *UnknownCodeError
		iv *InvalidValueError
	)
	switch {
	case errors.As(err, &mc):
		return telemetry.FailureMissingColumn
	case errors.As(err, &uc):
		return telemetry.FailureUnknownCode
	case errors.As(err, &iv):
		return telemetry.FailureInvalidValue
	}
	return telemetry.FailurePersistence
}

// AppliedOf returns how many rows an Import error left applied.
func AppliedOf(err error) int {
	var (
		uc *UnknownCodeError
		pe *PersistenceError
	)
	switch {
	case errors.As(err, &uc):
		return uc.Applied
	case errors.As(err, &pe):
		return pe.Applied
	}
	return 0
}
