package ideacount_test

import (
	"errors"
	"testing"

	"github.com/dalemusser/ideatrack/internal/app/features/ideacount"
	"github.com/dalemusser/ideatrack/internal/app/features/ideacount/orgimport"
	"github.com/dalemusser/ideatrack/internal/app/store/audit"
)

func TestNewImportEvent(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		ev := ideacount.NewImportEvent(audit.SourceCLI, "a.csv", 5, orgimport.ModeAtomic,
			orgimport.Result{Applied: 3, Dropped: 1, Skipped: 1}, nil)

		if !ev.Success || ev.Applied != 3 || ev.Dropped != 1 || ev.Skipped != 1 {
			t.Errorf("unexpected counts: %+v", ev)
		}
		if ev.Mode != "atomic" || ev.Source != audit.SourceCLI || ev.Rows != 5 {
			t.Errorf("unexpected metadata: %+v", ev)
		}
		if ev.FailureKind != "" || ev.FailureReason != "" {
			t.Errorf("success must not carry a failure: %+v", ev)
		}
	})

	t.Run("unknown code keeps applied rows", func(t *testing.T) {
		err := &orgimport.UnknownCodeError{Code: "ZZ", Line: 4, Applied: 2}
		ev := ideacount.NewImportEvent(audit.SourceAPI, "b.csv", 3, orgimport.ModeSequential, orgimport.Result{Skipped: 1}, err)

		if ev.Success {
			t.Error("expected failure")
		}
		if ev.Applied != 2 {
			t.Errorf("applied: got %d, want 2", ev.Applied)
		}
		if ev.FailureKind != "unknown_code" {
			t.Errorf("failure kind: got %q", ev.FailureKind)
		}
		if ev.FailureReason == "" {
			t.Error("expected failure reason")
		}
	})

	t.Run("persistence", func(t *testing.T) {
		err := &orgimport.PersistenceError{Applied: 1, Err: errors.New("write failed")}
		ev := ideacount.NewImportEvent(audit.SourceAPI, "c.csv", 2, orgimport.ModeSequential, orgimport.Result{}, err)
		if ev.FailureKind != "persistence" || ev.Applied != 1 {
			t.Errorf("unexpected event: %+v", ev)
		}
	})
}
