package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dalemusser/ideatrack/internal/app/bootstrap"
	"github.com/dalemusser/ideatrack/internal/app/features/ideacount"
	"github.com/dalemusser/ideatrack/internal/app/features/ideacount/tabular"
	"github.com/dalemusser/ideatrack/internal/app/store/audit"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newImportCmd(g *globals) *cobra.Command {
	var (
		atomic bool
		noSkip bool
		dryRun bool
		actor  string
	)

	cmd := &cobra.Command{
		Use:   "import <file.csv|file.xlsx>",
		Short: "Add a spreadsheet of idea counts onto organizations by code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			batch, err := tabular.Parse(filepath.Base(path), f, tabular.Options{MaxRows: g.cfg.ImportMaxRows})
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			if len(batch.Rows) == 0 {
				return fmt.Errorf("%s has no data rows", path)
			}
			if dryRun {
				return writeJSON(cmd.OutOrStdout(), cmdOutput{
					Command: "import (dry run)",
					Result:  map[string]any{"columns": batch.Columns, "rows": len(batch.Rows)},
				})
			}

			appCfg := g.cfg.appConfig()
			if cmd.Flags().Changed("atomic") {
				appCfg.ImportAtomic = atomic
			}
			if noSkip {
				appCfg.ImportSkipFirstRow = false
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), g.cfg.Timeout)
			defer cancel()

			deps, err := bootstrap.ConnectMongo(ctx, appCfg, g.log)
			if err != nil {
				return err
			}
			defer deps.IdeaTrackMongoClient.Disconnect(context.Background())

			db := deps.IdeaTrackMongoDatabase
			rc := bootstrap.NewReconciler(db, appCfg, g.log)

			start := time.Now()
			res, err := rc.Import(ctx, batch)

			ev := ideacount.NewImportEvent(audit.SourceCLI, filepath.Base(path), len(batch.Rows), rc.Options().Mode, res, err)
			ev.ActorID = actor
			if aerr := audit.New(db).Log(context.WithoutCancel(ctx), ev); aerr != nil {
				g.log.Warn("failed to record import event", zap.Error(aerr))
			}
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), cmdOutput{
				Command:    "import",
				DurationMS: time.Since(start).Milliseconds(),
				Result:     res,
			})
		},
	}

	cmd.Flags().BoolVar(&atomic, "atomic", false, "All-or-nothing import (overrides IDEATRACK_IMPORT_ATOMIC)")
	cmd.Flags().BoolVar(&noSkip, "no-skip-first-row", false, "Apply the first data row too")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Parse the file and report its shape without connecting")
	cmd.Flags().StringVar(&actor, "actor", os.Getenv("USER"), "Name recorded in the import history")
	return cmd
}
