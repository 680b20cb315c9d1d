package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dalemusser/ideatrack/internal/app/bootstrap"
	"github.com/dalemusser/ideatrack/internal/app/store/hierarchy"
	"github.com/dalemusser/ideatrack/internal/app/system/indexes"
	"github.com/dalemusser/ideatrack/internal/app/system/validators"
	"github.com/spf13/cobra"
)

func newSeedCmd(g *globals) *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "seed <hierarchy.json>",
		Short: "Create zones, districts, organizations and interns from a JSON plan",
		Long: `Seed reads a JSON plan of zones, districts, organizations and interns and
creates whatever is missing. Existing rows are matched and left untouched,
so a seed can be re-run safely.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			plan, err := hierarchy.Decode(f)
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			if check {
				return writeJSON(cmd.OutOrStdout(), cmdOutput{Command: "seed (check)", Result: map[string]int{"zones": len(plan.Zones)}})
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), g.cfg.Timeout)
			defer cancel()

			deps, err := bootstrap.ConnectMongo(ctx, g.cfg.appConfig(), g.log)
			if err != nil {
				return err
			}
			defer deps.IdeaTrackMongoClient.Disconnect(context.Background())

			db := deps.IdeaTrackMongoDatabase
			if err := validators.EnsureAll(ctx, db); err != nil {
				return fmt.Errorf("ensure validators: %w", err)
			}
			if err := indexes.EnsureAll(ctx, db); err != nil {
				return fmt.Errorf("ensure indexes: %w", err)
			}

			start := time.Now()
			sum, err := hierarchy.Seed(ctx, db, plan, g.log)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), cmdOutput{
				Command:    "seed",
				DurationMS: time.Since(start).Milliseconds(),
				Result:     sum,
			})
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "Validate the plan without connecting to MongoDB")
	return cmd
}

func newHierarchyCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "hierarchy",
		Short: "List zones and districts with their ids and sizes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), g.cfg.Timeout)
			defer cancel()

			deps, err := bootstrap.ConnectMongo(ctx, g.cfg.appConfig(), g.log)
			if err != nil {
				return err
			}
			defer deps.IdeaTrackMongoClient.Disconnect(context.Background())

			start := time.Now()
			tree, err := hierarchy.Tree(ctx, deps.IdeaTrackMongoDatabase)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), cmdOutput{
				Command:    "hierarchy",
				DurationMS: time.Since(start).Milliseconds(),
				Result:     tree,
			})
		},
	}
}
