package main

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/ideatrack/internal/app/bootstrap"
	"github.com/dalemusser/ideatrack/internal/app/store/queries/ideaqueries"
	"github.com/spf13/cobra"
)

type filterFlags struct {
	zone     string
	district string
	orgType  string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.zone, "zone", "", "Zone id")
	cmd.Flags().StringVar(&f.district, "district", "", "District id")
	cmd.Flags().StringVar(&f.orgType, "org-type", "", "Organization type")
}

func (f *filterFlags) filter() ideaqueries.Filter {
	return ideaqueries.NewFilter(f.zone, f.district, f.orgType)
}

func newTotalCmd(g *globals) *cobra.Command {
	var ff filterFlags

	cmd := &cobra.Command{
		Use:   "total",
		Short: "Print the four counters summed over the filtered organizations",
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
			totals, err := ideaqueries.Totals(ctx, deps.IdeaTrackMongoDatabase, ff.filter())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), cmdOutput{
				Command:    "total",
				DurationMS: time.Since(start).Milliseconds(),
				Result:     totals,
			})
		},
	}
	ff.register(cmd)
	return cmd
}

func newReportCmd(g *globals) *cobra.Command {
	var (
		ff          filterFlags
		granularity string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print every idea-count row at one granularity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gran, ok := ideaqueries.ParseGranularity(granularity)
			if !ok {
				return fmt.Errorf("invalid --type %q", granularity)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), g.cfg.Timeout)
			defer cancel()

			deps, err := bootstrap.ConnectMongo(ctx, g.cfg.appConfig(), g.log)
			if err != nil {
				return err
			}
			defer deps.IdeaTrackMongoClient.Disconnect(context.Background())

			db := deps.IdeaTrackMongoDatabase
			f := ff.filter()
			start := time.Now()

			var rows any
			switch gran {
			case ideaqueries.ByDistrict:
				rows, err = ideaqueries.DistrictCounts(ctx, db, f)
			case ideaqueries.ByZone:
				rows, err = ideaqueries.ZoneCounts(ctx, db, f)
			case ideaqueries.ByIntern:
				rows, err = ideaqueries.InternCounts(ctx, db, f)
			default:
				rows, err = ideaqueries.OrganizationCounts(ctx, db, f)
			}
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), cmdOutput{
				Command:    "report " + string(gran),
				DurationMS: time.Since(start).Milliseconds(),
				Result:     rows,
			})
		},
	}
	ff.register(cmd)
	cmd.Flags().StringVar(&granularity, "type", "organization", "organization, district, zone or intern")
	return cmd
}
