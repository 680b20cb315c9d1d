package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// globals holds what the persistent flags and environment resolve to.
type globals struct {
	envFiles []string
	mongoURI string
	mongoDB  string
	verbose  bool

	cfg cliConfig
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	g := &globals{}

	cmd := &cobra.Command{
		Use:           "ideatool",
		Short:         "Idea-count import and report tool",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(g.envFiles)
			if err != nil {
				return err
			}
			if g.mongoURI != "" {
				cfg.MongoURI = g.mongoURI
			}
			if g.mongoDB != "" {
				cfg.MongoDatabase = g.mongoDB
			}
			g.cfg = cfg

			if g.verbose {
				g.log, err = zap.NewDevelopment()
			} else {
				g.log, err = zap.NewProduction()
			}
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if g.log != nil {
				_ = g.log.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringSliceVar(&g.envFiles, "env-file", []string{".env", ".env.local"}, "dotenv files to load when present")
	cmd.PersistentFlags().StringVar(&g.mongoURI, "mongo-uri", "", "MongoDB URI (overrides IDEATRACK_MONGO_URI)")
	cmd.PersistentFlags().StringVar(&g.mongoDB, "mongo-database", "", "MongoDB database (overrides IDEATRACK_MONGO_DATABASE)")
	cmd.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "Human-readable debug logging")

	cmd.AddCommand(newImportCmd(g))
	cmd.AddCommand(newTotalCmd(g))
	cmd.AddCommand(newReportCmd(g))
	cmd.AddCommand(newTokenCmd(g))
	cmd.AddCommand(newSeedCmd(g))
	cmd.AddCommand(newHierarchyCmd(g))
	return cmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
