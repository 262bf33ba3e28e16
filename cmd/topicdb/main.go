package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/teranos/topicdb/am"
	"github.com/teranos/topicdb/cmd/topicdb/commands"
	"github.com/teranos/topicdb/errors"
	"github.com/teranos/topicdb/logger"
)

var rootCmd = &cobra.Command{
	Use:   "topicdb",
	Short: "topicdb - topic map storage engine",
	Long: `topicdb - topic map storage engine.

Stores topic maps (typed, named topics joined by typed, scoped associations,
annotated with attributes and carrying occurrences) in a single SQLite file.

Available commands:
  db      - Create the schema and show statistics
  map     - Manage maps and collaborators
  topic   - Manage topics
  assoc   - Manage associations
  tag     - Tag topics
  network - Show the topics reachable from a topic
  search  - Full-text search over occurrence text
  am      - Manage configuration

Examples:
  topicdb db init
  topicdb map create "Research" --populate
  topicdb topic create 1 acme --type organisation --mode lenient
  topicdb network 1 acme --depth 2`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Config display stays free of log noise
		if cmd.Parent() == commands.AmCmd {
			return nil
		}

		cfg, err := am.Load()
		if err != nil {
			return errors.Wrap(err, "failed to load configuration")
		}
		if err := cfg.Validate(); err != nil {
			return errors.Wrap(err, "invalid configuration")
		}

		verbosity, _ := cmd.Flags().GetCount("verbose")
		if cfg.Log.Verbosity > verbosity {
			verbosity = cfg.Log.Verbosity
		}
		if err := logger.Initialize(cfg.Log.JSON, verbosity); err != nil {
			return errors.Wrap(err, "failed to initialize logger")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv)")
	rootCmd.PersistentFlags().StringVar(&commands.DBPath, "db", "", "Database file (default database.path)")
	rootCmd.PersistentFlags().Int64Var(&commands.UserID, "user", 1, "Acting user identifier")
	rootCmd.PersistentFlags().StringVar(&commands.OntologyMode, "mode", "", "Ontology mode for writes: strict or lenient (default ontology.mode)")

	rootCmd.AddCommand(commands.AmCmd)
	rootCmd.AddCommand(commands.DbCmd)
	rootCmd.AddCommand(commands.MapCmd)
	rootCmd.AddCommand(commands.TopicCmd)
	rootCmd.AddCommand(commands.AssocCmd)
	rootCmd.AddCommand(commands.TagCmd)
	rootCmd.AddCommand(commands.NetworkCmd)
	rootCmd.AddCommand(commands.SearchCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithRequestID(ctx, uuid.NewString())

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.LoggerFromContext(ctx, logger.Logger).Debugw("Command failed", logger.FieldError, err)
		fmt.Fprintln(os.Stderr, err)
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintf(os.Stderr, "hint: %s\n", hint)
		}
		stop()
		os.Exit(1)
	}
}
