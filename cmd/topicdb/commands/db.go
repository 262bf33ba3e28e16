package commands

import (
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/topicdb/db"
	"github.com/teranos/topicdb/sym"
)

// DbCmd groups database maintenance commands
var DbCmd = &cobra.Command{
	Use:   "db",
	Short: sym.Prefix("db") + "Manage the topicdb database",
	Long: sym.Prefix("db") + `db — Manage the topicdb database

Examples:
  topicdb db init              # Create the schema (idempotent)
  topicdb db stats 1           # Count topics, associations and occurrences of map 1
  topicdb db stats 1 --all     # Include the base ontology topics in the count`,
}

var dbInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the database schema",
	Long:  "Create every table and the full-text index. Running it again verifies the stored schema version.",
	Args:  cobra.NoArgs,
	RunE: withSession(func(cmd *cobra.Command, s *session, args []string) error {
		version, err := db.GetSchemaVersion(cmd.Context(), s.db)
		if err != nil {
			return err
		}
		pterm.Success.Printf("Database ready (schema %s)\n", version)
		return nil
	}),
}

var dbStatsCmd = &cobra.Command{
	Use:   "stats <map>",
	Short: "Show map statistics",
	Args:  cobra.ExactArgs(1),
	RunE:  withSession(runDbStats),
}

var (
	statsAllFlag    bool
	statsFormatFlag string
)

func init() {
	dbStatsCmd.Flags().BoolVar(&statsAllFlag, "all", false, "Count the base ontology topics too")
	dbStatsCmd.Flags().StringVar(&statsFormatFlag, "format", formatText, "Output format: text, json, yaml")

	DbCmd.AddCommand(dbInitCmd)
	DbCmd.AddCommand(dbStatsCmd)
}

func runDbStats(cmd *cobra.Command, s *session, args []string) error {
	mapID, err := parseMapID(args[0])
	if err != nil {
		return err
	}

	stats, err := s.store.GetMapStatistics(cmd.Context(), mapID, !statsAllFlag)
	if err != nil {
		return err
	}

	if statsFormatFlag != formatText {
		return encode(cmd.OutOrStdout(), statsFormatFlag, stats)
	}

	pterm.DefaultSection.Printf("Map %d", mapID)
	return renderTable([]string{"Entity", "Count"}, [][]string{
		{"Topics", strconv.Itoa(stats.Topics)},
		{"Associations", strconv.Itoa(stats.Associations)},
		{"Occurrences", strconv.Itoa(stats.Occurrences)},
	}, "")
}
