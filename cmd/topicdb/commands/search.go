package commands

import (
	"github.com/spf13/cobra"

	"github.com/teranos/topicdb/sym"
	"github.com/teranos/topicdb/topicmap/types"
)

// SearchCmd runs a full-text search over occurrence text
var SearchCmd = &cobra.Command{
	Use:   "search <map> <query>",
	Short: sym.Prefix("search") + "Find occurrences whose text contains every term of the query",
	Long: sym.Prefix("search") + `search — Find occurrences whose text contains every term of the query

Terms are matched literally; full-text operators in the query have no effect.

Examples:
  topicdb search 1 "supplier contract"
  topicdb search 1 invoice --limit 5`,
	Args: cobra.ExactArgs(2),
	RunE: withSession(runSearch),
}

var searchLimitFlag int

func init() {
	SearchCmd.Flags().IntVar(&searchLimitFlag, "limit", 20, "Maximum results (0 for all)")
}

func runSearch(cmd *cobra.Command, s *session, args []string) error {
	ctx := cmd.Context()
	mapID, err := parseMapID(args[0])
	if err != nil {
		return err
	}

	identifiers, err := s.store.SearchOccurrences(ctx, mapID, args[1], searchLimitFlag)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(identifiers))
	for _, identifier := range identifiers {
		occurrence, err := s.store.GetOccurrence(ctx, mapID, identifier, types.OccurrenceOptions{InlineResourceData: true})
		if err != nil {
			return err
		}
		if occurrence == nil {
			continue
		}
		rows = append(rows, []string{occurrence.TopicIdentifier, occurrence.InstanceOf, excerpt(string(occurrence.ResourceData), 60)})
	}
	return renderTable([]string{"Topic", "Type", "Text"}, rows, "No matches")
}

func excerpt(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max-1]) + "…"
}
