package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/topicdb/errors"
	"github.com/teranos/topicdb/internal/slug"
	"github.com/teranos/topicdb/sym"
	"github.com/teranos/topicdb/topicmap/ontology"
	"github.com/teranos/topicdb/topicmap/types"
)

// TopicCmd manages the topics of a map
var TopicCmd = &cobra.Command{
	Use:   "topic",
	Short: sym.Prefix("topic") + "Manage topics",
	Long: sym.Prefix("topic") + `topic — Manage topics

Writes check instance-of references against the map unless --mode lenient
is given (or ontology.mode = "lenient" is configured).

Examples:
  topicdb topic create 1 "Jane Doe" --type person --name "Jane Doe"
  topicdb topic create 1 acme --note "Supplier since 2019"
  topicdb topic ls 1 --type person
  topicdb topic show 1 jane-doe --format yaml
  topicdb topic rename 1 jane-doe jane-smith`,
}

var topicCreateCmd = &cobra.Command{
	Use:   "create <map> <identifier>",
	Short: "Create a topic",
	Args:  cobra.ExactArgs(2),
	RunE:  withSession(runTopicCreate),
}

var topicShowCmd = &cobra.Command{
	Use:   "show <map> <identifier>",
	Short: "Show a topic with its names, attributes and occurrences",
	Args:  cobra.ExactArgs(2),
	RunE:  withSession(runTopicShow),
}

var topicLsCmd = &cobra.Command{
	Use:   "ls <map>",
	Short: "List topics",
	Args:  cobra.ExactArgs(1),
	RunE:  withSession(runTopicLs),
}

var topicRmCmd = &cobra.Command{
	Use:   "rm <map> <identifier>",
	Short: "Delete a topic with its names, attributes and occurrences",
	Args:  cobra.ExactArgs(2),
	RunE:  withSession(runTopicRm),
}

var topicRenameCmd = &cobra.Command{
	Use:   "rename <map> <identifier> <new-identifier>",
	Short: "Change a topic identifier and every reference to it",
	Args:  cobra.ExactArgs(3),
	RunE:  withSession(runTopicRename),
}

var (
	topicNameFlag         string
	topicTypeFlag         string
	topicLanguageFlag     string
	topicShowLanguageFlag string
	topicLsTypeFlag       string
	topicNoteFlag         string
	topicFormatFlag       string
	topicPrefixFlag       string
	topicAllFlag          bool
	topicOffsetFlag       int
	topicLimitFlag        int
)

func init() {
	topicCreateCmd.Flags().StringVar(&topicNameFlag, "name", "", "Display name (defaults to the identifier, or the reserved name of a base topic)")
	topicCreateCmd.Flags().StringVar(&topicTypeFlag, "type", types.DefaultTopicType, "Instance-of topic")
	topicCreateCmd.Flags().StringVar(&topicLanguageFlag, "lang", string(types.DefaultLanguage), "Language of the name")
	topicCreateCmd.Flags().StringVar(&topicNoteFlag, "note", "", "Attach a text note occurrence")

	topicShowCmd.Flags().StringVar(&topicShowLanguageFlag, "lang", "", "Only names in this language")
	topicShowCmd.Flags().StringVar(&topicFormatFlag, "format", formatText, "Output format: text, json, yaml")

	topicLsCmd.Flags().StringVar(&topicLsTypeFlag, "type", "", "Only topics of this type")
	topicLsCmd.Flags().StringVar(&topicPrefixFlag, "prefix", "", "Only identifiers starting with this")
	topicLsCmd.Flags().BoolVar(&topicAllFlag, "all", false, "Include the base ontology topics")
	topicLsCmd.Flags().IntVar(&topicOffsetFlag, "offset", 0, "Skip this many topics")
	topicLsCmd.Flags().IntVar(&topicLimitFlag, "limit", 0, "Page size (0 uses listing.page_size)")

	TopicCmd.AddCommand(topicCreateCmd)
	TopicCmd.AddCommand(topicShowCmd)
	TopicCmd.AddCommand(topicLsCmd)
	TopicCmd.AddCommand(topicRmCmd)
	TopicCmd.AddCommand(topicRenameCmd)
}

func runTopicCreate(cmd *cobra.Command, s *session, args []string) error {
	mapID, err := parseMapID(args[0])
	if err != nil {
		return err
	}
	mode, err := s.mode()
	if err != nil {
		return err
	}
	language, err := types.ParseLanguage(topicLanguageFlag)
	if err != nil {
		return err
	}

	identifier, err := slug.Required("identifier", args[1])
	if err != nil {
		return err
	}
	name := topicNameFlag
	if name == "" {
		name = args[1]
		if reserved, ok := ontology.BaseTopicName(identifier); ok {
			name = reserved
		}
	}
	topic := types.NewTopic(identifier, topicTypeFlag, name, language)

	if topicNoteFlag != "" {
		note := types.NewOccurrence("", types.NoteOccurrence, topic.Identifier)
		note.ResourceData = []byte(topicNoteFlag)
		note.Language = language
		topic.Occurrences = append(topic.Occurrences, note)
	}

	if err := s.store.CreateTopic(cmd.Context(), mapID, topic, mode); err != nil {
		return err
	}
	pterm.Success.Printf("Created topic %s\n", topic.Identifier)
	return nil
}

func runTopicShow(cmd *cobra.Command, s *session, args []string) error {
	mapID, err := parseMapID(args[0])
	if err != nil {
		return err
	}

	var language types.Language
	if topicShowLanguageFlag != "" {
		if language, err = types.ParseLanguage(topicShowLanguageFlag); err != nil {
			return err
		}
	}

	topic, err := s.store.GetTopic(cmd.Context(), mapID, args[1], types.TopicOptions{
		Language:           language,
		ResolveAttributes:  true,
		ResolveOccurrences: true,
	})
	if err != nil {
		return err
	}
	if topic == nil {
		return errors.NewNotFoundError("topic %q in map %d", args[1], mapID)
	}

	if topicFormatFlag != formatText {
		return encode(cmd.OutOrStdout(), topicFormatFlag, topic)
	}

	pterm.DefaultSection.Printf("%s (%s)", topic.Name(), topic.Identifier)
	pterm.Printf("Type: %s\n\n", topic.InstanceOf)

	var names [][]string
	for _, n := range topic.BaseNames {
		names = append(names, []string{n.Name, n.Scope, n.Language.String()})
	}
	if err := renderTable([]string{"Name", "Scope", "Language"}, names, "No names"); err != nil {
		return err
	}

	var attributes [][]string
	for _, a := range topic.Attributes {
		attributes = append(attributes, []string{a.Name, a.Value, string(a.DataType), a.Scope})
	}
	if err := renderTable([]string{"Attribute", "Value", "Type", "Scope"}, attributes, "No attributes"); err != nil {
		return err
	}

	var occurrences [][]string
	for _, o := range topic.Occurrences {
		resource := o.ResourceRef
		if resource == "" && o.HasData() {
			resource = "(inline data)"
		}
		occurrences = append(occurrences, []string{o.Identifier, o.InstanceOf, o.Scope, resource})
	}
	return renderTable([]string{"Occurrence", "Type", "Scope", "Resource"}, occurrences, "No occurrences")
}

func runTopicLs(cmd *cobra.Command, s *session, args []string) error {
	mapID, err := parseMapID(args[0])
	if err != nil {
		return err
	}

	limit := topicLimitFlag
	if limit == 0 {
		limit = s.cfg.GetPageSize()
	}

	names, err := s.store.GetTopicNames(cmd.Context(), mapID, types.ListOptions{
		InstanceOf:       topicLsTypeFlag,
		Query:            topicPrefixFlag,
		FilterBaseTopics: !topicAllFlag,
		Offset:           topicOffsetFlag,
		Limit:            limit,
	})
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(names))
	for _, n := range names {
		rows = append(rows, []string{n.Identifier, n.InstanceOf, n.Name})
	}
	if err := renderTable([]string{"Identifier", "Type", "Name"}, rows, "No topics"); err != nil {
		return err
	}
	if len(names) == limit {
		pterm.Info.Printfln("More topics may follow: --offset %d", topicOffsetFlag+limit)
	}
	return nil
}

func runTopicRm(cmd *cobra.Command, s *session, args []string) error {
	mapID, err := parseMapID(args[0])
	if err != nil {
		return err
	}
	mode, err := s.mode()
	if err != nil {
		return err
	}

	if err := s.store.DeleteTopic(cmd.Context(), mapID, args[1], mode); err != nil {
		return err
	}
	pterm.Success.Printf("Deleted topic %s\n", args[1])
	return nil
}

func runTopicRename(cmd *cobra.Command, s *session, args []string) error {
	mapID, err := parseMapID(args[0])
	if err != nil {
		return err
	}
	mode, err := s.mode()
	if err != nil {
		return err
	}

	if err := s.store.UpdateTopicIdentifier(cmd.Context(), mapID, args[1], args[2], mode); err != nil {
		return err
	}
	pterm.Success.Printf("Renamed %s to %s\n", args[1], args[2])
	return nil
}
