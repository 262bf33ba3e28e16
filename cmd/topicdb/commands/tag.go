package commands

import (
	"context"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/topicdb/sym"
	"github.com/teranos/topicdb/topicmap/tags"
)

// TagCmd tags topics
var TagCmd = &cobra.Command{
	Use:   "tag",
	Short: sym.Prefix("tag") + "Tag topics",
	Long: sym.Prefix("tag") + `tag — Tag topics

Tags are topics of type "tag" linked under the "tags" root. Missing topics
are created on the fly, whatever the ontology mode.

Examples:
  topicdb tag add 1 report urgent draft
  topicdb tag ls 1 report
  topicdb tag ls 1 urgent --tagged
  topicdb tag rm 1 report draft`,
}

var tagAddCmd = &cobra.Command{
	Use:   "add <map> <topic> <tag>...",
	Short: "Tag a topic",
	Args:  cobra.MinimumNArgs(3),
	RunE:  withSession(runTagAdd),
}

var tagLsCmd = &cobra.Command{
	Use:   "ls <map> <topic>",
	Short: "List the tags of a topic",
	Args:  cobra.ExactArgs(2),
	RunE:  withSession(runTagLs),
}

var tagRmCmd = &cobra.Command{
	Use:   "rm <map> <topic> <tag>",
	Short: "Remove a tag from a topic",
	Args:  cobra.ExactArgs(3),
	RunE:  withSession(runTagRm),
}

var tagTaggedFlag bool

func init() {
	tagLsCmd.Flags().BoolVar(&tagTaggedFlag, "tagged", false, "Treat <topic> as a tag and list the topics carrying it")

	TagCmd.AddCommand(tagAddCmd)
	TagCmd.AddCommand(tagLsCmd)
	TagCmd.AddCommand(tagRmCmd)
}

func newTagger(ctx context.Context, s *session) *tags.Tagger {
	return tags.NewTagger(s.store, componentLogger(ctx, "tags"))
}

func runTagAdd(cmd *cobra.Command, s *session, args []string) error {
	mapID, err := parseMapID(args[0])
	if err != nil {
		return err
	}

	tagger := newTagger(cmd.Context(), s)
	for _, tag := range args[2:] {
		if err := tagger.CreateTag(cmd.Context(), mapID, args[1], tag); err != nil {
			return err
		}
	}
	pterm.Success.Printf("Tagged %s with %d tag(s)\n", args[1], len(args)-2)
	return nil
}

func runTagLs(cmd *cobra.Command, s *session, args []string) error {
	mapID, err := parseMapID(args[0])
	if err != nil {
		return err
	}

	tagger := newTagger(cmd.Context(), s)
	var refs []string
	if tagTaggedFlag {
		refs, err = tagger.GetTagged(cmd.Context(), mapID, args[1])
	} else {
		refs, err = tagger.GetTags(cmd.Context(), mapID, args[1])
	}
	if err != nil {
		return err
	}

	if len(refs) == 0 {
		pterm.Info.Println("No tags")
		return nil
	}
	items := make([]pterm.BulletListItem, 0, len(refs))
	for _, ref := range refs {
		items = append(items, pterm.BulletListItem{Level: 0, Text: ref})
	}
	return pterm.DefaultBulletList.WithItems(items).Render()
}

func runTagRm(cmd *cobra.Command, s *session, args []string) error {
	mapID, err := parseMapID(args[0])
	if err != nil {
		return err
	}
	if err := newTagger(cmd.Context(), s).RemoveTag(cmd.Context(), mapID, args[1], args[2]); err != nil {
		return err
	}
	pterm.Success.Printf("Removed %s from %s\n", args[2], args[1])
	return nil
}
