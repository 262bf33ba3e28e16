package commands

import (
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/topicdb/errors"
	"github.com/teranos/topicdb/sym"
	"github.com/teranos/topicdb/topicmap/types"
)

// MapCmd manages topic maps and their collaborators
var MapCmd = &cobra.Command{
	Use:   "map",
	Short: sym.Prefix("map") + "Manage topic maps",
	Long: sym.Prefix("map") + `map — Manage topic maps

Every map belongs to the user that created it (--user, default 1).

Examples:
  topicdb map create "Research" --populate
  topicdb map ls
  topicdb map collaborate 1 7 --mode comment
  topicdb map rm 1`,
}

var mapCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a map owned by the current user",
	Args:  cobra.ExactArgs(1),
	RunE:  withSession(runMapCreate),
}

var mapLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List maps",
	Args:  cobra.NoArgs,
	RunE:  withSession(runMapLs),
}

var mapRmCmd = &cobra.Command{
	Use:   "rm <map>",
	Short: "Delete a map and everything in it (owner only)",
	Args:  cobra.ExactArgs(1),
	RunE:  withSession(runMapRm),
}

var mapPopulateCmd = &cobra.Command{
	Use:   "populate <map>",
	Short: "Seed the base ontology topics",
	Args:  cobra.ExactArgs(1),
	RunE:  withSession(runMapPopulate),
}

var mapCollaborateCmd = &cobra.Command{
	Use:   "collaborate <map> <user>",
	Short: "Grant, change or revoke a collaborator",
	Args:  cobra.ExactArgs(2),
	RunE:  withSession(runMapCollaborate),
}

var mapCollaboratorsCmd = &cobra.Command{
	Use:   "collaborators <map>",
	Short: "List the collaborators of a map",
	Args:  cobra.ExactArgs(1),
	RunE:  withSession(runMapCollaborators),
}

var (
	mapDescriptionFlag string
	mapPublishedFlag   bool
	mapPromotedFlag    bool
	mapPopulateFlag    bool
	mapListFlag        string
	mapModeFlag        string
	mapStopFlag        bool
)

func init() {
	mapCreateCmd.Flags().StringVar(&mapDescriptionFlag, "description", "", "Map description")
	mapCreateCmd.Flags().BoolVar(&mapPublishedFlag, "published", false, "Publish the map")
	mapCreateCmd.Flags().BoolVar(&mapPromotedFlag, "promoted", false, "Promote the map")
	mapCreateCmd.Flags().BoolVar(&mapPopulateFlag, "populate", false, "Seed the base ontology after creating")

	mapLsCmd.Flags().StringVar(&mapListFlag, "list", "owned", "Which maps: owned, shared, published, promoted")

	mapCollaborateCmd.Flags().StringVar(&mapModeFlag, "mode", string(types.ViewMode), "Collaboration mode: view, comment, edit")
	mapCollaborateCmd.Flags().BoolVar(&mapStopFlag, "stop", false, "Revoke the collaboration instead")

	MapCmd.AddCommand(mapCreateCmd)
	MapCmd.AddCommand(mapLsCmd)
	MapCmd.AddCommand(mapRmCmd)
	MapCmd.AddCommand(mapPopulateCmd)
	MapCmd.AddCommand(mapCollaborateCmd)
	MapCmd.AddCommand(mapCollaboratorsCmd)
}

func runMapCreate(cmd *cobra.Command, s *session, args []string) error {
	ctx := cmd.Context()
	userID, err := s.userID(ctx)
	if err != nil {
		return err
	}

	mapID, err := s.store.CreateMap(ctx, userID, &types.TopicMap{
		Name:        args[0],
		Description: mapDescriptionFlag,
		Published:   mapPublishedFlag,
		Promoted:    mapPromotedFlag,
	})
	if err != nil {
		return err
	}

	if mapPopulateFlag {
		if err := s.store.PopulateMap(ctx, mapID); err != nil {
			return err
		}
	}

	pterm.Success.Printf("Created map %d\n", mapID)
	return nil
}

func runMapLs(cmd *cobra.Command, s *session, args []string) error {
	ctx := cmd.Context()
	userID, err := s.userID(ctx)
	if err != nil {
		return err
	}

	var maps []*types.TopicMap
	switch mapListFlag {
	case "owned":
		maps, err = s.store.GetMaps(ctx, userID)
	case "shared":
		maps, err = s.store.GetCollaborationMaps(ctx, userID)
	case "published":
		maps, err = s.store.GetPublishedMaps(ctx)
	case "promoted":
		maps, err = s.store.GetPromotedMaps(ctx)
	default:
		return errors.NewInvalidRequestError("unknown list %q (supported: owned, shared, published, promoted)", mapListFlag)
	}
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(maps))
	for _, m := range maps {
		rows = append(rows, []string{
			strconv.FormatInt(m.Identifier, 10),
			m.Name,
			yesNo(m.Initialised),
			yesNo(m.Published),
			m.CollaborationMode.String(),
		})
	}
	return renderTable([]string{"ID", "Name", "Populated", "Published", "Mode"}, rows, "No maps")
}

func runMapRm(cmd *cobra.Command, s *session, args []string) error {
	ctx := cmd.Context()
	mapID, err := parseMapID(args[0])
	if err != nil {
		return err
	}
	userID, err := s.userID(ctx)
	if err != nil {
		return err
	}

	if err := s.store.DeleteMap(ctx, userID, mapID); err != nil {
		return err
	}
	pterm.Success.Printf("Deleted map %d\n", mapID)
	return nil
}

func runMapPopulate(cmd *cobra.Command, s *session, args []string) error {
	mapID, err := parseMapID(args[0])
	if err != nil {
		return err
	}
	if err := s.store.PopulateMap(cmd.Context(), mapID); err != nil {
		return err
	}
	pterm.Success.Printf("Map %d populated\n", mapID)
	return nil
}

func runMapCollaborate(cmd *cobra.Command, s *session, args []string) error {
	ctx := cmd.Context()
	mapID, err := parseMapID(args[0])
	if err != nil {
		return err
	}
	collaborator, err := parseUserID(args[1])
	if err != nil {
		return err
	}

	if mapStopFlag {
		if err := s.store.StopCollaboration(ctx, mapID, collaborator); err != nil {
			return err
		}
		pterm.Success.Printf("User %d no longer collaborates on map %d\n", collaborator, mapID)
		return nil
	}

	mode, err := types.ParseCollaborationMode(mapModeFlag)
	if err != nil {
		return err
	}
	if err := s.store.Collaborate(ctx, mapID, collaborator, mode); err != nil {
		return err
	}
	pterm.Success.Printf("User %d collaborates on map %d (%s)\n", collaborator, mapID, mode)
	return nil
}

func runMapCollaborators(cmd *cobra.Command, s *session, args []string) error {
	mapID, err := parseMapID(args[0])
	if err != nil {
		return err
	}

	collaborators, err := s.store.GetCollaborators(cmd.Context(), mapID)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(collaborators))
	for _, c := range collaborators {
		rows = append(rows, []string{strconv.FormatInt(c.UserIdentifier, 10), c.CollaborationMode.String()})
	}
	return renderTable([]string{"User", "Mode"}, rows, "No collaborators")
}
