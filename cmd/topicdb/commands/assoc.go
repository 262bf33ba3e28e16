package commands

import (
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/topicdb/sym"
	"github.com/teranos/topicdb/topicmap/types"
)

// AssocCmd manages associations between topics
var AssocCmd = &cobra.Command{
	Use:   "assoc",
	Short: sym.Prefix("assoc") + "Manage associations",
	Long: sym.Prefix("assoc") + `assoc — Manage associations

An association links two topics, each playing a role.

Examples:
  topicdb assoc create 1 jane acme --type employment --src-role employee --dest-role employer
  topicdb assoc ls 1 acme
  topicdb assoc rm 1 3f0c...`,
}

var assocCreateCmd = &cobra.Command{
	Use:   "create <map> <src-topic> <dest-topic>",
	Short: "Create an association",
	Args:  cobra.ExactArgs(3),
	RunE:  withSession(runAssocCreate),
}

var assocLsCmd = &cobra.Command{
	Use:   "ls <map> <topic>",
	Short: "List the topics related to a topic, by association type and role",
	Args:  cobra.ExactArgs(2),
	RunE:  withSession(runAssocLs),
}

var assocRmCmd = &cobra.Command{
	Use:   "rm <map> <association>",
	Short: "Delete an association",
	Args:  cobra.ExactArgs(2),
	RunE:  withSession(runAssocRm),
}

var (
	assocIDFlag       string
	assocTypeFlag     string
	assocScopeFlag    string
	assocSrcRoleFlag  string
	assocDestRoleFlag string
	assocLsTypeFlag   []string
)

func init() {
	assocCreateCmd.Flags().StringVar(&assocIDFlag, "id", "", "Association identifier (generated when empty)")
	assocCreateCmd.Flags().StringVar(&assocTypeFlag, "type", types.DefaultAssociationType, "Instance-of topic")
	assocCreateCmd.Flags().StringVar(&assocScopeFlag, "scope", types.UniversalScope, "Scope topic")
	assocCreateCmd.Flags().StringVar(&assocSrcRoleFlag, "src-role", types.DefaultRoleSpec, "Role of the source topic")
	assocCreateCmd.Flags().StringVar(&assocDestRoleFlag, "dest-role", types.DefaultRoleSpec, "Role of the destination topic")

	assocLsCmd.Flags().StringSliceVar(&assocLsTypeFlag, "type", nil, "Only these association types")

	AssocCmd.AddCommand(assocCreateCmd)
	AssocCmd.AddCommand(assocLsCmd)
	AssocCmd.AddCommand(assocRmCmd)
}

func runAssocCreate(cmd *cobra.Command, s *session, args []string) error {
	mapID, err := parseMapID(args[0])
	if err != nil {
		return err
	}
	mode, err := s.mode()
	if err != nil {
		return err
	}

	association := types.NewAssociation(assocIDFlag, assocTypeFlag, args[1], args[2]).
		WithRoles(assocSrcRoleFlag, assocDestRoleFlag)
	association.Scope = assocScopeFlag

	if err := s.store.CreateAssociation(cmd.Context(), mapID, association, mode); err != nil {
		return err
	}
	pterm.Success.Printf("Created association %s\n", association.Identifier)
	return nil
}

func runAssocLs(cmd *cobra.Command, s *session, args []string) error {
	mapID, err := parseMapID(args[0])
	if err != nil {
		return err
	}

	groups, err := s.store.GetAssociationGroups(cmd.Context(), mapID, args[1], types.AssociationFilter{
		InstanceOfs: assocLsTypeFlag,
	})
	if err != nil {
		return err
	}

	rows := make([][]string, 0, groups.Len())
	for _, key := range groups.Keys() {
		rows = append(rows, []string{key.InstanceOf, key.RoleSpec, strings.Join(groups.Get(key.InstanceOf, key.RoleSpec), ", ")})
	}
	return renderTable([]string{"Association", "Role", "Topics"}, rows, "No associations")
}

func runAssocRm(cmd *cobra.Command, s *session, args []string) error {
	mapID, err := parseMapID(args[0])
	if err != nil {
		return err
	}
	if err := s.store.DeleteAssociation(cmd.Context(), mapID, args[1]); err != nil {
		return err
	}
	pterm.Success.Printf("Deleted association %s\n", args[1])
	return nil
}
