package commands

import (
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"
	"github.com/spf13/cobra"

	"github.com/teranos/topicdb/sym"
	"github.com/teranos/topicdb/topicmap/graph"
)

// NetworkCmd renders the association network around a topic
var NetworkCmd = &cobra.Command{
	Use:   "network <map> <topic>",
	Short: sym.Prefix("network") + "Show the topics reachable from a topic",
	Long: sym.Prefix("network") + `network — Show the topics reachable from a topic

Walks associations depth-first from <topic>. Every topic appears once, under
the topic that reached it first.

Examples:
  topicdb network 1 acme                   # tree, traversal.network_depth hops
  topicdb network 1 acme --depth 1 --type employment
  topicdb network 1 animal --hierarchy     # plain parent/children tree
  topicdb network 1 acme --format json     # nodes and links for a force graph`,
	Args: cobra.ExactArgs(2),
	RunE: withSession(runNetwork),
}

var (
	networkDepthFlag     int
	networkTypeFlag      []string
	networkScopeFlag     string
	networkHierarchyFlag bool
	networkFormatFlag    string
)

func init() {
	NetworkCmd.Flags().IntVar(&networkDepthFlag, "depth", 0, "Hops from the root (0 uses the configured default)")
	NetworkCmd.Flags().StringSliceVar(&networkTypeFlag, "type", nil, "Only follow these association types")
	NetworkCmd.Flags().StringVar(&networkScopeFlag, "scope", "", "Only follow associations in this scope")
	NetworkCmd.Flags().BoolVar(&networkHierarchyFlag, "hierarchy", false, "Build a hierarchy instead of a network")
	NetworkCmd.Flags().StringVar(&networkFormatFlag, "format", formatText, "Output format: text, json, yaml")
}

func runNetwork(cmd *cobra.Command, s *session, args []string) error {
	mapID, err := parseMapID(args[0])
	if err != nil {
		return err
	}
	if networkHierarchyFlag {
		return runHierarchy(cmd, s, mapID, args[1])
	}

	depth := networkDepthFlag
	if depth == 0 {
		depth = s.cfg.GetNetworkDepth()
	}

	builder := graph.NewNetworkBuilder(s.store, componentLogger(cmd.Context(), "graph"))
	network, err := builder.Build(cmd.Context(), mapID, args[1], graph.NetworkOptions{
		MaxDepth:    depth,
		InstanceOfs: networkTypeFlag,
		Scope:       networkScopeFlag,
	})
	if err != nil {
		return err
	}

	if networkFormatFlag != formatText {
		return encode(cmd.OutOrStdout(), networkFormatFlag, network.Graph(time.Now().UTC()))
	}

	var list pterm.LeveledList
	stack := []string{network.Root}
	for len(stack) > 0 {
		node := network.Node(stack[len(stack)-1])
		stack = stack[:len(stack)-1]

		text := fmt.Sprintf("%s (%s)", node.Topic.Name(), node.Identifier)
		if node.EdgeType != "" {
			text = fmt.Sprintf("%s  [%s]", text, node.EdgeType)
		}
		list = append(list, pterm.LeveledListItem{Level: node.Level, Text: text})

		for i := len(node.Children) - 1; i >= 0; i-- {
			stack = append(stack, node.Children[i])
		}
	}

	if err := pterm.DefaultTree.WithRoot(putils.TreeFromLeveledList(list)).Render(); err != nil {
		return err
	}
	pterm.Info.Printfln("%d topics within %d hops", network.Len(), depth)
	return nil
}

func runHierarchy(cmd *cobra.Command, s *session, mapID int64, root string) error {
	distance := networkDepthFlag
	if distance == 0 {
		distance = s.cfg.GetHierarchyDistance()
	}

	builder := graph.NewHierarchyBuilder(s.store, componentLogger(cmd.Context(), "graph"))
	tree, err := builder.Build(cmd.Context(), mapID, root, graph.HierarchyOptions{
		MaxDistance: distance,
		InstanceOfs: networkTypeFlag,
	})
	if err != nil {
		return err
	}

	if networkFormatFlag != formatText {
		return encode(cmd.OutOrStdout(), networkFormatFlag, tree)
	}

	var list pterm.LeveledList
	stack := []*graph.HierarchyNode{tree}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		list = append(list, pterm.LeveledListItem{
			Level: node.Depth(),
			Text:  fmt.Sprintf("%s (%s)", node.Topic.Name(), node.Identifier),
		})
		for i := len(node.Children) - 1; i >= 0; i-- {
			stack = append(stack, node.Children[i])
		}
	}
	return pterm.DefaultTree.WithRoot(putils.TreeFromLeveledList(list)).Render()
}
