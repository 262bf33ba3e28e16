package graph

import (
	"context"

	"go.uber.org/zap"

	"github.com/teranos/topicdb/logger"
	"github.com/teranos/topicdb/topicmap"
	"github.com/teranos/topicdb/topicmap/types"
)

// DefaultNetworkDepth is the number of association hops a network expands
// when NetworkOptions.MaxDepth is zero.
const DefaultNetworkDepth = 3

// NetworkOptions narrows a network build
type NetworkOptions struct {
	MaxDepth    int      // hops from the root; 0 uses DefaultNetworkDepth
	InstanceOfs []string // follow only these association types
	Scope       string   // follow only associations in this scope
	Language    types.Language
}

// NetworkNode is one topic of a network
type NetworkNode struct {
	Identifier string       `json:"identifier"`
	Topic      *types.Topic `json:"topic"`
	Parent     string       `json:"parent,omitempty"`
	Children   []string     `json:"children"`
	InstanceOf string       `json:"instanceOf"`
	EdgeType   string       `json:"edgeType,omitempty"` // association type that reached this node
	Level      int          `json:"level"`
}

// Network is the tree of topics reachable from a root within a hop limit.
// Nodes keep discovery order; the root comes first.
type Network struct {
	Root  string
	nodes map[string]*NetworkNode
	order []string
}

func newNetwork(root *types.Topic) *Network {
	n := &Network{Root: root.Identifier, nodes: make(map[string]*NetworkNode)}
	n.add(&NetworkNode{
		Identifier: root.Identifier,
		Topic:      root,
		InstanceOf: root.InstanceOf,
	})
	return n
}

func (n *Network) add(node *NetworkNode) {
	n.nodes[node.Identifier] = node
	n.order = append(n.order, node.Identifier)
	if parent, ok := n.nodes[node.Parent]; ok && node.Parent != "" {
		parent.Children = append(parent.Children, node.Identifier)
	}
}

// Node returns the node for identifier, or nil
func (n *Network) Node(identifier string) *NetworkNode {
	return n.nodes[identifier]
}

// Nodes returns every node in discovery order
func (n *Network) Nodes() []*NetworkNode {
	nodes := make([]*NetworkNode, 0, len(n.order))
	for _, identifier := range n.order {
		nodes = append(nodes, n.nodes[identifier])
	}
	return nodes
}

// Len returns the number of nodes, root included
func (n *Network) Len() int {
	return len(n.order)
}

// NetworkBuilder expands networks from a GraphSource
type NetworkBuilder struct {
	source topicmap.GraphSource
	logger *zap.SugaredLogger
}

// NewNetworkBuilder creates a builder reading from source
func NewNetworkBuilder(source topicmap.GraphSource, log *zap.SugaredLogger) *NetworkBuilder {
	return &NetworkBuilder{source: source, logger: logger.OrNop(log)}
}

// Build expands the network around root. A missing root is a not-found error.
func (b *NetworkBuilder) Build(ctx context.Context, mapID int64, root string, opts NetworkOptions) (*Network, error) {
	rootTopic, err := resolveRoot(ctx, b.source, mapID, root, opts.Language)
	if err != nil {
		return nil, err
	}

	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultNetworkDepth
	}

	network := newNetwork(rootTopic)
	filter := types.AssociationFilter{
		InstanceOfs: normalizeInstanceOfs(opts.InstanceOfs),
		Scope:       opts.Scope,
		Language:    opts.Language,
	}

	err = walk(ctx, b.source, mapID, rootTopic.Identifier, maxDepth, filter, func(d discovery) {
		network.add(&NetworkNode{
			Identifier: d.child.Identifier,
			Topic:      d.child,
			Parent:     d.parent,
			InstanceOf: d.child.InstanceOf,
			EdgeType:   d.association.InstanceOf,
			Level:      d.level,
		})
	})
	if err != nil {
		return nil, err
	}

	b.logger.Debugw("Built network",
		logger.FieldMapID, mapID,
		logger.FieldTopicID, rootTopic.Identifier,
		logger.FieldDepth, maxDepth,
		logger.FieldCount, network.Len())
	return network, nil
}
