package graph

import (
	"context"

	"go.uber.org/zap"

	"github.com/teranos/topicdb/logger"
	"github.com/teranos/topicdb/topicmap"
	"github.com/teranos/topicdb/topicmap/types"
)

// DefaultHierarchyDistance bounds a hierarchy when HierarchyOptions.MaxDistance is zero
const DefaultHierarchyDistance = 10

// HierarchyOptions narrows a hierarchy build
type HierarchyOptions struct {
	MaxDistance int
	InstanceOfs []string
	Language    types.Language
}

// HierarchyNode is one topic of a hierarchy tree
type HierarchyNode struct {
	Identifier string           `json:"identifier"`
	Topic      *types.Topic     `json:"topic"`
	Parent     *HierarchyNode   `json:"-"`
	Children   []*HierarchyNode `json:"children,omitempty"`
}

// Depth counts the parent links up to the root
func (h *HierarchyNode) Depth() int {
	depth := 0
	for p := h.Parent; p != nil; p = p.Parent {
		depth++
	}
	return depth
}

// Path returns the identifiers from the root down to h
func (h *HierarchyNode) Path() []string {
	var path []string
	for n := h; n != nil; n = n.Parent {
		path = append([]string{n.Identifier}, path...)
	}
	return path
}

// Find returns the node for identifier in the subtree rooted at h, or nil
func (h *HierarchyNode) Find(identifier string) *HierarchyNode {
	stack := []*HierarchyNode{h}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.Identifier == identifier {
			return n
		}
		stack = append(stack, n.Children...)
	}
	return nil
}

// HierarchyBuilder expands hierarchy trees from a GraphSource
type HierarchyBuilder struct {
	source topicmap.GraphSource
	logger *zap.SugaredLogger
}

// NewHierarchyBuilder creates a builder reading from source
func NewHierarchyBuilder(source topicmap.GraphSource, log *zap.SugaredLogger) *HierarchyBuilder {
	return &HierarchyBuilder{source: source, logger: logger.OrNop(log)}
}

// Build expands the hierarchy below root. A missing root is a not-found error.
func (b *HierarchyBuilder) Build(ctx context.Context, mapID int64, root string, opts HierarchyOptions) (*HierarchyNode, error) {
	rootTopic, err := resolveRoot(ctx, b.source, mapID, root, opts.Language)
	if err != nil {
		return nil, err
	}

	maxDistance := opts.MaxDistance
	if maxDistance <= 0 {
		maxDistance = DefaultHierarchyDistance
	}

	tree := &HierarchyNode{Identifier: rootTopic.Identifier, Topic: rootTopic}
	index := map[string]*HierarchyNode{tree.Identifier: tree}
	filter := types.AssociationFilter{
		InstanceOfs: normalizeInstanceOfs(opts.InstanceOfs),
		Language:    opts.Language,
	}

	err = walk(ctx, b.source, mapID, rootTopic.Identifier, maxDistance, filter, func(d discovery) {
		parent := index[d.parent]
		node := &HierarchyNode{Identifier: d.child.Identifier, Topic: d.child, Parent: parent}
		parent.Children = append(parent.Children, node)
		index[node.Identifier] = node
	})
	if err != nil {
		return nil, err
	}

	b.logger.Debugw("Built hierarchy",
		logger.FieldMapID, mapID,
		logger.FieldTopicID, rootTopic.Identifier,
		logger.FieldDepth, maxDistance,
		logger.FieldCount, len(index))
	return tree, nil
}
