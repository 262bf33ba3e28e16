// Package graph builds trees over the association graph of a topic map.
//
// Two shapes are offered. A Network annotates every node with its depth, its
// type and the type of the association that led to it. A hierarchy is a plain
// parent/children tree for outline and breadcrumb views.
//
// Both walk depth-first from the root with one visited set per build: a topic
// reachable over several paths appears once, under the parent that reached it
// first. Depth labels reflect that first discovery, not the shortest path.
package graph

import (
	"context"

	"github.com/teranos/topicdb/errors"
	"github.com/teranos/topicdb/internal/slug"
	"github.com/teranos/topicdb/topicmap"
	"github.com/teranos/topicdb/topicmap/types"
)

// discovery is one edge of the walk: child was first reached from parent
// over association.
type discovery struct {
	parent      string
	child       *types.Topic
	association *types.Association
	level       int
}

// frame is a topic waiting to have its associations expanded
type frame struct {
	identifier string
	level      int
}

// walk visits every topic reachable from root within maxDepth hops, calling
// visit once per newly discovered topic. Siblings are all discovered before
// any of them is expanded, then expanded in association order.
func walk(ctx context.Context, source topicmap.GraphSource, mapID int64, root string, maxDepth int, filter types.AssociationFilter, visit func(discovery)) error {
	visited := map[string]bool{root: true}
	stack := []frame{{identifier: root, level: 0}}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if current.level >= maxDepth {
			continue
		}

		associations, err := source.GetTopicAssociations(ctx, mapID, current.identifier, filter)
		if err != nil {
			return errors.Wrapf(err, "failed to expand %s", current.identifier)
		}

		var children []frame
		for _, association := range associations {
			ref := association.Member.Other(current.identifier)
			if ref == "" || visited[ref] {
				continue
			}

			topic, err := source.GetTopic(ctx, mapID, ref, types.TopicOptions{Language: filter.Language})
			if err != nil {
				return errors.Wrapf(err, "failed to resolve %s", ref)
			}
			if topic == nil {
				continue
			}

			visited[ref] = true
			visit(discovery{
				parent:      current.identifier,
				child:       topic,
				association: association,
				level:       current.level + 1,
			})
			children = append(children, frame{identifier: ref, level: current.level + 1})
		}

		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	return nil
}

// resolveRoot loads the root topic, failing when it does not exist
func resolveRoot(ctx context.Context, source topicmap.GraphSource, mapID int64, root string, language types.Language) (*types.Topic, error) {
	identifier, err := slug.Required("root", root)
	if err != nil {
		return nil, err
	}
	topic, err := source.GetTopic(ctx, mapID, identifier, types.TopicOptions{Language: language})
	if err != nil {
		return nil, err
	}
	if topic == nil {
		return nil, errors.NewNotFoundError("topic %q in map %d", identifier, mapID)
	}
	return topic, nil
}

func normalizeInstanceOfs(instanceOfs []string) []string {
	var out []string
	for _, instanceOf := range instanceOfs {
		if normalized := slug.Normalize(instanceOf); normalized != "" {
			out = append(out, normalized)
		}
	}
	return out
}
