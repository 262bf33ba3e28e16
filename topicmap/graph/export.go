package graph

import (
	"strconv"
	"time"

	"github.com/teranos/topicdb/internal/slug"
)

const defaultLinkWeight = 1.0

// Graph is a network flattened into nodes and links for force-directed rendering
type Graph struct {
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`
	Meta  Meta   `json:"meta"`
}

// Node is one topic of an exported graph
type Node struct {
	ID    string `json:"id"`
	Type  string `json:"type"`  // topic instance-of
	Label string `json:"label"` // first base name
	Group int    `json:"group"` // discovery level, used for clustering
}

// Link is the association edge that first reached its target
type Link struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Type   string  `json:"type"`  // association instance-of
	Weight float64 `json:"value"` // D3 uses "value"
}

// Meta describes an exported graph
type Meta struct {
	GeneratedAt       time.Time              `json:"generated_at"`
	Stats             Stats                  `json:"stats"`
	Config            map[string]string      `json:"config"`
	NodeTypes         []NodeTypeInfo         `json:"node_types"`
	RelationshipTypes []RelationshipTypeInfo `json:"relationship_types"`
}

// NodeTypeInfo counts the nodes of one topic type
type NodeTypeInfo struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// RelationshipTypeInfo counts the links of one association type
type RelationshipTypeInfo struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Stats provides graph statistics
type Stats struct {
	TotalNodes int `json:"total_nodes"`
	TotalEdges int `json:"total_edges"`
}

// Graph exports the network. Type listings keep first-seen order.
func (n *Network) Graph(generatedAt time.Time) *Graph {
	g := &Graph{
		Nodes: make([]Node, 0, n.Len()),
		Links: make([]Link, 0, n.Len()),
		Meta: Meta{
			GeneratedAt: generatedAt,
			Config: map[string]string{
				"root": n.Root,
			},
		},
	}

	nodeTypes := make(map[string]int)
	relationshipTypes := make(map[string]int)
	maxLevel := 0

	for _, node := range n.Nodes() {
		g.Nodes = append(g.Nodes, Node{
			ID:    node.Identifier,
			Type:  node.InstanceOf,
			Label: node.Topic.Name(),
			Group: node.Level,
		})
		if node.Level > maxLevel {
			maxLevel = node.Level
		}

		if i, ok := nodeTypes[node.InstanceOf]; ok {
			g.Meta.NodeTypes[i].Count++
		} else {
			nodeTypes[node.InstanceOf] = len(g.Meta.NodeTypes)
			g.Meta.NodeTypes = append(g.Meta.NodeTypes, NodeTypeInfo{
				Type:  node.InstanceOf,
				Label: slug.Title(node.InstanceOf),
				Count: 1,
			})
		}

		if node.Parent == "" {
			continue
		}
		g.Links = append(g.Links, Link{
			Source: node.Parent,
			Target: node.Identifier,
			Type:   node.EdgeType,
			Weight: defaultLinkWeight,
		})
		if i, ok := relationshipTypes[node.EdgeType]; ok {
			g.Meta.RelationshipTypes[i].Count++
		} else {
			relationshipTypes[node.EdgeType] = len(g.Meta.RelationshipTypes)
			g.Meta.RelationshipTypes = append(g.Meta.RelationshipTypes, RelationshipTypeInfo{
				Type:  node.EdgeType,
				Label: slug.Title(node.EdgeType),
				Count: 1,
			})
		}
	}

	g.Meta.Config["depth"] = strconv.Itoa(maxLevel)
	g.Meta.Stats = Stats{TotalNodes: len(g.Nodes), TotalEdges: len(g.Links)}
	return g
}
