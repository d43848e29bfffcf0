// Package graph holds the Graph type and the pure builder that
// assembles one from upstream release and update documents.
package graph

import "github.com/coreos/cincinnati-graph-builder/internal/metadata"

// Edge is a directed edge (from_index, to_index) into Graph.Nodes.
type Edge struct {
	From uint64
	To   uint64
}

// Graph is an immutable, age-ordered release graph: nodes are ordered
// oldest-last (index 0 is the newest release in iteration order from
// the upstream document), and edges reference node indices.
type Graph struct {
	Nodes []metadata.Node
	Edges []Edge
}

// Clone returns a deep copy safe to hand to a concurrent reader: the
// scraper never lets two callers share the same backing arrays/maps.
func (g Graph) Clone() Graph {
	nodes := make([]metadata.Node, len(g.Nodes))
	for i, n := range g.Nodes {
		md := make(map[string]string, len(n.Metadata))
		for k, v := range n.Metadata {
			md[k] = v
		}
		nodes[i] = metadata.Node{
			Version:  n.Version,
			Payload:  n.Payload,
			Metadata: md,
		}
	}
	edges := make([]Edge, len(g.Edges))
	copy(edges, g.Edges)
	return Graph{Nodes: nodes, Edges: edges}
}
