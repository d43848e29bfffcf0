// Package serialize encodes a policy-filtered Graph into the outbound
// JSON wire format.
package serialize

import (
	"encoding/json"

	"github.com/coreos/cincinnati-graph-builder/internal/graph"
)

// wireNode mirrors metadata.Node's JSON shape; defined locally so this
// package owns the exact outbound field order/names independent of
// the internal Node type.
type wireNode struct {
	Version  string            `json:"version"`
	Payload  string            `json:"payload"`
	Metadata map[string]string `json:"metadata"`
}

type wireGraph struct {
	Nodes []wireNode  `json:"nodes"`
	Edges [][2]uint64 `json:"edges"`
}

// Graph renders g as indented JSON for direct developer consumption.
// Metadata key order is unspecified; callers that need semantic
// comparison should decode and compare, not diff bytes.
func Graph(g graph.Graph) ([]byte, error) {
	out := wireGraph{
		Nodes: make([]wireNode, len(g.Nodes)),
		Edges: make([][2]uint64, len(g.Edges)),
	}
	for i, n := range g.Nodes {
		out.Nodes[i] = wireNode{Version: n.Version, Payload: n.Payload, Metadata: n.Metadata}
	}
	for i, e := range g.Edges {
		out.Edges[i] = [2]uint64{e.From, e.To}
	}
	return json.MarshalIndent(out, "", "  ")
}
