package policy

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coreos/cincinnati-graph-builder/internal/graph"
	"github.com/coreos/cincinnati-graph-builder/internal/metadata"
)

func rolloutGraph() graph.Graph {
	return graph.Graph{
		Nodes: []metadata.Node{
			{Version: "base", Metadata: map[string]string{}},
			{
				Version: "rolled-out",
				Metadata: map[string]string{
					metadata.KeyRolloutStartEpoch: "1000",
					metadata.KeyRolloutStartValue: "0.0",
					metadata.KeyRolloutDuration:   "10",
				},
			},
		},
		Edges: []graph.Edge{{From: 0, To: 1}},
	}
}

func TestThrottleRollouts_RampMidpoint(t *testing.T) {
	// end = 1000 + 600 = 1600, now = 1300 -> throttling 0.5
	g := rolloutGraph()

	visible := ThrottleRollouts(g, 0.4, 1300)
	require.Len(t, visible.Edges, 1, "wariness below throttling must keep the edge")

	hidden := ThrottleRollouts(g, 0.6, 1300)
	require.Empty(t, hidden.Edges, "wariness above throttling must hide the edge")
}

func TestThrottleRollouts_BeforeStart(t *testing.T) {
	g := rolloutGraph()
	out := ThrottleRollouts(g, 0.0001, 999)
	require.Empty(t, out.Edges, "any w > 0 hides a not-yet-started rollout")
}

func TestThrottleRollouts_AfterEnd(t *testing.T) {
	g := rolloutGraph()
	out := ThrottleRollouts(g, 1.0, 1601)
	require.Len(t, out.Edges, 1, "no wariness <= 1.0 hides a finished rollout")
}

func TestThrottleRollouts_NoRolloutMetadataIsAlwaysVisible(t *testing.T) {
	g := graph.Graph{
		Nodes: []metadata.Node{{Version: "a", Metadata: map[string]string{}}, {Version: "b", Metadata: map[string]string{}}},
		Edges: []graph.Edge{{From: 0, To: 1}},
	}
	out := ThrottleRollouts(g, 1.0, 0)
	require.Len(t, out.Edges, 1)
}

func TestThrottleRollouts_NoDurationStepFunction(t *testing.T) {
	g := graph.Graph{
		Nodes: []metadata.Node{
			{Version: "a", Metadata: map[string]string{}},
			{Version: "b", Metadata: map[string]string{
				metadata.KeyRolloutStartEpoch: "100",
				metadata.KeyRolloutStartValue: "0.3",
			}},
		},
		Edges: []graph.Edge{{From: 0, To: 1}},
	}

	require.Empty(t, ThrottleRollouts(g, 0.0001, 50).Edges, "before start, hidden for any w > 0")
	require.Len(t, ThrottleRollouts(g, 0.3, 200).Edges, 1, "wariness == start_value is not strictly greater, so still visible")
	require.Empty(t, ThrottleRollouts(g, 0.31, 200).Edges, "wariness just above start_value is hidden")
	require.Len(t, ThrottleRollouts(g, 0.2, 200).Edges, 1, "wariness below the step value is visible")
	require.Empty(t, ThrottleRollouts(g, 0.9, 999999).Edges, "step function never progresses past start_value")
}

func TestThrottleRollouts_InvalidFieldsTreatedAsDefaults(t *testing.T) {
	g := graph.Graph{
		Nodes: []metadata.Node{
			{Version: "a", Metadata: map[string]string{}},
			{Version: "b", Metadata: map[string]string{
				metadata.KeyRolloutStartEpoch: "not-a-number",
				metadata.KeyRolloutStartValue: "also-not-a-number",
			}},
		},
		Edges: []graph.Edge{{From: 0, To: 1}},
	}
	// start_epoch -> 0, start_value -> 0.0, no duration -> step function,
	// now >= 0 so throttling = 0.0; any w > 0 hides it.
	require.Empty(t, ThrottleRollouts(g, 0.0001, 1).Edges)
}

func TestFilterDeadends(t *testing.T) {
	g := graph.Graph{
		Nodes: []metadata.Node{
			{Version: "dead", Metadata: map[string]string{metadata.KeyDeadend: metadata.TrueValue}},
			{Version: "alive", Metadata: map[string]string{}},
		},
		Edges: []graph.Edge{
			{From: 0, To: 1}, // outgoing from dead end: pruned
			{From: 1, To: 0}, // incoming to dead end: preserved
		},
	}
	out := FilterDeadends(g)
	require.Equal(t, []graph.Edge{{From: 1, To: 0}}, out.Edges)
}

func TestPolicyNeverAddsEdgesOrNodes(t *testing.T) {
	g := rolloutGraph()
	for _, w := range []float64{0, 0.1, 0.5, 0.9, 1.0} {
		out := FilterDeadends(ThrottleRollouts(g, w, 1300))
		require.Equal(t, g.Nodes, out.Nodes)
		require.LessOrEqual(t, len(out.Edges), len(g.Edges))
	}
}

func TestPolicyIdempotence(t *testing.T) {
	// evaluated within the same "now"
	g := rolloutGraph()
	const now = int64(1300)
	const w = 0.4

	once := ThrottleRollouts(g, w, now)
	twice := ThrottleRollouts(once, w, now)
	require.Equal(t, once.Edges, twice.Edges)

	f1 := FilterDeadends(g)
	f2 := FilterDeadends(f1)
	require.Equal(t, f1.Edges, f2.Edges)
}
