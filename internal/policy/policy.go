// Package policy implements the two pure edge-pruning transformations
// applied to a cached Graph per request: filter_deadends and
// throttle_rollouts. Neither mutates its input; both return a new
// Graph sharing the same Nodes slice and a freshly built Edges slice.
package policy

import (
	"math"
	"strconv"

	"github.com/coreos/cincinnati-graph-builder/internal/graph"
	"github.com/coreos/cincinnati-graph-builder/internal/metadata"
)

// FilterDeadends drops outgoing edges from any node flagged as a dead
// end. Incoming edges are preserved so the node remains reachable.
func FilterDeadends(g graph.Graph) graph.Graph {
	deadends := make(map[uint64]bool, len(g.Nodes))
	for i, n := range g.Nodes {
		if n.Metadata[metadata.KeyDeadend] == metadata.TrueValue {
			deadends[uint64(i)] = true
		}
	}

	edges := make([]graph.Edge, 0, len(g.Edges))
	for _, e := range g.Edges {
		if deadends[e.From] {
			continue
		}
		edges = append(edges, e)
	}

	return graph.Graph{Nodes: g.Nodes, Edges: edges}
}

// ThrottleRollouts hides a node's incoming edges once the client's
// wariness exceeds the node's current rollout throttling fraction. now
// is the Unix second the evaluation happens at; callers pass
// time.Now().Unix() in production and a fixed value in tests to keep
// evaluation deterministic within a single call.
func ThrottleRollouts(g graph.Graph, wariness float64, now int64) graph.Graph {
	hidden := make(map[uint64]bool, len(g.Nodes))
	for i, n := range g.Nodes {
		throttling, ok := nodeThrottling(n, now)
		if !ok {
			continue
		}
		if wariness > throttling {
			hidden[uint64(i)] = true
		}
	}

	edges := make([]graph.Edge, 0, len(g.Edges))
	for _, e := range g.Edges {
		if hidden[e.To] {
			continue
		}
		edges = append(edges, e)
	}

	return graph.Graph{Nodes: g.Nodes, Edges: edges}
}

// nodeThrottling computes the throttling fraction in [0,1] for a node,
// or ok=false if the node carries no rollout metadata at all (fully
// available).
func nodeThrottling(n metadata.Node, now int64) (throttling float64, ok bool) {
	startEpochStr, hasEpoch := n.Metadata[metadata.KeyRolloutStartEpoch]
	startValueStr, hasValue := n.Metadata[metadata.KeyRolloutStartValue]
	if !hasEpoch && !hasValue {
		return 0, false
	}

	startEpoch, err := strconv.ParseInt(startEpochStr, 10, 64)
	if err != nil {
		startEpoch = 0
	}
	startValue, err := strconv.ParseFloat(startValueStr, 64)
	if err != nil {
		startValue = 0.0
	}

	durationStr, hasDuration := n.Metadata[metadata.KeyRolloutDuration]
	if hasDuration {
		minutes, err := strconv.ParseUint(durationStr, 10, 64)
		if err != nil {
			hasDuration = false
		} else {
			if minutes < 1 {
				minutes = 1
			}
			return rampThrottling(now, startEpoch, startValue, minutes), true
		}
	}
	if !hasDuration {
		return stepThrottling(now, startEpoch, startValue), true
	}
	return 0, false
}

// rampThrottling implements the linear rollout ramp. The three
// branches (before start, after end, in between) must be kept exactly
// as written to preserve boundary behavior.
func rampThrottling(now, startEpoch int64, startValue float64, minutes uint64) float64 {
	end := saturatingAdd(startEpoch, saturatingMul(int64(minutes), 60))

	if now < startEpoch {
		return 0.0
	}
	if now > end {
		return 1.0
	}
	span := float64(end - startEpoch)
	if span <= 0 {
		return 1.0
	}
	return startValue + ((1.0-startValue)/span)*float64(now-startEpoch)
}

// stepThrottling implements the no-duration step function: never
// progresses past the initial fraction once started.
func stepThrottling(now, startEpoch int64, startValue float64) float64 {
	if now < startEpoch {
		return 0.0
	}
	return startValue
}

func saturatingMul(a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	result := a * b
	if a > 0 && b > 0 && result/b != a {
		return math.MaxInt64
	}
	if a < 0 && b < 0 && result/b != a {
		return math.MaxInt64
	}
	return result
}

func saturatingAdd(a, b int64) int64 {
	result := a + b
	if (b > 0 && result < a) || (b < 0 && result > a) {
		return math.MaxInt64
	}
	return result
}
