package graph

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/coreos/cincinnati-graph-builder/internal/metadata"
)

// ErrMissingArchCommit is returned when a release carries no commit
// for the builder's configured architecture. This is fatal for the
// refresh that produced it: the builder does not guess.
var ErrMissingArchCommit = errors.New("no commit for configured architecture")

// Build assembles a Graph from an upstream release index and the
// corresponding stream-updates document. It is a pure function: same
// inputs, same output, no I/O, no global state.
//
// Complexity is O(|releases| * (|deadends| + |rollouts|)); input order
// is the truth and is never re-sorted.
func Build(arch string, releases []metadata.Release, updates metadata.Updates) (Graph, error) {
	nodes := make([]metadata.Node, 0, len(releases))

	for i, release := range releases {
		payload, ok := selectCommit(release, arch)
		if !ok {
			return Graph{}, fmt.Errorf("release %q: %w (arch %q)", release.Version, ErrMissingArchCommit, arch)
		}

		md := map[string]string{
			metadata.KeyScheme:   metadata.SchemeChecksum,
			metadata.KeyAgeIndex: strconv.Itoa(i),
		}

		annotateDeadend(md, release.Version, updates.Deadends)
		annotateRollout(md, release.Version, updates.Rollouts)

		nodes = append(nodes, metadata.Node{
			Version:  release.Version,
			Payload:  payload,
			Metadata: md,
		})
	}

	return Graph{Nodes: nodes, Edges: nil}, nil
}

// selectCommit returns the checksum of the commit matching arch. It
// never falls back to the first commit in the list regardless of
// architecture.
func selectCommit(release metadata.Release, arch string) (string, bool) {
	for _, c := range release.Commits {
		if c.Architecture == arch {
			return c.Checksum, true
		}
	}
	return "", false
}

// annotateDeadend sets the deadend keys from the first matching entry.
// Duplicate matches beyond the first are ignored.
func annotateDeadend(md map[string]string, version string, deadends []metadata.Deadend) {
	for _, d := range deadends {
		if d.Version != version {
			continue
		}
		md[metadata.KeyDeadend] = metadata.TrueValue
		if d.Reason != "" {
			md[metadata.KeyDeadendReason] = d.Reason
		} else {
			md[metadata.KeyDeadendReason] = metadata.GenericDeadendReason
		}
		return
	}
}

// annotateRollout copies rollout fields verbatim from the last
// matching entry (last-writer-wins on duplicates).
func annotateRollout(md map[string]string, version string, rollouts []metadata.Rollout) {
	for _, r := range rollouts {
		if r.Version != version {
			continue
		}
		md[metadata.KeyRolloutStartEpoch] = r.StartEpoch
		md[metadata.KeyRolloutStartValue] = r.StartValue
		if r.DurationMinutes != "" {
			md[metadata.KeyRolloutDuration] = r.DurationMinutes
		} else {
			delete(md, metadata.KeyRolloutDuration)
		}
	}
}
