package upstream

import (
	"github.com/hashicorp/go-version"
	"github.com/sirupsen/logrus"

	"github.com/coreos/cincinnati-graph-builder/internal/metadata"
)

// ValidateOrdering is a diagnostic-only check: the builder trusts
// input order as the age ordering regardless of what it finds here,
// but an upstream document that arrives out of non-increasing
// semantic version order is usually a sign of a misconfigured stream,
// so it is worth a log line.
func ValidateOrdering(log *logrus.Entry, releases []metadata.Release) {
	var prev *version.Version
	for _, r := range releases {
		v, err := version.NewVersion(r.Version)
		if err != nil {
			// Not every release version need be strict semver; skip
			// silently rather than flagging non-semver identifiers.
			prev = nil
			continue
		}
		if prev != nil && v.GreaterThan(prev) {
			log.WithFields(logrus.Fields{
				"previous": prev.String(),
				"current":  v.String(),
			}).Warn("release index is not in non-increasing version order")
		}
		prev = v
	}
}
