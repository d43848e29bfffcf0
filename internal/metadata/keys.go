// Package metadata defines the wire-contract shapes for the upstream
// JSON documents this service consumes and the per-node metadata keys
// it emits. Keys and values are always strings, even when semantically
// numeric — the wire contract with clients depends on it.
package metadata

// namespace is the reverse-DNS prefix shared by every emitted key.
const namespace = "org.fedoraproject.coreos."

// Metadata key vocabulary. These strings are part of the client
// contract and MUST be emitted byte-exactly.
const (
	KeyScheme            = namespace + "scheme"
	KeyAgeIndex          = namespace + "releases.age_index"
	KeyDeadend           = namespace + "updates.deadend"
	KeyDeadendReason     = namespace + "updates.deadend_reason"
	KeyRolloutStartEpoch = namespace + "updates.start_epoch"
	KeyRolloutStartValue = namespace + "updates.start_value"
	KeyRolloutDuration   = namespace + "updates.duration_minutes"
)

// SchemeChecksum is the literal value stored under KeyScheme.
const SchemeChecksum = "checksum"

// TrueValue is the literal string used for boolean-valued metadata.
const TrueValue = "true"

// GenericDeadendReason is used when a deadend entry has no reason.
const GenericDeadendReason = "generic"
