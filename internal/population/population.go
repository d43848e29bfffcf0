// Package population tracks, per scraper instance, an approximate
// count of distinct client UUIDs seen across /v1/graph requests. It
// mirrors the original implementation's Bloom-filter-backed population
// counter: membership is approximate (bounded memory, never grows
// without limit) and is never used for anything beyond the
// unique_uuids_total metric — it must never gate or alter a response.
package population

import (
	"hash/fnv"

	lru "github.com/hashicorp/golang-lru/v2"
)

// defaultCapacity bounds memory use; once full, the least-recently-seen
// client hash is evicted and may be double-counted on its next visit.
// Like a Bloom filter this trades exactness for bounded memory, but the
// error runs the other way: eviction causes false negatives on "have I
// seen this" (recounts), where a saturated Bloom filter causes false
// positives (a new client reported as already seen).
const defaultCapacity = 1_000_000

// Tracker records whether a client UUID has been observed before.
type Tracker struct {
	seen *lru.Cache[uint64, struct{}]
}

// New returns a Tracker bounded to defaultCapacity distinct clients.
func New() *Tracker {
	return NewWithCapacity(defaultCapacity)
}

// NewWithCapacity returns a Tracker bounded to capacity distinct
// clients; capacity <= 0 is clamped to 1.
func NewWithCapacity(capacity int) *Tracker {
	if capacity <= 0 {
		capacity = 1
	}
	c, err := lru.New[uint64, struct{}](capacity)
	if err != nil {
		// Only returned by the library for a non-positive size, which
		// NewWithCapacity already guards against.
		panic(err)
	}
	return &Tracker{seen: c}
}

// Observe records uuid and reports whether this is the first time this
// Tracker has seen it. An empty uuid (the shared "no node_uuid" client)
// is tracked like any other value.
func (t *Tracker) Observe(uuid string) bool {
	h := fnv.New64a()
	_, _ = h.Write([]byte(uuid))
	key := h.Sum64()

	if t.seen.Contains(key) {
		t.seen.Get(key) // refresh recency
		return false
	}
	t.seen.Add(key, struct{}{})
	return true
}
