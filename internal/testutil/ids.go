package testutil

import (
	"fmt"
	"sync"
)

// FixedIDGenerator returns predetermined record IDs for testing.
//
// This enables deterministic journal output and golden file comparison.
// When constructed with no IDs it generates "doc-0001", "doc-0002", ...
//
// Thread-safety: FixedIDGenerator is safe for concurrent use via internal mutex.
type FixedIDGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedIDGenerator creates a generator that returns ids in order.
//
// Example:
//
//	gen := NewFixedIDGenerator("doc-a", "doc-b")
//	gen.Generate() // "doc-a"
//	gen.Generate() // "doc-b"
//	gen.Generate() // panic: all IDs exhausted
func NewFixedIDGenerator(ids ...string) *FixedIDGenerator {
	return &FixedIDGenerator{ids: ids}
}

// Generate returns the next predetermined ID.
//
// Panics if explicit IDs were given and all have been consumed. This is a
// fail-fast approach to catch tests that publish more often than expected.
func (g *FixedIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.idx++
	if len(g.ids) == 0 {
		return fmt.Sprintf("doc-%04d", g.idx)
	}
	if g.idx > len(g.ids) {
		panic("FixedIDGenerator: all IDs exhausted")
	}
	return g.ids[g.idx-1]
}
