package testutil

import (
	"sync"

	"github.com/timelens/timelens/internal/span"
)

// SnapClock provides a thread-safe monotonic snap cursor for tests.
//
// Scenario steps that do not name an explicit interval act at the next
// tick, so the same scenario always touches the same snaps. The clock
// can be reset for test reuse.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type SnapClock struct {
	mu   sync.Mutex
	snap span.Snap
}

// NewSnapClock creates a snap clock whose first Next() returns 0.
func NewSnapClock() *SnapClock {
	return &SnapClock{snap: -1}
}

// Next advances the cursor and returns the new snap.
//
// Monotonic: each call returns the previous snap plus one.
func (c *SnapClock) Next() span.Snap {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap++
	return c.snap
}

// Current returns the cursor without advancing it.
func (c *SnapClock) Current() span.Snap {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

// Reset rewinds the clock. After Reset(), the next call to Next()
// returns 0 again.
func (c *SnapClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap = -1
}
