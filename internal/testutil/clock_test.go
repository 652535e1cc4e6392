package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/timelens/timelens/internal/span"
)

func TestSnapClockMonotonic(t *testing.T) {
	c := NewSnapClock()
	assert.Equal(t, span.Snap(-1), c.Current())
	assert.Equal(t, span.Snap(0), c.Next())
	assert.Equal(t, span.Snap(1), c.Next())
	assert.Equal(t, span.Snap(1), c.Current())
}

func TestSnapClockReset(t *testing.T) {
	c := NewSnapClock()
	c.Next()
	c.Next()
	c.Reset()
	assert.Equal(t, span.Snap(0), c.Next())
}

func TestSnapClockConcurrent(t *testing.T) {
	c := NewSnapClock()
	var wg sync.WaitGroup
	seen := make([]span.Snap, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			seen[i] = c.Next()
		}(i)
	}
	wg.Wait()

	unique := make(map[span.Snap]bool)
	for _, s := range seen {
		unique[s] = true
	}
	assert.Len(t, unique, 100, "every tick is distinct")
	assert.Equal(t, span.Snap(99), c.Current())
}

func TestFixedTokenGenerator(t *testing.T) {
	g := NewFixedTokenGenerator("test-trace-1")
	assert.Equal(t, "test-trace-1", g.Generate())
	assert.Equal(t, "test-trace-1", g.Generate())

	assert.Equal(t, "test-trace-default", NewFixedTokenGenerator("").Generate())
}
