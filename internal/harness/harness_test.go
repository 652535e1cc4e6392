package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runScenarioFile(t *testing.T, name string) *Result {
	t.Helper()
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", name))
	require.NoError(t, err)
	result, err := Run(s)
	require.NoError(t, err)
	return result
}

func TestRunFrameLifecycle(t *testing.T) {
	result := runScenarioFile(t, "frame-lifecycle.yaml")
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.Trace, 4)

	// Insertion, PC set, PC clear, deletion.
	assert.Equal(t, int64(0), result.Trace[0].Snap)
	assert.Equal(t, int64(2), result.Trace[1].Snap)
	assert.Equal(t, int64(4), result.Trace[2].Snap)
	assert.Equal(t, int64(0), result.Trace[3].Snap)
	for _, ev := range result.Trace {
		assert.Equal(t, "Threads[0].Stack[0]", ev.Stack)
		assert.Equal(t, "ram", ev.Space)
		assert.Equal(t, int64(0), ev.Level)
	}
}

func TestRunCommentFollowsPC(t *testing.T) {
	result := runScenarioFile(t, "comment-follows-pc.yaml")
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Len(t, result.Trace, 4)
}

func TestRunStaleChangeSuppressed(t *testing.T) {
	result := runScenarioFile(t, "stale-change-suppressed.yaml")
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Len(t, result.Trace, 1, "only the insertion reaches observers")
}

func TestRunCommentWithoutPC(t *testing.T) {
	result := runScenarioFile(t, "comment-without-pc.yaml")
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRunRecordsAssertionFailures(t *testing.T) {
	s, err := LoadScenario(writeScenario(t, `name: failing
description: assertions that cannot hold
setup:
  - path: Threads[0].Stack[0]
    role: Stack
    life: {min: 0, max: 10}
  - path: Threads[0].Stack[0].Frames
    role: FrameContainer
    life: {min: 0, max: 10}
  - path: Threads[0].Stack[0].Frames[2]
    role: Frame
    life: {min: 0, max: 10}
assertions:
  - type: event_count
    count: 7
  - type: level
    frame: Threads[0].Stack[0].Frames[2]
    level: 5
  - type: pc
    frame: Threads[0].Stack[0].Frames[2]
    address: "0x1000"
`))
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Len(t, result.Errors, 3, "every failed assertion is reported")
	assert.Contains(t, result.Errors[0], "event_count")
	assert.Contains(t, result.Errors[1], "level")
	assert.Contains(t, result.Errors[2], "no PC")
}

func TestRunUsesFixedTraceToken(t *testing.T) {
	// Two runs of the same scenario produce identical traces.
	a := runScenarioFile(t, "frame-lifecycle.yaml")
	b := runScenarioFile(t, "frame-lifecycle.yaml")
	assert.Equal(t, a.Trace, b.Trace)
}

func TestRunDefaultSpanUsesClock(t *testing.T) {
	s, err := LoadScenario(writeScenario(t, `name: clocked
description: steps without spans act at successive ticks
setup:
  - path: Threads[0].Stack[0]
    role: Stack
    life: {min: 0, max: 10}
  - path: Threads[0].Stack[0].Frames
    role: FrameContainer
    life: {min: 0, max: 10}
  - path: Threads[0].Stack[0].Frames[0]
    role: Frame
    life: {min: 0, max: 10}
flow:
  - set_pc: {frame: "Threads[0].Stack[0].Frames[0]", address: "0x1000"}
  - set_pc: {frame: "Threads[0].Stack[0].Frames[0]", address: "0x1004"}
assertions:
  - type: pc
    frame: Threads[0].Stack[0].Frames[0]
    snap: 0
    address: "0x1000"
  - type: pc
    frame: Threads[0].Stack[0].Frames[0]
    snap: 1
    address: "0x1004"
  - type: pc
    frame: Threads[0].Stack[0].Frames[0]
    snap: 2
    absent: true
`))
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.Trace, 3)
	assert.Equal(t, int64(0), result.Trace[1].Snap)
	assert.Equal(t, int64(1), result.Trace[2].Snap)
}
