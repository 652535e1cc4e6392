package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/timelens/timelens/internal/attr"
)

// TraceSnapshot captures the complete event trace for a scenario
// execution. Serialized with canonical JSON for byte-for-byte
// comparison.
type TraceSnapshot struct {
	ScenarioName string
	TraceToken   string
	Trace        []TraceEvent
}

// toCanonicalMap converts the snapshot to the map/slice shape
// attr.MarshalCanonical accepts.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	events := make([]any, len(s.Trace))
	for i, ev := range s.Trace {
		events[i] = map[string]any{
			"seq":   ev.Seq,
			"stack": ev.Stack,
			"snap":  ev.Snap,
			"level": ev.Level,
			"space": ev.Space,
		}
	}

	result := map[string]any{
		"scenario_name": s.ScenarioName,
		"events":        events,
	}
	if s.TraceToken != "" {
		result["trace_token"] = s.TraceToken
	}
	return result
}

// RunWithGolden executes a scenario and compares its event trace
// against a golden file under testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Golden files are the source of truth for expected trace behavior;
// goldie fails the test when the trace drifts.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	snapshot := TraceSnapshot{
		ScenarioName: scenario.Name,
		TraceToken:   scenario.TraceToken,
		Trace:        result.Trace,
	}

	traceJSON, err := attr.MarshalCanonical(snapshot.toCanonicalMap())
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, traceJSON)

	return result, nil
}
