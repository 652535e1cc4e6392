package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario.
// Scenarios build an object hierarchy, run a flow of mutations and
// assert on the resulting stack events and final frame state.
type Scenario struct {
	// Name uniquely identifies this scenario. It doubles as the golden
	// file name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// TraceToken is an optional fixed trace token for deterministic
	// golden comparison. If empty, "test-trace-default" is used.
	TraceToken string `yaml:"trace_token,omitempty"`

	// Space overrides the store's address space name.
	Space string `yaml:"space,omitempty"`

	// Setup creates the object hierarchy before the flow runs.
	// Creations raise real insertion events, so frames created here
	// appear in the event trace.
	Setup []SetupStep `yaml:"setup"`

	// Flow contains the mutations to run, in order.
	Flow []FlowStep `yaml:"flow,omitempty"`

	// Assertions validate the event trace and final state.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// SetupStep creates one object.
type SetupStep struct {
	Path string    `yaml:"path"`
	Role string    `yaml:"role"`
	Life *SpanSpec `yaml:"life"`
}

// SpanSpec is a half-open snap interval [Min, Max).
type SpanSpec struct {
	Min int64 `yaml:"min"`
	Max int64 `yaml:"max"`
}

// FlowStep is one mutation. Exactly one of the step fields must be set.
type FlowStep struct {
	SetPC      *SetPCStep      `yaml:"set_pc,omitempty"`
	ClearPC    *ClearPCStep    `yaml:"clear_pc,omitempty"`
	SetValue   *SetValueStep   `yaml:"set_value,omitempty"`
	SetComment *SetCommentStep `yaml:"set_comment,omitempty"`
	Delete     *DeleteStep     `yaml:"delete,omitempty"`
}

// SetPCStep writes a frame's program counter over a span. If the span
// is omitted the step acts at the harness clock's next tick.
type SetPCStep struct {
	Frame   string    `yaml:"frame"`
	Address string    `yaml:"address"`
	Span    *SpanSpec `yaml:"span,omitempty"`
}

// ClearPCStep removes program counter coverage over a span.
type ClearPCStep struct {
	Frame string    `yaml:"frame"`
	Span  *SpanSpec `yaml:"span,omitempty"`
}

// SetValueStep writes an arbitrary attribute value.
type SetValueStep struct {
	Object string    `yaml:"object"`
	Key    string    `yaml:"key"`
	Kind   string    `yaml:"kind"`
	Value  string    `yaml:"value"`
	Span   *SpanSpec `yaml:"span,omitempty"`
}

// SetCommentStep writes a frame's comment. ExpectError flips the step
// into a negative test: the write must fail for lack of a program
// counter.
type SetCommentStep struct {
	Frame       string `yaml:"frame"`
	Text        string `yaml:"text"`
	ExpectError bool   `yaml:"expect_error,omitempty"`
}

// DeleteStep removes an object.
type DeleteStep struct {
	Path string `yaml:"path"`
}

// Assertion validates the event trace or final state.
type Assertion struct {
	// Type selects the assertion:
	//   - "event_count": the trace holds exactly Count events
	//   - "event_order": the trace is exactly Events, in order
	//   - "level": the frame's level is Level
	//   - "pc": the frame's PC at Snap (default: its last lifespan
	//     snap) is Address, or absent
	//   - "comment": the frame's comment is Body, or absent
	Type string `yaml:"type"`

	Count  int             `yaml:"count,omitempty"`
	Events []ExpectedEvent `yaml:"events,omitempty"`

	Frame   string `yaml:"frame,omitempty"`
	Level   int64  `yaml:"level,omitempty"`
	Snap    *int64 `yaml:"snap,omitempty"`
	Address string `yaml:"address,omitempty"`
	Body    string `yaml:"body,omitempty"`
	Absent  bool   `yaml:"absent,omitempty"`
}

// ExpectedEvent is one expected stack event.
type ExpectedEvent struct {
	Stack string `yaml:"stack"`
	Snap  int64  `yaml:"snap"`
}

// Assertion type constants.
const (
	AssertEventCount = "event_count"
	AssertEventOrder = "event_order"
	AssertLevel      = "level"
	AssertPC         = "pc"
	AssertComment    = "comment"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs
	// "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Setup) == 0 {
		return fmt.Errorf("setup list is required and must be non-empty")
	}
	if len(s.Flow) == 0 && len(s.Assertions) == 0 {
		return fmt.Errorf("scenario needs a flow, assertions, or both")
	}

	for i, step := range s.Setup {
		if step.Path == "" {
			return fmt.Errorf("setup[%d]: path is required", i)
		}
		if step.Role == "" {
			return fmt.Errorf("setup[%d]: role is required", i)
		}
		if step.Life == nil {
			return fmt.Errorf("setup[%d]: life is required", i)
		}
		if step.Life.Max <= step.Life.Min {
			return fmt.Errorf("setup[%d]: life must be a non-empty interval", i)
		}
	}

	for i, step := range s.Flow {
		if err := validateFlowStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

func validateFlowStep(index int, step *FlowStep) error {
	set := 0
	if step.SetPC != nil {
		set++
		if step.SetPC.Frame == "" || step.SetPC.Address == "" {
			return fmt.Errorf("flow[%d].set_pc: frame and address are required", index)
		}
	}
	if step.ClearPC != nil {
		set++
		if step.ClearPC.Frame == "" {
			return fmt.Errorf("flow[%d].clear_pc: frame is required", index)
		}
	}
	if step.SetValue != nil {
		set++
		sv := step.SetValue
		if sv.Object == "" || sv.Key == "" || sv.Kind == "" {
			return fmt.Errorf("flow[%d].set_value: object, key and kind are required", index)
		}
	}
	if step.SetComment != nil {
		set++
		if step.SetComment.Frame == "" {
			return fmt.Errorf("flow[%d].set_comment: frame is required", index)
		}
		if step.SetComment.Text == "" && !step.SetComment.ExpectError {
			return fmt.Errorf("flow[%d].set_comment: text is required", index)
		}
	}
	if step.Delete != nil {
		set++
		if step.Delete.Path == "" {
			return fmt.Errorf("flow[%d].delete: path is required", index)
		}
	}
	if set != 1 {
		return fmt.Errorf("flow[%d]: exactly one step kind must be set, got %d", index, set)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case AssertEventCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertEventOrder:
		if len(a.Events) == 0 {
			return fmt.Errorf("assertions[%d]: events list is required for event_order", index)
		}
		for j, ev := range a.Events {
			if ev.Stack == "" {
				return fmt.Errorf("assertions[%d].events[%d]: stack is required", index, j)
			}
		}
	case AssertLevel, AssertPC, AssertComment:
		if a.Frame == "" {
			return fmt.Errorf("assertions[%d]: frame is required for %s", index, a.Type)
		}
		if a.Type == AssertPC && a.Address == "" && !a.Absent {
			return fmt.Errorf("assertions[%d]: address or absent is required for pc", index)
		}
		if a.Type == AssertComment && a.Body == "" && !a.Absent {
			return fmt.Errorf("assertions[%d]: body or absent is required for comment", index)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
