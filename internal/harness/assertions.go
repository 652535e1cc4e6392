package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/timelens/timelens/internal/span"
)

// AssertionError is returned when an assertion fails.
// It includes the full event trace to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, ev := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] stack=%s snap=%d\n", ev.Seq, ev.Stack, ev.Snap)
	}
	return buf.String()
}

// evaluateAssertions checks every assertion, recording failures in the
// result instead of stopping at the first one.
func (h *Harness) evaluateAssertions(ctx context.Context, assertions []Assertion, result *Result) {
	for _, a := range assertions {
		var err error
		switch a.Type {
		case AssertEventCount:
			err = assertEventCount(result.Trace, a)
		case AssertEventOrder:
			err = assertEventOrder(result.Trace, a)
		case AssertLevel:
			err = h.assertLevel(a, result.Trace)
		case AssertPC:
			err = h.assertPC(ctx, a, result.Trace)
		case AssertComment:
			err = h.assertComment(ctx, a, result.Trace)
		}
		if err != nil {
			result.AddError(err.Error())
		}
	}
}

func assertEventCount(trace []TraceEvent, a Assertion) error {
	if len(trace) == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertEventCount,
		Expected: fmt.Sprintf("%d event(s)", a.Count),
		Actual:   fmt.Sprintf("%d event(s)", len(trace)),
		Trace:    trace,
	}
}

func assertEventOrder(trace []TraceEvent, a Assertion) error {
	mismatch := func(actual string) error {
		var want []string
		for _, ev := range a.Events {
			want = append(want, fmt.Sprintf("%s@%d", ev.Stack, ev.Snap))
		}
		return &AssertionError{
			Type:     AssertEventOrder,
			Expected: strings.Join(want, ", "),
			Actual:   actual,
			Trace:    trace,
		}
	}

	if len(trace) != len(a.Events) {
		return mismatch(fmt.Sprintf("%d event(s)", len(trace)))
	}
	for i, want := range a.Events {
		got := trace[i]
		if got.Stack != want.Stack || got.Snap != want.Snap {
			return mismatch(fmt.Sprintf("event %d is %s@%d", i+1, got.Stack, got.Snap))
		}
	}
	return nil
}

func (h *Harness) assertLevel(a Assertion, trace []TraceEvent) error {
	f, err := h.frameAt(a.Frame)
	if err != nil {
		return err
	}
	level, err := f.Level()
	if err != nil {
		return fmt.Errorf("level of %s: %w", a.Frame, err)
	}
	if level != a.Level {
		return &AssertionError{
			Type:     AssertLevel,
			Expected: fmt.Sprintf("%s at level %d", a.Frame, a.Level),
			Actual:   fmt.Sprintf("level %d", level),
			Trace:    trace,
		}
	}
	return nil
}

func (h *Harness) assertPC(ctx context.Context, a Assertion, trace []TraceEvent) error {
	f, err := h.frameAt(a.Frame)
	if err != nil {
		return err
	}
	at := f.Object().MaxSnap()
	if a.Snap != nil {
		at = span.Snap(*a.Snap)
	}
	pc, ok, err := f.ProgramCounter(ctx, at)
	if err != nil {
		return fmt.Errorf("pc of %s: %w", a.Frame, err)
	}

	switch {
	case a.Absent && ok:
		return &AssertionError{
			Type:     AssertPC,
			Expected: fmt.Sprintf("%s has no PC at snap %d", a.Frame, at),
			Actual:   fmt.Sprintf("PC %s", pc.String()),
			Trace:    trace,
		}
	case !a.Absent && !ok:
		return &AssertionError{
			Type:     AssertPC,
			Expected: fmt.Sprintf("%s has PC %s at snap %d", a.Frame, a.Address, at),
			Actual:   "no PC",
			Trace:    trace,
		}
	case !a.Absent && pc.String() != a.Address:
		return &AssertionError{
			Type:     AssertPC,
			Expected: fmt.Sprintf("%s has PC %s at snap %d", a.Frame, a.Address, at),
			Actual:   fmt.Sprintf("PC %s", pc.String()),
			Trace:    trace,
		}
	}
	return nil
}

func (h *Harness) assertComment(ctx context.Context, a Assertion, trace []TraceEvent) error {
	f, err := h.frameAt(a.Frame)
	if err != nil {
		return err
	}
	body, ok, err := f.Comment(ctx)
	if err != nil {
		return fmt.Errorf("comment of %s: %w", a.Frame, err)
	}

	switch {
	case a.Absent && ok:
		return &AssertionError{
			Type:     AssertComment,
			Expected: fmt.Sprintf("%s has no comment", a.Frame),
			Actual:   fmt.Sprintf("comment %q", body),
			Trace:    trace,
		}
	case !a.Absent && !ok:
		return &AssertionError{
			Type:     AssertComment,
			Expected: fmt.Sprintf("%s has comment %q", a.Frame, a.Body),
			Actual:   "no comment",
			Trace:    trace,
		}
	case !a.Absent && body != a.Body:
		return &AssertionError{
			Type:     AssertComment,
			Expected: fmt.Sprintf("%s has comment %q", a.Frame, a.Body),
			Actual:   fmt.Sprintf("comment %q", body),
			Trace:    trace,
		}
	}
	return nil
}
