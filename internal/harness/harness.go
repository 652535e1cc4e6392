package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/timelens/timelens/internal/attr"
	"github.com/timelens/timelens/internal/engine"
	"github.com/timelens/timelens/internal/event"
	"github.com/timelens/timelens/internal/frame"
	"github.com/timelens/timelens/internal/path"
	"github.com/timelens/timelens/internal/span"
	"github.com/timelens/timelens/internal/store"
	"github.com/timelens/timelens/internal/testutil"
)

// Harness is the scenario execution engine.
// It runs scenarios against a fresh in-memory store with a fixed trace
// token and a deterministic snap clock.
type Harness struct {
	store   *store.Store
	clock   *testutil.SnapClock
	objects map[string]*store.Object
	logger  *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Events flow through the real dispatch queue: mutations enqueue store
// changes, and a drain pass after the flow translates them in order.
//
// Execution flow:
//  1. Create fresh in-memory store with the scenario's trace token
//  2. Create the setup hierarchy (raising real insertion events)
//  3. Execute flow steps, recording expectation failures
//  4. Drain the dispatcher into the event trace
//  5. Evaluate assertions against trace and final state
func Run(scenario *Scenario) (*Result, error) {
	opts := []store.Option{
		store.WithTraceToken(testutil.NewFixedTokenGenerator(scenario.TraceToken).Generate()),
	}
	if scenario.Space != "" {
		opts = append(opts, store.WithSpace(scenario.Space))
	}
	st, err := store.Open(":memory:", opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	d := engine.New(st)
	var events []event.StackChanged
	d.OnStackChanged(func(ev event.StackChanged) { events = append(events, ev) })

	h := &Harness{
		store:   st,
		clock:   testutil.NewSnapClock(),
		objects: make(map[string]*store.Object),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}

	ctx := context.Background()
	result := NewResult()

	if err := h.executeSetup(ctx, scenario.Setup); err != nil {
		return nil, err
	}
	if err := h.executeFlow(ctx, scenario.Flow, result); err != nil {
		return nil, err
	}

	// Drain on this goroutine: deterministic ordering, no races with
	// the events slice.
	d.Close()
	if err := d.Run(ctx); err != nil {
		return nil, fmt.Errorf("dispatch failed: %w", err)
	}

	for i, ev := range events {
		result.Trace = append(result.Trace, TraceEvent{
			Seq:   int64(i + 1),
			Stack: ev.StackPath.String(),
			Snap:  int64(ev.Snap),
			Level: ev.Level,
			Space: ev.Space,
		})
	}

	h.evaluateAssertions(ctx, scenario.Assertions, result)
	return result, nil
}

func (h *Harness) executeSetup(ctx context.Context, steps []SetupStep) error {
	g := h.store.LockWrite()
	defer g.Release()

	for i, step := range steps {
		p, err := path.Parse(step.Path)
		if err != nil {
			return fmt.Errorf("setup[%d]: %w", i, err)
		}
		obj, err := h.store.CreateObject(ctx, p, step.Role, step.Life.span())
		if err != nil {
			return fmt.Errorf("setup[%d]: create %s: %w", i, step.Path, err)
		}
		h.objects[step.Path] = obj
		h.logger.Debug("setup created", "path", step.Path, "role", step.Role)
	}
	return nil
}

func (h *Harness) executeFlow(ctx context.Context, steps []FlowStep, result *Result) error {
	for i, step := range steps {
		var err error
		switch {
		case step.SetPC != nil:
			err = h.stepSetPC(ctx, step.SetPC)
		case step.ClearPC != nil:
			err = h.stepClearPC(ctx, step.ClearPC)
		case step.SetValue != nil:
			err = h.stepSetValue(ctx, step.SetValue)
		case step.SetComment != nil:
			err = h.stepSetComment(ctx, step.SetComment, result)
		case step.Delete != nil:
			err = h.stepDelete(ctx, step.Delete)
		}
		if err != nil {
			return fmt.Errorf("flow[%d]: %w", i, err)
		}
	}
	return nil
}

func (h *Harness) frameAt(pathStr string) (*frame.Frame, error) {
	obj := h.objects[pathStr]
	if obj == nil {
		return nil, fmt.Errorf("no object at %s", pathStr)
	}
	return frame.New(h.store, obj), nil
}

// stepSpan resolves an optional step interval; absent spans act at the
// clock's next tick.
func (h *Harness) stepSpan(spec *SpanSpec) span.Span {
	if spec == nil {
		return span.At(h.clock.Next())
	}
	return spec.span()
}

func (h *Harness) stepSetPC(ctx context.Context, step *SetPCStep) error {
	f, err := h.frameAt(step.Frame)
	if err != nil {
		return err
	}
	addr, err := attr.ParseAddress(step.Address)
	if err != nil {
		return fmt.Errorf("set_pc address %q: %w", step.Address, err)
	}
	return f.SetProgramCounter(ctx, h.stepSpan(step.Span), addr)
}

func (h *Harness) stepClearPC(ctx context.Context, step *ClearPCStep) error {
	f, err := h.frameAt(step.Frame)
	if err != nil {
		return err
	}
	return f.SetProgramCounter(ctx, h.stepSpan(step.Span), attr.NoAddress)
}

func (h *Harness) stepSetValue(ctx context.Context, step *SetValueStep) error {
	obj := h.objects[step.Object]
	if obj == nil {
		return fmt.Errorf("no object at %s", step.Object)
	}
	v, err := attr.Decode(step.Kind, step.Value)
	if err != nil {
		return fmt.Errorf("set_value %s.%s: %w", step.Object, step.Key, err)
	}
	g := h.store.LockWrite()
	defer g.Release()
	return h.store.SetValue(ctx, obj, h.stepSpan(step.Span), step.Key, v)
}

func (h *Harness) stepSetComment(ctx context.Context, step *SetCommentStep, result *Result) error {
	f, err := h.frameAt(step.Frame)
	if err != nil {
		return err
	}
	err = f.SetComment(ctx, step.Text)
	if step.ExpectError {
		if err == nil {
			result.AddError(fmt.Sprintf("set_comment on %s: expected an error, got none", step.Frame))
		}
		return nil
	}
	return err
}

func (h *Harness) stepDelete(ctx context.Context, step *DeleteStep) error {
	obj := h.objects[step.Path]
	if obj == nil {
		return fmt.Errorf("no object at %s", step.Path)
	}
	g := h.store.LockWrite()
	defer g.Release()
	return h.store.DeleteObject(ctx, obj)
}

func (s *SpanSpec) span() span.Span {
	return span.New(span.Snap(s.Min), span.Snap(s.Max))
}
