package frame

import (
	"context"

	"github.com/timelens/timelens/internal/event"
	"github.com/timelens/timelens/internal/span"
)

// TranslateEvent classifies a low-level store change on this frame's
// object and, when it is semantically a stack change, emits the
// corresponding StackChanged event. A nil event with a nil error means
// the change was filtered, which is the normal outcome for most churn:
//
//   - object inserted or deleted: always a stack change.
//   - value changed on the program-counter key: a stack change, unless
//     the frame is detached from the hierarchy at the changed
//     interval's last snap - then the change is stale and suppressed.
//   - value changed on any other key: never a stack change; attribute
//     churn must not spam stack observers.
//
// The attributed snap is the changed interval's start for value
// changes, else the frame lifespan's start. The owning stack is
// resolved fresh on every emission; failing to resolve it is a fatal
// consistency violation, exactly as in Stack.
//
// Changes for other objects are ignored; callers route changes by
// object before translating.
func (f *Frame) TranslateEvent(ctx context.Context, ch event.Change) (*event.StackChanged, error) {
	if ch.ObjectID != f.obj.ID {
		return nil, nil
	}

	switch ch.Kind {
	case event.KindObjectInserted, event.KindObjectDeleted:
		return f.emit(ctx, f.obj.MinSnap())

	case event.KindValueChanged:
		if ch.Key != KeyProgramCounter {
			return nil, nil
		}
		g := f.store.LockRead()
		defer g.Release()

		parent, err := f.store.CanonicalParent(ctx, f.obj, ch.Span.Last())
		if err != nil {
			return nil, err
		}
		if parent == nil {
			// Detached: stale change, suppressed.
			return nil, nil
		}
		return f.emitLocked(ctx, ch.Span.Min)

	default:
		return nil, nil
	}
}

func (f *Frame) emit(ctx context.Context, snap span.Snap) (*event.StackChanged, error) {
	g := f.store.LockRead()
	defer g.Release()
	return f.emitLocked(ctx, snap)
}

func (f *Frame) emitLocked(ctx context.Context, snap span.Snap) (*event.StackChanged, error) {
	stack, err := f.stack(ctx)
	if err != nil {
		return nil, err
	}
	return &event.StackChanged{
		Space:     f.store.Space(),
		StackID:   stack.ID,
		StackPath: stack.Path,
		Level:     0,
		Snap:      snap,
	}, nil
}
