package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/timelens/timelens/internal/event"
	"github.com/timelens/timelens/internal/frame"
	"github.com/timelens/timelens/internal/store"
)

// Dispatcher drains store change notifications and delivers translated
// stack events to subscribers.
//
// Thread-safety model:
//   - the store listener (enqueue) is safe from any goroutine
//   - Run must be called from exactly one goroutine
//   - OnStackChanged is safe before and during Run
type Dispatcher struct {
	store *store.Store
	queue *changeQueue

	subsMu sync.Mutex
	subs   []func(event.StackChanged)
}

// New creates a dispatcher and hooks it into the store's change
// notifications. Changes raised before Run starts are buffered.
func New(s *store.Store) *Dispatcher {
	d := &Dispatcher{
		store: s,
		queue: newChangeQueue(),
	}
	s.Subscribe(func(ch event.Change) {
		d.queue.Enqueue(ch)
	})
	return d
}

// OnStackChanged registers a subscriber for translated stack events.
// Subscribers run on the dispatch goroutine and must not block.
func (d *Dispatcher) OnStackChanged(fn func(event.StackChanged)) {
	d.subsMu.Lock()
	defer d.subsMu.Unlock()
	d.subs = append(d.subs, fn)
}

// Close stops intake. Run drains what was already enqueued and exits.
func (d *Dispatcher) Close() {
	d.queue.Close()
}

// Run processes changes until the context is cancelled or the queue is
// closed and drained. Translation errors stop the loop.
func (d *Dispatcher) Run(ctx context.Context) error {
	slog.Info("dispatcher starting", "trace", d.store.TraceToken())

	for {
		if ch, ok := d.queue.TryDequeue(); ok {
			if err := d.process(ctx, ch); err != nil {
				slog.Error("dispatch failed", "kind", ch.Kind, "path", ch.Path.String(), "error", err)
				return err
			}
			continue
		}
		if d.queue.Closed() {
			slog.Info("dispatcher stopping: queue closed")
			return nil
		}

		select {
		case <-ctx.Done():
			slog.Info("dispatcher stopping: context cancelled")
			return ctx.Err()
		case <-d.queue.Wait():
		}
	}
}

// process translates one change and fans the result out.
func (d *Dispatcher) process(ctx context.Context, ch event.Change) error {
	if ch.Role != store.RoleFrame {
		return nil
	}

	obj, err := d.resolveObject(ctx, ch)
	if err != nil {
		return err
	}
	if obj == nil {
		// The object vanished between mutation and dispatch; whatever
		// deleted it raised its own change.
		return nil
	}

	ev, err := frame.New(d.store, obj).TranslateEvent(ctx, ch)
	if err != nil {
		return fmt.Errorf("translate %s for %s: %w", ch.Kind, ch.Path.String(), err)
	}
	if ev == nil {
		return nil
	}

	slog.Debug("stack changed",
		"stack", ev.StackPath.String(),
		"snap", int64(ev.Snap),
	)

	d.subsMu.Lock()
	subs := d.subs
	d.subsMu.Unlock()
	for _, fn := range subs {
		fn(*ev)
	}
	return nil
}

// resolveObject rebuilds the object handle a change refers to. Deleted
// objects have no row left, so their handle is reconstructed from the
// change itself, which carries the lifespan for object-level kinds.
func (d *Dispatcher) resolveObject(ctx context.Context, ch event.Change) (*store.Object, error) {
	if ch.Kind == event.KindObjectDeleted {
		return &store.Object{ID: ch.ObjectID, Path: ch.Path, Role: ch.Role, Life: ch.Span}, nil
	}

	g := d.store.LockRead()
	defer g.Release()
	obj, err := d.store.ObjectByID(ctx, ch.ObjectID)
	if err != nil {
		return nil, fmt.Errorf("resolve object %d: %w", ch.ObjectID, err)
	}
	return obj, nil
}
