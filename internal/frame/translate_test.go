package frame

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timelens/timelens/internal/attr"
	"github.com/timelens/timelens/internal/event"
	"github.com/timelens/timelens/internal/span"
	"github.com/timelens/timelens/internal/store"
)

func TestTranslateObjectInserted(t *testing.T) {
	s := newTestStore(t)
	f := newTestFrame(t, s)

	ev, err := f.TranslateEvent(context.Background(), event.Change{
		Kind:     event.KindObjectInserted,
		ObjectID: f.Object().ID,
		Path:     f.Object().Path,
		Span:     f.Object().Lifespan(),
	})
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.Equal(t, "Threads[0].Stack[0]", ev.StackPath.String())
	assert.Equal(t, span.Snap(0), ev.Snap, "attributed to the lifespan start")
	assert.Equal(t, int64(0), ev.Level)
	assert.Equal(t, store.DefaultSpace, ev.Space)
}

func TestTranslateObjectDeleted(t *testing.T) {
	s := newTestStore(t)
	f := newTestFrame(t, s)

	ev, err := f.TranslateEvent(context.Background(), event.Change{
		Kind:     event.KindObjectDeleted,
		ObjectID: f.Object().ID,
	})
	require.NoError(t, err)
	assert.NotNil(t, ev)
}

func TestTranslateValueChangedOnPC(t *testing.T) {
	s := newTestStore(t)
	f := newTestFrame(t, s)

	ev, err := f.TranslateEvent(context.Background(), event.Change{
		Kind:     event.KindValueChanged,
		ObjectID: f.Object().ID,
		Key:      KeyProgramCounter,
		Span:     span.New(3, 7),
	})
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.Equal(t, span.Snap(3), ev.Snap, "attributed to the changed interval's start")
}

func TestTranslateValueChangedOtherKeyFiltered(t *testing.T) {
	s := newTestStore(t)
	f := newTestFrame(t, s)

	ev, err := f.TranslateEvent(context.Background(), event.Change{
		Kind:     event.KindValueChanged,
		ObjectID: f.Object().ID,
		Key:      "_display",
		Span:     span.New(3, 7),
	})
	require.NoError(t, err)
	assert.Nil(t, ev, "non-PC attribute churn must not reach stack observers")
}

func TestTranslateDetachedFrameSuppressed(t *testing.T) {
	s := newTestStore(t)
	// The containing hierarchy ends at snap 5; a PC change whose
	// interval reaches past that leaves the frame detached at the
	// interval's last snap.
	mustCreate(t, s, "Threads[0].Stack[0]", store.RoleStack, span.New(0, 5))
	mustCreate(t, s, "Threads[0].Stack[0].Frames", "FrameContainer", span.New(0, 5))
	obj := mustCreate(t, s, "Threads[0].Stack[0].Frames[0]", store.RoleFrame, span.New(0, 10))
	f := New(s, obj)

	ev, err := f.TranslateEvent(context.Background(), event.Change{
		Kind:     event.KindValueChanged,
		ObjectID: obj.ID,
		Key:      KeyProgramCounter,
		Span:     span.New(3, 9),
	})
	require.NoError(t, err)
	assert.Nil(t, ev, "stale change on a detached frame is suppressed, not an error")
}

func TestTranslateAttachedAtIntervalEnd(t *testing.T) {
	s := newTestStore(t)
	mustCreate(t, s, "Threads[0].Stack[0]", store.RoleStack, span.New(0, 5))
	mustCreate(t, s, "Threads[0].Stack[0].Frames", "FrameContainer", span.New(0, 5))
	obj := mustCreate(t, s, "Threads[0].Stack[0].Frames[0]", store.RoleFrame, span.New(0, 10))
	f := New(s, obj)

	// The changed interval's last snap (4) is still inside the parent's
	// lifespan, so the frame is attached there and the event fires.
	ev, err := f.TranslateEvent(context.Background(), event.Change{
		Kind:     event.KindValueChanged,
		ObjectID: obj.ID,
		Key:      KeyProgramCounter,
		Span:     span.New(2, 5),
	})
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.Equal(t, span.Snap(2), ev.Snap)
}

func TestTranslateOtherObjectIgnored(t *testing.T) {
	s := newTestStore(t)
	f := newTestFrame(t, s)

	ev, err := f.TranslateEvent(context.Background(), event.Change{
		Kind:     event.KindObjectInserted,
		ObjectID: f.Object().ID + 100,
	})
	require.NoError(t, err)
	assert.Nil(t, ev)
}

func TestTranslateUnknownKindIgnored(t *testing.T) {
	s := newTestStore(t)
	f := newTestFrame(t, s)

	ev, err := f.TranslateEvent(context.Background(), event.Change{
		Kind:     event.Kind("value.lifespan_changed"),
		ObjectID: f.Object().ID,
	})
	require.NoError(t, err)
	assert.Nil(t, ev)
}

func TestTranslateMissingStackIsFatal(t *testing.T) {
	s := newTestStore(t)
	obj := mustCreate(t, s, "Threads[0].Frames[0]", store.RoleFrame, span.New(0, 10))
	f := New(s, obj)

	_, err := f.TranslateEvent(context.Background(), event.Change{
		Kind:     event.KindObjectInserted,
		ObjectID: obj.ID,
	})
	var cerr *ConsistencyError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, CodeNoStackOwner, cerr.Code)
}

func TestTranslateEndToEndThroughStoreNotifications(t *testing.T) {
	// Wire a real mutation through the store's notification to the
	// translator, the way the dispatch loop does.
	s := newTestStore(t)
	f := newTestFrame(t, s)
	ctx := context.Background()

	var changes []event.Change
	s.Subscribe(func(ch event.Change) { changes = append(changes, ch) })

	require.NoError(t, f.SetProgramCounter(ctx, span.New(2, 8), 0x401000))
	require.Len(t, changes, 1)

	ev, err := f.TranslateEvent(ctx, changes[0])
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.Equal(t, span.Snap(2), ev.Snap)

	// And a PC clear translates the same way.
	changes = nil
	require.NoError(t, f.SetProgramCounter(ctx, span.New(2, 8), attr.NoAddress))
	require.Len(t, changes, 1)

	ev, err = f.TranslateEvent(ctx, changes[0])
	require.NoError(t, err)
	assert.NotNil(t, ev)
}
