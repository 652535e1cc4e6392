package store

import (
	"context"
	"testing"

	"github.com/timelens/timelens/internal/event"
	"github.com/timelens/timelens/internal/path"
	"github.com/timelens/timelens/internal/span"
)

func TestCreateObjectRoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	obj := createTestObject(t, s, "Processes[0].Threads[1]", RoleThread, span.New(0, 10))

	g := s.LockRead()
	defer g.Release()

	got, err := s.ObjectByPath(ctx, path.MustParse("Processes[0].Threads[1]"))
	if err != nil {
		t.Fatalf("ObjectByPath failed: %v", err)
	}
	if got == nil {
		t.Fatal("ObjectByPath returned nil for existing object")
	}
	if got.ID != obj.ID {
		t.Errorf("ID = %d, want %d", got.ID, obj.ID)
	}
	if got.Role != RoleThread {
		t.Errorf("Role = %q, want %q", got.Role, RoleThread)
	}
	if got.Life != span.New(0, 10) {
		t.Errorf("Life = %v, want [0,10)", got.Life)
	}
	if got.MinSnap() != 0 || got.MaxSnap() != 9 {
		t.Errorf("MinSnap/MaxSnap = %d/%d, want 0/9", got.MinSnap(), got.MaxSnap())
	}
}

func TestObjectByPathAbsent(t *testing.T) {
	s := createTestStore(t)

	g := s.LockRead()
	defer g.Release()

	got, err := s.ObjectByPath(context.Background(), path.MustParse("Nowhere"))
	if err != nil {
		t.Fatalf("ObjectByPath failed: %v", err)
	}
	if got != nil {
		t.Errorf("ObjectByPath = %+v, want nil for absent path", got)
	}
}

func TestCreateObjectDuplicatePath(t *testing.T) {
	s := createTestStore(t)
	createTestObject(t, s, "Processes[0]", "", span.New(0, 10))

	g := s.LockWrite()
	defer g.Release()

	_, err := s.CreateObject(context.Background(), path.MustParse("Processes[0]"), "", span.New(5, 15))
	if err == nil {
		t.Error("expected error for duplicate canonical path")
	}
}

func TestCreateObjectEmptyLifespan(t *testing.T) {
	s := createTestStore(t)

	g := s.LockWrite()
	defer g.Release()

	_, err := s.CreateObject(context.Background(), path.MustParse("X"), "", span.Span{})
	if err == nil {
		t.Error("expected error for empty lifespan")
	}
}

func TestDeleteObject(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	obj := createTestObject(t, s, "Processes[0]", "", span.New(0, 10))

	g := s.LockWrite()
	if err := s.DeleteObject(ctx, obj); err != nil {
		t.Fatalf("DeleteObject failed: %v", err)
	}
	// Deleting twice is a silent no-op.
	if err := s.DeleteObject(ctx, obj); err != nil {
		t.Fatalf("second DeleteObject failed: %v", err)
	}
	g.Release()

	g = s.LockRead()
	defer g.Release()
	got, err := s.ObjectByPath(ctx, obj.Path)
	if err != nil {
		t.Fatalf("ObjectByPath failed: %v", err)
	}
	if got != nil {
		t.Error("object still present after delete")
	}
}

func TestCanonicalParent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	createTestObject(t, s, "Threads[0].Stack[0]", RoleStack, span.New(0, 5))
	frame := createTestObject(t, s, "Threads[0].Stack[0].Frames[2]", RoleFrame, span.New(0, 10))

	g := s.LockRead()
	defer g.Release()

	// Present: both lifespans contain the snap.
	parent, err := s.CanonicalParent(ctx, frame, 3)
	if err != nil {
		t.Fatalf("CanonicalParent failed: %v", err)
	}
	if parent == nil || parent.Path.String() != "Threads[0].Stack[0]" {
		t.Errorf("parent = %+v, want Threads[0].Stack[0]", parent)
	}

	// Detached: the parent's lifespan ended at snap 5.
	parent, err = s.CanonicalParent(ctx, frame, 7)
	if err != nil {
		t.Fatalf("CanonicalParent failed: %v", err)
	}
	if parent != nil {
		t.Errorf("parent = %+v at snap 7, want nil (detached)", parent)
	}

	// Outside the object's own lifespan.
	parent, err = s.CanonicalParent(ctx, frame, 20)
	if err != nil {
		t.Fatalf("CanonicalParent failed: %v", err)
	}
	if parent != nil {
		t.Errorf("parent = %+v outside lifespan, want nil", parent)
	}
}

func TestQueryAncestors(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	createTestObject(t, s, "Threads[0]", RoleThread, span.New(0, 20))
	createTestObject(t, s, "Threads[0].Stack[0]", RoleStack, span.New(0, 20))
	frame := createTestObject(t, s, "Threads[0].Stack[0].Frames[3]", RoleFrame, span.New(0, 10))

	g := s.LockRead()
	defer g.Release()

	stacks, err := s.QueryAncestors(ctx, frame, frame.Life, RoleStack)
	if err != nil {
		t.Fatalf("QueryAncestors failed: %v", err)
	}
	if len(stacks) != 1 {
		t.Fatalf("found %d stack ancestors, want 1", len(stacks))
	}
	if stacks[0].Path.String() != "Threads[0].Stack[0]" {
		t.Errorf("stack = %q", stacks[0].Path.String())
	}

	// Role filter: asking for threads skips the stack.
	threads, err := s.QueryAncestors(ctx, frame, frame.Life, RoleThread)
	if err != nil {
		t.Fatalf("QueryAncestors failed: %v", err)
	}
	if len(threads) != 1 || threads[0].Path.String() != "Threads[0]" {
		t.Errorf("threads = %+v, want just Threads[0]", threads)
	}

	// Span filter: no ancestor overlaps a span past every lifespan.
	none, err := s.QueryAncestors(ctx, frame, span.New(30, 40), RoleStack)
	if err != nil {
		t.Fatalf("QueryAncestors failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("found %d ancestors outside all lifespans, want 0", len(none))
	}
}

func TestObjectLifecycleNotifications(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	var got []event.Change
	s.Subscribe(func(ch event.Change) { got = append(got, ch) })

	g := s.LockWrite()
	obj, err := s.CreateObject(ctx, path.MustParse("Threads[0]"), RoleThread, span.New(0, 10))
	if err != nil {
		t.Fatalf("CreateObject failed: %v", err)
	}
	if err := s.DeleteObject(ctx, obj); err != nil {
		t.Fatalf("DeleteObject failed: %v", err)
	}
	g.Release()

	if len(got) != 2 {
		t.Fatalf("got %d changes, want 2", len(got))
	}
	if got[0].Kind != event.KindObjectInserted || got[1].Kind != event.KindObjectDeleted {
		t.Errorf("kinds = %q, %q", got[0].Kind, got[1].Kind)
	}
	if got[0].ObjectID != obj.ID || got[0].Span != obj.Life {
		t.Errorf("inserted change = %+v", got[0])
	}
}
