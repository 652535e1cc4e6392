package store

import (
	"context"
	"testing"

	"github.com/timelens/timelens/internal/path"
	"github.com/timelens/timelens/internal/span"
)

// createTestStore opens a fresh in-memory trace with a fixed token.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:", WithTraceToken("test-trace"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestObject inserts an object under a write guard.
func createTestObject(t *testing.T, s *Store, pathStr, role string, life span.Span) *Object {
	t.Helper()
	g := s.LockWrite()
	defer g.Release()

	obj, err := s.CreateObject(context.Background(), path.MustParse(pathStr), role, life)
	if err != nil {
		t.Fatalf("CreateObject(%q) failed: %v", pathStr, err)
	}
	return obj
}
