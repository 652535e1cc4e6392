// Package event defines the change notifications raised by the store
// and the higher-level domain events translated from them.
//
// Change is the low-level side: every mutation of the versioned object
// store raises exactly one Change. StackChanged is the high-level side:
// the frame facade translates qualifying changes on frame objects into
// stack events for observers that only care about call-stack semantics.
//
// This package contains type definitions only; it imports nothing
// internal beyond the path and span primitives.
package event

import (
	"github.com/timelens/timelens/internal/path"
	"github.com/timelens/timelens/internal/span"
)

// Kind identifies the type of a low-level store change.
type Kind string

const (
	// KindObjectInserted records a new object entering the store.
	KindObjectInserted Kind = "object.inserted"
	// KindObjectDeleted records an object leaving the store.
	KindObjectDeleted Kind = "object.deleted"
	// KindValueChanged records an attribute value write on an object.
	KindValueChanged Kind = "value.changed"
)

// Change is a low-level store change notification.
//
// For KindValueChanged, Key and Span describe the affected attribute
// triple: Key is the attribute name and Span the interval the new value
// covers after narrowing to the object's lifespan. For object-level
// kinds, Span is the object's lifespan and Key is empty. Role carries
// the affected object's role so that dispatchers can route changes to
// the right projection without a store lookup.
type Change struct {
	Kind     Kind
	ObjectID int64
	Path     path.Path
	Role     string
	Key      string
	Span     span.Span
}

// StackChanged is the domain event emitted when a call stack's shape or
// content changed: a frame appeared, disappeared, or moved its program
// counter.
//
// Space qualifies the address space the stack's frames execute in.
// Level is reserved and always zero; per-frame attribution is carried
// by the frame's own path, not by the stack event.
type StackChanged struct {
	Space     string
	StackID   int64
	StackPath path.Path
	Level     int64
	Snap      span.Snap
}
