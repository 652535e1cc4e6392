package span

import "fmt"

// Snap is a point on the logical versioning time axis.
type Snap int64

// Span is a half-open interval [Min, Max) of snaps.
//
// The zero Span is empty. Construct spans with New, At, or All rather
// than struct literals so that malformed bounds collapse to empty.
type Span struct {
	Min Snap `json:"min"`
	Max Snap `json:"max"`
}

// Extremes of the snap axis, used by All.
const (
	minSnap Snap = -1 << 63
	maxSnap Snap = 1<<63 - 1
)

// New returns the span [min, max). If max <= min the result is empty.
func New(min, max Snap) Span {
	if max <= min {
		return Span{}
	}
	return Span{Min: min, Max: max}
}

// At returns the single-snap span [snap, snap+1).
func At(snap Snap) Span {
	return Span{Min: snap, Max: snap + 1}
}

// All returns the span covering the entire snap axis.
func All() Span {
	return Span{Min: minSnap, Max: maxSnap}
}

// IsEmpty reports whether the span contains no snaps.
func (s Span) IsEmpty() bool {
	return s.Max <= s.Min
}

// Contains reports whether snap lies within [Min, Max).
func (s Span) Contains(snap Snap) bool {
	return snap >= s.Min && snap < s.Max
}

// Last returns the greatest snap contained in the span.
// Undefined for empty spans; callers must check IsEmpty first.
func (s Span) Last() Snap {
	return s.Max - 1
}

// Intersect returns the overlap of s and o, or an empty span.
func (s Span) Intersect(o Span) Span {
	min := s.Min
	if o.Min > min {
		min = o.Min
	}
	max := s.Max
	if o.Max < max {
		max = o.Max
	}
	return New(min, max)
}

// Overlaps reports whether s and o share at least one snap.
func (s Span) Overlaps(o Span) bool {
	return !s.Intersect(o).IsEmpty()
}

// Encloses reports whether s contains every snap of o.
// Every span encloses the empty span.
func (s Span) Encloses(o Span) bool {
	if o.IsEmpty() {
		return true
	}
	return s.Min <= o.Min && o.Max <= s.Max
}

// String renders the span as "[min,max)". Empty spans render as "[)".
func (s Span) String() string {
	if s.IsEmpty() {
		return "[)"
	}
	return fmt.Sprintf("[%d,%d)", s.Min, s.Max)
}
