package path

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNoIndex reports that a path contains no parseable index segment.
//
// For frame paths this is a data-consistency violation: the producer
// emitted a frame outside any indexed container, so no level can be
// derived. Callers must not substitute a default.
var ErrNoIndex = errors.New("path has no index segment")

// Path is an ordered sequence of canonical path segments, root first.
// Index segments retain their brackets (e.g. "[0]").
type Path []string

// IsIndex reports whether seg is syntactically an index segment:
// either bracketed ("[...]") or a bare run of decimal digits.
//
// IsIndex is a shape check only. A bracketed segment may still fail
// ParseIndex if its content is not decimal.
func IsIndex(seg string) bool {
	if len(seg) == 0 {
		return false
	}
	if seg[0] == '[' {
		return strings.HasSuffix(seg, "]")
	}
	for i := 0; i < len(seg); i++ {
		if seg[i] < '0' || seg[i] > '9' {
			return false
		}
	}
	return true
}

// ParseIndex extracts the numeric value of an index segment.
// Brackets are stripped before parsing; the content must be decimal.
func ParseIndex(seg string) (int64, error) {
	body := seg
	if strings.HasPrefix(body, "[") && strings.HasSuffix(body, "]") {
		body = body[1 : len(body)-1]
	}
	n, err := strconv.ParseInt(body, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse index %q: %w", seg, err)
	}
	return n, nil
}

// LastIndex scans the path from its last segment backward and returns
// the value of the first index segment that parses as decimal.
//
// Segments that are index-shaped but non-decimal (e.g. "[deadbeef]")
// are skipped and scanning continues toward the root. A path with no
// parseable index anywhere fails with ErrNoIndex.
func (p Path) LastIndex() (int64, error) {
	for i := len(p) - 1; i >= 0; i-- {
		if !IsIndex(p[i]) {
			continue
		}
		n, err := ParseIndex(p[i])
		if err != nil {
			// Unparseable index shape falls through to the
			// preceding segment.
			continue
		}
		return n, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrNoIndex, p.String())
}

// Parent returns the path with its last segment removed.
// The parent of an empty or single-segment path is the empty path.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return nil
	}
	return p[:len(p)-1]
}

// Key returns the last segment, or "" for the empty path.
func (p Path) Key() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// IsRoot reports whether the path is empty.
func (p Path) IsRoot() bool {
	return len(p) == 0
}

// Equal reports segment-wise equality.
func (p Path) Equal(o Path) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

// String renders the canonical string form: name segments joined with
// ".", bracketed index segments appended directly. Bare-decimal index
// segments are rendered bracketed so the string form round-trips.
func (p Path) String() string {
	var b strings.Builder
	for i, seg := range p {
		switch {
		case IsIndex(seg) && !strings.HasPrefix(seg, "["):
			b.WriteString("[")
			b.WriteString(seg)
			b.WriteString("]")
		case IsIndex(seg):
			b.WriteString(seg)
		default:
			if i > 0 {
				b.WriteString(".")
			}
			b.WriteString(seg)
		}
	}
	return b.String()
}
