package path

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Parse tokenizes the canonical string form of a path.
//
// Name segments are separated by "."; index segments are bracketed and
// may follow a name segment directly ("Stack[3]") or stand alone. Every
// segment is NFC-normalized so that visually identical paths produced
// by different debug connectors compare equal byte-wise.
//
// Parse("") returns the empty (root) path.
func Parse(s string) (Path, error) {
	if s == "" {
		return nil, nil
	}

	var p Path
	var name strings.Builder
	flushName := func() error {
		if name.Len() == 0 {
			return nil
		}
		p = append(p, Canonicalize(name.String()))
		name.Reset()
		return nil
	}

	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '.':
			// A dot directly after a closing bracket separates the
			// index from the next name; only a dot with neither a
			// pending name nor a preceding bracket is malformed.
			if name.Len() == 0 && (i == 0 || s[i-1] != ']') {
				return nil, fmt.Errorf("parse path %q: empty segment at offset %d", s, i)
			}
			if err := flushName(); err != nil {
				return nil, err
			}
		case '[':
			if err := flushName(); err != nil {
				return nil, err
			}
			end := strings.IndexByte(s[i:], ']')
			if end < 0 {
				return nil, fmt.Errorf("parse path %q: unclosed index at offset %d", s, i)
			}
			p = append(p, Canonicalize(s[i:i+end+1]))
			i += end
		case ']':
			return nil, fmt.Errorf("parse path %q: unmatched ']' at offset %d", s, i)
		default:
			name.WriteByte(c)
		}
	}
	if err := flushName(); err != nil {
		return nil, err
	}
	return p, nil
}

// MustParse is Parse for static paths in tests and fixtures.
// Panics on malformed input.
func MustParse(s string) Path {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Canonicalize returns the NFC normal form of a single segment.
func Canonicalize(seg string) string {
	return norm.NFC.String(seg)
}
