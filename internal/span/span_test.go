package span

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCollapsesInverted(t *testing.T) {
	assert.True(t, New(5, 5).IsEmpty())
	assert.True(t, New(10, 3).IsEmpty())
	assert.False(t, New(0, 1).IsEmpty())
}

func TestContainsHalfOpen(t *testing.T) {
	s := New(2, 7)

	assert.True(t, s.Contains(2), "min endpoint is inside")
	assert.True(t, s.Contains(6))
	assert.False(t, s.Contains(7), "max endpoint is outside")
	assert.False(t, s.Contains(1))
}

func TestAt(t *testing.T) {
	s := At(4)

	assert.True(t, s.Contains(4))
	assert.False(t, s.Contains(5))
	assert.Equal(t, Snap(4), s.Last())
}

func TestIntersect(t *testing.T) {
	tests := []struct {
		name string
		a, b Span
		want Span
	}{
		{"overlap", New(0, 10), New(5, 15), New(5, 10)},
		{"nested", New(0, 10), New(3, 6), New(3, 6)},
		{"adjacent", New(0, 5), New(5, 10), Span{}},
		{"disjoint", New(0, 3), New(7, 9), Span{}},
		{"identical", New(1, 4), New(1, 4), New(1, 4)},
		{"with empty", New(0, 10), Span{}, Span{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.a.Intersect(tt.b)
			if tt.want.IsEmpty() {
				assert.True(t, got.IsEmpty())
			} else {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestIntersectCommutative(t *testing.T) {
	a, b := New(0, 10), New(5, 15)
	assert.Equal(t, a.Intersect(b), b.Intersect(a))
}

func TestEncloses(t *testing.T) {
	assert.True(t, New(0, 10).Encloses(New(0, 10)))
	assert.True(t, New(0, 10).Encloses(New(3, 7)))
	assert.True(t, New(0, 10).Encloses(Span{}), "every span encloses empty")
	assert.False(t, New(0, 10).Encloses(New(5, 11)))
}

func TestAllEnclosesEverything(t *testing.T) {
	assert.True(t, All().Encloses(New(-1000, 1000)))
	assert.True(t, All().Contains(0))
}

func TestString(t *testing.T) {
	assert.Equal(t, "[0,5)", New(0, 5).String())
	assert.Equal(t, "[)", Span{}.String())
}
