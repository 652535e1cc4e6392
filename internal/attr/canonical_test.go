package attr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalScalars(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"string", "hello", `"hello"`},
		{"int", 42, "42"},
		{"int64", int64(-7), "-7"},
		{"bool", true, "true"},
		{"attr string", String("x"), `"x"`},
		{"attr int", Int(9), "9"},
		{"attr addr", Address(0x10), `"0x10"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarshalCanonical(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestMarshalCanonicalRejectsFloats(t *testing.T) {
	_, err := MarshalCanonical(1.5)
	assert.Error(t, err)

	_, err = MarshalCanonical(map[string]any{"x": 1.5})
	assert.Error(t, err)
}

func TestMarshalCanonicalRejectsNull(t *testing.T) {
	_, err := MarshalCanonical(nil)
	assert.Error(t, err)
}

func TestMarshalCanonicalObjectSortedKeys(t *testing.T) {
	got, err := MarshalCanonical(map[string]any{
		"zebra": 1,
		"apple": 2,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"apple":2,"zebra":1}`, string(got))
}

func TestMarshalCanonicalNoHTMLEscaping(t *testing.T) {
	got, err := MarshalCanonical("a<b&c>d")
	require.NoError(t, err)
	assert.Equal(t, `"a<b&c>d"`, string(got))
}

func TestMarshalCanonicalNFCNormalizes(t *testing.T) {
	// Combining sequence and precomposed form must serialize identically.
	a, err := MarshalCanonical("Café")
	require.NoError(t, err)
	b, err := MarshalCanonical("Café")
	require.NoError(t, err)
	assert.Equal(t, b, a)
}

func TestMarshalCanonicalNested(t *testing.T) {
	got, err := MarshalCanonical(map[string]any{
		"events": []any{
			map[string]any{"kind": "stack.changed", "snap": 3},
		},
		"count": 1,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"count":1,"events":[{"kind":"stack.changed","snap":3}]}`, string(got))
}
