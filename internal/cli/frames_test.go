package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func framesJSON(t *testing.T, args ...string) FramesResult {
	t.Helper()
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewFramesCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())

	var resp struct {
		Status string       `json:"status"`
		Data   FramesResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	require.Equal(t, "ok", resp.Status)
	return resp.Data
}

func TestFramesListsLoadedFrames(t *testing.T) {
	dbPath := loadTestDB(t)

	result := framesJSON(t, "--db", dbPath)
	assert.Equal(t, "01890000-0000-7000-8000-000000000001", result.Trace)
	require.Len(t, result.Frames, 2)

	assert.Equal(t, "Threads[0].Stack[0].Frames[0]", result.Frames[0].Path)
	assert.Equal(t, int64(0), result.Frames[0].Level)
	assert.Equal(t, "Threads[0].Stack[0]", result.Frames[0].Stack)
	assert.Equal(t, "0x401000", result.Frames[0].PC)
	assert.Equal(t, "entry point", result.Frames[0].Comment, "comment rides on the frame's PC address")

	assert.Equal(t, int64(1), result.Frames[1].Level)
	assert.Equal(t, "0x40200c", result.Frames[1].PC)
	assert.Empty(t, result.Frames[1].Comment)
}

func TestFramesSnapOutsideLifespans(t *testing.T) {
	dbPath := loadTestDB(t)

	result := framesJSON(t, "--db", dbPath, "--snap", "12")
	assert.Empty(t, result.Frames, "no frame lifespan contains snap 12")
}

func TestFramesStackFilter(t *testing.T) {
	dbPath := loadTestDB(t)

	result := framesJSON(t, "--db", dbPath, "--stack", "Threads[0].Stack[0]")
	assert.Len(t, result.Frames, 2)

	result = framesJSON(t, "--db", dbPath, "--stack", "Threads[1].Stack[0]")
	assert.Empty(t, result.Frames)
}

func TestFramesTextOutput(t *testing.T) {
	dbPath := loadTestDB(t)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewFramesCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath})
	require.NoError(t, cmd.Execute())

	out := buf.String()
	assert.Contains(t, out, "Threads[0].Stack[0].Frames[0]")
	assert.Contains(t, out, "level=0")
	assert.Contains(t, out, "0x401000")
}
