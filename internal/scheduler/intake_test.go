package scheduler

import (
	"os"
	"path/filepath"
	"testing"

	"SignalSentinel/internal/recorder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSignalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "signals.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"symbol":"WIPRO","side":"LONG","entry":241,"target":247,"stop_loss":238.1,"date":"2025-11-12"},
		{"id":"keep-me","symbol":"TCS","side":"SHORT","entry":3500,"target":3450,"stop_loss":3525,"date":"2025-11-12"},
		{"symbol":"BROKEN","side":"LONG","entry":100,"target":90,"stop_loss":80,"date":"2025-11-12"}
	]`), 0o644))

	rec := recorder.NewMemoryRecorder()
	s := &Scheduler{Recorder: rec}

	stored, dropped, err := s.LoadSignalFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, stored)
	assert.Equal(t, 1, dropped)

	sigs, err := rec.SignalsForDate("2025-11-12")
	require.NoError(t, err)
	require.Len(t, sigs, 2)
	for _, sig := range sigs {
		assert.NotEmpty(t, sig.ID, "intake must assign missing ids")
		assert.NotEqual(t, "BROKEN", sig.Symbol)
	}
}

func TestLoadSignalFile_BadInput(t *testing.T) {
	rec := recorder.NewMemoryRecorder()
	s := &Scheduler{Recorder: rec}

	_, _, err := s.LoadSignalFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "garbage.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))
	_, _, err = s.LoadSignalFile(path)
	assert.Error(t, err)
}
