package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"SignalSentinel/internal/marketdata"
	"SignalSentinel/internal/recorder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePrimary is a canned broker API for command tests.
type fakePrimary struct {
	ids     map[string]string
	pingErr error
}

func (f *fakePrimary) Ping(context.Context) error { return f.pingErr }

func (f *fakePrimary) FindSecurityID(_ context.Context, symbol string) (string, error) {
	if id, ok := f.ids[symbol]; ok {
		return id, nil
	}
	return "", errors.New("no match in scrip master")
}

func commandScheduler(t *testing.T) *Scheduler {
	t.Helper()
	ids, err := marketdata.LoadSecurityIDs(filepath.Join(t.TempDir(), "ids.json"), "NSE_EQ")
	require.NoError(t, err)
	return &Scheduler{
		Recorder: recorder.NewMemoryRecorder(),
		IDs:      ids,
		Ctx:      context.Background(),
	}
}

func TestHandleCommand_Routing(t *testing.T) {
	s := commandScheduler(t)

	assert.Contains(t, s.HandleCommand("/backtest not-a-date"), "Invalid date")
	assert.Equal(t, "No backtest runs recorded yet.", s.HandleCommand("/status"))
	assert.Contains(t, s.HandleCommand("/signals 2025-11-12"), "No signals stored for 2025-11-12")
	assert.Contains(t, s.HandleCommand("/load"), "Usage:")
	assert.Equal(t, "Primary provider is not configured.", s.HandleCommand("/ping"))
	assert.Contains(t, s.HandleCommand("/help"), "/backtest")
	assert.Empty(t, s.HandleCommand("   "))
}

func TestHandleCommand_SetID(t *testing.T) {
	s := commandScheduler(t)

	assert.Contains(t, s.HandleCommand("/setid"), "Usage:")
	assert.Contains(t, s.HandleCommand("/setid WIPRO"), "Usage:")

	reply := s.HandleCommand("/setid WIPRO 3787")
	assert.Contains(t, reply, "WIPRO")
	assert.Contains(t, reply, "3787")
	assert.Equal(t, "3787", s.IDs.Hints("WIPRO").SecurityID)

	s.IDs = nil
	assert.Contains(t, s.HandleCommand("/setid WIPRO 3787"), "not configured")
}

func TestHandleCommand_FindID(t *testing.T) {
	s := commandScheduler(t)

	assert.Contains(t, s.HandleCommand("/findid WIPRO"), "not configured")

	s.Primary = &fakePrimary{ids: map[string]string{"WIPRO": "3787"}}
	assert.Contains(t, s.HandleCommand("/findid"), "Usage:")

	reply := s.HandleCommand("/findid wipro")
	assert.Contains(t, reply, "WIPRO")
	assert.Contains(t, reply, "3787")
	assert.Equal(t, "3787", s.IDs.Hints("WIPRO").SecurityID, "resolved id must be persisted")

	assert.Contains(t, s.HandleCommand("/findid NOSUCH"), "Lookup for NOSUCH failed")
	assert.Empty(t, s.IDs.Hints("NOSUCH").SecurityID)
}
