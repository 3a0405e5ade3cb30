package synth

import (
	"testing"

	"SignalSentinel/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSession_Deterministic(t *testing.T) {
	a, err := GenerateSession("2025-11-12", "WIPRO", 241.0)
	require.NoError(t, err)
	b, err := GenerateSession("2025-11-12", "WIPRO", 241.0)
	require.NoError(t, err)

	require.Equal(t, len(a.Ticks), len(b.Ticks))
	for i := range a.Ticks {
		assert.Equal(t, a.Ticks[i], b.Ticks[i], "tick %d differs between runs", i)
	}
}

func TestGenerateSession_CoversFullWindow(t *testing.T) {
	sess, err := GenerateSession("2025-11-12", "TCS", 3500.0)
	require.NoError(t, err)
	require.Len(t, sess.Ticks, model.SessionSlots)

	grid, err := model.SessionGrid("2025-11-12")
	require.NoError(t, err)
	for i, tick := range sess.Ticks {
		assert.True(t, tick.Time.Equal(grid[i]), "tick %d off grid: %v vs %v", i, tick.Time, grid[i])
	}

	first := sess.Ticks[0].Time
	last := sess.Ticks[len(sess.Ticks)-1].Time
	assert.Equal(t, "09:15", first.Format("15:04"))
	assert.Equal(t, "15:30", last.Format("15:04"))
}

func TestGenerateSession_BarShape(t *testing.T) {
	sess, err := GenerateSession("2025-11-12", "INFY", 1500.0)
	require.NoError(t, err)
	for i, tick := range sess.Ticks {
		assert.GreaterOrEqual(t, tick.High, tick.Close, "bar %d high below close", i)
		assert.LessOrEqual(t, tick.Low, tick.Close, "bar %d low above close", i)
		assert.Greater(t, tick.Low, 0.0, "bar %d non-positive low", i)
	}
}

func TestGenerateSession_DiffersBySymbolAndDate(t *testing.T) {
	a, err := GenerateSession("2025-11-12", "WIPRO", 241.0)
	require.NoError(t, err)
	b, err := GenerateSession("2025-11-12", "TCS", 241.0)
	require.NoError(t, err)
	c, err := GenerateSession("2025-11-13", "WIPRO", 241.0)
	require.NoError(t, err)

	assert.NotEqual(t, a.Ticks, b.Ticks, "different symbols should not share a path")
	assert.NotEqual(t, a.Ticks, c.Ticks, "different dates should not share a path")
}

func TestSeed_StableAndOrderSensitive(t *testing.T) {
	assert.Equal(t, Seed("2025-11-12", "WIPRO"), Seed("2025-11-12", "WIPRO"))
	assert.NotEqual(t, Seed("2025-11-12", "WIPRO"), Seed("2025-11-12", "WIPRA"))
	// concatenation is order sensitive
	assert.NotEqual(t, Seed("AB", "C"), Seed("C", "AB"))
}

func TestStream_PureFunctionOfSeed(t *testing.T) {
	s1 := NewStream(42)
	s2 := NewStream(42)
	for i := 0; i < 100; i++ {
		v1, v2 := s1.Next(), s2.Next()
		require.Equal(t, v1, v2, "streams diverged at step %d", i)
		require.GreaterOrEqual(t, v1, 0.0)
		require.Less(t, v1, 1.0)
	}
}

func TestGenerateDailyHistory_Deterministic(t *testing.T) {
	a, err := GenerateDailyHistory("2025-11-12", "WIPRO", 30)
	require.NoError(t, err)
	b, err := GenerateDailyHistory("2025-11-12", "WIPRO", 30)
	require.NoError(t, err)
	require.Len(t, a, 30)
	assert.Equal(t, a, b)

	// candles ascend one day at a time, ending on the requested date
	assert.Equal(t, "2025-11-12", a[len(a)-1].Time.Format("2006-01-02"))
	for i := 1; i < len(a); i++ {
		assert.True(t, a[i].Time.After(a[i-1].Time))
	}
}

func TestReferencePrice_MatchesHistoryClose(t *testing.T) {
	candles, err := GenerateDailyHistory("2025-11-12", "WIPRO", 30)
	require.NoError(t, err)
	assert.Equal(t, candles[len(candles)-1].Close, ReferencePrice("2025-11-12", "WIPRO"))
}
