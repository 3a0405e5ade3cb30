package backtest

import (
	"testing"
	"time"

	"SignalSentinel/internal/model"

	"github.com/stretchr/testify/assert"
)

func istTime(y int, mo time.Month, d, h, m int) time.Time {
	return time.Date(y, mo, d, h, m, 0, 0, model.ISTLocation())
}

func TestCheckEligibility(t *testing.T) {
	// cutoff 16:00, i.e. 15:30 close + 30 minutes grace
	const cutoff = 16 * 60

	tests := []struct {
		name    string
		date    string
		now     time.Time
		allowed bool
	}{
		{"past date", "2025-11-10", istTime(2025, 11, 12, 10, 0), true},
		{"today before cutoff", "2025-11-12", istTime(2025, 11, 12, 15, 45), false},
		{"today at cutoff", "2025-11-12", istTime(2025, 11, 12, 16, 0), true},
		{"today after cutoff", "2025-11-12", istTime(2025, 11, 12, 18, 30), true},
		{"tomorrow", "2025-11-13", istTime(2025, 11, 12, 18, 30), false},
		{"far future", "2026-01-01", istTime(2025, 11, 12, 18, 30), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckEligibility(tt.date, tt.now, cutoff)
			assert.Equal(t, tt.allowed, got.Allowed)
			if !tt.allowed {
				assert.NotEmpty(t, got.Reason)
			}
		})
	}
}

func TestCheckEligibility_ReasonNamesCutoff(t *testing.T) {
	got := CheckEligibility("2025-11-12", istTime(2025, 11, 12, 15, 45), 16*60)
	assert.False(t, got.Allowed)
	assert.Contains(t, got.Reason, "16:00")
}

func TestCheckEligibility_BadDate(t *testing.T) {
	got := CheckEligibility("12-11-2025", istTime(2025, 11, 12, 18, 0), 16*60)
	assert.False(t, got.Allowed)
}
