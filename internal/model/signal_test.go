package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validLong() Signal {
	return Signal{
		ID: "s1", Symbol: "WIPRO", Side: SideLong,
		Entry: 241, Target: 247, StopLoss: 238.1, Date: "2025-11-12",
	}
}

func TestSignalValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Signal)
		wantErr bool
	}{
		{"valid long", func(s *Signal) {}, false},
		{"valid short", func(s *Signal) {
			s.Side = SideShort
			s.Entry, s.Target, s.StopLoss = 3500, 3450, 3525
		}, false},
		{"missing id", func(s *Signal) { s.ID = "" }, true},
		{"missing symbol", func(s *Signal) { s.Symbol = "" }, true},
		{"zero entry", func(s *Signal) { s.Entry = 0 }, true},
		{"negative target", func(s *Signal) { s.Target = -1 }, true},
		{"long target below entry", func(s *Signal) { s.Target = 240 }, true},
		{"long stop above entry", func(s *Signal) { s.StopLoss = 242 }, true},
		{"long target equals entry", func(s *Signal) { s.Target = s.Entry }, true},
		{"short target above entry", func(s *Signal) {
			s.Side = SideShort
			s.Entry, s.Target, s.StopLoss = 3500, 3510, 3525
		}, true},
		{"short stop below entry", func(s *Signal) {
			s.Side = SideShort
			s.Entry, s.Target, s.StopLoss = 3500, 3450, 3490
		}, true},
		{"unknown side", func(s *Signal) { s.Side = "FLAT" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := validLong()
			tt.mutate(&sig)
			err := sig.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSessionGrid(t *testing.T) {
	grid, err := SessionGrid("2025-11-12")
	assert.NoError(t, err)
	assert.Len(t, grid, SessionSlots)
	assert.Equal(t, "09:15", grid[0].Format("15:04"))
	assert.Equal(t, "15:30", grid[len(grid)-1].Format("15:04"))

	_, err = SessionGrid("12/11/2025")
	assert.Error(t, err)
}
