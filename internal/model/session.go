package model

import (
	"fmt"
	"time"
)

// Trading session window: 09:15 to 15:30 IST at 5-minute steps.
const (
	SessionStartHour   = 9
	SessionStartMinute = 15
	SessionEndHour     = 15
	SessionEndMinute   = 30
	BarMinutes         = 5
)

// SessionSlots is the number of bars in a full session (09:15 .. 15:30 inclusive).
const SessionSlots = (SessionEndHour*60+SessionEndMinute-SessionStartHour*60-SessionStartMinute)/BarMinutes + 1

// ist is fixed UTC+5:30. A fixed zone keeps synthetic sessions byte-identical
// across machines regardless of the local tzdata.
var ist = time.FixedZone("IST", 5*3600+30*60)

// ISTLocation returns the exchange-local time zone.
func ISTLocation() *time.Location { return ist }

// Tick is one OHLC sample on the 5-minute session grid.
type Tick struct {
	Time  time.Time
	High  float64
	Low   float64
	Close float64
}

// Session is an ordered, gap-free tick sequence spanning the full trading
// window, exactly one tick per interval boundary.
type Session struct {
	Symbol string
	Date   string // YYYY-MM-DD
	Ticks  []Tick
}

// ParseDate parses a YYYY-MM-DD date in exchange-local time.
func ParseDate(date string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", date, ist)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", date, err)
	}
	return t, nil
}

// SessionGrid returns the tick timestamps of a full session for the given date.
func SessionGrid(date string) ([]time.Time, error) {
	day, err := ParseDate(date)
	if err != nil {
		return nil, err
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), SessionStartHour, SessionStartMinute, 0, 0, ist)
	grid := make([]time.Time, SessionSlots)
	for i := range grid {
		grid[i] = start.Add(time.Duration(i*BarMinutes) * time.Minute)
	}
	return grid, nil
}
