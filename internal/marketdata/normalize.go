package marketdata

import (
	"fmt"
	"sort"

	"SignalSentinel/internal/model"
)

// minCoverage is the fraction of grid slots that must be backed by real bars.
// Below that the payload is treated as a provider failure rather than padded
// into a mostly-flat session.
const minCoverage = 0.5

// NormalizeSession maps raw provider bars onto the exact 09:15-15:30 5-minute
// grid: bars outside the window are dropped, bar times are floored to their
// slot, duplicate slots keep the later bar, and interior gaps are filled flat
// from the previous close. Leading gaps are filled flat from the first real
// bar's close.
func NormalizeSession(raw *model.Session) (*model.Session, error) {
	if raw == nil || len(raw.Ticks) == 0 {
		return nil, fmt.Errorf("normalize %s: empty session", sessionLabel(raw))
	}
	grid, err := model.SessionGrid(raw.Date)
	if err != nil {
		return nil, err
	}
	start, end := grid[0], grid[len(grid)-1]

	ticks := make([]model.Tick, len(raw.Ticks))
	copy(ticks, raw.Ticks)
	sort.Slice(ticks, func(i, j int) bool { return ticks[i].Time.Before(ticks[j].Time) })

	// Slot index -> bar, floored to the grid. Later bars win duplicate slots.
	bySlot := make(map[int]model.Tick, len(ticks))
	for _, t := range ticks {
		ts := t.Time.In(model.ISTLocation())
		if ts.Before(start) || ts.After(end) {
			continue
		}
		slot := int(ts.Sub(start).Minutes()) / model.BarMinutes
		if slot < 0 || slot >= len(grid) {
			continue
		}
		bySlot[slot] = t
	}
	if len(bySlot) == 0 {
		return nil, fmt.Errorf("normalize %s: no bars inside session window", sessionLabel(raw))
	}
	if float64(len(bySlot)) < minCoverage*float64(len(grid)) {
		return nil, fmt.Errorf("normalize %s: sparse session, %d of %d slots", sessionLabel(raw), len(bySlot), len(grid))
	}

	// First real close seeds any leading gap.
	firstSlot := len(grid)
	for slot := range bySlot {
		if slot < firstSlot {
			firstSlot = slot
		}
	}
	prevClose := bySlot[firstSlot].Close

	out := make([]model.Tick, len(grid))
	for i, ts := range grid {
		if t, ok := bySlot[i]; ok {
			out[i] = model.Tick{Time: ts, High: t.High, Low: t.Low, Close: t.Close}
			prevClose = t.Close
			continue
		}
		out[i] = model.Tick{Time: ts, High: prevClose, Low: prevClose, Close: prevClose}
	}

	return &model.Session{Symbol: raw.Symbol, Date: raw.Date, Ticks: out}, nil
}

func sessionLabel(s *model.Session) string {
	if s == nil {
		return "<nil>"
	}
	return s.Symbol + " " + s.Date
}
