package synth

import (
	"SignalSentinel/internal/model"
)

// Per-step magnitudes, as fractions of the running price.
const (
	maxDriftPct = 0.004 // close-to-close drift, up to ±0.2% per 5-minute bar
	maxWickPct  = 0.003 // independent high/low extension beyond the close
)

// GenerateSession builds a full synthetic session for the date and symbol,
// starting from referencePrice. The session always covers 09:15-15:30 at
// 5-minute steps with no gaps.
func GenerateSession(date, symbol string, referencePrice float64) (*model.Session, error) {
	grid, err := model.SessionGrid(date)
	if err != nil {
		return nil, err
	}
	if referencePrice <= 0 {
		referencePrice = ReferencePrice(date, symbol)
	}

	stream := NewStream(Seed(date, symbol))
	price := referencePrice
	ticks := make([]model.Tick, len(grid))
	for i, ts := range grid {
		drift := (stream.Next() - 0.5) * maxDriftPct
		price *= 1 + drift
		high := price * (1 + stream.Next()*maxWickPct)
		low := price * (1 - stream.Next()*maxWickPct)
		ticks[i] = model.Tick{Time: ts, High: high, Low: low, Close: price}
	}

	return &model.Session{Symbol: symbol, Date: date, Ticks: ticks}, nil
}
