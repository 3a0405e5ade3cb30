package synth

import (
	"time"

	"SignalSentinel/internal/model"
)

// basePrice derives a stable per-symbol anchor price in [50, 2050). Seeded by
// symbol alone so a symbol's synthetic history does not jump between dates.
func basePrice(symbol string) float64 {
	return 50 + float64(Seed("", symbol)%2000)
}

// GenerateDailyHistory builds `days` synthetic daily candles ending on the
// given date. It draws from the same seeded stream as session generation, so
// histories and sessions stay mutually consistent and reproducible.
func GenerateDailyHistory(endDate, symbol string, days int) ([]model.Tick, error) {
	end, err := model.ParseDate(endDate)
	if err != nil {
		return nil, err
	}

	stream := NewStream(Seed(endDate, symbol+"@daily"))
	price := basePrice(symbol)
	candles := make([]model.Tick, days)
	for i := 0; i < days; i++ {
		drift := (stream.Next() - 0.5) * 0.04 // up to ±2% per day
		price *= 1 + drift
		high := price * (1 + stream.Next()*0.015)
		low := price * (1 - stream.Next()*0.015)
		day := end.AddDate(0, 0, -(days - 1 - i))
		ts := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, model.ISTLocation())
		candles[i] = model.Tick{Time: ts, High: high, Low: low, Close: price}
	}
	return candles, nil
}

// ReferencePrice is the deterministic starting price used for a synthetic
// session when no remote close is known: the last close of a 30-day synthetic
// history ending on the date.
func ReferencePrice(date, symbol string) float64 {
	candles, err := GenerateDailyHistory(date, symbol, 30)
	if err != nil || len(candles) == 0 {
		return basePrice(symbol)
	}
	return candles[len(candles)-1].Close
}
