package backtest

import (
	"fmt"
	"time"

	"SignalSentinel/internal/model"
)

// Eligibility is the timing guard's verdict for a run date.
type Eligibility struct {
	Allowed bool
	Reason  string
}

// CheckEligibility decides whether a backtest may run for the given date.
// Past dates are always allowed; today is gated on the data-availability
// cutoff (market close plus grace); future dates are always rejected.
// Pure function of now and the inputs, no I/O.
func CheckEligibility(date string, now time.Time, cutoffMinutes int) Eligibility {
	day, err := model.ParseDate(date)
	if err != nil {
		return Eligibility{Allowed: false, Reason: fmt.Sprintf("invalid date %q", date)}
	}

	local := now.In(model.ISTLocation())
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, model.ISTLocation())

	switch {
	case day.Before(today):
		return Eligibility{Allowed: true}
	case day.After(today):
		return Eligibility{Allowed: false, Reason: fmt.Sprintf("date %s is in the future", date)}
	}

	cutoff := today.Add(time.Duration(cutoffMinutes) * time.Minute)
	if local.Before(cutoff) {
		return Eligibility{
			Allowed: false,
			Reason:  fmt.Sprintf("intraday data for %s is not available until %s", date, cutoff.Format("15:04")),
		}
	}
	return Eligibility{Allowed: true}
}
