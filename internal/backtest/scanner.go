package backtest

import (
	"time"

	"SignalSentinel/internal/model"
)

// scanState is the scanner's position in the entry/exit lifecycle.
type scanState int

const (
	awaitingEntry scanState = iota
	entered
	resolvedState
)

// Scan replays a session's ticks in chronological order against one signal
// and resolves the outcome.
//
// Entry, target and stop conditions are level touches against the bar's
// high/low range. Because a single bar can cover both target and stop and
// the true intrabar path is unobservable, the stop condition is checked
// before the target condition on every tick, including the entry tick:
// stop-loss wins all ties. Scanning stops as soon as an entered signal hits
// either level. A session that ends with no entry, or entered but undecided,
// resolves to NO_TRIGGER.
func Scan(sig *model.Signal, sess *model.Session) *model.BacktestOutcome {
	out := &model.BacktestOutcome{
		SignalID: sig.ID,
		Symbol:   sig.Symbol,
		Date:     sess.Date,
		Result:   model.ResultNoTrigger,
	}

	state := awaitingEntry
	var entryTime time.Time

	for i := range sess.Ticks {
		tick := &sess.Ticks[i]

		if state == awaitingEntry {
			if !entryTouched(sig, tick) {
				continue
			}
			state = entered
			entryTime = tick.Time
			out.EntryHit = true
			t := tick.Time
			out.EntryTime = &t
			// fall through: the entry bar can also trade through an exit level
		}

		if stopTouched(sig, tick) {
			t := tick.Time
			out.StopHit = true
			out.StopTime = &t
			m := wholeMinutes(entryTime, tick.Time)
			out.MinutesToStop = &m
			out.Result = model.ResultStop
			state = resolvedState
			break
		}
		if targetTouched(sig, tick) {
			t := tick.Time
			out.TargetHit = true
			out.TargetTime = &t
			m := wholeMinutes(entryTime, tick.Time)
			out.MinutesToTarget = &m
			out.Result = model.ResultTarget
			state = resolvedState
			break
		}
	}

	return out
}

func entryTouched(sig *model.Signal, tick *model.Tick) bool {
	if sig.Side == model.SideLong {
		return tick.Low <= sig.Entry
	}
	return tick.High >= sig.Entry
}

func targetTouched(sig *model.Signal, tick *model.Tick) bool {
	if sig.Side == model.SideLong {
		return tick.High >= sig.Target
	}
	return tick.Low <= sig.Target
}

func stopTouched(sig *model.Signal, tick *model.Tick) bool {
	if sig.Side == model.SideLong {
		return tick.Low <= sig.StopLoss
	}
	return tick.High >= sig.StopLoss
}

func wholeMinutes(from, to time.Time) int {
	return int(to.Sub(from).Minutes())
}
