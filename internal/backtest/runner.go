package backtest

import (
	"context"
	"log"
	"time"

	"SignalSentinel/internal/marketdata"
	"SignalSentinel/internal/model"
	"SignalSentinel/internal/recorder"

	"github.com/google/uuid"
)

// SessionSource resolves market data for one (symbol, date). Implemented by
// marketdata.Resolver; faked in tests.
type SessionSource interface {
	FetchSession(ctx context.Context, symbol string, hints marketdata.Hints, date string) (*model.Session, model.DataOrigin, error)
	NeedsRemote(hints marketdata.Hints) bool
}

// HintSource supplies per-symbol provider hints.
type HintSource interface {
	Hints(symbol string) marketdata.Hints
}

// Progress is invoked synchronously after each item completes.
type Progress func(done, total int)

// RejectedSignal is a signal excluded at intake with the reason.
type RejectedSignal struct {
	Signal model.Signal
	Reason string
}

// BatchResult is the full product of one batch run.
type BatchResult struct {
	Summary  model.RunSummary
	Outcomes []model.BacktestOutcome
	Rejected []RejectedSignal
}

// RunRejectedError reports a batch refused by the timing guard before any
// network activity or persistence.
type RunRejectedError struct {
	Reason string
}

func (e *RunRejectedError) Error() string { return e.Reason }

// Runner drives a batch of signals through the resolver and scanner,
// strictly sequentially, persisting each outcome before the next item starts.
type Runner struct {
	Source        SessionSource
	Hints         HintSource
	Limiter       *Limiter
	Recorder      recorder.Recorder
	CutoffMinutes int              // minutes after local midnight, market close + grace
	Now           func() time.Time // injectable clock, defaults to time.Now
}

// Run backtests the signals for one date. Invalid signals are excluded at
// intake; a signal with no obtainable data is recorded as NO_DATA and the
// batch continues. Cancellation is honored between items only, so every
// started item completes including persistence.
func (r *Runner) Run(ctx context.Context, signals []model.Signal, date string, onProgress Progress) (*BatchResult, error) {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	if elig := CheckEligibility(date, now(), r.CutoffMinutes); !elig.Allowed {
		return nil, &RunRejectedError{Reason: elig.Reason}
	}

	result := &BatchResult{
		Summary: model.RunSummary{
			RunID:     uuid.NewString(),
			Date:      date,
			StartedAt: now(),
		},
	}

	accepted := make([]model.Signal, 0, len(signals))
	for _, sig := range signals {
		if err := sig.Validate(); err != nil {
			log.Printf("[WARN] rejecting signal: %v", err)
			result.Rejected = append(result.Rejected, RejectedSignal{Signal: sig, Reason: err.Error()})
			continue
		}
		accepted = append(accepted, sig)
	}
	result.Summary.Total = len(accepted)
	result.Summary.Rejected = len(result.Rejected)

	for i, sig := range accepted {
		if err := ctx.Err(); err != nil {
			// Completed prefix stays persisted and valid.
			log.Printf("[WARN] batch cancelled after %d/%d items", i, len(accepted))
			result.Summary.FinishedAt = now()
			return result, err
		}

		hints := r.Hints.Hints(sig.Symbol)
		hints.ReferencePrice = sig.Entry

		if r.Limiter != nil && r.Source.NeedsRemote(hints) {
			if err := r.Limiter.Acquire(ctx); err != nil {
				result.Summary.FinishedAt = now()
				return result, err
			}
		}

		outcome := r.processSignal(ctx, &sig, hints, date)
		if err := r.Recorder.UpsertOutcome(outcome); err != nil {
			log.Printf("[ERROR] persist outcome for %s: %v", sig.ID, err)
		}
		result.Outcomes = append(result.Outcomes, *outcome)
		result.Summary.Count(outcome.Origin)
		if onProgress != nil {
			onProgress(i+1, len(accepted))
		}
	}

	result.Summary.FinishedAt = now()
	if err := r.Recorder.RecordRun(&result.Summary); err != nil {
		log.Printf("[ERROR] persist run summary: %v", err)
	}
	log.Printf("[INFO] batch %s done: %d signals, primary=%d secondary=%d synthetic=%d no_data=%d",
		date, result.Summary.Total, result.Summary.Primary, result.Summary.Secondary,
		result.Summary.Synthetic, result.Summary.NoData)
	return result, nil
}

func (r *Runner) processSignal(ctx context.Context, sig *model.Signal, hints marketdata.Hints, date string) *model.BacktestOutcome {
	sess, origin, err := r.Source.FetchSession(ctx, sig.Symbol, hints, date)
	if err != nil {
		log.Printf("[WARN] no data for %s %s: %v", sig.Symbol, date, err)
		return &model.BacktestOutcome{
			SignalID: sig.ID,
			Symbol:   sig.Symbol,
			Date:     date,
			Result:   model.ResultNoData,
			Origin:   model.OriginNone,
		}
	}
	outcome := Scan(sig, sess)
	outcome.Origin = origin
	return outcome
}
