package recorder

import "SignalSentinel/internal/model"

// Recorder is the persistence collaborator: signals in, outcomes and run
// summaries out, single-record granularity.
type Recorder interface {
	SaveSignals(sigs []model.Signal) error
	SignalsForDate(date string) ([]model.Signal, error)

	UpsertOutcome(o *model.BacktestOutcome) error
	Outcome(signalID string) (*model.BacktestOutcome, error)
	OutcomesForDate(date string) ([]model.BacktestOutcome, error)
	DeleteOutcomesBefore(date string) (int, error)

	RecordRun(sum *model.RunSummary) error
	LastRun() (*model.RunSummary, error)

	Close() error
}
