package recorder

import "SignalSentinel/internal/model"

// MemoryRecorder is used when SQLite is not configured. Signals and outcomes
// are held in memory for the lifetime of the process.
type MemoryRecorder struct {
	signals  map[string]model.Signal
	outcomes map[string]model.BacktestOutcome
	lastRun  *model.RunSummary
}

func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{
		signals:  make(map[string]model.Signal),
		outcomes: make(map[string]model.BacktestOutcome),
	}
}

func (n *MemoryRecorder) SaveSignals(sigs []model.Signal) error {
	for _, s := range sigs {
		n.signals[s.ID] = s
	}
	return nil
}

func (n *MemoryRecorder) SignalsForDate(date string) ([]model.Signal, error) {
	var out []model.Signal
	for _, s := range n.signals {
		if s.Date == date {
			out = append(out, s)
		}
	}
	return out, nil
}

func (n *MemoryRecorder) UpsertOutcome(o *model.BacktestOutcome) error {
	n.outcomes[o.SignalID] = *o
	return nil
}

func (n *MemoryRecorder) Outcome(signalID string) (*model.BacktestOutcome, error) {
	if o, ok := n.outcomes[signalID]; ok {
		return &o, nil
	}
	return nil, nil
}

func (n *MemoryRecorder) OutcomesForDate(date string) ([]model.BacktestOutcome, error) {
	var out []model.BacktestOutcome
	for _, o := range n.outcomes {
		if o.Date == date {
			out = append(out, o)
		}
	}
	return out, nil
}

func (n *MemoryRecorder) DeleteOutcomesBefore(date string) (int, error) {
	count := 0
	for id, o := range n.outcomes {
		if o.Date < date {
			delete(n.outcomes, id)
			count++
		}
	}
	return count, nil
}

func (n *MemoryRecorder) RecordRun(sum *model.RunSummary) error {
	n.lastRun = sum
	return nil
}

func (n *MemoryRecorder) LastRun() (*model.RunSummary, error) {
	return n.lastRun, nil
}

func (n *MemoryRecorder) Close() error { return nil }
