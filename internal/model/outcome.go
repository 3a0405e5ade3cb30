package model

import "time"

// Result classifies how a signal resolved over the session.
type Result string

const (
	ResultTarget    Result = "TARGET"
	ResultStop      Result = "STOP"
	ResultNoTrigger Result = "NO_TRIGGER"
	ResultNoData    Result = "NO_DATA"
)

// DataOrigin records which source produced the ticks behind an outcome.
type DataOrigin string

const (
	OriginPrimary   DataOrigin = "PRIMARY"
	OriginSecondary DataOrigin = "SECONDARY"
	OriginSynthetic DataOrigin = "SYNTHETIC"
	OriginNone      DataOrigin = "NONE"
)

// BacktestOutcome is the per-signal result of a backtest run. Written exactly
// once per (signal, run); a re-run overwrites the record wholesale.
type BacktestOutcome struct {
	SignalID string
	Symbol   string
	Date     string

	EntryHit  bool
	EntryTime *time.Time
	TargetHit bool
	TargetTime *time.Time
	StopHit   bool
	StopTime  *time.Time

	Result          Result
	MinutesToTarget *int
	MinutesToStop   *int
	Origin          DataOrigin
}

// RunSummary aggregates one batch run.
type RunSummary struct {
	RunID      string
	Date       string
	Total      int
	Rejected   int
	Primary    int
	Secondary  int
	Synthetic  int
	NoData     int
	StartedAt  time.Time
	FinishedAt time.Time
}

// Count increments the origin tally for one resolved item.
func (s *RunSummary) Count(origin DataOrigin) {
	switch origin {
	case OriginPrimary:
		s.Primary++
	case OriginSecondary:
		s.Secondary++
	case OriginSynthetic:
		s.Synthetic++
	default:
		s.NoData++
	}
}
