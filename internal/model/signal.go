package model

import "fmt"

// Side is the direction of a trade signal.
type Side string

const (
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
)

// Signal is one trading signal as produced by the scoring collaborator.
// Immutable for the duration of a backtest run.
type Signal struct {
	ID       string  `json:"id"`
	Symbol   string  `json:"symbol"`
	Side     Side    `json:"side"`
	Entry    float64 `json:"entry"`
	Target   float64 `json:"target"`
	StopLoss float64 `json:"stop_loss"`
	Date     string  `json:"date"` // YYYY-MM-DD
	Sector   string  `json:"sector,omitempty"`
}

// Validate checks that the price levels form a coherent risk/reward envelope.
// Invalid signals are rejected at intake and never reach the scanner.
func (s *Signal) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("signal has no id")
	}
	if s.Symbol == "" {
		return fmt.Errorf("signal %s: empty symbol", s.ID)
	}
	if s.Entry <= 0 || s.Target <= 0 || s.StopLoss <= 0 {
		return fmt.Errorf("signal %s: price levels must be positive", s.ID)
	}
	switch s.Side {
	case SideLong:
		if !(s.Target > s.Entry && s.Entry > s.StopLoss) {
			return fmt.Errorf("signal %s: LONG requires target > entry > stop-loss", s.ID)
		}
	case SideShort:
		if !(s.StopLoss > s.Entry && s.Entry > s.Target) {
			return fmt.Errorf("signal %s: SHORT requires stop-loss > entry > target", s.ID)
		}
	default:
		return fmt.Errorf("signal %s: unknown side %q", s.ID, s.Side)
	}
	return nil
}
