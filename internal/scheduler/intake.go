package scheduler

import (
	"encoding/json"
	"fmt"
	"os"

	"SignalSentinel/internal/model"

	"github.com/google/uuid"
)

// LoadSignalFile reads a JSON array of signals handed off by the scoring
// collaborator and stores them. Signals without an id get one assigned.
// Returns how many were stored and how many were dropped at intake.
func (s *Scheduler) LoadSignalFile(path string) (stored, dropped int, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, 0, fmt.Errorf("read signal file: %w", err)
	}

	var sigs []model.Signal
	if err := json.Unmarshal(data, &sigs); err != nil {
		return 0, 0, fmt.Errorf("parse signal file: %w", err)
	}

	accepted := make([]model.Signal, 0, len(sigs))
	for _, sig := range sigs {
		if sig.ID == "" {
			sig.ID = uuid.NewString()
		}
		if err := sig.Validate(); err != nil {
			dropped++
			continue
		}
		accepted = append(accepted, sig)
	}

	if err := s.Recorder.SaveSignals(accepted); err != nil {
		return 0, dropped, err
	}
	return len(accepted), dropped, nil
}
