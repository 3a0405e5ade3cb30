package marketdata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// SecurityIDs is the symbol -> broker security id map the primary provider
// needs, persisted as a JSON file so resolved ids survive restarts.
type SecurityIDs struct {
	mu       sync.Mutex
	ids      map[string]string
	filePath string
	segment  string
}

// LoadSecurityIDs reads the id map from disk, initializing an empty map if
// the file does not exist yet.
func LoadSecurityIDs(filePath, exchangeSegment string) (*SecurityIDs, error) {
	s := &SecurityIDs{
		ids:      make(map[string]string),
		filePath: filePath,
		segment:  exchangeSegment,
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read security ids: %w", err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &s.ids); err != nil {
			return nil, fmt.Errorf("parse security ids: %w", err)
		}
	}
	return s, nil
}

// Hints returns the provider hints for a symbol. A missing or zero id leaves
// SecurityID empty, which makes the resolver skip the primary provider.
func (s *SecurityIDs) Hints(symbol string) Hints {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.ids[symbol]
	if id == "0" {
		id = ""
	}
	return Hints{SecurityID: id, ExchangeSegment: s.segment}
}

// Put stores a newly resolved id and persists the map.
func (s *SecurityIDs) Put(symbol, securityID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids[symbol] = securityID
	return s.save()
}

// Len reports how many symbols have a usable id.
func (s *SecurityIDs) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, id := range s.ids {
		if id != "" && id != "0" {
			n++
		}
	}
	return n
}

func (s *SecurityIDs) save() error {
	if s.filePath == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.filePath), 0o755); err != nil {
		return fmt.Errorf("create security ids dir: %w", err)
	}
	data, err := json.MarshalIndent(s.ids, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal security ids: %w", err)
	}
	tmp := s.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write security ids: %w", err)
	}
	return os.Rename(tmp, s.filePath)
}
