// Package record provides local persistence: user preferences and a
// bounded history of past calculations. Storage is namespaced JSON files;
// corrupt or missing files fall back to hard-coded defaults, never errors.
package record

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"costcalc/core/types"
	"costcalc/internal/logging"
)

// DefaultHistoryLimit caps stored calculations per calculator type
const DefaultHistoryLimit = 25

const (
	prefsFile   = "costcalc.preferences.json"
	historyFile = "costcalc.history.json"
)

// Preferences are the persisted user preferences
type Preferences struct {
	Units  string `json:"units"`
	Region string `json:"region"`
}

// DefaultPreferences returns the hard-coded defaults
func DefaultPreferences() Preferences {
	return Preferences{Units: "imperial", Region: "national"}
}

// Store persists preferences and calculation history under a data
// directory. A Store with an empty dir is memory-only.
type Store struct {
	mu     sync.Mutex
	dir    string
	limit  int
	prefs  Preferences
	byType map[string][]*types.CalculationRecord
	logger *zap.Logger
}

// NewStore creates a store rooted at dir, loading whatever valid state
// already exists there.
func NewStore(dir string) *Store {
	s := &Store{
		dir:    dir,
		limit:  DefaultHistoryLimit,
		prefs:  DefaultPreferences(),
		byType: make(map[string][]*types.CalculationRecord),
		logger: logging.Logger,
	}
	s.load()
	return s
}

// WithLimit sets the per-type history cap
func (s *Store) WithLimit(limit int) *Store {
	if limit > 0 {
		s.mu.Lock()
		s.limit = limit
		s.mu.Unlock()
	}
	return s
}

// Preferences returns the current preferences
func (s *Store) Preferences() Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs
}

// SetRegion persists the region preference
func (s *Store) SetRegion(region string) {
	s.mu.Lock()
	s.prefs.Region = region
	s.persistPrefs()
	s.mu.Unlock()
}

// SetUnits persists the units preference
func (s *Store) SetUnits(units string) {
	s.mu.Lock()
	s.prefs.Units = units
	s.persistPrefs()
	s.mu.Unlock()
}

// Append adds a record to its calculator's history ring, evicting the
// oldest entry beyond the cap, and persists best-effort.
func (s *Store) Append(rec *types.CalculationRecord) {
	if rec == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	list := append(s.byType[rec.Type], rec)
	if len(list) > s.limit {
		list = list[len(list)-s.limit:]
	}
	s.byType[rec.Type] = list
	s.persistHistory()
}

// History returns the stored records for a calculator type, oldest first
func (s *Store) History(calcType string) []*types.CalculationRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.byType[calcType]
	out := make([]*types.CalculationRecord, len(list))
	copy(out, list)
	return out
}

// Clear drops all history for a calculator type
func (s *Store) Clear(calcType string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byType, calcType)
	s.persistHistory()
}

// load reads persisted state; any failure leaves defaults in place
func (s *Store) load() {
	if s.dir == "" {
		return
	}

	if data, err := os.ReadFile(filepath.Join(s.dir, prefsFile)); err == nil {
		var prefs Preferences
		if err := json.Unmarshal(data, &prefs); err != nil {
			s.logger.Warn("corrupt preferences file, using defaults", zap.Error(err))
		} else {
			if prefs.Units == "" {
				prefs.Units = DefaultPreferences().Units
			}
			if prefs.Region == "" {
				prefs.Region = DefaultPreferences().Region
			}
			s.prefs = prefs
		}
	}

	if data, err := os.ReadFile(filepath.Join(s.dir, historyFile)); err == nil {
		var byType map[string][]*types.CalculationRecord
		if err := json.Unmarshal(data, &byType); err != nil {
			s.logger.Warn("corrupt history file, starting empty", zap.Error(err))
		} else {
			for key, list := range byType {
				if len(list) > s.limit {
					list = list[len(list)-s.limit:]
				}
				s.byType[key] = list
			}
		}
	}
}

// persistPrefs writes preferences best-effort. Caller holds the lock.
func (s *Store) persistPrefs() {
	if s.dir == "" {
		return
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		s.logger.Warn("cannot create data dir", zap.Error(err))
		return
	}
	data, _ := json.MarshalIndent(s.prefs, "", "  ")
	if err := os.WriteFile(filepath.Join(s.dir, prefsFile), data, 0644); err != nil {
		s.logger.Warn("cannot persist preferences", zap.Error(err))
	}
}

// persistHistory writes history best-effort. Caller holds the lock.
func (s *Store) persistHistory() {
	if s.dir == "" {
		return
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		s.logger.Warn("cannot create data dir", zap.Error(err))
		return
	}
	data, _ := json.MarshalIndent(s.byType, "", "  ")
	if err := os.WriteFile(filepath.Join(s.dir, historyFile), data, 0644); err != nil {
		s.logger.Warn("cannot persist history", zap.Error(err))
	}
}
