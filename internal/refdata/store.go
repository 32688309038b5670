package refdata

import (
	"log/slog"
	"sync"
)

// Store lazily loads and caches the reference tables so that the interactive
// menu can run multiple pipeline passes without re-reading the CSV files.
type Store struct {
	weightPath string
	tariffPath string
	logger     *slog.Logger

	mu      sync.Mutex
	weights *WeightTable
	tariffs *TariffTable
}

func NewStore(weightPath, tariffPath string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{weightPath: weightPath, tariffPath: tariffPath, logger: logger}
}

// Weights returns the cached weight table, loading it on first use.
func (s *Store) Weights() (*WeightTable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.weights == nil {
		t, err := LoadWeightTable(s.weightPath, s.logger)
		if err != nil {
			return nil, err
		}
		s.weights = t
	}
	return s.weights, nil
}

// Tariffs returns the cached tariff table, loading it on first use.
func (s *Store) Tariffs() (*TariffTable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tariffs == nil {
		t, err := LoadTariffTable(s.tariffPath, s.logger)
		if err != nil {
			return nil, err
		}
		s.tariffs = t
	}
	return s.tariffs, nil
}
