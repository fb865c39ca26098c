package storage

import (
	"transcheck/internal/config"
	"transcheck/internal/domain"
)

// Storage persists and loads the last run report (e.g. for the failures viewer).
type Storage interface {
	Save(report *domain.RunReport) error
	Load() (*domain.RunReport, error)
	// SaveOutput rewrites a loaded report (e.g. after toggling reviewed flags).
	SaveOutput(report *domain.RunReport) error
}

// JSONStorage stores the report in a JSON file under the configured output path.
type JSONStorage struct {
	cfg *config.Config
}

// NewJSONStorage returns a Storage that reads/writes the config's output JSON path.
func NewJSONStorage(cfg *config.Config) *JSONStorage {
	return &JSONStorage{cfg: cfg}
}
