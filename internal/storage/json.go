package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"transcheck/internal/domain"
)

// Save writes a finalized report to the configured JSON output file.
func (s *JSONStorage) Save(report *domain.RunReport) error {
	if !report.Finalized() {
		return errors.New("save report: report is not finalized")
	}
	return s.write(report)
}

// Load reads the last report from the configured JSON output file.
func (s *JSONStorage) Load() (*domain.RunReport, error) {
	path := s.cfg.GetOutputPath()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report file: %w", err)
	}
	var report domain.RunReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("parse report: %w", err)
	}
	report.MarkLoaded()
	return &report, nil
}

// SaveOutput writes the full report back to the configured JSON file.
func (s *JSONStorage) SaveOutput(report *domain.RunReport) error {
	return s.write(report)
}

func (s *JSONStorage) write(report *domain.RunReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	path := s.cfg.GetOutputPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
