package adapter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	m "impall.dev/pkg/impall/internal/model"
)

// ReportStore persists run reports so they can be viewed later.
type ReportStore interface {
	SaveReport(path m.Path, report m.SavedReport) error
	LoadReport(path m.Path) (m.SavedReport, error)
}

// YAMLReportStore stores reports as YAML documents.
type YAMLReportStore struct{}

// NewReportStore constructs a YAMLReportStore.
func NewReportStore() *YAMLReportStore {
	return &YAMLReportStore{}
}

// SaveReport writes report to path, creating parent directories as needed.
func (s *YAMLReportStore) SaveReport(path m.Path, report m.SavedReport) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		slog.Error("Failed to encode report", "path", path, "error", err)
		return fmt.Errorf("failed to encode report: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(string(path)), 0o750); err != nil {
		slog.Error("Failed to create report directory", "path", path, "error", err)
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	if err := os.WriteFile(string(path), data, 0o600); err != nil {
		slog.Error("Failed to write report", "path", path, "error", err)
		return fmt.Errorf("failed to write report: %w", err)
	}

	slog.Debug("Saved report", "path", path, "results", report.Report.Len())

	return nil
}

// LoadReport reads a report previously written by SaveReport.
func (s *YAMLReportStore) LoadReport(path m.Path) (m.SavedReport, error) {
	// #nosec G304 - path is the user's own report location
	data, err := os.ReadFile(string(path))
	if err != nil {
		return m.SavedReport{}, fmt.Errorf("failed to read report: %w", err)
	}

	var report m.SavedReport
	if err := yaml.Unmarshal(data, &report); err != nil {
		slog.Error("Failed to decode report", "path", path, "error", err)
		return m.SavedReport{}, fmt.Errorf("failed to decode report %s: %w", path, err)
	}

	return report, nil
}
