package ui

import "transcheck/internal/domain"

// Viewer displays the failures of a run in an interactive TUI
type Viewer interface {
	View(report *domain.RunReport) error
}
