package tui

import "github.com/drake/gamevault/internal/domain"

// Message types for the TUI

// ProgressMsg carries a loader progress report.
type ProgressMsg struct {
	Current int
	Total   int
	Message string
}

// ItemLoadedMsg signals that one item finished enrichment.
type ItemLoadedMsg struct {
	Item domain.ItemSummary
}

// StatusMsg carries a categorized status update.
type StatusMsg struct {
	Message  string
	Severity domain.Severity
}

// LoadFinishedMsg signals that the load goroutine returned.
type LoadFinishedMsg struct {
	Err error
}
