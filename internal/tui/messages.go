// Package tui provides Bubble Tea models for the interactive fact sheet browser.
package tui

import (
	"github.com/robby/leanix-mcp/internal/domain"
)

// TypeSelectedMsg is emitted when the user picks a fact sheet type.
type TypeSelectedMsg struct {
	Type domain.FactSheetType
}

// ErrorMsg is emitted when an error occurs.
type ErrorMsg struct {
	Err error
}

// QuitMsg is emitted when the user requests to quit.
type QuitMsg struct{}

// Custom messages for screen transitions and background loads.
type (
	typeCountsMsg struct {
		counts map[string]int
		err    error
	}

	// pageLoadedMsg carries one page of the browsed type. first marks the
	// page requested without a cursor, which replaces what is loaded.
	pageLoadedMsg struct {
		page  domain.Page
		first bool
		err   error
	}

	searchResultsMsg struct {
		term       string
		factSheets []domain.FactSheet
		err        error
	}

	openDetailMsg struct {
		factSheet *domain.FactSheet
	}

	closeDetailMsg struct{}

	backToPickerMsg struct{}
)
