// Package store provides an in-memory state layer for a fact sheet browse session.
// It keeps loaded fact sheets in load order, the pagination cursor of the current
// type, and the text filter, following the "deep modules" principle - a simple
// interface hiding the ordering, de-duplication and grouping logic.
package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/robby/leanix-mcp/internal/domain"
)

var (
	// ErrNoType indicates no fact sheet type has been set in the store.
	ErrNoType = errors.New("no fact sheet type set")
	// ErrFactSheetNotFound indicates the requested fact sheet does not exist.
	ErrFactSheetNotFound = errors.New("fact sheet not found")
	// ErrNoMorePages indicates the last loaded page had no next page.
	ErrNoMorePages = errors.New("no more pages")
)

// NoPhaseKey groups fact sheets without a lifecycle phase.
const NoPhaseKey = "_no_phase_"

// Mode tells where the loaded fact sheets came from.
type Mode int

const (
	// ModeBrowse holds pages of one fact sheet type.
	ModeBrowse Mode = iota
	// ModeSearch holds the results of a name search.
	ModeSearch
)

// Store manages the fact sheets of one browse session.
type Store struct {
	factSheetType domain.FactSheetType
	mode          Mode
	searchTerm    string

	// Fact sheet storage: key -> fact sheet, keys in load order
	factSheets map[string]*domain.FactSheet
	order      []string

	// Pagination state of the current type
	cursor      string
	hasNextPage bool
	totalCount  *int

	filter string
}

// New creates a new empty Store instance.
func New() *Store {
	return &Store{
		factSheets: make(map[string]*domain.FactSheet),
	}
}

// SetType switches the session to browsing t. Loaded fact sheets and the
// cursor are cleared when the type changes.
func (s *Store) SetType(t domain.FactSheetType) {
	if s.factSheetType != t || s.mode != ModeBrowse {
		s.Clear()
	}
	s.factSheetType = t
	s.mode = ModeBrowse
	s.searchTerm = ""
}

// GetType returns the type being browsed, or ErrNoType.
func (s *Store) GetType() (domain.FactSheetType, error) {
	if s.factSheetType == "" {
		return "", ErrNoType
	}
	return s.factSheetType, nil
}

// Mode returns whether the store holds browse pages or search results.
func (s *Store) Mode() Mode {
	return s.mode
}

// SearchTerm returns the term of the current search, empty in browse mode.
func (s *Store) SearchTerm() string {
	return s.searchTerm
}

// AppendPage adds the fact sheets of page after the ones already loaded and
// takes over its cursor. A fact sheet already present is updated in place.
func (s *Store) AppendPage(page domain.Page) {
	for _, edge := range page.Edges {
		s.upsert(edge.Node)
	}

	s.hasNextPage = page.PageInfo.HasNextPage
	s.cursor = ""
	if page.PageInfo.EndCursor != nil {
		s.cursor = *page.PageInfo.EndCursor
	}
	if page.TotalCount != nil {
		total := *page.TotalCount
		s.totalCount = &total
	}
}

// SetSearchResults replaces the loaded fact sheets with the results of a
// name search. Search results are not paginated.
func (s *Store) SetSearchResults(term string, factSheets []domain.FactSheet) {
	s.Clear()
	s.mode = ModeSearch
	s.searchTerm = term
	for _, fs := range factSheets {
		s.upsert(fs)
	}
	total := len(s.order)
	s.totalCount = &total
}

func (s *Store) upsert(fs domain.FactSheet) {
	key := fs.ID
	if key == "" {
		key = fmt.Sprintf("_unidentified_%d", len(s.order))
	}
	if _, exists := s.factSheets[key]; !exists {
		s.order = append(s.order, key)
	}
	node := fs
	s.factSheets[key] = &node
}

// Get retrieves a fact sheet by ID, returning ErrFactSheetNotFound if not found.
func (s *Store) Get(id string) (*domain.FactSheet, error) {
	fs, exists := s.factSheets[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrFactSheetNotFound, id)
	}
	return fs, nil
}

// All returns every loaded fact sheet in load order.
func (s *Store) All() []*domain.FactSheet {
	out := make([]*domain.FactSheet, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.factSheets[key])
	}
	return out
}

// Len returns the number of loaded fact sheets.
func (s *Store) Len() int {
	return len(s.order)
}

// TotalCount returns the server-side total of the current type, if known.
func (s *Store) TotalCount() (int, bool) {
	if s.totalCount == nil {
		return 0, false
	}
	return *s.totalCount, true
}

// SetFilter sets the text filter applied by Visible.
func (s *Store) SetFilter(filter string) {
	s.filter = strings.TrimSpace(filter)
}

// GetFilter returns the current text filter.
func (s *Store) GetFilter() string {
	return s.filter
}

// Visible returns the loaded fact sheets matching the filter, in load order.
// The filter matches case-insensitively against names, description, type and tags.
func (s *Store) Visible() []*domain.FactSheet {
	if s.filter == "" {
		return s.All()
	}
	needle := strings.ToLower(s.filter)
	out := make([]*domain.FactSheet, 0)
	for _, fs := range s.All() {
		if Matches(fs, needle) {
			out = append(out, fs)
		}
	}
	return out
}

// Matches reports whether fs contains needle, which must be lower case.
func Matches(fs *domain.FactSheet, needle string) bool {
	fields := []string{fs.Name, fs.DisplayName, fs.FullName, fs.Description, fs.Type}
	fields = append(fields, fs.TagNames()...)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// GroupByPhase returns the IDs of the visible fact sheets keyed by lifecycle
// phase. Fact sheets without a phase are under NoPhaseKey.
func (s *Store) GroupByPhase() map[string][]string {
	groups := make(map[string][]string)
	for _, fs := range s.Visible() {
		key := NoPhaseKey
		if fs.Lifecycle != nil {
			switch {
			case fs.Lifecycle.Phase != "":
				key = fs.Lifecycle.Phase
			case fs.Lifecycle.AsString != "":
				key = fs.Lifecycle.AsString
			}
		}
		groups[key] = append(groups[key], fs.ID)
	}
	return groups
}

// SetPagination updates the pagination state.
func (s *Store) SetPagination(cursor string, hasNextPage bool) {
	s.cursor = cursor
	s.hasNextPage = hasNextPage
}

// GetPagination returns the current pagination state.
func (s *Store) GetPagination() (cursor string, hasNextPage bool) {
	return s.cursor, s.hasNextPage
}

// NextCursor returns the cursor to request the next page with.
// Returns ErrNoType before a type is set and ErrNoMorePages after the last page.
func (s *Store) NextCursor() (string, error) {
	if s.mode != ModeBrowse || s.factSheetType == "" {
		return "", ErrNoType
	}
	if !s.hasNextPage {
		return "", ErrNoMorePages
	}
	return s.cursor, nil
}

// Clear drops the loaded fact sheets, pagination and filter, keeping the type.
func (s *Store) Clear() {
	s.factSheets = make(map[string]*domain.FactSheet)
	s.order = nil
	s.cursor = ""
	s.hasNextPage = false
	s.totalCount = nil
	s.filter = ""
}

// Reset completely resets the store to initial state.
func (s *Store) Reset() {
	s.factSheetType = ""
	s.mode = ModeBrowse
	s.searchTerm = ""
	s.Clear()
}
