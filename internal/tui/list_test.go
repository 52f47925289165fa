package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robby/leanix-mcp/internal/domain"
	"github.com/robby/leanix-mcp/internal/leanix"
	"github.com/robby/leanix-mcp/internal/store"
)

// fakeCatalog serves canned pages keyed by cursor and records requests.
type fakeCatalog struct {
	pages    map[string]domain.Page
	pageErr  error
	search   []domain.FactSheet
	facets   []domain.Facet
	typesErr error

	pageTypes []string
	requests  []leanix.PageRequest
	terms     []string
}

func (f *fakeCatalog) GetFactSheetsByTypePaginated(_ context.Context, typeName string, pr leanix.PageRequest) (domain.Page, error) {
	f.pageTypes = append(f.pageTypes, typeName)
	f.requests = append(f.requests, pr)
	if f.pageErr != nil {
		return domain.Page{}, f.pageErr
	}
	return f.pages[pr.After], nil
}

func (f *fakeCatalog) SearchFactSheetsByName(_ context.Context, term string) ([]domain.FactSheet, error) {
	f.terms = append(f.terms, term)
	return f.search, nil
}

func (f *fakeCatalog) GetTypes(_ context.Context) ([]domain.Facet, error) {
	if f.typesErr != nil {
		return nil, f.typesErr
	}
	return f.facets, nil
}

func testPage(cursor string, hasNext bool, total int, factSheets ...domain.FactSheet) domain.Page {
	page := domain.Page{
		TotalCount: &total,
		PageInfo:   domain.PageInfo{HasNextPage: hasNext},
		Edges:      []domain.FactSheetEdge{},
	}
	if cursor != "" {
		page.PageInfo.EndCursor = &cursor
	}
	for _, fs := range factSheets {
		page.Edges = append(page.Edges, domain.FactSheetEdge{Node: fs})
	}
	return page
}

// createTestCatalog serves two pages of applications.
func createTestCatalog() *fakeCatalog {
	return &fakeCatalog{
		pages: map[string]domain.Page{
			"": testPage("c1", true, 3,
				domain.FactSheet{ID: "1", Name: "CRM", Type: "Application", Lifecycle: &domain.Lifecycle{Phase: "active"}},
				domain.FactSheet{ID: "2", Name: "ERP", Type: "Application"},
			),
			"c1": testPage("c2", false, 3,
				domain.FactSheet{ID: "3", Name: "Data Lake", Type: "Application"},
			),
		},
		search: []domain.FactSheet{{ID: "9", Name: "CRM Connector", Type: "Interface"}},
	}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// send runs msg through the list and returns the updated model and command.
func send(t *testing.T, m FactSheetListModel, msg tea.Msg) (FactSheetListModel, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	lm, ok := updated.(FactSheetListModel)
	require.True(t, ok, "Update returned %T", updated)
	return lm, cmd
}

// newLoadedList returns a list showing the first page of applications.
func newLoadedList(t *testing.T, cat *fakeCatalog, urlFor func(domain.FactSheet) string) FactSheetListModel {
	t.Helper()
	s := store.New()
	s.SetType(domain.Application)
	m := NewFactSheetListModel(s, cat, context.Background(), urlFor)
	m, _ = send(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m, _ = send(t, m, m.loadPage("")())
	return m
}

func visibleIDs(m FactSheetListModel) []string {
	var ids []string
	for _, fs := range m.visible {
		ids = append(ids, fs.ID)
	}
	return ids
}

func TestFactSheetListModel_LoadFirstPage(t *testing.T) {
	cat := createTestCatalog()
	m := newLoadedList(t, cat, nil)

	require.Len(t, cat.requests, 1)
	assert.Equal(t, leanix.PageRequest{}, cat.requests[0], "first page is requested without cursor or size")
	assert.Equal(t, []string{"Application"}, cat.pageTypes)
	assert.Equal(t, []string{"1", "2"}, visibleIDs(m))

	view := m.View()
	assert.Contains(t, view, "Applications (Application)")
	assert.Contains(t, view, "2 of 3 loaded")
	assert.Contains(t, view, "L: load next page")
}

func TestFactSheetListModel_LoadMore(t *testing.T) {
	cat := createTestCatalog()
	m := newLoadedList(t, cat, nil)
	m.selected = 1

	m, cmd := send(t, m, keyRunes("L"))
	require.NotNil(t, cmd)
	assert.True(t, m.loadingMore)

	// A second L while loading does not issue another request
	_, again := send(t, m, keyRunes("L"))
	assert.Nil(t, again)

	m, _ = send(t, m, cmd())
	require.Len(t, cat.requests, 2)
	assert.Equal(t, leanix.PageRequest{After: "c1"}, cat.requests[1])
	assert.Equal(t, []string{"1", "2", "3"}, visibleIDs(m))
	assert.Equal(t, 1, m.selected, "selection survives appending")
	assert.False(t, m.loadingMore)

	// Last page reached
	m, cmd = send(t, m, keyRunes("L"))
	assert.Nil(t, cmd)
	assert.Equal(t, "All pages loaded", m.toast)
	assert.Len(t, cat.requests, 2)
}

func TestFactSheetListModel_LoadError(t *testing.T) {
	cat := createTestCatalog()
	m := newLoadedList(t, cat, nil)

	cat.pageErr = errors.New("query failed with status 500")
	m, cmd := send(t, m, keyRunes("L"))
	require.NotNil(t, cmd)
	m, _ = send(t, m, cmd())

	assert.Contains(t, m.errorToast, "Load failed")
	assert.Contains(t, m.errorToast, "500")
	assert.Equal(t, []string{"1", "2"}, visibleIDs(m), "loaded fact sheets are kept")
}

func TestFactSheetListModel_RefreshReplaces(t *testing.T) {
	cat := createTestCatalog()
	m := newLoadedList(t, cat, nil)
	m, cmd := send(t, m, keyRunes("L"))
	m, _ = send(t, m, cmd())
	require.Len(t, m.visible, 3)

	m, cmd = send(t, m, keyRunes("r"))
	require.NotNil(t, cmd)
	m, _ = send(t, m, cmd())

	assert.Equal(t, leanix.PageRequest{}, cat.requests[len(cat.requests)-1])
	assert.Equal(t, []string{"1", "2"}, visibleIDs(m))
}

func TestFactSheetListModel_Filter(t *testing.T) {
	m := newLoadedList(t, createTestCatalog(), nil)

	m, _ = send(t, m, keyRunes("/"))
	require.True(t, m.filterMode)

	m, _ = send(t, m, keyRunes("erp"))
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.False(t, m.filterMode)
	assert.Equal(t, "erp", m.store.GetFilter())
	assert.Equal(t, []string{"2"}, visibleIDs(m))
	assert.Contains(t, m.View(), "/erp (1)")

	// Clearing the filter shows everything again
	m, _ = send(t, m, keyRunes("/"))
	m.filterInput.SetValue("")
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, []string{"1", "2"}, visibleIDs(m))
}

func TestFactSheetListModel_FilterCancel(t *testing.T) {
	m := newLoadedList(t, createTestCatalog(), nil)

	m, _ = send(t, m, keyRunes("/"))
	m, _ = send(t, m, keyRunes("zzz"))
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	assert.False(t, m.filterMode)
	assert.Empty(t, m.store.GetFilter())
	assert.Len(t, m.visible, 2)
}

func TestFactSheetListModel_Search(t *testing.T) {
	cat := createTestCatalog()
	m := newLoadedList(t, cat, nil)

	m, _ = send(t, m, keyRunes("s"))
	require.True(t, m.searchMode)
	m, _ = send(t, m, keyRunes("crm"))
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, m.loading)

	m, _ = send(t, m, cmd())
	assert.Equal(t, []string{"crm"}, cat.terms)
	assert.Equal(t, store.ModeSearch, m.store.Mode())
	assert.Equal(t, []string{"9"}, visibleIDs(m))
	assert.Contains(t, m.View(), `Search "crm"`)

	// Search results have no next page
	m, cmd = send(t, m, keyRunes("L"))
	assert.Nil(t, cmd)
	assert.Equal(t, "Search results are not paginated", m.toast)
}

func TestFactSheetListModel_BlankSearchIgnored(t *testing.T) {
	cat := createTestCatalog()
	m := newLoadedList(t, cat, nil)

	m, _ = send(t, m, keyRunes("s"))
	m, _ = send(t, m, keyRunes("   "))
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.False(t, m.searchMode)
	assert.Empty(t, cat.terms)
}

func TestFactSheetListModel_Navigation(t *testing.T) {
	m := newLoadedList(t, createTestCatalog(), nil)

	tests := []struct {
		key  string
		want int
	}{
		{"j", 1},
		{"j", 1}, // clamped at the end
		{"k", 0},
		{"k", 0}, // clamped at the start
		{"G", 1},
		{"g", 0},
	}

	for _, tt := range tests {
		m, _ = send(t, m, keyRunes(tt.key))
		assert.Equal(t, tt.want, m.selected, "after %q", tt.key)
	}
}

func TestFactSheetListModel_OpenDetail(t *testing.T) {
	m := newLoadedList(t, createTestCatalog(), nil)
	m, _ = send(t, m, keyRunes("j"))

	_, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	msg, ok := cmd().(openDetailMsg)
	require.True(t, ok)
	assert.Equal(t, "2", msg.factSheet.ID)
}

func TestFactSheetListModel_OpenInBrowser(t *testing.T) {
	var opened []string
	orig := openURL
	openURL = func(u string) error {
		opened = append(opened, u)
		return nil
	}
	t.Cleanup(func() { openURL = orig })

	t.Run("without workspace", func(t *testing.T) {
		m := newLoadedList(t, createTestCatalog(), nil)
		m, _ = send(t, m, keyRunes("o"))
		assert.Empty(t, opened)
		assert.Contains(t, m.toast, "workspace")
	})

	t.Run("with workspace", func(t *testing.T) {
		urlFor := func(fs domain.FactSheet) string {
			return "https://acme.leanix.net/ws/factsheet/" + fs.Type + "/" + fs.ID
		}
		m := newLoadedList(t, createTestCatalog(), urlFor)
		send(t, m, keyRunes("o"))
		assert.Equal(t, []string{"https://acme.leanix.net/ws/factsheet/Application/1"}, opened)
	})
}

func TestFactSheetListModel_BackAndQuit(t *testing.T) {
	m := newLoadedList(t, createTestCatalog(), nil)

	_, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.IsType(t, backToPickerMsg{}, cmd())

	_, cmd = send(t, m, keyRunes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, QuitMsg{}, cmd())
}

func TestFactSheetListModel_ScrollKeepsSelectionVisible(t *testing.T) {
	cat := &fakeCatalog{pages: map[string]domain.Page{}}
	var many []domain.FactSheet
	for i := 0; i < 40; i++ {
		many = append(many, domain.FactSheet{ID: strings.Repeat("x", i+1), Name: "fs"})
	}
	cat.pages[""] = testPage("", false, 40, many...)

	s := store.New()
	s.SetType(domain.DataObject)
	m := NewFactSheetListModel(s, cat, context.Background(), nil)
	m, _ = send(t, m, tea.WindowSizeMsg{Width: 80, Height: 13})
	m, _ = send(t, m, m.loadPage("")())

	rows := m.rowCapacity()
	require.Equal(t, 10, rows)

	m, _ = send(t, m, keyRunes("G"))
	assert.Equal(t, 39, m.selected)
	assert.Equal(t, 30, m.scrollOffset)

	m, _ = send(t, m, keyRunes("g"))
	assert.Equal(t, 0, m.scrollOffset)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
	assert.Equal(t, "a", truncate("abc", 1))
}
