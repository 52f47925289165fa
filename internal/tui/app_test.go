package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robby/leanix-mcp/internal/domain"
	"github.com/robby/leanix-mcp/internal/store"
)

func intPtr(n int) *int { return &n }

func appUpdate(t *testing.T, m AppModel, msg tea.Msg) (AppModel, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	am, ok := updated.(AppModel)
	require.True(t, ok, "Update returned %T", updated)
	return am, cmd
}

func TestAppModel_InitWithTypeFlag(t *testing.T) {
	m := NewAppModel(createTestCatalog(), store.New(), context.Background(), domain.Interface, nil)

	cmd := m.Init()
	require.NotNil(t, cmd)
	assert.Equal(t, TypeSelectedMsg{Type: domain.Interface}, cmd())
}

func TestAppModel_InitFetchesTypeCounts(t *testing.T) {
	cat := createTestCatalog()
	cat.facets = []domain.Facet{{
		FacetKey: "FactSheetTypes",
		Results:  []domain.FacetResult{{Key: "Application", Count: intPtr(120)}},
	}}
	m := NewAppModel(cat, store.New(), context.Background(), "", nil)

	msg, ok := m.Init()().(typeCountsMsg)
	require.True(t, ok)
	assert.NoError(t, msg.err)
	assert.Equal(t, map[string]int{"Application": 120}, msg.counts)

	m, _ = appUpdate(t, m, msg)
	assert.Equal(t, ScreenTypePicker, m.currentScreen)
	assert.Contains(t, m.View(), "type Application, 120 fact sheets")
}

func TestAppModel_TypeCountsUnavailable(t *testing.T) {
	cat := createTestCatalog()
	cat.typesErr = errors.New("authentication failed with status 401")
	m := NewAppModel(cat, store.New(), context.Background(), "", nil)

	m, _ = appUpdate(t, m, m.Init()())

	assert.Equal(t, ScreenTypePicker, m.currentScreen)
	assert.Nil(t, m.err, "missing counts do not stop browsing")
	assert.Contains(t, m.View(), "counts unavailable")
}

func TestAppModel_Flow(t *testing.T) {
	s := store.New()
	cat := createTestCatalog()
	m := NewAppModel(cat, s, context.Background(), "", nil)

	m, _ = appUpdate(t, m, typeCountsMsg{counts: map[string]int{}})
	require.Equal(t, ScreenTypePicker, m.currentScreen)

	// Pick a type: the list loads its first page
	m, _ = appUpdate(t, m, TypeSelectedMsg{Type: domain.Application})
	require.Equal(t, ScreenList, m.currentScreen)
	got, err := s.GetType()
	require.NoError(t, err)
	assert.Equal(t, domain.Application, got)

	m, _ = appUpdate(t, m, m.listModel.loadPage("")())
	require.Len(t, m.listModel.visible, 2)

	// Detail and back keeps the loaded list
	fs := m.listModel.visible[1]
	m, _ = appUpdate(t, m, openDetailMsg{factSheet: fs})
	require.Equal(t, ScreenDetail, m.currentScreen)
	assert.Contains(t, m.View(), "ERP")

	m, _ = appUpdate(t, m, closeDetailMsg{})
	require.Equal(t, ScreenList, m.currentScreen)
	assert.Len(t, m.listModel.visible, 2)

	// Back to the type picker
	m, _ = appUpdate(t, m, backToPickerMsg{})
	assert.Equal(t, ScreenTypePicker, m.currentScreen)
}

func TestAppModel_DetailLink(t *testing.T) {
	urlFor := func(fs domain.FactSheet) string { return "https://acme.leanix.net/ws/factsheet/" + fs.Type + "/" + fs.ID }
	m := NewAppModel(createTestCatalog(), store.New(), context.Background(), domain.Application, urlFor)

	fs := &domain.FactSheet{ID: "7", Name: "Billing", Type: "Application"}
	m, _ = appUpdate(t, m, openDetailMsg{factSheet: fs})

	detail, ok := m.currentModel.(DetailModel)
	require.True(t, ok)
	assert.Equal(t, "https://acme.leanix.net/ws/factsheet/Application/7", detail.link)
}

func TestAppModel_ErrorAndQuit(t *testing.T) {
	m := NewAppModel(createTestCatalog(), store.New(), context.Background(), "", nil)

	m, _ = appUpdate(t, m, ErrorMsg{Err: errors.New("boom")})
	assert.Contains(t, m.View(), "Error: boom")

	_, cmd := appUpdate(t, m, QuitMsg{})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestTypeCounts(t *testing.T) {
	facets := []domain.Facet{
		{FacetKey: "lifecycle", Results: []domain.FacetResult{{Key: "active", Count: intPtr(3)}}},
		{FacetKey: "FactSheetTypes", Results: []domain.FacetResult{
			{Key: "Application", Count: intPtr(10)},
			{Key: "Interface"}, // no count
			{Count: intPtr(1)}, // no key
		}},
	}

	assert.Equal(t, map[string]int{"Application": 10}, typeCounts(facets))
	assert.Empty(t, typeCounts(nil))
}

func TestTypePickerModel_Select(t *testing.T) {
	m := NewTypePickerModel(nil)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = updated.(TypePickerModel)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, TypeSelectedMsg{Type: domain.ITComponent}, cmd())

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, QuitMsg{}, cmd())
}

func TestTypePickerModel_ListsEveryType(t *testing.T) {
	m := NewTypePickerModel(map[string]int{"UserGroup": 4})

	items := m.list.Items()
	require.Len(t, items, len(domain.AllFactSheetTypes()))
	for i, typ := range domain.AllFactSheetTypes() {
		item := items[i].(typeItem)
		assert.Equal(t, typ, item.factSheetType)
	}

	org := items[4].(typeItem)
	assert.Equal(t, "Organizations", org.Title())
	assert.Equal(t, "type UserGroup, 4 fact sheets", org.Description())
	assert.Equal(t, "type Application", items[0].(typeItem).Description())
}
