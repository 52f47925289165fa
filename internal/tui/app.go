package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/robby/leanix-mcp/internal/domain"
	"github.com/robby/leanix-mcp/internal/leanix"
	"github.com/robby/leanix-mcp/internal/store"
)

// Catalog is the part of the LeanIX client the browser uses.
type Catalog interface {
	GetFactSheetsByTypePaginated(ctx context.Context, typeName string, pr leanix.PageRequest) (domain.Page, error)
	SearchFactSheetsByName(ctx context.Context, term string) ([]domain.FactSheet, error)
	GetTypes(ctx context.Context) ([]domain.Facet, error)
}

var _ Catalog = (*leanix.Client)(nil)

// AppScreen represents the different screens in the application flow.
type AppScreen int

const (
	ScreenLoading AppScreen = iota
	ScreenTypePicker
	ScreenList
	ScreenDetail
)

// AppModel is the root Bubble Tea model that manages screen transitions.
// It orchestrates the flow from type selection -> fact sheet list -> detail view.
type AppModel struct {
	// Dependencies
	catalog Catalog
	store   *store.Store
	ctx     context.Context
	urlFor  func(domain.FactSheet) string

	// CLI flag (pre-selected type)
	typeFlag domain.FactSheetType

	// Current state
	currentScreen AppScreen
	currentModel  tea.Model
	err           error
	loadingMsg    string

	// Cached models to preserve state across screen transitions
	pickerModel *TypePickerModel
	listModel   *FactSheetListModel
}

// NewAppModel creates a new app model. A valid typeFlag skips the type picker.
// urlFor builds web UI links and may be nil.
func NewAppModel(catalog Catalog, s *store.Store, ctx context.Context, typeFlag domain.FactSheetType, urlFor func(domain.FactSheet) string) AppModel {
	return AppModel{
		catalog:       catalog,
		store:         s,
		ctx:           ctx,
		urlFor:        urlFor,
		typeFlag:      typeFlag,
		currentScreen: ScreenLoading,
		loadingMsg:    "Connecting to LeanIX...",
	}
}

// Init initializes the app model.
func (m AppModel) Init() tea.Cmd {
	if m.typeFlag.Valid() {
		t := m.typeFlag
		return func() tea.Msg { return TypeSelectedMsg{Type: t} }
	}
	return m.fetchTypeCounts()
}

// Update handles messages and transitions between screens.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Global quit handler
		if msg.String() == "ctrl+c" && m.currentScreen == ScreenLoading {
			return m, tea.Quit
		}

	case ErrorMsg:
		m.err = msg.Err
		return m, nil

	case QuitMsg:
		return m, tea.Quit

	case typeCountsMsg:
		picker := NewTypePickerModel(msg.counts)
		if msg.err != nil {
			// Counts are decoration; the picker works without them
			picker.warning = fmt.Sprintf("Fact sheet counts unavailable: %v", msg.err)
		}
		m.pickerModel = &picker
		m.currentScreen = ScreenTypePicker
		m.currentModel = picker
		return m, picker.Init()

	case TypeSelectedMsg:
		m.store.SetType(msg.Type)
		list := NewFactSheetListModel(m.store, m.catalog, m.ctx, m.urlFor)
		m.listModel = &list
		m.currentScreen = ScreenList
		m.currentModel = list
		return m, list.Init()

	case backToPickerMsg:
		if m.pickerModel == nil {
			m.currentScreen = ScreenLoading
			m.currentModel = nil
			m.loadingMsg = "Loading fact sheet types..."
			return m, m.fetchTypeCounts()
		}
		m.currentScreen = ScreenTypePicker
		m.currentModel = *m.pickerModel
		return m, tea.WindowSize()

	case openDetailMsg:
		m.currentScreen = ScreenDetail
		link := ""
		if m.urlFor != nil {
			link = m.urlFor(*msg.factSheet)
		}
		detail := NewDetailModel(msg.factSheet, link)
		m.currentModel = detail
		return m, detail.Init()

	case closeDetailMsg:
		// Return to the list from detail view
		m.currentScreen = ScreenList
		m.currentModel = *m.listModel
		// Request window size to ensure proper rendering
		return m, tea.WindowSize()
	}

	// Delegate to current screen's model
	if m.currentModel != nil {
		var cmd tea.Cmd
		m.currentModel, cmd = m.currentModel.Update(msg)
		// Keep cached models in sync
		switch cur := m.currentModel.(type) {
		case FactSheetListModel:
			m.listModel = &cur
		case TypePickerModel:
			m.pickerModel = &cur
		}
		return m, cmd
	}

	return m, nil
}

// View renders the current screen.
func (m AppModel) View() string {
	if m.err != nil {
		return ErrorStyle.Render(fmt.Sprintf("Error: %v\n\nPress Ctrl+C to quit", m.err))
	}

	if m.currentModel != nil {
		return m.currentModel.View()
	}

	return m.loadingMsg + "\n\nPress Ctrl+C to quit"
}

// fetchTypeCounts creates a command to load the number of fact sheets per type.
func (m AppModel) fetchTypeCounts() tea.Cmd {
	return func() tea.Msg {
		facets, err := m.catalog.GetTypes(m.ctx)
		if err != nil {
			return typeCountsMsg{err: err}
		}
		return typeCountsMsg{counts: typeCounts(facets)}
	}
}
