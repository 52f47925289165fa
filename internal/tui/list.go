package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/browser"

	"github.com/robby/leanix-mcp/internal/domain"
	"github.com/robby/leanix-mcp/internal/leanix"
	"github.com/robby/leanix-mcp/internal/store"
)

// Layout constants
const (
	headerLines  = 2 // Title line + hints line
	footerLines  = 1
	pageJumpSize = 10 // Number of rows to jump with Ctrl+D/U
	phaseWidth   = 10
)

var (
	rowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	selectedRowStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("205")).
				Bold(true)

	listTitleStyle = lipgloss.NewStyle().
			Bold(true)

	searchModeStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("205")).
			Foreground(lipgloss.Color("0")).
			Padding(0, 1)
)

// openURL is swapped in tests.
var openURL = browser.OpenURL

// FactSheetListModel lists the loaded fact sheets of one type or search.
// Pages are only fetched on request, one per LoadMore key press.
type FactSheetListModel struct {
	// Dependencies
	store   *store.Store
	catalog Catalog
	ctx     context.Context
	urlFor  func(domain.FactSheet) string

	// UI components
	keymap      KeyMap
	help        HelpModel
	spinner     spinner.Model
	filterInput textinput.Model
	searchInput textinput.Model

	// List state
	visible      []*domain.FactSheet
	selected     int
	scrollOffset int

	// View state
	width       int
	height      int
	showHelp    bool
	filterMode  bool
	searchMode  bool
	loading     bool
	loadingMore bool
	toast       string
	errorToast  string
}

// NewFactSheetListModel creates a list over s. urlFor returns the web UI link of
// a fact sheet, or "" when links are unavailable; it may be nil.
func NewFactSheetListModel(s *store.Store, catalog Catalog, ctx context.Context, urlFor func(domain.FactSheet) string) FactSheetListModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	fi := textinput.New()
	fi.Placeholder = "Filter loaded fact sheets..."
	fi.Prompt = "/ "

	si := textinput.New()
	si.Placeholder = "Search fact sheets by name..."
	si.Prompt = "search: "

	if urlFor == nil {
		urlFor = func(domain.FactSheet) string { return "" }
	}

	m := FactSheetListModel{
		store:       s,
		catalog:     catalog,
		ctx:         ctx,
		urlFor:      urlFor,
		keymap:      DefaultKeyMap(),
		help:        NewHelpModel(DefaultKeyMap()),
		spinner:     sp,
		filterInput: fi,
		searchInput: si,
	}
	m.refresh()
	return m
}

// Init starts loading the first page unless the store already holds fact sheets.
func (m FactSheetListModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, tea.WindowSize()}
	if m.store.Len() == 0 && m.store.Mode() == store.ModeBrowse {
		cmds = append(cmds, m.loadPage(""))
	}
	return tea.Batch(cmds...)
}

// Update handles messages
func (m FactSheetListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		(&m).adjustScroll()
		return m, nil

	case pageLoadedMsg:
		m.loading = false
		m.loadingMore = false
		if msg.err != nil {
			m.errorToast = fmt.Sprintf("Load failed: %v", msg.err)
			return m, nil
		}
		if msg.first {
			m.store.Clear()
			m.selected = 0
			m.scrollOffset = 0
		}
		m.store.AppendPage(msg.page)
		m.errorToast = ""
		m.toast = ""
		(&m).refresh()
		return m, nil

	case searchResultsMsg:
		m.loading = false
		if msg.err != nil {
			m.errorToast = fmt.Sprintf("Search failed: %v", msg.err)
			return m, nil
		}
		m.store.SetSearchResults(msg.term, msg.factSheets)
		m.filterInput.SetValue("")
		m.selected = 0
		m.scrollOffset = 0
		m.errorToast = ""
		m.toast = ""
		(&m).refresh()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	return m, nil
}

// handleKeyPress processes keyboard input
func (m FactSheetListModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// Help overlay
	if m.showHelp {
		if key.Matches(msg, m.keymap.Help, m.keymap.Cancel) || msg.String() == "q" {
			m.showHelp = false
		}
		return m, nil
	}

	if m.filterMode {
		switch {
		case key.Matches(msg, m.keymap.Apply):
			m.filterMode = false
			m.filterInput.Blur()
			m.store.SetFilter(m.filterInput.Value())
			m.selected = 0
			m.scrollOffset = 0
			(&m).refresh()
			return m, nil
		case key.Matches(msg, m.keymap.Cancel):
			m.filterMode = false
			m.filterInput.Blur()
			m.filterInput.SetValue(m.store.GetFilter())
			return m, nil
		default:
			var cmd tea.Cmd
			m.filterInput, cmd = m.filterInput.Update(msg)
			return m, cmd
		}
	}

	if m.searchMode {
		switch {
		case key.Matches(msg, m.keymap.Apply):
			m.searchMode = false
			m.searchInput.Blur()
			term := strings.TrimSpace(m.searchInput.Value())
			if term == "" {
				return m, nil
			}
			m.loading = true
			return m, m.search(term)
		case key.Matches(msg, m.keymap.Cancel):
			m.searchMode = false
			m.searchInput.Blur()
			return m, nil
		default:
			var cmd tea.Cmd
			m.searchInput, cmd = m.searchInput.Update(msg)
			return m, cmd
		}
	}

	switch {
	case key.Matches(msg, m.keymap.Quit):
		return m, func() tea.Msg { return QuitMsg{} }
	case key.Matches(msg, m.keymap.Help):
		m.showHelp = true
	case key.Matches(msg, m.keymap.Back):
		return m, func() tea.Msg { return backToPickerMsg{} }
	case key.Matches(msg, m.keymap.Filter):
		m.filterMode = true
		m.filterInput.SetValue(m.store.GetFilter())
		cmd := m.filterInput.Focus()
		return m, cmd
	case key.Matches(msg, m.keymap.Search):
		m.searchMode = true
		m.searchInput.SetValue(m.store.SearchTerm())
		cmd := m.searchInput.Focus()
		return m, cmd
	case key.Matches(msg, m.keymap.Down):
		(&m).moveSelection(1)
	case key.Matches(msg, m.keymap.Up):
		(&m).moveSelection(-1)
	case key.Matches(msg, m.keymap.Top):
		(&m).jumpTo(0)
	case key.Matches(msg, m.keymap.Bottom):
		(&m).jumpTo(len(m.visible) - 1)
	case key.Matches(msg, m.keymap.PageDown):
		(&m).moveSelection(pageJumpSize)
	case key.Matches(msg, m.keymap.PageUp):
		(&m).moveSelection(-pageJumpSize)
	case key.Matches(msg, m.keymap.LoadMore):
		return m.loadMore()
	case key.Matches(msg, m.keymap.Refresh):
		if m.store.Mode() == store.ModeSearch {
			m.loading = true
			return m, m.search(m.store.SearchTerm())
		}
		m.loading = true
		return m, m.loadPage("")
	case key.Matches(msg, m.keymap.Open):
		(&m).openSelected()
	case key.Matches(msg, m.keymap.Detail):
		if fs := m.selectedFactSheet(); fs != nil {
			return m, func() tea.Msg { return openDetailMsg{factSheet: fs} }
		}
	}

	return m, nil
}

func (m FactSheetListModel) loadMore() (tea.Model, tea.Cmd) {
	if m.loadingMore || m.loading {
		return m, nil
	}
	cursor, err := m.store.NextCursor()
	switch {
	case errors.Is(err, store.ErrNoMorePages):
		m.toast = "All pages loaded"
		return m, nil
	case err != nil:
		m.toast = "Search results are not paginated"
		return m, nil
	}
	m.loadingMore = true
	m.toast = ""
	return m, m.loadPage(cursor)
}

func (m *FactSheetListModel) openSelected() {
	fs := m.selectedFactSheet()
	if fs == nil {
		return
	}
	link := m.urlFor(*fs)
	if link == "" {
		m.toast = "Set a workspace to open fact sheets in LeanIX"
		return
	}
	if err := openURL(link); err != nil {
		m.errorToast = fmt.Sprintf("Open failed: %v", err)
	}
}

// loadPage fetches the page after cursor; an empty cursor fetches the first page.
func (m FactSheetListModel) loadPage(cursor string) tea.Cmd {
	t, err := m.store.GetType()
	return func() tea.Msg {
		if err != nil {
			return pageLoadedMsg{err: err}
		}
		page, err := m.catalog.GetFactSheetsByTypePaginated(m.ctx, t.String(), leanix.PageRequest{After: cursor})
		return pageLoadedMsg{page: page, first: cursor == "", err: err}
	}
}

func (m FactSheetListModel) search(term string) tea.Cmd {
	return func() tea.Msg {
		factSheets, err := m.catalog.SearchFactSheetsByName(m.ctx, term)
		return searchResultsMsg{term: term, factSheets: factSheets, err: err}
	}
}

// refresh re-reads the visible fact sheets from the store and clamps the selection.
func (m *FactSheetListModel) refresh() {
	m.visible = m.store.Visible()
	if m.selected >= len(m.visible) {
		m.selected = len(m.visible) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
	m.adjustScroll()
}

func (m *FactSheetListModel) moveSelection(delta int) {
	m.jumpTo(m.selected + delta)
}

func (m *FactSheetListModel) jumpTo(idx int) {
	if len(m.visible) == 0 {
		return
	}
	if idx < 0 {
		idx = 0
	}
	if idx >= len(m.visible) {
		idx = len(m.visible) - 1
	}
	m.selected = idx
	m.adjustScroll()
}

// adjustScroll keeps the selected row inside the visible window.
func (m *FactSheetListModel) adjustScroll() {
	rows := m.rowCapacity()
	if m.selected < m.scrollOffset {
		m.scrollOffset = m.selected
	}
	if m.selected >= m.scrollOffset+rows {
		m.scrollOffset = m.selected - rows + 1
	}
	if m.scrollOffset < 0 {
		m.scrollOffset = 0
	}
}

// rowCapacity returns how many fact sheet rows fit on screen.
func (m FactSheetListModel) rowCapacity() int {
	height := m.height
	if height == 0 {
		height = 24
	}
	rows := height - headerLines - footerLines
	if m.filterMode || m.searchMode {
		rows--
	}
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (m FactSheetListModel) selectedFactSheet() *domain.FactSheet {
	if m.selected < 0 || m.selected >= len(m.visible) {
		return nil
	}
	return m.visible[m.selected]
}

// View renders the list - fills the terminal height
func (m FactSheetListModel) View() string {
	width := m.width
	if width == 0 {
		width = 80
	}

	sections := []string{m.renderHeader(width), m.renderHints(width)}

	if m.filterMode {
		sections = append(sections, m.filterInput.View())
	}
	if m.searchMode {
		sections = append(sections, m.searchInput.View())
	}

	rows := m.rowCapacity()
	var body string
	switch {
	case m.showHelp:
		lines := strings.Split(m.help.View(width), "\n")
		if len(lines) > rows {
			lines = lines[:rows]
		}
		body = strings.Join(lines, "\n")
	case m.loading && len(m.visible) == 0:
		body = lipgloss.Place(width, rows, lipgloss.Center, lipgloss.Center, m.spinner.View()+" Loading...")
	case len(m.visible) == 0:
		body = lipgloss.Place(width, rows, lipgloss.Center, lipgloss.Center, m.emptyMessage())
	default:
		body = m.renderRows(width, rows)
	}
	sections = append(sections, body, m.renderFooter())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m FactSheetListModel) emptyMessage() string {
	switch {
	case m.store.GetFilter() != "":
		return "No loaded fact sheet matches the filter. Press '/' to change it."
	case m.store.Mode() == store.ModeSearch:
		return fmt.Sprintf("No fact sheets found for %q.", m.store.SearchTerm())
	default:
		return "No fact sheets. Press 'r' to refresh."
	}
}

// renderHeader renders the title on the left and the load state on the right
func (m FactSheetListModel) renderHeader(width int) string {
	var title string
	if m.store.Mode() == store.ModeSearch {
		title = fmt.Sprintf("Search %q", m.store.SearchTerm())
		title = searchModeStyle.Render("SEARCH") + " " + listTitleStyle.Render(title)
	} else if t, err := m.store.GetType(); err == nil {
		title = listTitleStyle.Render(fmt.Sprintf("%s (%s)", t.Label(), t))
	}

	var statusParts []string
	if m.loadingMore || (m.loading && len(m.visible) > 0) {
		statusParts = append(statusParts, m.spinner.View()+"loading")
	}

	loaded := fmt.Sprintf("%d loaded", m.store.Len())
	if total, ok := m.store.TotalCount(); ok {
		loaded = fmt.Sprintf("%d of %d loaded", m.store.Len(), total)
	}
	statusParts = append(statusParts, loaded)

	if f := m.store.GetFilter(); f != "" {
		statusParts = append(statusParts, fmt.Sprintf("/%s (%d)", f, len(m.visible)))
	}
	statusParts = append(statusParts, "[?]help")

	status := DimStyle.Render(strings.Join(statusParts, " | "))
	padding := width - lipgloss.Width(title) - lipgloss.Width(status) - 2
	if padding < 1 {
		padding = 1
	}
	return title + strings.Repeat(" ", padding) + status
}

// renderHints renders navigation hints, or the current toast
func (m FactSheetListModel) renderHints(width int) string {
	switch {
	case m.errorToast != "":
		return ErrorStyle.Render(m.errorToast)
	case m.toast != "":
		return WarningStyle.Render(m.toast)
	}
	return m.help.ShortView(width)
}

func (m FactSheetListModel) renderRows(width, rows int) string {
	end := m.scrollOffset + rows
	if end > len(m.visible) {
		end = len(m.visible)
	}

	lines := make([]string, 0, rows)
	for i := m.scrollOffset; i < end; i++ {
		lines = append(lines, m.renderRow(m.visible[i], i == m.selected, width))
	}
	return strings.Join(lines, "\n")
}

// renderRow renders "> title  phase  completion", truncating the title to fit.
func (m FactSheetListModel) renderRow(fs *domain.FactSheet, selected bool, width int) string {
	phase := ""
	if fs.Lifecycle != nil {
		phase = fs.Lifecycle.Phase
		if phase == "" {
			phase = fs.Lifecycle.AsString
		}
	}

	completion := ""
	if fs.Completion != nil && fs.Completion.Percentage != nil {
		completion = fmt.Sprintf("%3d%%", *fs.Completion.Percentage)
	}

	titleWidth := width - 2 - phaseWidth - 6
	if titleWidth < 10 {
		titleWidth = 10
	}
	title := truncate(fs.Title(), titleWidth)
	if m.store.Mode() == store.ModeSearch && fs.Type != "" {
		title = truncate(fmt.Sprintf("%s [%s]", fs.Title(), fs.Type), titleWidth)
	}

	prefix, style := "  ", rowStyle
	if selected {
		prefix, style = "> ", selectedRowStyle
	}

	line := style.Render(prefix + padRight(title, titleWidth))
	line += " " + PhaseStyle(phase).Render(padRight(truncate(phase, phaseWidth), phaseWidth))
	line += " " + DimStyle.Render(completion)
	return line
}

func (m FactSheetListModel) renderFooter() string {
	_, hasNext := m.store.GetPagination()
	switch {
	case m.store.Mode() == store.ModeSearch:
		return DimStyle.Render("search results | s: new search | r: rerun | esc: back to types")
	case hasNext:
		return DimStyle.Render("more pages available | L: load next page")
	case m.store.Len() > 0:
		return DimStyle.Render("all pages loaded")
	}
	return ""
}

// truncate shortens s to width runes, marking the cut with an ellipsis.
func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "…"
}

func padRight(s string, width int) string {
	n := lipgloss.Width(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
