package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/robby/leanix-mcp/internal/domain"
)

// factSheetTypesFacet is the facet listing every type with its count.
const factSheetTypesFacet = "FactSheetTypes"

// typeItem wraps a domain.FactSheetType for use in bubbles/list.
type typeItem struct {
	factSheetType domain.FactSheetType
	count         *int
}

func (i typeItem) FilterValue() string {
	return i.factSheetType.Label()
}

func (i typeItem) Title() string {
	return i.factSheetType.Label()
}

func (i typeItem) Description() string {
	if i.count == nil {
		return fmt.Sprintf("type %s", i.factSheetType)
	}
	return fmt.Sprintf("type %s, %d fact sheets", i.factSheetType, *i.count)
}

// typeDelegate is a custom item delegate for type items.
type typeDelegate struct{}

func (d typeDelegate) Height() int                             { return 2 }
func (d typeDelegate) Spacing() int                            { return 1 }
func (d typeDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d typeDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(typeItem)
	if !ok {
		return
	}

	str := fmt.Sprintf("%d. %s", index+1, i.Title())
	desc := i.Description()

	if index == m.Index() {
		fmt.Fprint(w, SelectedItemStyle.Render("> "+str))
		fmt.Fprint(w, "\n  "+NormalItemStyle.Render(desc))
	} else {
		fmt.Fprint(w, NormalItemStyle.Render("  "+str))
		fmt.Fprint(w, "\n  "+DimStyle.Render(desc))
	}
}

// TypePickerModel displays the supported fact sheet types for the user to select.
type TypePickerModel struct {
	list    list.Model
	warning string
	err     error
}

// NewTypePickerModel creates a TypePickerModel. counts maps type literals to
// their number of fact sheets and may be nil.
func NewTypePickerModel(counts map[string]int) TypePickerModel {
	types := domain.AllFactSheetTypes()
	items := make([]list.Item, len(types))
	for i, t := range types {
		item := typeItem{factSheetType: t}
		if n, ok := counts[string(t)]; ok {
			item.count = &n
		}
		items[i] = item
	}

	l := list.New(items, typeDelegate{}, 80, 20)
	l.Title = "Select a Fact Sheet Type"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = TitleStyle

	return TypePickerModel{
		list: l,
	}
}

// typeCounts extracts the per-type counts from the FactSheetTypes facet.
func typeCounts(facets []domain.Facet) map[string]int {
	counts := make(map[string]int)
	for _, f := range facets {
		if f.FacetKey != factSheetTypesFacet {
			continue
		}
		for _, r := range f.Results {
			if r.Key != "" && r.Count != nil {
				counts[r.Key] = *r.Count
			}
		}
	}
	return counts
}

// Init initializes the model.
func (m TypePickerModel) Init() tea.Cmd {
	return tea.WindowSize()
}

// Update handles messages and updates the model state.
func (m TypePickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width - 2)
		m.list.SetHeight(msg.Height - 2)
		return m, nil

	case tea.KeyMsg:
		// Let the list consume keys while its filter input is open
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, func() tea.Msg {
				return QuitMsg{}
			}
		case "enter":
			if item, ok := m.list.SelectedItem().(typeItem); ok {
				return m, func() tea.Msg {
					return TypeSelectedMsg{Type: item.factSheetType}
				}
			}
		}

	case ErrorMsg:
		m.err = msg.Err
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the model.
func (m TypePickerModel) View() string {
	view := m.list.View()

	if m.warning != "" {
		view += WarningStyle.Render("\n" + m.warning)
	}
	if m.err != nil {
		view += ErrorStyle.Render(fmt.Sprintf("\nError: %v", m.err))
	}

	return view
}
