package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/robby/leanix-mcp/internal/domain"
)

// Layout constants
const (
	detailHeaderHeight = 2 // Title + type line
	detailFooterHeight = 1
	minWrapWidth       = 30
	labelWidth         = 24
)

// Detail view styles
var (
	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("205"))

	detailLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("241"))

	detailValueStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	tagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)
)

// DetailModel shows every loaded field of one fact sheet in a scrollable viewport.
type DetailModel struct {
	factSheet *domain.FactSheet
	link      string

	keymap   DetailKeyMap
	help     HelpModel
	viewport viewport.Model

	notice string
	width  int
	height int
}

// NewDetailModel creates a new detail view model. link is the web UI URL of
// the fact sheet and may be empty.
func NewDetailModel(fs *domain.FactSheet, link string) DetailModel {
	vp := viewport.New(80, 20) // Will be resized in WindowSizeMsg
	vp.MouseWheelEnabled = true
	vp.MouseWheelDelta = 3

	m := DetailModel{
		factSheet: fs,
		link:      link,
		keymap:    DefaultDetailKeyMap(),
		help:      NewHelpModel(DefaultDetailKeyMap()),
		viewport:  vp,
	}
	m.viewport.SetContent(renderFactSheet(fs, minWrapWidth*2))
	return m
}

// Init initializes the detail model
func (m DetailModel) Init() tea.Cmd {
	return tea.WindowSize()
}

// Update handles messages
func (m DetailModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		(&m).resize()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	return m, nil
}

// resize fits the viewport to the window and re-wraps the content.
func (m *DetailModel) resize() {
	height := m.height - detailHeaderHeight - detailFooterHeight
	if height < 5 {
		height = 5
	}
	m.viewport.Width = m.width
	m.viewport.Height = height

	wrap := m.width - 2
	if wrap < minWrapWidth {
		wrap = minWrapWidth
	}
	m.viewport.SetContent(renderFactSheet(m.factSheet, wrap))
}

// handleKeyPress processes keyboard input
func (m DetailModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch {
	case key.Matches(msg, m.keymap.Close):
		return m, func() tea.Msg { return closeDetailMsg{} }
	case key.Matches(msg, m.keymap.Open):
		if m.link == "" {
			m.notice = "Set a workspace to open fact sheets in LeanIX"
			return m, nil
		}
		if err := openURL(m.link); err != nil {
			m.notice = fmt.Sprintf("Open failed: %v", err)
		}
	case key.Matches(msg, m.keymap.Down):
		m.viewport.LineDown(1)
	case key.Matches(msg, m.keymap.Up):
		m.viewport.LineUp(1)
	case key.Matches(msg, m.keymap.Top):
		m.viewport.GotoTop()
	case key.Matches(msg, m.keymap.Bottom):
		m.viewport.GotoBottom()
	case msg.String() == "ctrl+d":
		m.viewport.HalfViewDown()
	case msg.String() == "ctrl+u":
		m.viewport.HalfViewUp()
	}

	return m, nil
}

// View renders the detail view
func (m DetailModel) View() string {
	width := m.width
	if width == 0 {
		width = 80
	}

	header := detailTitleStyle.Render(m.factSheet.Title()) + "\n" +
		detailLabelStyle.Render(strings.TrimSpace(m.factSheet.Type+"  "+m.link))

	return lipgloss.JoinVertical(lipgloss.Left, header, m.viewport.View(), m.renderFooter(width))
}

// renderFooter renders the key hints on the left and the scroll position on the right
func (m DetailModel) renderFooter(width int) string {
	left := m.help.ShortView(width / 2)
	if m.notice != "" {
		left = WarningStyle.Render(m.notice)
	}

	right := ""
	if m.viewport.TotalLineCount() > m.viewport.Height {
		switch {
		case m.viewport.AtTop():
			right = "TOP"
		case m.viewport.AtBottom():
			right = "END"
		default:
			right = fmt.Sprintf("%d%%", int(m.viewport.ScrollPercent()*100))
		}
	}

	padding := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if padding < 1 {
		padding = 1
	}
	return left + strings.Repeat(" ", padding) + DimStyle.Render(right)
}

// renderFactSheet formats every present field of fs, wrapping free text at width.
// Absent fields are left out.
func renderFactSheet(fs *domain.FactSheet, width int) string {
	var b strings.Builder

	field := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(detailLabelStyle.Render(padRight(label+":", labelWidth)))
		b.WriteString(detailValueStyle.Render(value))
		b.WriteString("\n")
	}

	field("ID", fs.ID)
	field("Name", fs.Name)
	if fs.FullName != fs.Name {
		field("Full name", fs.FullName)
	}
	field("Type", fs.Type)
	field("Status", fs.Status)
	field("State", fs.LxState)

	if fs.Lifecycle != nil {
		phase := fs.Lifecycle.Phase
		if phase == "" {
			phase = fs.Lifecycle.AsString
		}
		if phase != "" {
			b.WriteString(detailLabelStyle.Render(padRight("Lifecycle:", labelWidth)))
			b.WriteString(PhaseStyle(phase).Render(phase))
			b.WriteString("\n")
		}
	}

	if fs.Completion != nil && fs.Completion.Percentage != nil {
		field("Completion", fmt.Sprintf("%d%%", *fs.Completion.Percentage))
	}
	field("Business criticality", fs.BusinessCriticality)
	field("Technical suitability", fs.TechnicalSuitability)
	field("Functional suitability", fs.FunctionalSuitability)
	field("Created", formatTimestamp(fs.CreatedAt))
	field("Updated", formatTimestamp(fs.UpdatedAt))

	if len(fs.Tags) > 0 {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render("Tags"))
		b.WriteString("\n")
		tags := make([]string, 0, len(fs.Tags))
		for _, name := range fs.TagNames() {
			if name != "" {
				tags = append(tags, tagStyle.Render(name))
			}
		}
		b.WriteString(strings.Join(tags, " "))
		b.WriteString("\n")
	}

	if fs.Description != "" {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render("Description"))
		b.WriteString("\n")
		b.WriteString(detailValueStyle.Render(wordwrap.String(fs.Description, width)))
		b.WriteString("\n")
	}

	if fs.Subscriptions != nil && len(fs.Subscriptions.Edges) > 0 {
		b.WriteString("\n")
		title := "Subscriptions"
		if fs.Subscriptions.TotalCount != nil {
			title = fmt.Sprintf("Subscriptions (%d)", *fs.Subscriptions.TotalCount)
		}
		b.WriteString(sectionStyle.Render(title))
		b.WriteString("\n")
		for _, edge := range fs.Subscriptions.Edges {
			if edge.Node == nil {
				continue
			}
			b.WriteString(wordwrap.String("- "+formatSubscription(*edge.Node), width))
			b.WriteString("\n")
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// formatSubscription renders "Jane Doe <jane@corp> RESPONSIBLE (Business Owner)".
func formatSubscription(s domain.Subscription) string {
	var parts []string
	if s.User != nil {
		name := s.User.DisplayName
		if name == "" {
			name = s.User.ID
		}
		if s.User.Email != "" {
			name = strings.TrimSpace(name + " <" + s.User.Email + ">")
		}
		if name != "" {
			parts = append(parts, name)
		}
	}
	if s.Type != "" {
		parts = append(parts, s.Type)
	}

	var roles []string
	for _, r := range s.Roles {
		if r.Name != "" {
			roles = append(roles, r.Name)
		}
	}
	if len(roles) > 0 {
		parts = append(parts, "("+strings.Join(roles, ", ")+")")
	}
	if len(parts) == 0 {
		return s.ID
	}
	return strings.Join(parts, " ")
}

// formatTimestamp shows an RFC 3339 time as date plus relative age.
// Anything else is shown as is.
func formatTimestamp(ts string) string {
	if ts == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return fmt.Sprintf("%s (%s)", t.Format("2006-01-02"), formatAge(time.Since(t)))
}

// formatAge converts a duration to a short relative age
func formatAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	case d < 365*24*time.Hour:
		return fmt.Sprintf("%dmo ago", int(d.Hours()/24/30))
	default:
		return fmt.Sprintf("%dy ago", int(d.Hours()/24/365))
	}
}
