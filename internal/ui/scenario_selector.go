package ui

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/list"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/idlab-discover/mchsim-cli/internal/apperr"
)

// ScenarioOption is one entry of the scenario selector.
type ScenarioOption struct {
	Name          string
	Interventions []string
}

// scenarioItem represents a scenario in the list
type scenarioItem struct {
	option   ScenarioOption
	selected bool
}

func (i scenarioItem) Title() string {
	var checkbox string
	if i.selected {
		checkbox = Success.Render("[✓] ")
	} else {
		checkbox = Dim.Render("[ ] ")
	}
	return checkbox + i.option.Name
}

func (i scenarioItem) Description() string {
	if len(i.option.Interventions) == 0 {
		return Dim.Render("no interventions")
	}
	return Dim.Render("interventions: " + strings.Join(i.option.Interventions, ", "))
}

func (i scenarioItem) FilterValue() string { return i.option.Name }

// scenarioSelectorModel is the Bubble Tea model for the interactive selector
type scenarioSelectorModel struct {
	list      list.Model
	items     []scenarioItem
	quitting  bool
	confirmed bool
	err       error
}

// NewScenarioSelector creates a selector with every option preselected.
func NewScenarioSelector(options []ScenarioOption) *scenarioSelectorModel {
	items := make([]scenarioItem, len(options))
	for i, o := range options {
		items[i] = scenarioItem{option: o, selected: true}
	}

	delegate := list.NewDefaultDelegate()
	delegate.SetHeight(2)
	delegate.SetSpacing(0)
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(ColorHighlight).
		BorderForeground(ColorPrimary)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(ColorTextDim).
		BorderForeground(ColorPrimary)

	l := list.New(nil, delegate, 60, 3*len(options)+6)
	l.Title = "Select Scenarios"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.Styles.Title = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true).
		Padding(0, 0, 1, 0)

	m := &scenarioSelectorModel{list: l, items: items}
	m.syncItems()
	return m
}

// Init initializes the model
func (m *scenarioSelectorModel) Init() tea.Cmd { return nil }

// Update handles messages
func (m *scenarioSelectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			if len(m.Selected()) == 0 {
				m.err = fmt.Errorf("select at least one scenario")
				return m, nil
			}
			m.confirmed = true
			m.quitting = true
			return m, tea.Quit
		case " ", "space", "s":
			m.toggle(m.list.Index())
			return m, nil
		case "a":
			m.toggleAll()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width-4, min(msg.Height-6, 3*len(m.items)+6))
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *scenarioSelectorModel) toggle(idx int) {
	if idx < 0 || idx >= len(m.items) {
		return
	}
	m.items[idx].selected = !m.items[idx].selected
	m.err = nil
	m.syncItems()
}

// toggleAll selects everything unless everything is already selected, in
// which case it clears the selection.
func (m *scenarioSelectorModel) toggleAll() {
	all := len(m.Selected()) == len(m.items)
	for i := range m.items {
		m.items[i].selected = !all
	}
	m.err = nil
	m.syncItems()
}

func (m *scenarioSelectorModel) syncItems() {
	items := make([]list.Item, len(m.items))
	for i, it := range m.items {
		items[i] = it
	}
	m.list.SetItems(items)
}

// View renders the model
func (m *scenarioSelectorModel) View() tea.View {
	if m.quitting {
		return tea.NewView("")
	}

	var b strings.Builder
	b.WriteString(m.list.View())
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("%s %s\n",
		Success.Render("Selected:"),
		Highlight.Render(fmt.Sprintf("%d/%d scenario(s)", len(m.Selected()), len(m.items)))))
	b.WriteString(Dim.Render("space: toggle · a: toggle all · ↑/↓: navigate · enter: run · esc: cancel"))

	if m.err != nil {
		b.WriteString("\n\n")
		b.WriteString(Error.Render(m.err.Error()))
	}
	return tea.NewView(b.String())
}

// Selected returns the selected scenario names in list order.
func (m *scenarioSelectorModel) Selected() []string {
	var names []string
	for _, it := range m.items {
		if it.selected {
			names = append(names, it.option.Name)
		}
	}
	return names
}

// WasConfirmed returns true if the user confirmed the selection
func (m *scenarioSelectorModel) WasConfirmed() bool {
	return m.confirmed
}

// RunScenarioSelector runs the interactive selector and returns the chosen
// scenario names.
func RunScenarioSelector(options []ScenarioOption) ([]string, error) {
	p := tea.NewProgram(NewScenarioSelector(options))
	m, err := p.Run()
	if err != nil {
		return nil, err
	}

	model := m.(*scenarioSelectorModel)
	if !model.WasConfirmed() {
		return nil, apperr.ErrCancelled
	}
	return model.Selected(), nil
}
