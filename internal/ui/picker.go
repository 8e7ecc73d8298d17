package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// PrinterChoice is one entry offered by the printer picker
type PrinterChoice struct {
	Nickname string
	Address  string
	Model    string
	Default  bool
}

// FilterValue implements list.Item
func (c PrinterChoice) FilterValue() string {
	return c.Nickname + " " + c.Address + " " + c.Model
}

// Title returns the nickname, marked when it is the current default
func (c PrinterChoice) Title() string {
	if c.Default {
		return c.Nickname + " (default)"
	}
	return c.Nickname
}

// Description returns the address and model for list display
func (c PrinterChoice) Description() string {
	model := c.Model
	if model == "" {
		model = "Unknown model"
	}
	return fmt.Sprintf("%s • %s", c.Address, model)
}

// PickerModel is a Bubble Tea model that lets the user choose one saved
// printer from a filterable list.
type PickerModel struct {
	list      list.Model
	chosen    *PrinterChoice
	cancelled bool
}

// NewPickerModel creates a picker with the cursor on the default printer
func NewPickerModel(title string, choices []PrinterChoice) PickerModel {
	items := make([]list.Item, len(choices))
	cursor := 0
	for i, c := range choices {
		items[i] = c
		if c.Default {
			cursor = i
		}
	}

	l := list.New(items, list.NewDefaultDelegate(), MinTerminalWidth, 14)
	l.Title = title
	l.Styles.Title = HeaderTitleStyle
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Select(cursor)

	return PickerModel{list: l}
}

// Init implements tea.Model
func (m PickerModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, min(msg.Height, 20))
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.cancelled = true
			return m, tea.Quit
		}
		// Keys belong to the filter input while the user is typing
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "enter":
			if c, ok := m.list.SelectedItem().(PrinterChoice); ok {
				m.chosen = &c
			}
			return m, tea.Quit
		case "q", "esc":
			m.cancelled = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View implements tea.Model
func (m PickerModel) View() string {
	return m.list.View()
}

// Chosen returns the selected printer, or nil when the picker was cancelled
func (m PickerModel) Chosen() *PrinterChoice {
	if m.cancelled {
		return nil
	}
	return m.chosen
}

// RunPicker shows the picker and returns the chosen nickname. It returns ""
// when the user cancels.
func RunPicker(ctx context.Context, title string, choices []PrinterChoice) (string, error) {
	p := tea.NewProgram(NewPickerModel(title, choices), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return "", err
	}
	if m, ok := final.(PickerModel); ok {
		if c := m.Chosen(); c != nil {
			return c.Nickname, nil
		}
	}
	return "", nil
}
