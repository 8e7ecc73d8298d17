package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// PromptModel is a single-line text prompt with validation.
type PromptModel struct {
	title     string
	input     textinput.Model
	validate  func(string) error
	err       error
	submitted bool
}

// NewPromptModel creates a prompt. validate may be nil.
func NewPromptModel(title, placeholder string, validate func(string) error) PromptModel {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 255
	ti.Width = 40
	ti.Focus()

	return PromptModel{
		title:    title,
		input:    ti,
		validate: validate,
	}
}

// Init implements tea.Model
func (m PromptModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model
func (m PromptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			value := strings.TrimSpace(m.input.Value())
			if value == "" {
				return m, nil
			}
			if m.validate != nil {
				if err := m.validate(value); err != nil {
					m.err = err
					return m, nil
				}
			}
			m.submitted = true
			return m, tea.Quit
		}
	}

	m.err = nil
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View implements tea.Model
func (m PromptModel) View() string {
	var b strings.Builder

	b.WriteString(HeaderTitleStyle.Render(m.title))
	b.WriteString("\n\n  ")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(ErrorMessageStyle.Render("  " + m.err.Error()))
		b.WriteString("\n\n")
	}

	b.WriteString(HelpStyle.Render(StepPendingStyle.Render("enter confirm • esc cancel")))
	b.WriteString("\n")
	return b.String()
}

// Value returns the entered text and whether it was submitted
func (m PromptModel) Value() (string, bool) {
	return strings.TrimSpace(m.input.Value()), m.submitted
}

// RunPrompt asks for one line of input. It returns "" when the user cancels.
func RunPrompt(ctx context.Context, title, placeholder string, validate func(string) error) (string, error) {
	p := tea.NewProgram(NewPromptModel(title, placeholder, validate), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return "", err
	}
	if m, ok := final.(PromptModel); ok {
		if value, ok := m.Value(); ok {
			return value, nil
		}
	}
	return "", nil
}
