package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/printlink/internal/protocol"
)

// TemperatureFunc reads the current temperatures from the printer
type TemperatureFunc func(ctx context.Context) (*protocol.PrinterTemperature, error)

// Messages for async operations
type temperatureMsg struct {
	temp *protocol.PrinterTemperature
	err  error
	at   time.Time
}

type pollMsg struct {
	gen int
}

// monitorKeyMap defines key bindings for the temperature monitor
type monitorKeyMap struct {
	Refresh key.Binding
	Quit    key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k monitorKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Refresh, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k monitorKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Refresh, k.Quit}}
}

// MonitorModel is a Bubble Tea model that polls and displays printer
// temperatures until the user quits or a query fails.
type MonitorModel struct {
	ctx      context.Context
	fetch    TemperatureFunc
	interval time.Duration
	title    string

	spinner spinner.Model
	help    help.Model
	keys    monitorKeyMap

	last     *protocol.PrinterTemperature
	updated  time.Time
	fetching bool
	gen      int
	err      error
}

// NewMonitorModel creates a monitor that queries fetch every interval
func NewMonitorModel(ctx context.Context, title string, interval time.Duration, fetch TemperatureFunc) MonitorModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = StepRunningStyle

	return MonitorModel{
		ctx:      ctx,
		fetch:    fetch,
		interval: interval,
		title:    title,
		spinner:  s,
		help:     help.New(),
		keys: monitorKeyMap{
			Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
			Quit:    key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
		},
		fetching: true,
	}
}

// Init implements tea.Model
func (m MonitorModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.poll())
}

func (m MonitorModel) poll() tea.Cmd {
	ctx, fetch := m.ctx, m.fetch
	return func() tea.Msg {
		temp, err := fetch(ctx)
		return temperatureMsg{temp: temp, err: err, at: time.Now()}
	}
}

// Update implements tea.Model
func (m MonitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Refresh) && !m.fetching:
			m.fetching = true
			return m, m.poll()
		}

	case temperatureMsg:
		m.fetching = false
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.last = msg.temp
		m.updated = msg.at

		// A newer schedule supersedes pending ones
		m.gen++
		gen := m.gen
		return m, tea.Tick(m.interval, func(time.Time) tea.Msg {
			return pollMsg{gen: gen}
		})

	case pollMsg:
		if msg.gen != m.gen || m.fetching {
			return m, nil
		}
		m.fetching = true
		return m, m.poll()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model
func (m MonitorModel) View() string {
	var b strings.Builder

	b.WriteString(HeaderTitleStyle.Render(strings.ToUpper(m.title)))
	b.WriteString("\n\n")

	if m.last != nil {
		for _, f := range TemperatureFields(m.last) {
			b.WriteString(ReadingLabelStyle.Render(f.Key))
			b.WriteString(ReadingValueStyle.Render(f.Value))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	status := "  "
	if m.fetching {
		status += m.spinner.View() + " " + StepPendingStyle.Render("Reading temperatures...")
	} else if !m.updated.IsZero() {
		status += StepPendingStyle.Render(fmt.Sprintf("Updated %s, every %s", m.updated.Format("15:04:05"), m.interval))
	}
	b.WriteString(status)
	b.WriteString("\n\n")

	b.WriteString(HelpStyle.Render(m.help.View(m.keys)))
	b.WriteString("\n")
	return b.String()
}

// Err returns the query error that ended the monitor, if any
func (m MonitorModel) Err() error {
	return m.err
}

// Last returns the most recent readings, or nil
func (m MonitorModel) Last() *protocol.PrinterTemperature {
	return m.last
}

// RunMonitor runs the temperature monitor until the user quits.
func RunMonitor(ctx context.Context, title string, interval time.Duration, fetch TemperatureFunc) error {
	p := tea.NewProgram(NewMonitorModel(ctx, title, interval, fetch), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(MonitorModel); ok {
		return m.Err()
	}
	return nil
}
