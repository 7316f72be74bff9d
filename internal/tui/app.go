package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/kylemclaren/clockbar/internal/clock"
	"github.com/kylemclaren/clockbar/internal/display"
	"github.com/kylemclaren/clockbar/internal/reminder"
)

// KeyMap defines keybindings
type KeyMap struct {
	Refresh key.Binding
	Help    key.Binding
	Quit    key.Binding
}

var keys = KeyMap{
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "poll now")),
	Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Refresh, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Refresh}, {k.Help, k.Quit}}
}

// Model renders the shared clock state once per second
type Model struct {
	state     *clock.State
	scheduler *reminder.Scheduler
	pollNow   func()

	now      time.Time
	width    int
	spinner  spinner.Model
	progress progress.Model
	help     help.Model
	showHelp bool
}

type tickMsg time.Time

// NewModel creates the watch model. scheduler may be nil when reminders are
// disabled; pollNow may be nil and must not block.
func NewModel(state *clock.State, scheduler *reminder.Scheduler, pollNow func()) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = statusOK

	return Model{
		state:     state,
		scheduler: scheduler,
		pollNow:   pollNow,
		now:       time.Now(),
		spinner:   s,
		progress: progress.New(
			progress.WithGradient(string(clockGreen), string(clockOrange)),
			progress.WithWidth(40),
			progress.WithoutPercentage(),
		),
		help: help.New(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tickCmd())
}

func tickCmd() tea.Cmd {
	return tea.Every(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Help):
			m.showHelp = !m.showHelp
			m.help.ShowAll = m.showHelp
		case key.Matches(msg, keys.Refresh):
			if m.pollNow != nil {
				m.pollNow()
			}
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		if w := msg.Width - 8; w > 10 && w < 60 {
			m.progress.Width = w
		}
		return m, nil

	case tickMsg:
		m.now = time.Time(msg)
		return m, tickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(logoStyle.Render("clockbar") + " " + m.spinner.View() + "\n\n")

	task, active := m.state.Read()
	if active {
		b.WriteString(taskStyle.Render(task.TaskName) + "\n")
		b.WriteString(elapsedStyle.Render(display.FormatElapsed(task.Elapsed(m.now))) + "\n")
		b.WriteString(subtitleStyle.Render("Clocked in at "+task.StartedAt.Format("15:04:05")) + "\n")
	} else {
		b.WriteString(untrackedStyle.Render(display.UntrackedLabel) + "\n")
	}

	b.WriteString(dividerStyle.Render(strings.Repeat("─", 40)) + "\n")
	b.WriteString(m.reminderView(active))
	b.WriteString("\n" + m.help.View(keys))

	return appStyle.Render(b.String())
}

func (m Model) reminderView(active bool) string {
	if m.scheduler == nil {
		return subtitleStyle.Render("Break reminders disabled") + "\n"
	}

	preview := m.scheduler.Preview(m.now)
	if !active {
		cfg := m.scheduler.Config()
		return subtitleStyle.Render(fmt.Sprintf("Reminders after %s, every %s", cfg.NotifyTime, cfg.NotifyInterval)) + "\n"
	}

	return fmt.Sprintf("%s\n%s\n",
		m.progress.ViewAs(preview.IntervalProgress),
		subtitleStyle.Render("Next break reminder at "+preview.NextReminder.Format("15:04")),
	)
}

// Run starts the watch view
func Run(state *clock.State, scheduler *reminder.Scheduler, pollNow func()) error {
	p := tea.NewProgram(NewModel(state, scheduler, pollNow), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
