// Package tui provides the live timer view shown while a session is
// being tracked.
package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/skilltrack/skilltrack/internal/model"
	"github.com/skilltrack/skilltrack/internal/service"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	elapsedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	stoppedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("120"))
)

// tickMsg is sent every second to refresh the elapsed time
type tickMsg struct{}

// TimerModel is the bubbletea model for a running session
type TimerModel struct {
	services   *service.Services
	session    model.Session
	entityName string
	spinner    spinner.Model

	elapsed time.Duration
	stopped bool
	err     error
}

// NewTimerModel creates the watch view for a started session
func NewTimerModel(services *service.Services, session model.Session, entityName string) TimerModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return TimerModel{
		services:   services,
		session:    session,
		entityName: entityName,
		spinner:    sp,
		elapsed:    time.Since(session.StartTime),
	}
}

// Init starts the tick and spinner loops
func (m TimerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tick())
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// Update handles messages
func (m TimerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if m.stopped {
			return m, nil
		}
		m.elapsed = time.Since(m.session.StartTime)
		return m, tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "s":
			stopped, err := m.services.Session.Stop(m.session.ID)
			if err != nil {
				m.err = err
				return m, tea.Quit
			}
			m.session = *stopped
			m.elapsed = m.session.Duration()
			m.stopped = true
			return m, tea.Quit
		case "q", "esc", "ctrl+c":
			// Leave the session running
			return m, tea.Quit
		}
	}

	return m, nil
}

// View renders the timer
func (m TimerModel) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n", m.err)
	}

	header := titleStyle.Render(fmt.Sprintf("Tracking: %s", m.entityName))
	elapsed := elapsedStyle.Render(formatElapsed(m.elapsed))

	if m.stopped {
		return fmt.Sprintf("%s\n%s %s\n",
			header,
			stoppedStyle.Render("Stopped after"),
			elapsed)
	}

	return fmt.Sprintf("%s %s\nElapsed: %s\n%s\n",
		m.spinner.View(),
		header,
		elapsed,
		helpStyle.Render("s: stop session  q: detach (keep running)"))
}

// Stopped reports whether the session was stopped from the view
func (m TimerModel) Stopped() bool {
	return m.stopped
}

// Err returns the error that ended the view, if any
func (m TimerModel) Err() error {
	return m.err
}

// RunTimer runs the watch view until the user stops the session or
// detaches. Returns the final model so the caller can report the outcome.
func RunTimer(services *service.Services, session model.Session, entityName string) (TimerModel, error) {
	p := tea.NewProgram(NewTimerModel(services, session, entityName))
	final, err := p.Run()
	if err != nil {
		return TimerModel{}, err
	}
	m, ok := final.(TimerModel)
	if !ok {
		return TimerModel{}, fmt.Errorf("unexpected model type")
	}
	return m, m.Err()
}

// formatElapsed formats a duration as H:MM:SS
func formatElapsed(d time.Duration) string {
	total := int(d.Seconds())
	return fmt.Sprintf("%d:%02d:%02d", total/3600, (total/60)%60, total%60)
}
