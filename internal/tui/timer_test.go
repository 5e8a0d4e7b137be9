package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/skilltrack/skilltrack/internal/model"
	"github.com/skilltrack/skilltrack/internal/service"
)

func setupTimer(t *testing.T) (TimerModel, *service.Services) {
	t.Helper()

	services, err := service.NewServicesWithRoot(t.TempDir())
	if err != nil {
		t.Fatalf("NewServicesWithRoot() returned unexpected error: %v", err)
	}
	if err := services.Auth.Register("alice", "pw"); err != nil {
		t.Fatalf("Register() returned unexpected error: %v", err)
	}
	if err := services.Auth.Login("alice", "pw"); err != nil {
		t.Fatalf("Login() returned unexpected error: %v", err)
	}

	entity, err := services.Entity.Create("Piano", model.EntityTypeSkill, "")
	if err != nil {
		t.Fatalf("Create() returned unexpected error: %v", err)
	}
	session, err := services.Session.Start(entity.ID)
	if err != nil {
		t.Fatalf("Start() returned unexpected error: %v", err)
	}

	return NewTimerModel(services, *session, entity.Name), services
}

func TestNewTimerModel(t *testing.T) {
	m, _ := setupTimer(t)

	if m.Stopped() {
		t.Error("fresh timer model reports Stopped()")
	}
	if m.Err() != nil {
		t.Errorf("fresh timer model has error %v", m.Err())
	}
}

func TestInitReturnsCommand(t *testing.T) {
	m, _ := setupTimer(t)

	if cmd := m.Init(); cmd == nil {
		t.Error("Init() returned nil command, want tick batch")
	}
}

func TestUpdateTickAdvancesElapsed(t *testing.T) {
	m, _ := setupTimer(t)
	m.session.StartTime = time.Now().Add(-90 * time.Second)

	updated, cmd := m.Update(tickMsg{})
	got := updated.(TimerModel)

	if got.elapsed < 90*time.Second {
		t.Errorf("elapsed after tick = %v, want at least 90s", got.elapsed)
	}
	if cmd == nil {
		t.Error("tick update returned nil command, want the next tick")
	}
}

func TestUpdateStopKey(t *testing.T) {
	m, services := setupTimer(t)

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	got := updated.(TimerModel)

	if !got.Stopped() {
		t.Error("model not stopped after 's'")
	}
	if cmd == nil {
		t.Error("stop returned nil command, want tea.Quit")
	}

	// The session is completed in storage, not just in the view
	started, err := services.Session.ListStarted()
	if err != nil {
		t.Fatalf("ListStarted() returned unexpected error: %v", err)
	}
	if len(started.Sessions) != 0 {
		t.Errorf("ListStarted() after stop = %d sessions, want 0", len(started.Sessions))
	}
}

func TestUpdateDetachKeyLeavesSessionRunning(t *testing.T) {
	m, services := setupTimer(t)

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	got := updated.(TimerModel)

	if got.Stopped() {
		t.Error("model stopped after detach")
	}
	if cmd == nil {
		t.Error("detach returned nil command, want tea.Quit")
	}

	started, err := services.Session.ListStarted()
	if err != nil {
		t.Fatalf("ListStarted() returned unexpected error: %v", err)
	}
	if len(started.Sessions) != 1 {
		t.Errorf("ListStarted() after detach = %d sessions, want 1", len(started.Sessions))
	}
}

func TestViewShowsEntityAndControls(t *testing.T) {
	m, _ := setupTimer(t)

	view := m.View()
	if !strings.Contains(view, "Piano") {
		t.Errorf("View() = %q, want entity name", view)
	}
	if !strings.Contains(view, "stop session") {
		t.Errorf("View() = %q, want key help", view)
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0:00:00"},
		{59 * time.Second, "0:00:59"},
		{90 * time.Minute, "1:30:00"},
		{10*time.Hour + 5*time.Second, "10:00:05"},
	}

	for _, tt := range tests {
		if got := formatElapsed(tt.d); got != tt.want {
			t.Errorf("formatElapsed(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
