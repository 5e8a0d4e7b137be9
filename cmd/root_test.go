package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/skilltrack/skilltrack/internal/config"
	"github.com/skilltrack/skilltrack/internal/service"
)

// setupTestDeps installs test dependencies rooted at a temp directory and
// returns the output buffers and captured exit code.
func setupTestDeps(t *testing.T) (*bytes.Buffer, *bytes.Buffer, *int) {
	t.Helper()

	services, err := service.NewServicesWithRoot(t.TempDir())
	if err != nil {
		t.Fatalf("NewServicesWithRoot() returned unexpected error: %v", err)
	}

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	exitCode := 0

	SetDeps(&Deps{
		Stdout: stdout,
		Stderr: stderr,
		Stdin:  strings.NewReader(""),
		Exit:   func(code int) { exitCode = code },
		Config: config.DefaultConfig(),
		Services: func() (*service.Services, error) {
			return services, nil
		},
	})
	t.Cleanup(ResetDeps)

	return stdout, stderr, &exitCode
}

// run executes one CLI invocation against the installed test deps
func run(t *testing.T, args ...string) {
	t.Helper()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(deps.Stdout)
	rootCmd.SetErr(deps.Stderr)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute(%v) returned unexpected error: %v", args, err)
	}
}

func TestRegisterLoginWhoami(t *testing.T) {
	stdout, _, exitCode := setupTestDeps(t)

	run(t, "register", "alice", "--password", "test password")
	if *exitCode != 0 {
		t.Fatalf("register exited with %d, want 0", *exitCode)
	}
	if !strings.Contains(stdout.String(), "Registered user alice") {
		t.Errorf("register output = %q, want confirmation", stdout.String())
	}

	stdout.Reset()
	run(t, "whoami")
	if !strings.Contains(stdout.String(), "Not logged in") {
		t.Errorf("whoami before login = %q, want not-logged-in notice", stdout.String())
	}

	stdout.Reset()
	run(t, "login", "alice", "--password", "test password")
	if *exitCode != 0 {
		t.Fatalf("login exited with %d, want 0", *exitCode)
	}

	stdout.Reset()
	run(t, "whoami")
	if !strings.Contains(stdout.String(), "alice") {
		t.Errorf("whoami after login = %q, want username", stdout.String())
	}
}

func TestLoginWrongPassword(t *testing.T) {
	_, stderr, exitCode := setupTestDeps(t)

	run(t, "register", "alice", "--password", "right")
	run(t, "login", "alice", "--password", "wrong")

	if *exitCode != 1 {
		t.Errorf("login with wrong password exited with %d, want 1", *exitCode)
	}
	if !strings.Contains(stderr.String(), "invalid username or password") {
		t.Errorf("login error = %q, want credential failure", stderr.String())
	}
}

func TestEntityAddAndList(t *testing.T) {
	stdout, _, exitCode := setupTestDeps(t)

	run(t, "register", "alice", "--password", "pw")
	run(t, "login", "alice", "--password", "pw")

	stdout.Reset()
	run(t, "entity", "add", "Piano", "--type", "Skill", "--description", "classical")
	if *exitCode != 0 {
		t.Fatalf("entity add exited with %d, want 0", *exitCode)
	}
	if !strings.Contains(stdout.String(), "Added Skill [1] Piano") {
		t.Errorf("entity add output = %q, want confirmation with id", stdout.String())
	}

	stdout.Reset()
	run(t, "entity", "list")
	out := stdout.String()
	if !strings.Contains(out, "Piano") || !strings.Contains(out, "[1]") {
		t.Errorf("entity list output = %q, want the added entity", out)
	}
}

func TestEntityCommandsRequireLogin(t *testing.T) {
	_, stderr, exitCode := setupTestDeps(t)

	run(t, "entity", "list")
	if *exitCode != 1 {
		t.Errorf("entity list while logged out exited with %d, want 1", *exitCode)
	}
	if !strings.Contains(stderr.String(), "log in first") {
		t.Errorf("entity list error = %q, want login hint", stderr.String())
	}
}

func TestStartStopFlow(t *testing.T) {
	stdout, _, exitCode := setupTestDeps(t)

	run(t, "register", "alice", "--password", "pw")
	run(t, "login", "alice", "--password", "pw")
	run(t, "entity", "add", "Piano", "--type", "Skill")

	stdout.Reset()
	run(t, "start", "1")
	if *exitCode != 0 {
		t.Fatalf("start exited with %d, want 0", *exitCode)
	}
	if !strings.Contains(stdout.String(), "Started") {
		t.Errorf("start output = %q, want confirmation", stdout.String())
	}

	stdout.Reset()
	run(t, "status")
	if !strings.Contains(stdout.String(), "Piano") {
		t.Errorf("status output = %q, want the running session", stdout.String())
	}

	stdout.Reset()
	run(t, "stop", "1")
	if *exitCode != 0 {
		t.Fatalf("stop exited with %d, want 0", *exitCode)
	}

	stdout.Reset()
	run(t, "sessions")
	if !strings.Contains(stdout.String(), "Piano") {
		t.Errorf("sessions output = %q, want the completed session", stdout.String())
	}
}

func TestStartConflictReported(t *testing.T) {
	_, stderr, exitCode := setupTestDeps(t)

	run(t, "register", "alice", "--password", "pw")
	run(t, "login", "alice", "--password", "pw")
	run(t, "entity", "add", "Piano", "--type", "Skill")
	run(t, "start", "1")

	run(t, "start", "1")
	if *exitCode != 1 {
		t.Errorf("second start exited with %d, want 1", *exitCode)
	}
	if stderr.Len() == 0 {
		t.Error("second start produced no error output")
	}
}

func TestReportTotalCommand(t *testing.T) {
	stdout, _, exitCode := setupTestDeps(t)

	run(t, "register", "alice", "--password", "pw")
	run(t, "login", "alice", "--password", "pw")
	run(t, "entity", "add", "Piano", "--type", "Skill")
	run(t, "start", "1")
	run(t, "stop", "1")

	stdout.Reset()
	run(t, "report", "total", "1")
	if *exitCode != 0 {
		t.Fatalf("report total exited with %d, want 0", *exitCode)
	}
	if !strings.Contains(stdout.String(), "Piano") {
		t.Errorf("report total output = %q, want entity name", stdout.String())
	}
}
