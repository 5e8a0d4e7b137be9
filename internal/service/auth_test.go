package service

import (
	"errors"
	"testing"

	"github.com/skilltrack/skilltrack/internal/auth"
)

func TestLoginLogout(t *testing.T) {
	services, err := NewServicesWithRoot(t.TempDir())
	if err != nil {
		t.Fatalf("NewServicesWithRoot() returned unexpected error: %v", err)
	}

	if err := services.Auth.Register("alice", "password"); err != nil {
		t.Fatalf("Register() returned unexpected error: %v", err)
	}

	// Registration alone doesn't log anyone in
	if user := services.Auth.CurrentUser(); user != "" {
		t.Errorf("CurrentUser() after register = %q, want empty", user)
	}

	if err := services.Auth.Login("alice", "password"); err != nil {
		t.Fatalf("Login() returned unexpected error: %v", err)
	}
	if user := services.Auth.CurrentUser(); user != "alice" {
		t.Errorf("CurrentUser() after login = %q, want %q", user, "alice")
	}

	if err := services.Auth.Logout(); err != nil {
		t.Fatalf("Logout() returned unexpected error: %v", err)
	}
	if user := services.Auth.CurrentUser(); user != "" {
		t.Errorf("CurrentUser() after logout = %q, want empty", user)
	}

	// Logout is idempotent
	if err := services.Auth.Logout(); err != nil {
		t.Errorf("second Logout() returned %v, want nil", err)
	}
}

func TestLoginBadCredentials(t *testing.T) {
	services, err := NewServicesWithRoot(t.TempDir())
	if err != nil {
		t.Fatalf("NewServicesWithRoot() returned unexpected error: %v", err)
	}
	if err := services.Auth.Register("alice", "password"); err != nil {
		t.Fatalf("Register() returned unexpected error: %v", err)
	}

	if err := services.Auth.Login("alice", "wrong"); !errors.Is(err, auth.ErrAuthFailed) {
		t.Errorf("Login() with wrong password = %v, want ErrAuthFailed", err)
	}
	if err := services.Auth.Login("nobody", "password"); !errors.Is(err, auth.ErrAuthFailed) {
		t.Errorf("Login() with unknown user = %v, want ErrAuthFailed", err)
	}
	if user := services.Auth.CurrentUser(); user != "" {
		t.Errorf("CurrentUser() after failed login = %q, want empty", user)
	}
}

func TestLoginPersistsAcrossInstances(t *testing.T) {
	root := t.TempDir()

	first, err := NewServicesWithRoot(root)
	if err != nil {
		t.Fatalf("NewServicesWithRoot() returned unexpected error: %v", err)
	}
	if err := first.Auth.Register("alice", "password"); err != nil {
		t.Fatalf("Register() returned unexpected error: %v", err)
	}
	if err := first.Auth.Login("alice", "password"); err != nil {
		t.Fatalf("Login() returned unexpected error: %v", err)
	}

	// A fresh instance over the same root restores the session
	second, err := NewServicesWithRoot(root)
	if err != nil {
		t.Fatalf("second NewServicesWithRoot() returned unexpected error: %v", err)
	}
	if user := second.Auth.CurrentUser(); user != "alice" {
		t.Errorf("CurrentUser() on restored instance = %q, want %q", user, "alice")
	}

	if err := second.Auth.Logout(); err != nil {
		t.Fatalf("Logout() returned unexpected error: %v", err)
	}

	third, err := NewServicesWithRoot(root)
	if err != nil {
		t.Fatalf("third NewServicesWithRoot() returned unexpected error: %v", err)
	}
	if user := third.Auth.CurrentUser(); user != "" {
		t.Errorf("CurrentUser() after persisted logout = %q, want empty", user)
	}
}

func TestSwitchingUsersSwitchesScope(t *testing.T) {
	services := newTestServices(t)

	if _, err := services.Entity.Create("Piano", "Skill", ""); err != nil {
		t.Fatalf("Create() returned unexpected error: %v", err)
	}

	if err := services.Auth.Register("bob", "bob password"); err != nil {
		t.Fatalf("Register(bob) returned unexpected error: %v", err)
	}
	// Logging in as bob replaces alice's context without an explicit logout
	if err := services.Auth.Login("bob", "bob password"); err != nil {
		t.Fatalf("Login(bob) returned unexpected error: %v", err)
	}

	if user := services.Auth.CurrentUser(); user != "bob" {
		t.Errorf("CurrentUser() = %q, want %q", user, "bob")
	}
	entities, err := services.Entity.List()
	if err != nil {
		t.Fatalf("List() returned unexpected error: %v", err)
	}
	if len(entities) != 0 {
		t.Errorf("bob sees %d entities, want 0", len(entities))
	}
}
