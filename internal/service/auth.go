package service

import (
	"fmt"
	"time"

	"github.com/skilltrack/skilltrack/internal/auth"
)

// AuthService provides registration and the login/logout lifecycle
type AuthService struct {
	creds       *auth.Store
	contextPath string
	scope       *Scope
}

// NewAuthService creates a new AuthService
func NewAuthService(creds *auth.Store, contextPath string, scope *Scope) *AuthService {
	return &AuthService{
		creds:       creds,
		contextPath: contextPath,
		scope:       scope,
	}
}

// Register creates a new user account. Returns auth.ErrDuplicateUser if
// the username is already registered. Registration does not log the user in.
func (s *AuthService) Register(username, password string) error {
	_, err := s.creds.Register(username, password)
	return err
}

// Login verifies the credentials and installs the session context,
// persisting it so the login survives across invocations. Returns
// auth.ErrAuthFailed for unknown usernames and wrong passwords alike.
func (s *AuthService) Login(username, password string) error {
	if err := s.creds.Authenticate(username, password); err != nil {
		return err
	}

	ctx := auth.Context{
		Username: username,
		LoggedIn: time.Now(),
	}
	if err := auth.SaveContext(s.contextPath, ctx); err != nil {
		return fmt.Errorf("failed to save session context: %w", err)
	}

	s.scope.SetContext(&ctx)
	return nil
}

// Logout tears down the session context. Idempotent.
func (s *AuthService) Logout() error {
	s.scope.SetContext(nil)
	return auth.ClearContext(s.contextPath)
}

// CurrentUser returns the logged-in username, or "" if nobody is logged in
func (s *AuthService) CurrentUser() string {
	if ctx := s.scope.Context(); ctx != nil {
		return ctx.Username
	}
	return ""
}

// Usernames lists all registered usernames
func (s *AuthService) Usernames() ([]string, error) {
	return s.creds.Usernames()
}
