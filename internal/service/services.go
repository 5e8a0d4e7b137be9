// Package service provides the business logic layer for skilltrack. It
// wraps the storage, auth, and report packages behind one service per
// concern, providing a clean API for the CLI and TUI frontends. Every data
// service is scoped to the logged-in user through a shared Scope and fails
// with ErrUnauthenticated when nobody is logged in.
package service

import (
	"path/filepath"

	"github.com/skilltrack/skilltrack/internal/auth"
	"github.com/skilltrack/skilltrack/internal/config"
	"github.com/skilltrack/skilltrack/internal/storage"
)

// Scope resolves per-user storage paths from the active login context.
// It is shared by all data services of one Services instance, so a login
// or logout is immediately visible to every service.
type Scope struct {
	root string
	ctx  *auth.Context
}

// SetContext installs the login context (nil = logged out)
func (s *Scope) SetContext(ctx *auth.Context) {
	s.ctx = ctx
}

// Context returns the active login context, or nil if nobody is logged in
func (s *Scope) Context() *auth.Context {
	return s.ctx
}

// userDir returns the logged-in user's data directory, creating it if
// needed. Returns ErrUnauthenticated when no context is set.
func (s *Scope) userDir() (string, error) {
	if s.ctx == nil {
		return "", ErrUnauthenticated
	}
	return storage.UserDir(s.root, s.ctx.Username)
}

func (s *Scope) entitiesPath() (string, error) { return s.userFile(storage.EntitiesFile) }
func (s *Scope) sessionsPath() (string, error) { return s.userFile(storage.SessionsFile) }
func (s *Scope) goalsPath() (string, error)    { return s.userFile(storage.GoalsFile) }
func (s *Scope) countersPath() (string, error) { return s.userFile(storage.CountersFile) }

func (s *Scope) userFile(name string) (string, error) {
	dir, err := s.userDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// Services holds all service instances used by the application
type Services struct {
	Auth    *AuthService
	Entity  *EntityService
	Session *SessionService
	Goal    *GoalService
	Report  *ReportService
}

// NewServices creates a Services instance rooted at the default data
// directory, restoring any persisted login context.
func NewServices(cfg config.Config) (*Services, error) {
	root := cfg.DataDir
	if root == "" {
		var err error
		root, err = storage.DataDir()
		if err != nil {
			return nil, err
		}
	}
	return NewServicesWithRoot(root)
}

// NewServicesWithRoot creates a Services instance rooted at a custom data
// directory (useful for testing). A context file already present under the
// root restores the previous login.
func NewServicesWithRoot(root string) (*Services, error) {
	scope := &Scope{root: root}

	contextPath := filepath.Join(root, storage.ContextFile)
	ctx, err := auth.LoadContext(contextPath)
	if err == nil && ctx != nil {
		scope.SetContext(ctx)
	}

	usersPath := filepath.Join(root, storage.UsersFile)

	return &Services{
		Auth:    NewAuthService(auth.NewStore(usersPath), contextPath, scope),
		Entity:  NewEntityService(scope),
		Session: NewSessionService(scope),
		Goal:    NewGoalService(scope),
		Report:  NewReportService(scope),
	}, nil
}
