package cmd

import (
	"io"
	"os"

	"github.com/skilltrack/skilltrack/internal/config"
	"github.com/skilltrack/skilltrack/internal/service"
)

// Deps holds external dependencies for CLI commands, enabling testability.
type Deps struct {
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader
	Exit   func(code int)

	Config   config.Config
	Services func() (*service.Services, error)
}

// DefaultDeps returns the default production dependencies.
func DefaultDeps() *Deps {
	cfg := config.DefaultConfig()
	if configPath, err := config.GetConfigPath(); err == nil {
		if loaded, err := config.LoadOrDefault(configPath); err == nil {
			cfg = loaded
		}
	}

	return &Deps{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Stdin:  os.Stdin,
		Exit:   os.Exit,
		Config: cfg,
		Services: func() (*service.Services, error) {
			return service.NewServices(cfg)
		},
	}
}

// deps is the global dependencies instance used by commands.
// In production, this is DefaultDeps(). Tests can replace it.
var deps = DefaultDeps()

// SetDeps sets the global dependencies (for testing).
func SetDeps(d *Deps) {
	deps = d
}

// ResetDeps resets dependencies to defaults (for testing cleanup).
func ResetDeps() {
	deps = DefaultDeps()
}
