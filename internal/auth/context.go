package auth

import (
	"encoding/json"
	"os"
	"time"
)

// Context is the login session gating all data access. It is constructed at
// login and torn down at logout; every store operation takes its scope from
// the context's username. An explicit object rather than package state, so
// tests can run multiple contexts side by side.
type Context struct {
	Username string    `json:"username"`
	LoggedIn time.Time `json:"logged_in"`
}

// SaveContext writes the session context to the context file so a login
// survives across CLI invocations.
// Uses atomic write pattern (write to temp file, then rename) for safety.
func SaveContext(path string, ctx Context) error {
	// Context contains only JSON-safe types, so Marshal cannot fail
	data, _ := json.MarshalIndent(ctx, "", "  ")

	tmpFile := path + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0644); err != nil {
		return err
	}

	return os.Rename(tmpFile, path)
}

// LoadContext reads the session context from the context file.
// Returns nil if the file doesn't exist (nobody logged in).
func LoadContext(path string) (*Context, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var ctx Context
	if err := json.Unmarshal(data, &ctx); err != nil {
		return nil, err
	}

	return &ctx, nil
}

// ClearContext removes the context file.
// Returns nil if the file doesn't exist (idempotent operation).
func ClearContext(path string) error {
	err := os.Remove(path)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}
