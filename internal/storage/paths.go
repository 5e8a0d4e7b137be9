package storage

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	// AppName is the application name used for the data directory
	AppName = "skilltrack"
	// UsersFile holds the credential records for all registered users
	UsersFile = "users.jsonl"
	// ContextFile holds the logged-in session context
	ContextFile = "context.json"
	// EntitiesFile holds one user's entities
	EntitiesFile = "entities.jsonl"
	// SessionsFile holds one user's sessions (started, completed, and trashed)
	SessionsFile = "sessions.jsonl"
	// GoalsFile holds one user's goals
	GoalsFile = "goals.jsonl"
	// CountersFile holds one user's persisted ID counters
	CountersFile = "counters.json"
)

// DataDir returns the root data directory for the application.
// Uses os.UserConfigDir() for cross-platform XDG-compliant config directory.
// Creates the directory if it doesn't exist.
func DataDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}

	appDir := filepath.Join(configDir, AppName)

	if err := os.MkdirAll(appDir, 0755); err != nil {
		return "", err
	}

	return appDir, nil
}

// UserDir returns the per-user data directory under root, creating it if
// needed. All of a user's entities, sessions, goals, and counters live in
// their own directory; no data is shared between users.
func UserDir(root, username string) (string, error) {
	dir := filepath.Join(root, "users", safeUsername(username))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// ValidUsername reports whether a username maps to its own data directory
// unchanged. Names that would be sanitized are rejected at registration:
// otherwise two distinct usernames ("a b" and "a_b") could silently share
// one directory.
func ValidUsername(username string) bool {
	return username == safeUsername(username)
}

// safeUsername maps a username to a filesystem-safe directory name
func safeUsername(username string) string {
	replacer := strings.NewReplacer(
		" ", "_",
		"/", "_",
		"\\", "_",
		"..", "_",
		":", "_",
	)
	return replacer.Replace(username)
}
