// Package auth implements the credential store and the login session
// context. Passwords are never stored; each user record carries a random
// salt, a PBKDF2-HMAC-SHA256 hash, and the iteration count used to derive
// it, so the cost can be raised for new registrations without breaking
// existing records.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/pbkdf2"

	"github.com/skilltrack/skilltrack/internal/model"
	"github.com/skilltrack/skilltrack/internal/storage"
)

const (
	// Iterations is the PBKDF2 iteration count for newly derived hashes
	Iterations = 120_000
	// SaltLength is the salt size in bytes
	SaltLength = 16
	// KeyLength is the derived key size in bytes
	KeyLength = 32
)

// Credential errors
var (
	// ErrDuplicateUser is returned when registering a username that
	// already exists (case-sensitive exact match).
	ErrDuplicateUser = errors.New("username already taken")
	// ErrAuthFailed is returned for both an unknown username and a wrong
	// password, so callers cannot enumerate registered usernames.
	ErrAuthFailed = errors.New("invalid username or password")
)

// Store verifies and registers user credentials backed by a users file
type Store struct {
	usersPath string
}

// NewStore creates a credential store backed by the given users file
func NewStore(usersPath string) *Store {
	return &Store{usersPath: usersPath}
}

// Register creates a new user record with freshly derived credentials.
// Returns ErrDuplicateUser if the username is already registered.
// Two processes registering the same username concurrently can both pass
// the existence check; the second append wins. Single-writer-at-a-time is
// a documented assumption of the design.
func (s *Store) Register(username, password string) (*model.User, error) {
	if username == "" {
		return nil, errors.New("username cannot be empty")
	}
	if password == "" {
		return nil, errors.New("password cannot be empty")
	}
	if !storage.ValidUsername(username) {
		return nil, errors.New("username must not contain spaces, slashes, colons, or '..'")
	}

	users, err := storage.ReadRecords[model.User](s.usersPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read users: %w", err)
	}

	for _, u := range users {
		if u.Username == username {
			return nil, ErrDuplicateUser
		}
	}

	salt := make([]byte, SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	user := model.User{
		Username:   username,
		Salt:       salt,
		Hash:       pbkdf2.Key([]byte(password), salt, Iterations, KeyLength, sha256.New),
		Iterations: Iterations,
		CreatedAt:  time.Now(),
	}

	if err := storage.Append(s.usersPath, user); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	return &user, nil
}

// Authenticate verifies a username/password pair against the stored
// credentials. The hash comparison is constant-time. Returns ErrAuthFailed
// for unknown usernames and wrong passwords alike.
func (s *Store) Authenticate(username, password string) error {
	users, err := storage.ReadRecords[model.User](s.usersPath)
	if err != nil {
		return fmt.Errorf("failed to read users: %w", err)
	}

	for _, u := range users {
		if u.Username != username {
			continue
		}
		// A partial row (valid JSON, missing credential fields) must never
		// verify: deriving a zero-length key would compare equal to a
		// zero-length stored hash for any password.
		if len(u.Hash) == 0 || len(u.Salt) == 0 || u.Iterations <= 0 {
			return ErrAuthFailed
		}
		derived := pbkdf2.Key([]byte(password), u.Salt, u.Iterations, len(u.Hash), sha256.New)
		if subtle.ConstantTimeCompare(derived, u.Hash) == 1 {
			return nil
		}
		return ErrAuthFailed
	}

	return ErrAuthFailed
}

// Usernames returns all registered usernames in registration order
func (s *Store) Usernames() ([]string, error) {
	users, err := storage.ReadRecords[model.User](s.usersPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read users: %w", err)
	}

	names := make([]string, 0, len(users))
	for _, u := range users {
		names = append(names, u.Username)
	}
	return names, nil
}
