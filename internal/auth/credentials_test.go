package auth

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/skilltrack/skilltrack/internal/model"
	"github.com/skilltrack/skilltrack/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), storage.UsersFile))
}

func TestRegister(t *testing.T) {
	store := newTestStore(t)

	user, err := store.Register("alice", "correct horse battery staple")
	if err != nil {
		t.Fatalf("Register() returned unexpected error: %v", err)
	}

	if user.Username != "alice" {
		t.Errorf("Register() username = %q, want %q", user.Username, "alice")
	}
	if len(user.Salt) != SaltLength {
		t.Errorf("Register() salt length = %d, want %d", len(user.Salt), SaltLength)
	}
	if len(user.Hash) != KeyLength {
		t.Errorf("Register() hash length = %d, want %d", len(user.Hash), KeyLength)
	}
	if user.Iterations != Iterations {
		t.Errorf("Register() iterations = %d, want %d", user.Iterations, Iterations)
	}
	if user.CreatedAt.IsZero() {
		t.Error("Register() CreatedAt is zero")
	}
}

func TestRegisterNeverStoresPassword(t *testing.T) {
	path := filepath.Join(t.TempDir(), storage.UsersFile)
	store := NewStore(path)

	const password = "hunter2hunter2"
	if _, err := store.Register("alice", password); err != nil {
		t.Fatalf("Register() returned unexpected error: %v", err)
	}

	users, err := storage.ReadRecords[model.User](path)
	if err != nil {
		t.Fatalf("failed to read users file: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("users file has %d records, want 1", len(users))
	}
	if string(users[0].Hash) == password {
		t.Error("stored hash equals the plaintext password")
	}
}

func TestRegisterValidation(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Register("", "password"); err == nil {
		t.Error("Register() with empty username succeeded, want error")
	}
	if _, err := store.Register("alice", ""); err == nil {
		t.Error("Register() with empty password succeeded, want error")
	}
}

func TestRegisterRejectsUnsafeUsernames(t *testing.T) {
	store := newTestStore(t)

	// Names that would be sanitized for the directory layout are rejected
	// outright; "a b" and "a_b" must never share a data directory.
	tests := []struct {
		name     string
		username string
	}{
		{"space", "a b"},
		{"slash", "a/b"},
		{"backslash", "a\\b"},
		{"colon", "a:b"},
		{"parent traversal", "../alice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := store.Register(tt.username, "password"); err == nil {
				t.Errorf("Register(%q) succeeded, want rejection", tt.username)
			}
		})
	}

	// The sanitized twin of a rejected name still registers normally
	if _, err := store.Register("a_b", "password"); err != nil {
		t.Errorf("Register(%q) = %v, want success", "a_b", err)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Register("alice", "password one"); err != nil {
		t.Fatalf("first Register() returned unexpected error: %v", err)
	}

	_, err := store.Register("alice", "different password")
	if !errors.Is(err, ErrDuplicateUser) {
		t.Errorf("duplicate Register() error = %v, want ErrDuplicateUser", err)
	}

	// The original credentials are untouched by the failed attempt
	if err := store.Authenticate("alice", "password one"); err != nil {
		t.Errorf("Authenticate() with original password after duplicate register = %v, want nil", err)
	}
	if err := store.Authenticate("alice", "different password"); !errors.Is(err, ErrAuthFailed) {
		t.Errorf("Authenticate() with rejected password = %v, want ErrAuthFailed", err)
	}
}

func TestRegisterUsernamesAreCaseSensitive(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Register("alice", "password"); err != nil {
		t.Fatalf("Register(alice) returned unexpected error: %v", err)
	}
	if _, err := store.Register("Alice", "password"); err != nil {
		t.Errorf("Register(Alice) returned %v, want distinct account", err)
	}
}

func TestAuthenticate(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Register("alice", "correct password"); err != nil {
		t.Fatalf("Register() returned unexpected error: %v", err)
	}

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{"correct credentials", "alice", "correct password", nil},
		{"wrong password", "alice", "wrong password", ErrAuthFailed},
		{"unknown username", "bob", "correct password", ErrAuthFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.Authenticate(tt.username, tt.password)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Authenticate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Authenticate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAuthenticateFailureIndistinguishable(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Register("alice", "password"); err != nil {
		t.Fatalf("Register() returned unexpected error: %v", err)
	}

	wrongPassword := store.Authenticate("alice", "nope")
	unknownUser := store.Authenticate("mallory", "nope")

	if wrongPassword == nil || unknownUser == nil {
		t.Fatal("Authenticate() succeeded for bad credentials")
	}
	if wrongPassword.Error() != unknownUser.Error() {
		t.Errorf("wrong-password error %q differs from unknown-user error %q; usernames become enumerable",
			wrongPassword, unknownUser)
	}
}

func TestAuthenticateRejectsIncompleteRecords(t *testing.T) {
	// A row that parses as JSON but carries no credentials survives the
	// load; it must fail verification for every password instead of
	// matching a zero-length derived key against a zero-length hash.
	tests := []struct {
		name string
		row  string
	}{
		{"no credential fields", `{"username":"alice"}`},
		{"empty hash", `{"username":"alice","salt":"c2FsdHNhbHRzYWx0c2E=","iterations":120000,"hash":""}`},
		{"zero iterations", `{"username":"alice","salt":"c2FsdHNhbHRzYWx0c2E=","iterations":0,"hash":"aGFzaGhhc2hoYXNoaGFzaGhhc2hoYXNoaGFzaGhhc2g="}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), storage.UsersFile)
			if err := os.WriteFile(path, []byte(tt.row+"\n"), 0644); err != nil {
				t.Fatalf("Failed to write users file: %v", err)
			}

			store := NewStore(path)
			if err := store.Authenticate("alice", "any password"); !errors.Is(err, ErrAuthFailed) {
				t.Errorf("Authenticate() against incomplete record = %v, want ErrAuthFailed", err)
			}
		})
	}
}

func TestAuthenticateHonorsStoredIterations(t *testing.T) {
	// A record derived with an older, lower iteration count must still
	// verify after the default is raised.
	path := filepath.Join(t.TempDir(), storage.UsersFile)
	store := NewStore(path)

	if _, err := store.Register("alice", "password"); err != nil {
		t.Fatalf("Register() returned unexpected error: %v", err)
	}

	users, err := storage.ReadRecords[model.User](path)
	if err != nil {
		t.Fatalf("failed to read users file: %v", err)
	}
	if users[0].Iterations != Iterations {
		t.Fatalf("stored iterations = %d, want %d", users[0].Iterations, Iterations)
	}

	if err := store.Authenticate("alice", "password"); err != nil {
		t.Errorf("Authenticate() against stored iteration count failed: %v", err)
	}
}

func TestUsernames(t *testing.T) {
	store := newTestStore(t)

	for _, name := range []string{"alice", "bob", "carol"} {
		if _, err := store.Register(name, "password"); err != nil {
			t.Fatalf("Register(%s) returned unexpected error: %v", name, err)
		}
	}

	names, err := store.Usernames()
	if err != nil {
		t.Fatalf("Usernames() returned unexpected error: %v", err)
	}

	want := []string{"alice", "bob", "carol"}
	if len(names) != len(want) {
		t.Fatalf("Usernames() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Usernames()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestSaltsAreUnique(t *testing.T) {
	store := newTestStore(t)

	alice, err := store.Register("alice", "same password")
	if err != nil {
		t.Fatalf("Register(alice) returned unexpected error: %v", err)
	}
	bob, err := store.Register("bob", "same password")
	if err != nil {
		t.Fatalf("Register(bob) returned unexpected error: %v", err)
	}

	if string(alice.Salt) == string(bob.Salt) {
		t.Error("two registrations produced the same salt")
	}
	if string(alice.Hash) == string(bob.Hash) {
		t.Error("same password with different salts produced the same hash")
	}
}
