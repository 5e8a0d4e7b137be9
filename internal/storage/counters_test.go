package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func countersPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), CountersFile)
}

func TestNextEntityIDStartsAtOne(t *testing.T) {
	path := countersPath(t)

	id, err := NextEntityID(path, 0)
	if err != nil {
		t.Fatalf("NextEntityID() returned unexpected error: %v", err)
	}
	if id != 1 {
		t.Errorf("first NextEntityID() = %d, want 1", id)
	}
}

func TestNextIDMonotonic(t *testing.T) {
	path := countersPath(t)

	var prev uint64
	for i := 0; i < 5; i++ {
		id, err := NextSessionID(path, 0)
		if err != nil {
			t.Fatalf("NextSessionID() returned unexpected error: %v", err)
		}
		if id <= prev {
			t.Fatalf("NextSessionID() = %d after %d, want strictly increasing", id, prev)
		}
		prev = id
	}
}

func TestNextIDNotReusedAfterDeletion(t *testing.T) {
	path := countersPath(t)

	first, err := NextEntityID(path, 0)
	if err != nil {
		t.Fatalf("NextEntityID() returned unexpected error: %v", err)
	}

	// Deleting the record doesn't touch the counter, so the next
	// allocation must skip the freed ID even with a zero floor.
	second, err := NextEntityID(path, 0)
	if err != nil {
		t.Fatalf("NextEntityID() returned unexpected error: %v", err)
	}
	if second <= first {
		t.Errorf("NextEntityID() after deletion = %d, want > %d", second, first)
	}
}

func TestNextIDFloorGuard(t *testing.T) {
	path := countersPath(t)

	// A lost counters file with records already on disk: the floor is the
	// highest existing ID, and the allocator must not hand it out again.
	id, err := NextGoalID(path, 7)
	if err != nil {
		t.Fatalf("NextGoalID() returned unexpected error: %v", err)
	}
	if id != 8 {
		t.Errorf("NextGoalID() with floor 7 = %d, want 8", id)
	}
}

func TestNextIDCorruptCountersFile(t *testing.T) {
	path := countersPath(t)
	if err := os.WriteFile(path, []byte("not json at all"), 0644); err != nil {
		t.Fatalf("Failed to write corrupt counters file: %v", err)
	}

	id, err := NextEntityID(path, 3)
	if err != nil {
		t.Fatalf("NextEntityID() returned unexpected error: %v", err)
	}
	if id != 4 {
		t.Errorf("NextEntityID() after corrupt counters with floor 3 = %d, want 4", id)
	}
}

func TestCountersIndependentPerCollection(t *testing.T) {
	path := countersPath(t)

	if _, err := NextEntityID(path, 0); err != nil {
		t.Fatalf("NextEntityID() returned unexpected error: %v", err)
	}
	if _, err := NextEntityID(path, 0); err != nil {
		t.Fatalf("NextEntityID() returned unexpected error: %v", err)
	}

	sessionID, err := NextSessionID(path, 0)
	if err != nil {
		t.Fatalf("NextSessionID() returned unexpected error: %v", err)
	}
	if sessionID != 1 {
		t.Errorf("first NextSessionID() = %d, want 1 (entity allocations must not advance it)", sessionID)
	}
}
