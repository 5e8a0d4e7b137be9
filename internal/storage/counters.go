package storage

import (
	"encoding/json"
	"os"
	"sync"
)

// Counters holds the next ID for each of a user's collections. IDs are
// allocated from a persisted counter instead of "max existing + 1" so they
// are monotonically increasing and never reused after a record is deleted.
type Counters struct {
	NextEntityID  uint64 `json:"next_entity_id"`
	NextSessionID uint64 `json:"next_session_id"`
	NextGoalID    uint64 `json:"next_goal_id"`
}

// countersMu serializes counter allocation within the process. Two
// concurrently running processes can still race on the counter file;
// single-writer-at-a-time is a documented assumption of the design.
var countersMu sync.Mutex

// loadCounters reads the counters file, returning zero counters if it
// doesn't exist yet.
func loadCounters(path string) (Counters, error) {
	var c Counters
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return c, err
	}
	if err := json.Unmarshal(data, &c); err != nil {
		// A corrupt counters file resets to zero; NextID re-seeds from 1,
		// which only risks reusing IDs already on disk, so callers pass a
		// floor when re-seeding matters.
		return Counters{}, nil
	}
	return c, nil
}

// saveCounters writes the counters file atomically (temp file + rename).
func saveCounters(path string, c Counters) error {
	data, _ := json.MarshalIndent(c, "", "  ")
	tmpFile := path + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmpFile, path)
}

// NextID allocates the next ID for the collection selected by pick/assign
// and persists the incremented counter before returning. floor is the
// highest ID already present in the collection; it guards against a lost
// or reset counters file handing out an ID that is already in use.
func NextID(path string, floor uint64, pick func(Counters) uint64, assign func(*Counters, uint64)) (uint64, error) {
	countersMu.Lock()
	defer countersMu.Unlock()

	c, err := loadCounters(path)
	if err != nil {
		return 0, err
	}

	next := pick(c)
	if next <= floor {
		next = floor + 1
	}
	if next == 0 {
		next = 1
	}

	assign(&c, next+1)
	if err := saveCounters(path, c); err != nil {
		return 0, err
	}

	return next, nil
}

// NextEntityID allocates the next entity ID for the user whose counters
// live at path.
func NextEntityID(path string, floor uint64) (uint64, error) {
	return NextID(path, floor,
		func(c Counters) uint64 { return c.NextEntityID },
		func(c *Counters, v uint64) { c.NextEntityID = v })
}

// NextSessionID allocates the next session ID.
func NextSessionID(path string, floor uint64) (uint64, error) {
	return NextID(path, floor,
		func(c Counters) uint64 { return c.NextSessionID },
		func(c *Counters, v uint64) { c.NextSessionID = v })
}

// NextGoalID allocates the next goal ID.
func NextGoalID(path string, floor uint64) (uint64, error) {
	return NextID(path, floor,
		func(c Counters) uint64 { return c.NextGoalID },
		func(c *Counters, v uint64) { c.NextGoalID = v })
}
