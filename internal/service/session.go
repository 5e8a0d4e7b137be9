package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/skilltrack/skilltrack/internal/model"
	"github.com/skilltrack/skilltrack/internal/storage"
)

// SessionService manages the session lifecycle:
// started -> completed -> deleted -> completed (recover).
// Started sessions cannot be trashed; they must be stopped first.
type SessionService struct {
	scope *Scope
}

// NewSessionService creates a new SessionService
func NewSessionService(scope *Scope) *SessionService {
	return &SessionService{scope: scope}
}

// SessionList contains sessions read from storage plus warnings about any
// corrupted rows that were skipped during the load.
type SessionList struct {
	Sessions []model.Session
	Warnings []storage.ParseWarning
}

// Start opens a new session against an entity with StartTime = now.
// Returns ErrConflict if the entity already has a started session; at most
// one started session may exist per (owner, entity) pair. Returns
// ErrNotFound if the entity doesn't exist for the current user.
func (s *SessionService) Start(entityID uint64) (*model.Session, error) {
	entitiesPath, err := s.scope.entitiesPath()
	if err != nil {
		return nil, err
	}
	entities, err := storage.ReadRecords[model.Entity](entitiesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read entities: %w", err)
	}
	found := false
	for _, e := range entities {
		if e.ID == entityID {
			found = true
			break
		}
	}
	if !found {
		return nil, ErrNotFound
	}

	path, err := s.scope.sessionsPath()
	if err != nil {
		return nil, err
	}
	sessions, err := storage.ReadRecords[model.Session](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions: %w", err)
	}

	var maxID uint64
	for _, sess := range sessions {
		if sess.ID > maxID {
			maxID = sess.ID
		}
		if sess.EntityID == entityID && !sess.Completed() {
			return nil, ErrConflict
		}
	}

	countersPath, err := s.scope.countersPath()
	if err != nil {
		return nil, err
	}
	id, err := storage.NextSessionID(countersPath, maxID)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate session id: %w", err)
	}

	session := model.Session{
		ID:        id,
		EntityID:  entityID,
		StartTime: time.Now(),
	}

	if err := storage.Append(path, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return &session, nil
}

// Stop completes a started session with EndTime = now. Returns ErrNotFound
// if no started session with that ID exists for the current user; stopping
// an already-completed session is not a transition that can repeat.
func (s *SessionService) Stop(sessionID uint64) (*model.Session, error) {
	path, err := s.scope.sessionsPath()
	if err != nil {
		return nil, err
	}
	sessions, err := storage.ReadRecords[model.Session](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions: %w", err)
	}

	for i := range sessions {
		if sessions[i].ID != sessionID || sessions[i].Completed() {
			continue
		}
		now := time.Now()
		sessions[i].EndTime = &now

		if err := storage.Write(path, sessions); err != nil {
			return nil, fmt.Errorf("failed to save sessions: %w", err)
		}
		stopped := sessions[i]
		return &stopped, nil
	}

	return nil, ErrNotFound
}

// ListStarted returns the current user's sessions with no end time, in
// start-time order.
func (s *SessionService) ListStarted() (*SessionList, error) {
	return s.list(func(sess model.Session) bool {
		return !sess.Completed()
	})
}

// ListCompleted returns the current user's completed sessions in
// start-time order, excluding soft-deleted ones unless includeDeleted is
// set.
func (s *SessionService) ListCompleted(includeDeleted bool) (*SessionList, error) {
	return s.list(func(sess model.Session) bool {
		return sess.Completed() && (includeDeleted || !sess.Deleted)
	})
}

// ListTrash returns the soft-deleted sessions, most recently started first
func (s *SessionService) ListTrash() (*SessionList, error) {
	result, err := s.list(func(sess model.Session) bool {
		return sess.Deleted
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(result.Sessions, func(i, j int) bool {
		return result.Sessions[i].StartTime.After(result.Sessions[j].StartTime)
	})
	return result, nil
}

func (s *SessionService) list(keep func(model.Session) bool) (*SessionList, error) {
	path, err := s.scope.sessionsPath()
	if err != nil {
		return nil, err
	}

	result, err := storage.Read[model.Session](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions: %w", err)
	}

	filtered := make([]model.Session, 0, len(result.Records))
	for _, sess := range result.Records {
		if keep(sess) {
			filtered = append(filtered, sess)
		}
	}

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].StartTime.Before(filtered[j].StartTime)
	})

	return &SessionList{
		Sessions: filtered,
		Warnings: result.Warnings,
	}, nil
}

// SoftDelete moves a completed session to the trash. Started sessions
// cannot be trashed; stop them first. Returns ErrNotFound for an unknown
// ID.
func (s *SessionService) SoftDelete(sessionID uint64) error {
	return s.setDeleted(sessionID, true)
}

// Recover restores a trashed session. Idempotent: recovering a session
// that isn't deleted is a no-op.
func (s *SessionService) Recover(sessionID uint64) error {
	return s.setDeleted(sessionID, false)
}

func (s *SessionService) setDeleted(sessionID uint64, deleted bool) error {
	path, err := s.scope.sessionsPath()
	if err != nil {
		return err
	}
	sessions, err := storage.ReadRecords[model.Session](path)
	if err != nil {
		return fmt.Errorf("failed to read sessions: %w", err)
	}

	for i := range sessions {
		if sessions[i].ID != sessionID {
			continue
		}
		if deleted && !sessions[i].Completed() {
			return fmt.Errorf("%w: session %d is still running, stop it first", ErrValidation, sessionID)
		}
		if sessions[i].Deleted == deleted {
			return nil
		}
		sessions[i].Deleted = deleted

		if err := storage.Write(path, sessions); err != nil {
			return fmt.Errorf("failed to save sessions: %w", err)
		}
		return nil
	}

	return ErrNotFound
}

// Update is an administrative correction of a session's fields. The end
// time must not precede the start time; pass a nil end to reopen the
// session. Returns ErrNotFound for an unknown ID.
func (s *SessionService) Update(sessionID, entityID uint64, start time.Time, end *time.Time) error {
	if end != nil && end.Before(start) {
		return fmt.Errorf("%w: end time %s is before start time %s",
			ErrValidation, end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	if entityID == 0 {
		return fmt.Errorf("%w: entity id is required", ErrValidation)
	}

	path, err := s.scope.sessionsPath()
	if err != nil {
		return err
	}
	sessions, err := storage.ReadRecords[model.Session](path)
	if err != nil {
		return fmt.Errorf("failed to read sessions: %w", err)
	}

	for i := range sessions {
		if sessions[i].ID != sessionID {
			continue
		}
		sessions[i].EntityID = entityID
		sessions[i].StartTime = start
		sessions[i].EndTime = end

		if err := storage.Write(path, sessions); err != nil {
			return fmt.Errorf("failed to save sessions: %w", err)
		}
		return nil
	}

	return ErrNotFound
}
