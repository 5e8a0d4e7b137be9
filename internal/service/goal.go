package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/skilltrack/skilltrack/internal/model"
	"github.com/skilltrack/skilltrack/internal/report"
	"github.com/skilltrack/skilltrack/internal/storage"
)

// GoalService provides CRUD operations for the current user's goals.
// Target-hours validation lives here, not in storage: the store persists
// whatever it is given, and this layer rejects non-positive targets before
// anything reaches the store.
type GoalService struct {
	scope *Scope
}

// NewGoalService creates a new GoalService
func NewGoalService(scope *Scope) *GoalService {
	return &GoalService{scope: scope}
}

// List returns the current user's goals in ascending ID order, optionally
// filtered to one entity (entityID 0 = all; record IDs start at 1).
func (s *GoalService) List(entityID uint64) ([]model.Goal, error) {
	path, err := s.scope.goalsPath()
	if err != nil {
		return nil, err
	}

	goals, err := storage.ReadRecords[model.Goal](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read goals: %w", err)
	}

	if entityID != 0 {
		filtered := make([]model.Goal, 0, len(goals))
		for _, g := range goals {
			if g.EntityID == entityID {
				filtered = append(filtered, g)
			}
		}
		goals = filtered
	}

	sort.Slice(goals, func(i, j int) bool {
		return goals[i].ID < goals[j].ID
	})

	return goals, nil
}

// Add creates a goal for an entity. The target must be positive and the
// name non-empty. New goals start Incomplete.
func (s *GoalService) Add(entityID uint64, name string, targetHours float64) (*model.Goal, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: goal name cannot be empty", ErrValidation)
	}
	if targetHours <= 0 {
		return nil, fmt.Errorf("%w: target hours must be positive, got %g", ErrValidation, targetHours)
	}

	path, err := s.scope.goalsPath()
	if err != nil {
		return nil, err
	}
	countersPath, err := s.scope.countersPath()
	if err != nil {
		return nil, err
	}

	goals, err := storage.ReadRecords[model.Goal](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read goals: %w", err)
	}

	var maxID uint64
	for _, g := range goals {
		if g.ID > maxID {
			maxID = g.ID
		}
	}

	id, err := storage.NextGoalID(countersPath, maxID)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate goal id: %w", err)
	}

	goal := model.Goal{
		ID:          id,
		EntityID:    entityID,
		Name:        name,
		TargetHours: targetHours,
		Status:      model.GoalIncomplete,
	}

	if err := storage.Append(path, goal); err != nil {
		return nil, fmt.Errorf("failed to save goal: %w", err)
	}

	return &goal, nil
}

// Update modifies a goal's name, target, and status. Status is user-set;
// it is never derived from progress. Returns ErrNotFound for an unknown
// ID.
func (s *GoalService) Update(id uint64, name string, targetHours float64, status model.GoalStatus) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: goal name cannot be empty", ErrValidation)
	}
	if targetHours <= 0 {
		return fmt.Errorf("%w: target hours must be positive, got %g", ErrValidation, targetHours)
	}
	if !model.ValidGoalStatus(status) {
		return fmt.Errorf("%w: goal status must be Incomplete or Completed, got %q", ErrValidation, status)
	}

	path, err := s.scope.goalsPath()
	if err != nil {
		return err
	}
	goals, err := storage.ReadRecords[model.Goal](path)
	if err != nil {
		return fmt.Errorf("failed to read goals: %w", err)
	}

	updated := false
	for i := range goals {
		if goals[i].ID == id {
			goals[i].Name = name
			goals[i].TargetHours = targetHours
			goals[i].Status = status
			updated = true
			break
		}
	}
	if !updated {
		return ErrNotFound
	}

	if err := storage.Write(path, goals); err != nil {
		return fmt.Errorf("failed to save goals: %w", err)
	}
	return nil
}

// Delete removes a goal. Returns ErrNotFound for an unknown ID.
func (s *GoalService) Delete(id uint64) error {
	path, err := s.scope.goalsPath()
	if err != nil {
		return err
	}
	goals, err := storage.ReadRecords[model.Goal](path)
	if err != nil {
		return fmt.Errorf("failed to read goals: %w", err)
	}

	kept := make([]model.Goal, 0, len(goals))
	for _, g := range goals {
		if g.ID != id {
			kept = append(kept, g)
		}
	}
	if len(kept) == len(goals) {
		return ErrNotFound
	}

	if err := storage.Write(path, kept); err != nil {
		return fmt.Errorf("failed to save goals: %w", err)
	}
	return nil
}

// Progress returns the percentage of the goal's target covered by all
// time ever tracked against its entity, clamped to 100, along with the
// tracked hours. Progress is display-only and never mutates the goal's
// status.
func (s *GoalService) Progress(goal model.Goal) (percent, trackedHours float64, err error) {
	path, err := s.scope.sessionsPath()
	if err != nil {
		return 0, 0, err
	}
	sessions, err := storage.ReadRecords[model.Session](path)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read sessions: %w", err)
	}

	var totalSeconds int64
	for _, sess := range sessions {
		if sess.EntityID != goal.EntityID || !sess.Completed() || sess.Deleted {
			continue
		}
		totalSeconds += int64(sess.Duration() / time.Second)
	}

	trackedHours = float64(totalSeconds) / 3600.0
	return report.GoalProgress(trackedHours, goal.TargetHours), trackedHours, nil
}
