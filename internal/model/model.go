// Package model defines the record types persisted by skilltrack:
// users, entities, sessions, and goals, plus the transient report type.
package model

import (
	"fmt"
	"time"
)

// EntityType categorizes a trackable entity
type EntityType string

const (
	EntityTypeSkill   EntityType = "Skill"
	EntityTypeProject EntityType = "Project"
)

// ValidEntityType reports whether t is one of the supported entity types
func ValidEntityType(t EntityType) bool {
	return t == EntityTypeSkill || t == EntityTypeProject
}

// GoalStatus is the user-set completion state of a goal
type GoalStatus string

const (
	GoalIncomplete GoalStatus = "Incomplete"
	GoalCompleted  GoalStatus = "Completed"
)

// ValidGoalStatus reports whether s is one of the supported goal statuses
func ValidGoalStatus(s GoalStatus) bool {
	return s == GoalIncomplete || s == GoalCompleted
}

// User represents a registered account with derived password credentials
type User struct {
	Username   string    `json:"username"`
	Salt       []byte    `json:"salt"`
	Hash       []byte    `json:"hash"`
	Iterations int       `json:"iterations"`
	CreatedAt  time.Time `json:"created_at"`
}

// Entity represents a trackable skill or project owned by one user.
// IDs are unique per owner and never reused, even after deletion.
type Entity struct {
	ID          uint64     `json:"id"`
	Name        string     `json:"name"`
	Type        EntityType `json:"type"`
	Description string     `json:"description"`
}

// Session represents one timed interval of work against an entity.
// A session with EndTime == nil is started (running); with EndTime set it
// is completed. Deleted marks a soft-deleted completed session.
type Session struct {
	ID        uint64     `json:"id"`
	EntityID  uint64     `json:"entity_id"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Deleted   bool       `json:"deleted,omitempty"`
}

// Completed reports whether the session has been stopped
func (s Session) Completed() bool {
	return s.EndTime != nil
}

// Duration returns the elapsed time of a completed session.
// Returns zero for a started session.
func (s Session) Duration() time.Duration {
	if s.EndTime == nil {
		return 0
	}
	return s.EndTime.Sub(s.StartTime)
}

// Goal represents a target-hours milestone for one entity.
// Status is user-set; progress toward the target is computed separately
// for display and never mutates the status.
type Goal struct {
	ID          uint64     `json:"id"`
	EntityID    uint64     `json:"entity_id"`
	Name        string     `json:"name"`
	TargetHours float64    `json:"target_hours"`
	Status      GoalStatus `json:"status"`
}

// Report is the transient result of a total-time query. It is computed on
// demand and never persisted.
type Report struct {
	EntityID  uint64
	StartDate time.Time
	EndDate   time.Time
	Hours     int
	Minutes   int
	Seconds   int
}

// EntityLabel returns the display name for an entity ID given the owner's
// current entity list. Sessions keep dangling references to deleted
// entities, so a missing entity falls back to "Entity {id}".
func EntityLabel(entities []Entity, id uint64) string {
	for _, e := range entities {
		if e.ID == id {
			return e.Name
		}
	}
	return fmt.Sprintf("Entity %d", id)
}
