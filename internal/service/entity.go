package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/skilltrack/skilltrack/internal/model"
	"github.com/skilltrack/skilltrack/internal/storage"
)

// EntityService provides CRUD operations for the current user's entities
type EntityService struct {
	scope *Scope
}

// NewEntityService creates a new EntityService
func NewEntityService(scope *Scope) *EntityService {
	return &EntityService{scope: scope}
}

// List returns the current user's entities in ascending ID order, which
// equals creation order since IDs are never reused.
func (s *EntityService) List() ([]model.Entity, error) {
	path, err := s.scope.entitiesPath()
	if err != nil {
		return nil, err
	}

	entities, err := storage.ReadRecords[model.Entity](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read entities: %w", err)
	}

	sort.Slice(entities, func(i, j int) bool {
		return entities[i].ID < entities[j].ID
	})

	return entities, nil
}

// Get returns the entity with the given ID, or ErrNotFound
func (s *EntityService) Get(id uint64) (*model.Entity, error) {
	entities, err := s.List()
	if err != nil {
		return nil, err
	}
	for _, e := range entities {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, ErrNotFound
}

// Create adds a new entity for the current user. The name must be
// non-empty and the type one of Skill or Project; names are not required
// to be unique. The ID comes from the persisted per-user counter.
func (s *EntityService) Create(name string, typ model.EntityType, description string) (*model.Entity, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: entity name cannot be empty", ErrValidation)
	}
	if !model.ValidEntityType(typ) {
		return nil, fmt.Errorf("%w: entity type must be Skill or Project, got %q", ErrValidation, typ)
	}

	path, err := s.scope.entitiesPath()
	if err != nil {
		return nil, err
	}
	countersPath, err := s.scope.countersPath()
	if err != nil {
		return nil, err
	}

	entities, err := storage.ReadRecords[model.Entity](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read entities: %w", err)
	}

	var maxID uint64
	for _, e := range entities {
		if e.ID > maxID {
			maxID = e.ID
		}
	}

	id, err := storage.NextEntityID(countersPath, maxID)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate entity id: %w", err)
	}

	entity := model.Entity{
		ID:          id,
		Name:        name,
		Type:        typ,
		Description: description,
	}

	if err := storage.Append(path, entity); err != nil {
		return nil, fmt.Errorf("failed to save entity: %w", err)
	}

	return &entity, nil
}

// Update modifies an existing entity's name, type, and description.
// Returns ErrNotFound if the ID doesn't exist for the current user.
func (s *EntityService) Update(id uint64, name string, typ model.EntityType, description string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: entity name cannot be empty", ErrValidation)
	}
	if !model.ValidEntityType(typ) {
		return fmt.Errorf("%w: entity type must be Skill or Project, got %q", ErrValidation, typ)
	}

	path, err := s.scope.entitiesPath()
	if err != nil {
		return err
	}

	entities, err := storage.ReadRecords[model.Entity](path)
	if err != nil {
		return fmt.Errorf("failed to read entities: %w", err)
	}

	updated := false
	for i := range entities {
		if entities[i].ID == id {
			entities[i].Name = name
			entities[i].Type = typ
			entities[i].Description = description
			updated = true
			break
		}
	}
	if !updated {
		return ErrNotFound
	}

	if err := storage.Write(path, entities); err != nil {
		return fmt.Errorf("failed to save entities: %w", err)
	}
	return nil
}

// Delete removes the entity record only. Sessions and goals recorded
// against the entity are kept and display an "Entity {id}" fallback;
// historical data outliving its entity is an invariant, not an oversight.
func (s *EntityService) Delete(id uint64) error {
	path, err := s.scope.entitiesPath()
	if err != nil {
		return err
	}

	entities, err := storage.ReadRecords[model.Entity](path)
	if err != nil {
		return fmt.Errorf("failed to read entities: %w", err)
	}

	kept := make([]model.Entity, 0, len(entities))
	for _, e := range entities {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(entities) {
		return ErrNotFound
	}

	if err := storage.Write(path, kept); err != nil {
		return fmt.Errorf("failed to save entities: %w", err)
	}
	return nil
}
