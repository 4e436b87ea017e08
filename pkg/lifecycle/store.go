// Package lifecycle provides the generic soft delete store shared by every
// record kind. One Store instance manages one kind; records stay retrievable
// by id after deletion so restore and audit display keep working.
package lifecycle

import (
	"time"

	"github.com/fairslice/pie/pkg/models"
	"github.com/google/uuid"
)

// Entity is the minimal record shape the store manages. Any struct embedding
// models.Lifecycle satisfies it through the promoted Meta method.
type Entity interface {
	Meta() *models.Lifecycle
}

// Store keeps one record kind in memory, insertion ordered. It is not safe
// for concurrent use; the owner serializes access around it.
type Store[T Entity] struct {
	items map[string]T
	order []string
}

// NewStore returns an empty store.
func NewStore[T Entity]() *Store[T] {
	return &Store[T]{
		items: make(map[string]T),
	}
}

// Add assigns a fresh id and creation timestamps, then stores the record.
// Always succeeds for well formed input.
func (s *Store[T]) Add(item T) T {
	meta := item.Meta()
	meta.ID = uuid.New().String()
	now := time.Now().UTC()
	meta.CreatedAt = now
	meta.UpdatedAt = now
	meta.DeletedAt = nil
	meta.DeletedWith = nil
	s.put(item)
	return item
}

// Update applies mutate to the record and bumps the update timestamp. It
// reports false when the id is missing or the record is currently soft
// deleted. The id and creation timestamp cannot be changed by the mutator.
func (s *Store[T]) Update(id string, mutate func(T)) (T, bool) {
	var zero T
	item, ok := s.items[id]
	if !ok || item.Meta().IsDeleted() {
		return zero, false
	}

	meta := item.Meta()
	keepID := meta.ID
	keepCreatedAt := meta.CreatedAt
	mutate(item)
	meta.ID = keepID
	meta.CreatedAt = keepCreatedAt
	meta.UpdatedAt = time.Now().UTC()
	return item, true
}

// GetByID returns the record in any lifecycle state.
func (s *Store[T]) GetByID(id string) (T, bool) {
	item, ok := s.items[id]
	return item, ok
}

// GetActive returns records without a deletion timestamp, insertion ordered.
func (s *Store[T]) GetActive() []T {
	result := make([]T, 0, len(s.order))
	for _, id := range s.order {
		if item, ok := s.items[id]; ok && !item.Meta().IsDeleted() {
			result = append(result, item)
		}
	}
	return result
}

// GetDeleted returns soft deleted records, insertion ordered.
func (s *Store[T]) GetDeleted() []T {
	result := make([]T, 0)
	for _, id := range s.order {
		if item, ok := s.items[id]; ok && item.Meta().IsDeleted() {
			result = append(result, item)
		}
	}
	return result
}

// GetAll returns every record regardless of state, insertion ordered.
func (s *Store[T]) GetAll() []T {
	result := make([]T, 0, len(s.order))
	for _, id := range s.order {
		if item, ok := s.items[id]; ok {
			result = append(result, item)
		}
	}
	return result
}

// SoftDelete marks the record deleted, recording cascade provenance when a
// parent id is supplied. It reports false when the id is missing or the
// record is already deleted.
func (s *Store[T]) SoftDelete(id string, parentID *string) (T, bool) {
	var zero T
	item, ok := s.items[id]
	if !ok || item.Meta().IsDeleted() {
		return zero, false
	}

	meta := item.Meta()
	now := time.Now().UTC()
	meta.DeletedAt = &now
	if parentID != nil {
		parent := *parentID
		meta.DeletedWith = &parent
	}
	return item, true
}

// Restore clears the deletion timestamp and any cascade provenance. It
// reports false unless the record is currently deleted.
func (s *Store[T]) Restore(id string) (T, bool) {
	var zero T
	item, ok := s.items[id]
	if !ok || !item.Meta().IsDeleted() {
		return zero, false
	}

	meta := item.Meta()
	meta.DeletedAt = nil
	meta.DeletedWith = nil
	return item, true
}

// SetAll replaces the store contents with the given records verbatim,
// preserving their ids and timestamps. Used by import and hydration flows
// where sequential Add calls would generate fresh identities.
func (s *Store[T]) SetAll(items []T) {
	s.items = make(map[string]T, len(items))
	s.order = make([]string, 0, len(items))
	for _, item := range items {
		s.put(item)
	}
}

// Clear wipes the store.
func (s *Store[T]) Clear() {
	s.items = make(map[string]T)
	s.order = nil
}

// Len returns the number of records in any state.
func (s *Store[T]) Len() int {
	return len(s.items)
}

func (s *Store[T]) put(item T) {
	id := item.Meta().ID
	if _, exists := s.items[id]; !exists {
		s.order = append(s.order, id)
	}
	s.items[id] = item
}
