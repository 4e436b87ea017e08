// Package activity keeps the append-only audit trail of delete and restore
// actions. Events are immutable once appended; the only write paths are
// Append and the bulk replacement used for hydration.
package activity

import (
	"time"

	"github.com/fairslice/pie/pkg/models"
	"github.com/google/uuid"
)

// Log holds a workspace's audit trail, oldest first. Not safe for concurrent
// use; the owner serializes access around it.
type Log struct {
	events []*models.ActivityEvent
}

// NewLog returns an empty trail.
func NewLog() *Log {
	return &Log{}
}

// Append stamps identity and time onto the event and records it.
func (l *Log) Append(event *models.ActivityEvent) *models.ActivityEvent {
	event.ID = uuid.New().String()
	event.CreatedAt = time.Now().UTC()
	l.events = append(l.events, event)
	return event
}

// Recent returns up to limit events, newest first. A non-positive limit
// returns the whole trail.
func (l *Log) Recent(limit int) []*models.ActivityEvent {
	total := len(l.events)
	if limit <= 0 || limit > total {
		limit = total
	}

	result := make([]*models.ActivityEvent, 0, limit)
	for i := total - 1; i >= total-limit; i-- {
		result = append(result, l.events[i])
	}
	return result
}

// All returns every event oldest first.
func (l *Log) All() []*models.ActivityEvent {
	result := make([]*models.ActivityEvent, len(l.events))
	copy(result, l.events)
	return result
}

// SetAll replaces the trail with the given events verbatim, oldest first.
func (l *Log) SetAll(events []*models.ActivityEvent) {
	l.events = make([]*models.ActivityEvent, len(events))
	copy(l.events, events)
}

// Clear wipes the trail.
func (l *Log) Clear() {
	l.events = nil
}

// Len returns the number of recorded events.
func (l *Log) Len() int {
	return len(l.events)
}
