package models

import (
	"time"
)

// Lifecycle carries the identity and soft delete bookkeeping shared by every
// stored record. Embed it as the first field so the json/db layout stays
// uniform across kinds.
type Lifecycle struct {
	ID        string     `json:"id" db:"id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
	// DeletedWith holds the parent id when the record was swept by a
	// cascade delete. It is cleared on restore and never set for records
	// deleted directly.
	DeletedWith *string `json:"deleted_with,omitempty" db:"deleted_with"`
}

// Meta exposes the lifecycle fields to generic store code. Promoted onto any
// struct that embeds Lifecycle.
func (l *Lifecycle) Meta() *Lifecycle {
	return l
}

// IsDeleted reports whether the record is currently soft deleted.
func (l *Lifecycle) IsDeleted() bool {
	return l.DeletedAt != nil
}

// DeletedWithParent reports whether the record was soft deleted as part of the
// given parent's cascade.
func (l *Lifecycle) DeletedWithParent(parentID string) bool {
	return l.DeletedWith != nil && *l.DeletedWith == parentID
}
