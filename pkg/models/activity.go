package models

import (
	"time"
)

// ActivityAction is the kind of lifecycle change an event records.
type ActivityAction string

const (
	ActivityDeleted  ActivityAction = "deleted"
	ActivityRestored ActivityAction = "restored"
)

// TargetKind identifies which record kind an event refers to.
type TargetKind string

const (
	TargetContributor  TargetKind = "contributor"
	TargetContribution TargetKind = "contribution"
)

// ActivityEvent is one immutable entry in the append-only audit trail. The
// label is captured at event time so displaying history never needs a join
// against rows that may have been purged since.
type ActivityEvent struct {
	ID          string         `json:"id" db:"id"`
	Action      ActivityAction `json:"action" db:"action"`
	TargetKind  TargetKind     `json:"target_kind" db:"target_kind"`
	TargetID    string         `json:"target_id" db:"target_id"`
	TargetLabel string         `json:"target_label" db:"target_label"`
	// Slices affected by the action, including any cascaded contributions.
	Slices float64 `json:"slices" db:"slices"`
	// CascadeCount is the number of dependent contributions swept along,
	// nil for single-entity actions.
	CascadeCount *int      `json:"cascade_count,omitempty" db:"cascade_count"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// ActivityListResponse is the response for the recent activity feed
type ActivityListResponse struct {
	Items      []ActivityEvent `json:"items"`
	TotalCount int             `json:"total_count"`
}
