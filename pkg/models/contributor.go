package models

import (
	"time"
)

// Contributor is a founder or team member whose contributions earn slices.
// Contributors are only ever top level, so DeletedWith stays empty for them.
type Contributor struct {
	Lifecycle
	Name string `json:"name" db:"name"`
	// HourlyRate prices time contributions. Nil means no rate is on file,
	// which makes time contributions invalid for this contributor.
	HourlyRate *float64         `json:"hourly_rate,omitempty" db:"hourly_rate"`
	Vesting    *VestingSchedule `json:"vesting,omitempty" db:"-"`
}

// VestingSchedule configures linear vesting for a contributor. Absent schedule
// means fully vested.
type VestingSchedule struct {
	CliffMonths    int       `json:"cliff_months" validate:"min=0"`
	DurationMonths int       `json:"duration_months" validate:"required,min=1"`
	StartDate      time.Time `json:"start_date" validate:"required"`
}

// CreateContributorRequest is the request for creating a contributor
type CreateContributorRequest struct {
	Name       string           `json:"name" validate:"required"`
	HourlyRate *float64         `json:"hourly_rate,omitempty" validate:"omitempty,gt=0"`
	Vesting    *VestingSchedule `json:"vesting,omitempty"`
}

// UpdateContributorRequest is a partial patch; nil fields are left unchanged
type UpdateContributorRequest struct {
	Name       *string          `json:"name,omitempty" validate:"omitempty,min=1"`
	HourlyRate *float64         `json:"hourly_rate,omitempty" validate:"omitempty,gt=0"`
	Vesting    *VestingSchedule `json:"vesting,omitempty"`
}

// ContributorListResponse is the response for listing contributors
type ContributorListResponse struct {
	Items      []Contributor `json:"items"`
	TotalCount int           `json:"total_count"`
}
