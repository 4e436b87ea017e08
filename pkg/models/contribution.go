package models

import (
	"time"
)

// ContributionType classifies how a contribution is valued.
type ContributionType string

const (
	ContributionTime         ContributionType = "time"
	ContributionCash         ContributionType = "cash"
	ContributionNonCash      ContributionType = "non-cash"
	ContributionIdea         ContributionType = "idea"
	ContributionRelationship ContributionType = "relationship"
)

// ContributionTypes lists every valid contribution type.
var ContributionTypes = []ContributionType{
	ContributionTime,
	ContributionCash,
	ContributionNonCash,
	ContributionIdea,
	ContributionRelationship,
}

// IsValid reports whether t is one of the known contribution types.
func (t ContributionType) IsValid() bool {
	switch t {
	case ContributionTime, ContributionCash, ContributionNonCash, ContributionIdea, ContributionRelationship:
		return true
	}
	return false
}

// Contribution records one unit of contributed value. The owning contributor
// is immutable after creation; reassignment is disallowed.
type Contribution struct {
	Lifecycle
	ContributorID string           `json:"contributor_id" db:"contributor_id"`
	Type          ContributionType `json:"type" db:"type"`
	// Value is hours for time contributions and dollars otherwise.
	Value float64 `json:"value" db:"value"`
	// DollarValue is an optional informational estimate for idea and
	// relationship contributions. It never feeds the slice math.
	DollarValue   *float64  `json:"dollar_value,omitempty" db:"dollar_value"`
	Description   string    `json:"description,omitempty" db:"description"`
	EffectiveDate time.Time `json:"effective_date" db:"effective_date"`
	Multiplier    float64   `json:"multiplier" db:"multiplier"`
	Slices        float64   `json:"slices" db:"slices"`
}

// CreateContributionRequest is the request for recording a contribution
type CreateContributionRequest struct {
	ContributorID string           `json:"contributor_id" validate:"required"`
	Type          ContributionType `json:"type" validate:"required,oneof=time cash non-cash idea relationship"`
	Value         float64          `json:"value" validate:"required,gt=0"`
	DollarValue   *float64         `json:"dollar_value,omitempty" validate:"omitempty,gt=0"`
	Description   string           `json:"description,omitempty"`
	EffectiveDate time.Time        `json:"effective_date" validate:"required"`
}

// UpdateContributionRequest is a partial patch; nil fields are left unchanged.
// ContributorID is accepted only when it matches the current owner because
// ownership is immutable; anything else is rejected, never silently ignored.
type UpdateContributionRequest struct {
	ContributorID *string           `json:"contributor_id,omitempty"`
	Type          *ContributionType `json:"type,omitempty" validate:"omitempty,oneof=time cash non-cash idea relationship"`
	Value         *float64          `json:"value,omitempty" validate:"omitempty,gt=0"`
	DollarValue   *float64          `json:"dollar_value,omitempty" validate:"omitempty,gt=0"`
	Description   *string           `json:"description,omitempty"`
	EffectiveDate *time.Time        `json:"effective_date,omitempty"`
}

// PreviewContributionRequest asks for the slices a contribution would earn
// without recording anything. Used by live forms and suggestion flows.
type PreviewContributionRequest struct {
	ContributorID string           `json:"contributor_id" validate:"required"`
	Type          ContributionType `json:"type" validate:"required,oneof=time cash non-cash idea relationship"`
	Value         float64          `json:"value" validate:"required,gt=0"`
}

// ContributionPreview is the speculative calculation result.
type ContributionPreview struct {
	ContributorID string           `json:"contributor_id"`
	Type          ContributionType `json:"type"`
	Value         float64          `json:"value"`
	Multiplier    float64          `json:"multiplier"`
	Slices        float64          `json:"slices"`
}

// ContributionListResponse is the response for listing contributions
type ContributionListResponse struct {
	Items      []Contribution `json:"items"`
	TotalCount int            `json:"total_count"`
}
