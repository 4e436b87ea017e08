package models

import (
	"time"
)

// ContributorEquity is one contributor's share of the pie. Percentages are
// raw float64; display precision is a caller concern.
type ContributorEquity struct {
	ContributorID    string  `json:"contributor_id"`
	Name             string  `json:"name"`
	TotalSlices      float64 `json:"total_slices"`
	EquityPercentage float64 `json:"equity_percentage"`
}

// EquityReport is the full equity breakdown for a workspace.
type EquityReport struct {
	Contributors []ContributorEquity `json:"contributors"`
	TotalSlices  float64             `json:"total_slices"`
	MostRecent   *Contribution       `json:"most_recent_contribution,omitempty"`
	GeneratedAt  time.Time           `json:"generated_at"`
}

// VestedEquity is one contributor's vested position at a point in time.
type VestedEquity struct {
	ContributorID  string  `json:"contributor_id"`
	Name           string  `json:"name"`
	TotalSlices    float64 `json:"total_slices"`
	VestedSlices   float64 `json:"vested_slices"`
	UnvestedSlices float64 `json:"unvested_slices"`
}

// VestingSummary is the company-wide vested position at a point in time.
type VestingSummary struct {
	AsOf           time.Time `json:"as_of"`
	TotalSlices    float64   `json:"total_slices"`
	VestedSlices   float64   `json:"vested_slices"`
	UnvestedSlices float64   `json:"unvested_slices"`
}

// WorkspaceSnapshot is the import/export shape: full workspace state including
// soft deleted records, keyed by id on load.
type WorkspaceSnapshot struct {
	Contributors  []*Contributor   `json:"contributors"`
	Contributions []*Contribution  `json:"contributions"`
	Activity      []*ActivityEvent `json:"activity,omitempty"`
}
