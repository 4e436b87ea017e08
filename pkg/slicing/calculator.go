// Package slicing converts contribution values into slices, the common unit
// the slicing pie model uses to compare time, cash and everything else.
package slicing

import (
	"math"

	"github.com/fairslice/pie/pkg/models"
)

// Fixed multipliers. At-risk contributions are rewarded: cash counts four
// times its face value, time and non-cash twice.
const (
	TimeMultiplier         float64 = 2
	CashMultiplier         float64 = 4
	NonCashMultiplier      float64 = 2
	IdeaMultiplier         float64 = 1
	RelationshipMultiplier float64 = 1
)

// Multiplier returns the fixed multiplier for a contribution type. Unknown
// types earn nothing; callers validate types before recording anything.
func Multiplier(contributionType models.ContributionType) float64 {
	switch contributionType {
	case models.ContributionTime:
		return TimeMultiplier
	case models.ContributionCash:
		return CashMultiplier
	case models.ContributionNonCash:
		return NonCashMultiplier
	case models.ContributionIdea:
		return IdeaMultiplier
	case models.ContributionRelationship:
		return RelationshipMultiplier
	default:
		return 0
	}
}

// Calculate converts one contribution's raw value into slices. Time
// contributions are hours priced at the contributor's hourly rate; every
// other type multiplies the dollar value directly. The hourly rate is ignored
// for non-time types.
//
// Calculate is total over its numeric domain and has no side effects, so it
// is safe to call speculatively for previews. Input validation (positive
// value, rate on file for time) belongs to the caller.
func Calculate(contributionType models.ContributionType, value float64, hourlyRate float64) float64 {
	if contributionType == models.ContributionTime {
		return Round(value * hourlyRate * TimeMultiplier)
	}
	return Round(value * Multiplier(contributionType))
}

// Round applies the slice rounding policy: half even at four decimal places.
func Round(slices float64) float64 {
	return math.RoundToEven(slices*1e4) / 1e4
}
