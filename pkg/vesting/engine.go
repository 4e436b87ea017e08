// Package vesting projects vested versus unvested slices at an arbitrary
// point in time. The as-of date may sit in the past or years into the future;
// projection is the same pure computation either way.
package vesting

import (
	"math"
	"time"

	"github.com/fairslice/pie/pkg/models"
)

// VestedEquity computes each active contributor's vested position as of the
// given date. Contributors without a vesting schedule are fully vested.
// Output preserves the input contributor ordering.
func VestedEquity(contributors []*models.Contributor, slicesByContributor map[string]float64, asOf time.Time) []models.VestedEquity {
	result := make([]models.VestedEquity, 0, len(contributors))
	for _, contributor := range contributors {
		if contributor.IsDeleted() {
			continue
		}
		total := slicesByContributor[contributor.ID]
		vested := VestedSlices(total, contributor.Vesting, asOf)
		result = append(result, models.VestedEquity{
			ContributorID:  contributor.ID,
			Name:           contributor.Name,
			TotalSlices:    total,
			VestedSlices:   vested,
			UnvestedSlices: total - vested,
		})
	}
	return result
}

// Summary rolls the per contributor positions up into company totals.
func Summary(contributors []*models.Contributor, slicesByContributor map[string]float64, asOf time.Time) models.VestingSummary {
	summary := models.VestingSummary{AsOf: asOf}
	for _, position := range VestedEquity(contributors, slicesByContributor, asOf) {
		summary.TotalSlices += position.TotalSlices
		summary.VestedSlices += position.VestedSlices
		summary.UnvestedSlices += position.UnvestedSlices
	}
	return summary
}

// VestedSlices rounds the vested portion half even to whole slices. Round to
// nearest is monotone, so vested counts never regress as time advances. Fully
// vested returns the exact total, and partial vesting clamps at the total so
// fractional slice totals never report negative unvested.
func VestedSlices(total float64, schedule *models.VestingSchedule, asOf time.Time) float64 {
	fraction := Fraction(schedule, asOf)
	if fraction >= 1 {
		return total
	}
	return math.Min(math.RoundToEven(total*fraction), total)
}

// Fraction returns the vested fraction at a date. A nil schedule means fully
// vested. Vesting is linear from the start date; the cliff only gates when
// vesting becomes visible, it never resets the clock.
func Fraction(schedule *models.VestingSchedule, asOf time.Time) float64 {
	if schedule == nil {
		return 1
	}
	elapsed := MonthsBetween(schedule.StartDate, asOf)
	if elapsed < 0 {
		return 0
	}
	if elapsed < schedule.CliffMonths {
		return 0
	}
	if elapsed >= schedule.DurationMonths {
		return 1
	}
	return float64(elapsed) / float64(schedule.DurationMonths)
}

// MonthsBetween returns whole calendar months from start to end, negative
// when end precedes start. A month only counts once the day of month comes
// around again, so Jan 31 to Feb 28 is zero months.
func MonthsBetween(start, end time.Time) int {
	startUTC := start.UTC()
	endUTC := end.UTC()

	months := (endUTC.Year()-startUTC.Year())*12 + int(endUTC.Month()) - int(startUTC.Month())
	if endUTC.Day() < startUTC.Day() {
		months--
	}
	return months
}
