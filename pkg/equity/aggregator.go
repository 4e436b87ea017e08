// Package equity reduces active contributions into per contributor totals and
// percentage splits. Everything here is a pure read over the state it is
// handed; soft deleted records are excluded on both axes.
package equity

import (
	"github.com/fairslice/pie/pkg/models"
)

// CalculateAll computes each active contributor's slice total and share of
// the pie. Output preserves the input contributor ordering; sorting for
// display is a caller concern. When the company has no slices yet every
// percentage is 0 rather than a division failure.
func CalculateAll(contributors []*models.Contributor, contributions []*models.Contribution) []models.ContributorEquity {
	totals := SlicesByContributor(contributions)

	active := make([]*models.Contributor, 0, len(contributors))
	var companySlices float64
	for _, contributor := range contributors {
		if contributor.IsDeleted() {
			continue
		}
		active = append(active, contributor)
		companySlices += totals[contributor.ID]
	}

	result := make([]models.ContributorEquity, 0, len(active))
	for _, contributor := range active {
		slices := totals[contributor.ID]
		var percentage float64
		if companySlices > 0 {
			percentage = slices / companySlices * 100
		}
		result = append(result, models.ContributorEquity{
			ContributorID:    contributor.ID,
			Name:             contributor.Name,
			TotalSlices:      slices,
			EquityPercentage: percentage,
		})
	}
	return result
}

// SlicesByContributor sums active contribution slices keyed by contributor
// id. The vesting engine consumes this map.
func SlicesByContributor(contributions []*models.Contribution) map[string]float64 {
	totals := make(map[string]float64)
	for _, contribution := range contributions {
		if contribution.IsDeleted() {
			continue
		}
		totals[contribution.ContributorID] += contribution.Slices
	}
	return totals
}

// TotalSlices sums slices over active contributions.
func TotalSlices(contributions []*models.Contribution) float64 {
	var total float64
	for _, contribution := range contributions {
		if !contribution.IsDeleted() {
			total += contribution.Slices
		}
	}
	return total
}

// MostRecent returns the active contribution with the latest effective date,
// ties broken by the most recent creation timestamp. Nil when nothing is
// active.
func MostRecent(contributions []*models.Contribution) *models.Contribution {
	var latest *models.Contribution
	for _, contribution := range contributions {
		if contribution.IsDeleted() {
			continue
		}
		if latest == nil || contribution.EffectiveDate.After(latest.EffectiveDate) {
			latest = contribution
			continue
		}
		if contribution.EffectiveDate.Equal(latest.EffectiveDate) && contribution.CreatedAt.After(latest.CreatedAt) {
			latest = contribution
		}
	}
	return latest
}
