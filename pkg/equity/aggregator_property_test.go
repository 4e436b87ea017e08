//go:build property
// +build property

// Package equity_test property tests: the percentage split must always close
// to 100 and stay insensitive to deleted records.
package equity_test

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/fairslice/pie/pkg/equity"
	"github.com/fairslice/pie/pkg/models"
)

// TestEquityPercentagesCloseTo100 verifies the pie always adds up.
// Property: Σ equityPercentage == 100 (tolerance 1e-9) whenever company slices > 0
func TestEquityPercentagesCloseTo100(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	properties.Property("percentages sum to 100 when slices exist", prop.ForAll(
		func(values []float64, contributorCount int) bool {
			count := 1 + contributorCount%8

			contributors := make([]*models.Contributor, 0, count)
			for i := 0; i < count; i++ {
				id := fmt.Sprintf("contributor-%d", i)
				contributors = append(contributors, newContributor(id, id))
			}

			contributions := make([]*models.Contribution, 0, len(values))
			for i, v := range values {
				owner := fmt.Sprintf("contributor-%d", i%count)
				contributions = append(contributions, newContribution(fmt.Sprintf("c-%d", i), owner, v, day))
			}

			result := equity.CalculateAll(contributors, contributions)
			var sum float64
			for _, e := range result {
				sum += e.EquityPercentage
			}
			return math.Abs(sum-100) < 1e-9
		},
		gen.SliceOfN(20, gen.Float64Range(0.0001, 1e6)),
		gen.IntRange(0, 100),
	))

	properties.TestingRun(t)
}

// TestEquityIgnoresDeletedContributions verifies soft deleted rows never move
// the split.
// Property: CalculateAll(active) == CalculateAll(active + deleted)
func TestEquityIgnoresDeletedContributions(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	properties.Property("deleted contributions never affect the split", prop.ForAll(
		func(activeValues []float64, deletedValues []float64) bool {
			contributors := []*models.Contributor{
				newContributor("a", "A"),
				newContributor("b", "B"),
			}

			var contributions []*models.Contribution
			for i, v := range activeValues {
				owner := "a"
				if i%2 == 1 {
					owner = "b"
				}
				contributions = append(contributions, newContribution(fmt.Sprintf("active-%d", i), owner, v, day))
			}

			baseline := equity.CalculateAll(contributors, contributions)

			for i, v := range deletedValues {
				owner := "a"
				if i%2 == 1 {
					owner = "b"
				}
				contributions = append(contributions, deleted(newContribution(fmt.Sprintf("deleted-%d", i), owner, v, day)))
			}

			withDeleted := equity.CalculateAll(contributors, contributions)

			if len(baseline) != len(withDeleted) {
				return false
			}
			for i := range baseline {
				if baseline[i] != withDeleted[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(10, gen.Float64Range(0.0001, 1e6)),
		gen.SliceOfN(10, gen.Float64Range(0.0001, 1e6)),
	))

	properties.TestingRun(t)
}
