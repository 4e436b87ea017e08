//go:build property
// +build property

// Package vesting_test property tests: vested slices must advance with time
// and stay inside [0, total] for any schedule.
package vesting_test

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/fairslice/pie/pkg/models"
	"github.com/fairslice/pie/pkg/vesting"
)

// TestVestedSlicesMonotonicProperty verifies projection never regresses.
// Property: asOf1 <= asOf2 implies VestedSlices(asOf1) <= VestedSlices(asOf2)
func TestVestedSlicesMonotonicProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	start := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)

	properties.Property("vested slices are non-decreasing in time", prop.ForAll(
		func(total float64, cliff, duration int, steps []int) bool {
			schedule := &models.VestingSchedule{
				CliffMonths:    cliff % 25,
				DurationMonths: 1 + duration%120,
				StartDate:      start,
			}

			asOf := start.AddDate(0, -6, 0)
			previous := vesting.VestedSlices(total, schedule, asOf)
			for _, step := range steps {
				asOf = asOf.AddDate(0, step%7, 0)
				vested := vesting.VestedSlices(total, schedule, asOf)
				if vested < previous {
					return false
				}
				previous = vested
			}
			return true
		},
		gen.Float64Range(0, 1e6),
		gen.IntRange(0, 100),
		gen.IntRange(0, 1000),
		gen.SliceOfN(40, gen.IntRange(0, 100)),
	))

	properties.TestingRun(t)
}

// TestVestedSlicesBoundedProperty verifies the vested portion stays inside
// the contributor's total.
// Property: 0 <= VestedSlices <= total, and unvested is never negative
func TestVestedSlicesBoundedProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	start := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)

	properties.Property("vested slices stay within [0, total]", prop.ForAll(
		func(total float64, cliff, duration, monthsOut int) bool {
			schedule := &models.VestingSchedule{
				CliffMonths:    cliff % 25,
				DurationMonths: 1 + duration%120,
				StartDate:      start,
			}
			asOf := start.AddDate(0, monthsOut%200, 0)

			vested := vesting.VestedSlices(total, schedule, asOf)
			return vested >= 0 && vested <= total
		},
		gen.Float64Range(0, 1e6),
		gen.IntRange(0, 100),
		gen.IntRange(0, 1000),
		gen.IntRange(0, 1000),
	))

	properties.TestingRun(t)
}

// TestFullVestingIsExactProperty verifies totals come back untouched once the
// schedule completes.
// Property: elapsed >= duration implies VestedSlices == total
func TestFullVestingIsExactProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	start := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)

	properties.Property("full vesting returns the exact total", prop.ForAll(
		func(total float64, duration int) bool {
			months := 1 + duration%120
			schedule := &models.VestingSchedule{
				CliffMonths:    0,
				DurationMonths: months,
				StartDate:      start,
			}
			asOf := start.AddDate(0, months, 0)

			return vesting.VestedSlices(total, schedule, asOf) == total
		},
		gen.Float64Range(0, 1e6),
		gen.IntRange(0, 1000),
	))

	properties.TestingRun(t)
}
