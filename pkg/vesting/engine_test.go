package vesting_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairslice/pie/pkg/models"
	"github.com/fairslice/pie/pkg/vesting"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func newContributor(id, name string, schedule *models.VestingSchedule) *models.Contributor {
	now := time.Now().UTC()
	return &models.Contributor{
		Lifecycle: models.Lifecycle{ID: id, CreatedAt: now, UpdatedAt: now},
		Name:      name,
		Vesting:   schedule,
	}
}

func TestMonthsBetween(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int
	}{
		{"five months", date(2023, time.January, 1), date(2023, time.June, 1), 5},
		{"one year", date(2023, time.January, 1), date(2024, time.January, 1), 12},
		{"four years", date(2023, time.January, 1), date(2027, time.January, 1), 48},
		{"same day", date(2024, time.May, 10), date(2024, time.May, 10), 0},
		{"day not reached", date(2024, time.January, 31), date(2024, time.February, 28), 0},
		{"day passed", date(2024, time.January, 31), date(2024, time.March, 1), 1},
		{"end before start", date(2024, time.March, 15), date(2024, time.January, 20), -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, vesting.MonthsBetween(tt.start, tt.end))
		})
	}
}

func TestFractionSchedule(t *testing.T) {
	schedule := &models.VestingSchedule{
		CliffMonths:    12,
		DurationMonths: 48,
		StartDate:      date(2023, time.January, 1),
	}

	tests := []struct {
		name string
		asOf time.Time
		want float64
	}{
		{"before cliff", date(2023, time.June, 1), 0},
		{"at cliff", date(2024, time.January, 1), 0.25},
		{"halfway", date(2025, time.January, 1), 0.5},
		{"at duration", date(2027, time.January, 1), 1},
		{"years past duration", date(2033, time.January, 1), 1},
		{"before start", date(2022, time.March, 1), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, vesting.Fraction(schedule, tt.asOf))
		})
	}
}

func TestFractionNilScheduleIsFullyVested(t *testing.T) {
	assert.Equal(t, float64(1), vesting.Fraction(nil, date(2000, time.January, 1)))
	assert.Equal(t, float64(1), vesting.Fraction(nil, date(2099, time.January, 1)))
}

func TestVestedSlicesRoundsHalfEven(t *testing.T) {
	schedule := &models.VestingSchedule{
		CliffMonths:    0,
		DurationMonths: 12,
		StartDate:      date(2024, time.January, 1),
	}
	halfway := date(2024, time.July, 1)

	// 12.5 rounds down to 12, 17.5 rounds up to 18
	assert.Equal(t, float64(12), vesting.VestedSlices(25, schedule, halfway))
	assert.Equal(t, float64(18), vesting.VestedSlices(35, schedule, halfway))
}

func TestVestedSlicesExactAtFullVesting(t *testing.T) {
	schedule := &models.VestingSchedule{
		CliffMonths:    0,
		DurationMonths: 12,
		StartDate:      date(2023, time.January, 1),
	}

	// fractional totals come back exactly, not rounded
	assert.Equal(t, 1000.1234, vesting.VestedSlices(1000.1234, schedule, date(2024, time.January, 1)))
	assert.Equal(t, 1000.1234, vesting.VestedSlices(1000.1234, nil, date(2024, time.January, 1)))
}

func TestVestedSlicesNeverExceedTotal(t *testing.T) {
	schedule := &models.VestingSchedule{
		CliffMonths:    0,
		DurationMonths: 120,
		StartDate:      date(2020, time.January, 1),
	}

	// one month short of full vesting on a fractional total
	asOf := date(2029, time.December, 1)
	total := 10.7
	vested := vesting.VestedSlices(total, schedule, asOf)
	assert.LessOrEqual(t, vested, total)
	assert.GreaterOrEqual(t, total-vested, float64(0))
}

func TestVestedSlicesMonotonic(t *testing.T) {
	schedule := &models.VestingSchedule{
		CliffMonths:    12,
		DurationMonths: 48,
		StartDate:      date(2023, time.January, 1),
	}

	previous := float64(-1)
	asOf := date(2022, time.June, 1)
	for i := 0; i < 150; i++ {
		vested := vesting.VestedSlices(1000, schedule, asOf)
		assert.GreaterOrEqual(t, vested, previous, "vested slices regressed at %s", asOf)
		previous = vested
		asOf = asOf.AddDate(0, 1, 0)
	}

	// the walk ends more than ten years out and fully vested
	assert.Equal(t, float64(1000), previous)
}

func TestVestedEquityPerContributor(t *testing.T) {
	schedule := &models.VestingSchedule{
		CliffMonths:    12,
		DurationMonths: 48,
		StartDate:      date(2023, time.January, 1),
	}
	contributors := []*models.Contributor{
		newContributor("vested", "Fully Vested", nil),
		newContributor("cliffed", "Before Cliff", schedule),
	}
	slices := map[string]float64{"vested": 4000, "cliffed": 1000}

	result := vesting.VestedEquity(contributors, slices, date(2023, time.June, 1))
	require.Len(t, result, 2)

	assert.Equal(t, "vested", result[0].ContributorID)
	assert.Equal(t, float64(4000), result[0].VestedSlices)
	assert.Equal(t, float64(0), result[0].UnvestedSlices)

	assert.Equal(t, "cliffed", result[1].ContributorID)
	assert.Equal(t, float64(0), result[1].VestedSlices)
	assert.Equal(t, float64(1000), result[1].UnvestedSlices)
}

func TestVestedEquitySkipsDeletedContributors(t *testing.T) {
	gone := newContributor("gone", "Gone", nil)
	now := time.Now().UTC()
	gone.DeletedAt = &now

	result := vesting.VestedEquity([]*models.Contributor{gone}, map[string]float64{"gone": 500}, now)
	assert.Empty(t, result)
}

func TestSummaryAddsUp(t *testing.T) {
	schedule := &models.VestingSchedule{
		CliffMonths:    12,
		DurationMonths: 48,
		StartDate:      date(2023, time.January, 1),
	}
	contributors := []*models.Contributor{
		newContributor("a", "A", nil),
		newContributor("b", "B", schedule),
	}
	slices := map[string]float64{"a": 4000, "b": 1000}
	asOf := date(2025, time.January, 1)

	summary := vesting.Summary(contributors, slices, asOf)
	assert.Equal(t, asOf, summary.AsOf)
	assert.Equal(t, float64(5000), summary.TotalSlices)
	// a fully vested, b halfway through 48 months
	assert.Equal(t, float64(4500), summary.VestedSlices)
	assert.Equal(t, float64(500), summary.UnvestedSlices)
}
