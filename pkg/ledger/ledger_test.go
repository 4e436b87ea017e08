package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairslice/pie/pkg/models"
)

func floatPtr(f float64) *float64 {
	return &f
}

func strPtr(s string) *string {
	return &s
}

func typePtr(t models.ContributionType) *models.ContributionType {
	return &t
}

func effectiveDate(day int) time.Time {
	return time.Date(2024, time.March, day, 0, 0, 0, 0, time.UTC)
}

func seedContributor(t *testing.T, led *Ledger, name string, hourlyRate *float64) *models.Contributor {
	t.Helper()
	change, err := led.AddContributor(models.CreateContributorRequest{
		Name:       name,
		HourlyRate: hourlyRate,
	})
	require.NoError(t, err)
	require.NotNil(t, change.Contributor)
	return change.Contributor
}

func seedContribution(t *testing.T, led *Ledger, contributorID string, contributionType models.ContributionType, value float64) *models.Contribution {
	t.Helper()
	change, err := led.AddContribution(models.CreateContributionRequest{
		ContributorID: contributorID,
		Type:          contributionType,
		Value:         value,
		EffectiveDate: effectiveDate(1),
	})
	require.NoError(t, err)
	require.Len(t, change.Contributions, 1)
	return change.Contributions[0]
}

func TestLedger_AddContributor(t *testing.T) {
	t.Run("assigns identity and returns a record-only change", func(t *testing.T) {
		led := NewLedger()

		change, err := led.AddContributor(models.CreateContributorRequest{
			Name:       "Alice",
			HourlyRate: floatPtr(50),
		})
		require.NoError(t, err)

		require.NotNil(t, change.Contributor)
		assert.NotEmpty(t, change.Contributor.ID)
		assert.False(t, change.Contributor.CreatedAt.IsZero())
		assert.Equal(t, "Alice", change.Contributor.Name)
		assert.Empty(t, change.Contributions)
		assert.Nil(t, change.Event)
		assert.Len(t, led.GetActiveContributors(), 1)
	})

	t.Run("rejects a non-positive hourly rate", func(t *testing.T) {
		led := NewLedger()

		_, err := led.AddContributor(models.CreateContributorRequest{
			Name:       "Bob",
			HourlyRate: floatPtr(-5),
		})
		assert.ErrorIs(t, err, ErrValueNotPositive)
		assert.Empty(t, led.GetActiveContributors())
	})

	t.Run("rejects a zero-duration vesting schedule", func(t *testing.T) {
		led := NewLedger()

		_, err := led.AddContributor(models.CreateContributorRequest{
			Name: "Bob",
			Vesting: &models.VestingSchedule{
				DurationMonths: 0,
				StartDate:      effectiveDate(1),
			},
		})
		assert.ErrorIs(t, err, ErrVestingInvalid)
	})
}

func TestLedger_UpdateContributor(t *testing.T) {
	t.Run("patches only the provided fields", func(t *testing.T) {
		led := NewLedger()
		contributor := seedContributor(t, led, "Alice", floatPtr(50))

		change, err := led.UpdateContributor(contributor.ID, models.UpdateContributorRequest{
			Name: strPtr("Alice B"),
		})
		require.NoError(t, err)

		assert.Equal(t, "Alice B", change.Contributor.Name)
		require.NotNil(t, change.Contributor.HourlyRate)
		assert.Equal(t, float64(50), *change.Contributor.HourlyRate)
		assert.Nil(t, change.Event)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		led := NewLedger()

		_, err := led.UpdateContributor("nope", models.UpdateContributorRequest{Name: strPtr("x")})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("deleted contributors cannot be patched", func(t *testing.T) {
		led := NewLedger()
		contributor := seedContributor(t, led, "Alice", nil)
		_, err := led.RemoveContributor(contributor.ID)
		require.NoError(t, err)

		_, err = led.UpdateContributor(contributor.ID, models.UpdateContributorRequest{Name: strPtr("x")})
		assert.ErrorIs(t, err, ErrAlreadyDeleted)
	})

	t.Run("rate changes never reprice recorded slices", func(t *testing.T) {
		led := NewLedger()
		contributor := seedContributor(t, led, "Alice", floatPtr(50))
		before := seedContribution(t, led, contributor.ID, models.ContributionTime, 10)
		assert.Equal(t, float64(1000), before.Slices)

		_, err := led.UpdateContributor(contributor.ID, models.UpdateContributorRequest{
			HourlyRate: floatPtr(100),
		})
		require.NoError(t, err)

		unchanged, err := led.GetContribution(before.ID)
		require.NoError(t, err)
		assert.Equal(t, float64(1000), unchanged.Slices)

		after := seedContribution(t, led, contributor.ID, models.ContributionTime, 10)
		assert.Equal(t, float64(2000), after.Slices)
	})
}

func TestLedger_AddContribution(t *testing.T) {
	t.Run("prices slices from type and value", func(t *testing.T) {
		led := NewLedger()
		contributor := seedContributor(t, led, "Alice", nil)

		change, err := led.AddContribution(models.CreateContributionRequest{
			ContributorID: contributor.ID,
			Type:          models.ContributionCash,
			Value:         1000,
			Description:   "seed funding",
			EffectiveDate: effectiveDate(5),
		})
		require.NoError(t, err)

		contribution := change.Contributions[0]
		assert.Equal(t, float64(4), contribution.Multiplier)
		assert.Equal(t, float64(4000), contribution.Slices)
		assert.Equal(t, contributor.ID, contribution.ContributorID)
		assert.Nil(t, change.Event)
	})

	t.Run("time requires an hourly rate", func(t *testing.T) {
		led := NewLedger()
		contributor := seedContributor(t, led, "Alice", nil)

		_, err := led.AddContribution(models.CreateContributionRequest{
			ContributorID: contributor.ID,
			Type:          models.ContributionTime,
			Value:         10,
			EffectiveDate: effectiveDate(1),
		})
		assert.ErrorIs(t, err, ErrHourlyRateRequired)
		assert.Empty(t, led.GetActiveContributions())
	})

	t.Run("contributor must exist and be active", func(t *testing.T) {
		led := NewLedger()
		contributor := seedContributor(t, led, "Alice", nil)
		_, err := led.RemoveContributor(contributor.ID)
		require.NoError(t, err)

		_, err = led.AddContribution(models.CreateContributionRequest{
			ContributorID: "missing",
			Type:          models.ContributionCash,
			Value:         100,
			EffectiveDate: effectiveDate(1),
		})
		assert.ErrorIs(t, err, ErrContributorRequired)

		_, err = led.AddContribution(models.CreateContributionRequest{
			ContributorID: contributor.ID,
			Type:          models.ContributionCash,
			Value:         100,
			EffectiveDate: effectiveDate(1),
		})
		assert.ErrorIs(t, err, ErrContributorRequired)
	})

	t.Run("value must be positive", func(t *testing.T) {
		led := NewLedger()
		contributor := seedContributor(t, led, "Alice", nil)

		for _, value := range []float64{0, -3} {
			_, err := led.AddContribution(models.CreateContributionRequest{
				ContributorID: contributor.ID,
				Type:          models.ContributionIdea,
				Value:         value,
				EffectiveDate: effectiveDate(1),
			})
			assert.ErrorIs(t, err, ErrValueNotPositive)
		}
	})

	t.Run("type must be one of the fixed set", func(t *testing.T) {
		led := NewLedger()
		contributor := seedContributor(t, led, "Alice", nil)

		_, err := led.AddContribution(models.CreateContributionRequest{
			ContributorID: contributor.ID,
			Type:          models.ContributionType("magic"),
			Value:         100,
			EffectiveDate: effectiveDate(1),
		})
		assert.ErrorIs(t, err, ErrUnknownContributionType)
	})
}

func TestLedger_UpdateContribution(t *testing.T) {
	t.Run("reprices slices from the patched state", func(t *testing.T) {
		led := NewLedger()
		contributor := seedContributor(t, led, "Alice", floatPtr(50))
		contribution := seedContribution(t, led, contributor.ID, models.ContributionTime, 10)

		change, err := led.UpdateContribution(contribution.ID, models.UpdateContributionRequest{
			Type:  typePtr(models.ContributionCash),
			Value: floatPtr(500),
		})
		require.NoError(t, err)

		updated := change.Contributions[0]
		assert.Equal(t, models.ContributionCash, updated.Type)
		assert.Equal(t, float64(4), updated.Multiplier)
		assert.Equal(t, float64(2000), updated.Slices)
	})

	t.Run("repricing time uses the current hourly rate", func(t *testing.T) {
		led := NewLedger()
		contributor := seedContributor(t, led, "Alice", floatPtr(50))
		contribution := seedContribution(t, led, contributor.ID, models.ContributionTime, 10)

		_, err := led.UpdateContributor(contributor.ID, models.UpdateContributorRequest{
			HourlyRate: floatPtr(80),
		})
		require.NoError(t, err)

		change, err := led.UpdateContribution(contribution.ID, models.UpdateContributionRequest{
			Value: floatPtr(5),
		})
		require.NoError(t, err)
		assert.Equal(t, float64(800), change.Contributions[0].Slices)
	})

	t.Run("reassignment to another contributor is rejected", func(t *testing.T) {
		led := NewLedger()
		alice := seedContributor(t, led, "Alice", nil)
		bob := seedContributor(t, led, "Bob", nil)
		contribution := seedContribution(t, led, alice.ID, models.ContributionCash, 100)

		_, err := led.UpdateContribution(contribution.ID, models.UpdateContributionRequest{
			ContributorID: strPtr(bob.ID),
		})
		assert.ErrorIs(t, err, ErrContributorImmutable)

		owned, err := led.GetContribution(contribution.ID)
		require.NoError(t, err)
		assert.Equal(t, alice.ID, owned.ContributorID)
	})

	t.Run("restating the current owner is a no-op, not an error", func(t *testing.T) {
		led := NewLedger()
		alice := seedContributor(t, led, "Alice", nil)
		contribution := seedContribution(t, led, alice.ID, models.ContributionCash, 100)

		change, err := led.UpdateContribution(contribution.ID, models.UpdateContributionRequest{
			ContributorID: strPtr(alice.ID),
			Description:   strPtr("first check"),
		})
		require.NoError(t, err)
		assert.Equal(t, "first check", change.Contributions[0].Description)
	})

	t.Run("deleted contributions cannot be patched", func(t *testing.T) {
		led := NewLedger()
		alice := seedContributor(t, led, "Alice", nil)
		contribution := seedContribution(t, led, alice.ID, models.ContributionCash, 100)
		_, err := led.RemoveContribution(contribution.ID)
		require.NoError(t, err)

		_, err = led.UpdateContribution(contribution.ID, models.UpdateContributionRequest{
			Value: floatPtr(200),
		})
		assert.ErrorIs(t, err, ErrAlreadyDeleted)
	})
}

func TestLedger_PreviewContribution(t *testing.T) {
	t.Run("prices without recording", func(t *testing.T) {
		led := NewLedger()
		contributor := seedContributor(t, led, "Alice", floatPtr(50))

		preview, err := led.PreviewContribution(models.PreviewContributionRequest{
			ContributorID: contributor.ID,
			Type:          models.ContributionTime,
			Value:         10,
		})
		require.NoError(t, err)

		assert.Equal(t, float64(1000), preview.Slices)
		assert.Equal(t, float64(2), preview.Multiplier)
		assert.Empty(t, led.GetActiveContributions())
		assert.Empty(t, led.GetRecentActivity(0))
	})

	t.Run("runs the same validation as recording", func(t *testing.T) {
		led := NewLedger()
		contributor := seedContributor(t, led, "Alice", nil)

		_, err := led.PreviewContribution(models.PreviewContributionRequest{
			ContributorID: contributor.ID,
			Type:          models.ContributionTime,
			Value:         10,
		})
		assert.ErrorIs(t, err, ErrHourlyRateRequired)
	})
}

func TestLedger_RemoveContributor(t *testing.T) {
	t.Run("cascades to active owned contributions only", func(t *testing.T) {
		led := NewLedger()
		alice := seedContributor(t, led, "Alice", floatPtr(50))
		bob := seedContributor(t, led, "Bob", nil)
		c1 := seedContribution(t, led, alice.ID, models.ContributionTime, 10)
		c2 := seedContribution(t, led, alice.ID, models.ContributionCash, 250)
		theirs := seedContribution(t, led, bob.ID, models.ContributionIdea, 500)

		change, err := led.RemoveContributor(alice.ID)
		require.NoError(t, err)

		assert.True(t, change.Contributor.IsDeleted())
		require.Len(t, change.Contributions, 2)
		for _, swept := range change.Contributions {
			assert.True(t, swept.IsDeleted())
			assert.True(t, swept.DeletedWithParent(alice.ID))
		}

		untouched, err := led.GetContribution(theirs.ID)
		require.NoError(t, err)
		assert.False(t, untouched.IsDeleted())

		require.NotNil(t, change.Event)
		assert.Equal(t, models.ActivityDeleted, change.Event.Action)
		assert.Equal(t, models.TargetContributor, change.Event.TargetKind)
		assert.Equal(t, "Alice", change.Event.TargetLabel)
		assert.Equal(t, c1.Slices+c2.Slices, change.Event.Slices)
		require.NotNil(t, change.Event.CascadeCount)
		assert.Equal(t, 2, *change.Event.CascadeCount)
	})

	t.Run("contributions already deleted on their own are not re-tagged", func(t *testing.T) {
		led := NewLedger()
		alice := seedContributor(t, led, "Alice", nil)
		solo := seedContribution(t, led, alice.ID, models.ContributionCash, 100)
		kept := seedContribution(t, led, alice.ID, models.ContributionIdea, 200)

		_, err := led.RemoveContribution(solo.ID)
		require.NoError(t, err)

		change, err := led.RemoveContributor(alice.ID)
		require.NoError(t, err)

		require.Len(t, change.Contributions, 1)
		assert.Equal(t, kept.ID, change.Contributions[0].ID)

		independent, err := led.GetContribution(solo.ID)
		require.NoError(t, err)
		assert.True(t, independent.IsDeleted())
		assert.Nil(t, independent.DeletedWith)
	})

	t.Run("produces exactly one event", func(t *testing.T) {
		led := NewLedger()
		alice := seedContributor(t, led, "Alice", nil)
		seedContribution(t, led, alice.ID, models.ContributionCash, 100)
		seedContribution(t, led, alice.ID, models.ContributionIdea, 200)

		_, err := led.RemoveContributor(alice.ID)
		require.NoError(t, err)
		assert.Len(t, led.GetRecentActivity(0), 1)
	})

	t.Run("double delete fails and leaves no trace", func(t *testing.T) {
		led := NewLedger()
		alice := seedContributor(t, led, "Alice", nil)
		_, err := led.RemoveContributor(alice.ID)
		require.NoError(t, err)

		_, err = led.RemoveContributor(alice.ID)
		assert.ErrorIs(t, err, ErrAlreadyDeleted)
		assert.Len(t, led.GetRecentActivity(0), 1)
	})
}

func TestLedger_RestoreContributor(t *testing.T) {
	t.Run("revives only contributions the cascade swept", func(t *testing.T) {
		led := NewLedger()
		alice := seedContributor(t, led, "Alice", nil)
		independent := seedContribution(t, led, alice.ID, models.ContributionCash, 100)
		swept := seedContribution(t, led, alice.ID, models.ContributionIdea, 200)

		_, err := led.RemoveContribution(independent.ID)
		require.NoError(t, err)
		_, err = led.RemoveContributor(alice.ID)
		require.NoError(t, err)

		change, err := led.RestoreContributor(alice.ID)
		require.NoError(t, err)

		assert.False(t, change.Contributor.IsDeleted())
		require.Len(t, change.Contributions, 1)
		assert.Equal(t, swept.ID, change.Contributions[0].ID)
		assert.False(t, change.Contributions[0].IsDeleted())
		assert.Nil(t, change.Contributions[0].DeletedWith)

		still, err := led.GetContribution(independent.ID)
		require.NoError(t, err)
		assert.True(t, still.IsDeleted())

		require.NotNil(t, change.Event)
		assert.Equal(t, models.ActivityRestored, change.Event.Action)
		require.NotNil(t, change.Event.CascadeCount)
		assert.Equal(t, 1, *change.Event.CascadeCount)
	})

	t.Run("restoring an active contributor fails", func(t *testing.T) {
		led := NewLedger()
		alice := seedContributor(t, led, "Alice", nil)

		_, err := led.RestoreContributor(alice.ID)
		assert.ErrorIs(t, err, ErrNotDeleted)
		assert.Empty(t, led.GetRecentActivity(0))
	})
}

func TestLedger_ContributionLifecycle(t *testing.T) {
	t.Run("direct delete and restore carry no cascade tag", func(t *testing.T) {
		led := NewLedger()
		alice := seedContributor(t, led, "Alice", nil)
		contribution := seedContribution(t, led, alice.ID, models.ContributionCash, 100)

		deleteChange, err := led.RemoveContribution(contribution.ID)
		require.NoError(t, err)
		assert.True(t, deleteChange.Contributions[0].IsDeleted())
		assert.Nil(t, deleteChange.Contributions[0].DeletedWith)
		assert.Nil(t, deleteChange.Contributor)
		assert.Nil(t, deleteChange.Event.CascadeCount)
		assert.Equal(t, models.TargetContribution, deleteChange.Event.TargetKind)

		restoreChange, err := led.RestoreContribution(contribution.ID)
		require.NoError(t, err)
		assert.False(t, restoreChange.Contributions[0].IsDeleted())
		assert.Len(t, led.GetRecentActivity(0), 2)
	})

	t.Run("restore requires an active owner", func(t *testing.T) {
		led := NewLedger()
		alice := seedContributor(t, led, "Alice", nil)
		contribution := seedContribution(t, led, alice.ID, models.ContributionCash, 100)

		_, err := led.RemoveContribution(contribution.ID)
		require.NoError(t, err)
		_, err = led.RemoveContributor(alice.ID)
		require.NoError(t, err)

		_, err = led.RestoreContribution(contribution.ID)
		assert.ErrorIs(t, err, ErrContributorRequired)

		still, getErr := led.GetContribution(contribution.ID)
		require.NoError(t, getErr)
		assert.True(t, still.IsDeleted())
	})

	t.Run("event label prefers the description", func(t *testing.T) {
		led := NewLedger()
		alice := seedContributor(t, led, "Alice", nil)

		change, err := led.AddContribution(models.CreateContributionRequest{
			ContributorID: alice.ID,
			Type:          models.ContributionCash,
			Value:         100,
			Description:   "server bill",
			EffectiveDate: effectiveDate(1),
		})
		require.NoError(t, err)

		deleteChange, err := led.RemoveContribution(change.Contributions[0].ID)
		require.NoError(t, err)
		assert.Equal(t, "server bill", deleteChange.Event.TargetLabel)

		bare := seedContribution(t, led, alice.ID, models.ContributionIdea, 50)
		deleteChange, err = led.RemoveContribution(bare.ID)
		require.NoError(t, err)
		assert.Equal(t, "idea", deleteChange.Event.TargetLabel)
	})
}

func TestLedger_HydrateSnapshot(t *testing.T) {
	t.Run("round trips every lifecycle state verbatim", func(t *testing.T) {
		led := NewLedger()
		alice := seedContributor(t, led, "Alice", floatPtr(50))
		bob := seedContributor(t, led, "Bob", nil)
		seedContribution(t, led, alice.ID, models.ContributionTime, 10)
		seedContribution(t, led, bob.ID, models.ContributionCash, 100)
		_, err := led.RemoveContributor(bob.ID)
		require.NoError(t, err)

		snapshot := led.Snapshot()

		rehydrated := NewLedger()
		rehydrated.Hydrate(snapshot)

		assert.Equal(t, snapshot, rehydrated.Snapshot())
		assert.Len(t, rehydrated.GetActiveContributors(), 1)
		assert.Len(t, rehydrated.GetDeletedContributors(), 1)
		assert.Len(t, rehydrated.GetDeletedContributions(), 1)
		assert.Len(t, rehydrated.GetRecentActivity(0), 1)

		restoreChange, err := rehydrated.RestoreContributor(bob.ID)
		require.NoError(t, err)
		assert.Len(t, restoreChange.Contributions, 1)
	})

	t.Run("hydrate replaces prior state", func(t *testing.T) {
		led := NewLedger()
		seedContributor(t, led, "Alice", nil)

		led.Hydrate(nil)

		assert.Empty(t, led.GetActiveContributors())
		assert.Equal(t, 0, len(led.Snapshot().Contributors))
	})

	t.Run("reset wipes everything", func(t *testing.T) {
		led := NewLedger()
		alice := seedContributor(t, led, "Alice", nil)
		seedContribution(t, led, alice.ID, models.ContributionCash, 100)
		_, err := led.RemoveContributor(alice.ID)
		require.NoError(t, err)

		led.Reset()

		assert.Empty(t, led.GetActiveContributors())
		assert.Empty(t, led.GetDeletedContributors())
		assert.Empty(t, led.GetRecentActivity(0))
	})
}

func TestLedger_GetContributorContributions(t *testing.T) {
	led := NewLedger()
	alice := seedContributor(t, led, "Alice", nil)
	bob := seedContributor(t, led, "Bob", nil)
	mine := seedContribution(t, led, alice.ID, models.ContributionCash, 100)
	seedContribution(t, led, bob.ID, models.ContributionIdea, 50)
	gone := seedContribution(t, led, alice.ID, models.ContributionIdea, 75)

	_, err := led.RemoveContribution(gone.ID)
	require.NoError(t, err)

	owned := led.GetContributorContributions(alice.ID)
	require.Len(t, owned, 1)
	assert.Equal(t, mine.ID, owned[0].ID)
}
