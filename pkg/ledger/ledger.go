// Package ledger is the in-memory authority for one workspace's pie. It owns
// the contributor and contribution stores plus the activity trail, applies
// validation before any write, and hands every mutation back as a Change so
// persistence can write the whole effect as a single batch.
package ledger

import (
	"math"

	"github.com/Gobusters/ectolinq"
	"github.com/fairslice/pie/pkg/activity"
	"github.com/fairslice/pie/pkg/lifecycle"
	"github.com/fairslice/pie/pkg/models"
	"github.com/pkg/errors"
)

// Change is the full effect of one mutation: every record it touched plus the
// activity event it produced. Add and update changes carry a single record and
// no event; cascade changes carry the contributor, the swept contributions,
// and exactly one event. Persisting a Change atomically is the caller's job.
type Change struct {
	Contributor   *models.Contributor
	Contributions []*models.Contribution
	Event         *models.ActivityEvent
}

// Ledger holds one workspace's records. It is not safe for concurrent use;
// the owning service serializes access around it.
type Ledger struct {
	contributors  *lifecycle.Store[*models.Contributor]
	contributions *lifecycle.Store[*models.Contribution]
	activity      *activity.Log
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		contributors:  lifecycle.NewStore[*models.Contributor](),
		contributions: lifecycle.NewStore[*models.Contribution](),
		activity:      activity.NewLog(),
	}
}

// Hydrate replaces all state with the snapshot verbatim, preserving ids,
// timestamps, and deletion provenance. A nil snapshot leaves the ledger empty.
func (l *Ledger) Hydrate(snapshot *models.WorkspaceSnapshot) {
	l.Reset()
	if snapshot == nil {
		return
	}
	l.contributors.SetAll(snapshot.Contributors)
	l.contributions.SetAll(snapshot.Contributions)
	l.activity.SetAll(snapshot.Activity)
}

// Snapshot exports all state in any lifecycle state, insertion ordered.
func (l *Ledger) Snapshot() *models.WorkspaceSnapshot {
	return &models.WorkspaceSnapshot{
		Contributors:  l.contributors.GetAll(),
		Contributions: l.contributions.GetAll(),
		Activity:      l.activity.All(),
	}
}

// Reset wipes all state.
func (l *Ledger) Reset() {
	l.contributors.Clear()
	l.contributions.Clear()
	l.activity.Clear()
}

// GetContributor returns the contributor in any lifecycle state.
func (l *Ledger) GetContributor(id string) (*models.Contributor, error) {
	contributor, ok := l.contributors.GetByID(id)
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "contributor %s", id)
	}
	return contributor, nil
}

// GetActiveContributors returns contributors without a deletion timestamp.
func (l *Ledger) GetActiveContributors() []*models.Contributor {
	return l.contributors.GetActive()
}

// GetDeletedContributors returns soft deleted contributors.
func (l *Ledger) GetDeletedContributors() []*models.Contributor {
	return l.contributors.GetDeleted()
}

// GetContribution returns the contribution in any lifecycle state.
func (l *Ledger) GetContribution(id string) (*models.Contribution, error) {
	contribution, ok := l.contributions.GetByID(id)
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "contribution %s", id)
	}
	return contribution, nil
}

// GetActiveContributions returns contributions without a deletion timestamp.
func (l *Ledger) GetActiveContributions() []*models.Contribution {
	return l.contributions.GetActive()
}

// GetDeletedContributions returns soft deleted contributions.
func (l *Ledger) GetDeletedContributions() []*models.Contribution {
	return l.contributions.GetDeleted()
}

// GetContributorContributions returns the contributor's active contributions.
func (l *Ledger) GetContributorContributions(contributorID string) []*models.Contribution {
	return ectolinq.Filter(l.contributions.GetActive(), func(contribution *models.Contribution) bool {
		return contribution.ContributorID == contributorID
	})
}

// GetRecentActivity returns up to limit events, newest first. A non-positive
// limit returns the full trail.
func (l *Ledger) GetRecentActivity(limit int) []*models.ActivityEvent {
	return l.activity.Recent(limit)
}

// activeContributor resolves an id to a currently active contributor.
func (l *Ledger) activeContributor(id string) (*models.Contributor, error) {
	contributor, ok := l.contributors.GetByID(id)
	if !ok || contributor.IsDeleted() {
		return nil, errors.Wrapf(ErrContributorRequired, "contributor %s", id)
	}
	return contributor, nil
}

// timeRate returns the rate a contribution of the given type needs. Non time
// types never read the rate.
func timeRate(contributor *models.Contributor, contributionType models.ContributionType) (float64, error) {
	if contributionType != models.ContributionTime {
		return 0, nil
	}
	if contributor.HourlyRate == nil {
		return 0, errors.Wrapf(ErrHourlyRateRequired, "contributor %s", contributor.ID)
	}
	return *contributor.HourlyRate, nil
}

func validatePositive(value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
		return ErrValueNotPositive
	}
	return nil
}

func validateVesting(schedule *models.VestingSchedule) error {
	if schedule == nil {
		return nil
	}
	if schedule.DurationMonths < 1 {
		return errors.Wrap(ErrVestingInvalid, "duration must be at least one month")
	}
	if schedule.CliffMonths < 0 {
		return errors.Wrap(ErrVestingInvalid, "cliff cannot be negative")
	}
	if schedule.StartDate.IsZero() {
		return errors.Wrap(ErrVestingInvalid, "start date is required")
	}
	return nil
}
