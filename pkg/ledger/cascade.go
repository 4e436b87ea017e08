package ledger

import (
	"github.com/fairslice/pie/pkg/models"
	"github.com/pkg/errors"
)

// RemoveContributor soft deletes the contributor and sweeps every active
// contribution it owns, tagging each one with the contributor's id so a later
// restore knows which deletions it caused. The event records the swept slice
// total and cascade count.
func (l *Ledger) RemoveContributor(id string) (*Change, error) {
	existing, ok := l.contributors.GetByID(id)
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "contributor %s", id)
	}
	if existing.IsDeleted() {
		return nil, errors.Wrapf(ErrAlreadyDeleted, "contributor %s", id)
	}

	contributor, _ := l.contributors.SoftDelete(id, nil)

	var swept []*models.Contribution
	var sweptSlices float64
	for _, contribution := range l.contributions.GetActive() {
		if contribution.ContributorID != id {
			continue
		}
		deleted, _ := l.contributions.SoftDelete(contribution.ID, &id)
		swept = append(swept, deleted)
		sweptSlices += deleted.Slices
	}

	count := len(swept)
	event := l.activity.Append(&models.ActivityEvent{
		Action:       models.ActivityDeleted,
		TargetKind:   models.TargetContributor,
		TargetID:     contributor.ID,
		TargetLabel:  contributor.Name,
		Slices:       sweptSlices,
		CascadeCount: &count,
	})

	return &Change{Contributor: contributor, Contributions: swept, Event: event}, nil
}

// RestoreContributor brings the contributor back along with the contributions
// its deletion swept. Contributions deleted on their own before or after the
// cascade carry no matching tag and stay deleted.
func (l *Ledger) RestoreContributor(id string) (*Change, error) {
	existing, ok := l.contributors.GetByID(id)
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "contributor %s", id)
	}
	if !existing.IsDeleted() {
		return nil, errors.Wrapf(ErrNotDeleted, "contributor %s", id)
	}

	contributor, _ := l.contributors.Restore(id)

	var revived []*models.Contribution
	var revivedSlices float64
	for _, contribution := range l.contributions.GetDeleted() {
		if !contribution.DeletedWithParent(id) {
			continue
		}
		restored, _ := l.contributions.Restore(contribution.ID)
		revived = append(revived, restored)
		revivedSlices += restored.Slices
	}

	count := len(revived)
	event := l.activity.Append(&models.ActivityEvent{
		Action:       models.ActivityRestored,
		TargetKind:   models.TargetContributor,
		TargetID:     contributor.ID,
		TargetLabel:  contributor.Name,
		Slices:       revivedSlices,
		CascadeCount: &count,
	})

	return &Change{Contributor: contributor, Contributions: revived, Event: event}, nil
}

// RemoveContribution soft deletes one contribution directly. Direct deletions
// carry no cascade tag, so restoring the owning contributor later will not
// bring this record back.
func (l *Ledger) RemoveContribution(id string) (*Change, error) {
	existing, ok := l.contributions.GetByID(id)
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "contribution %s", id)
	}
	if existing.IsDeleted() {
		return nil, errors.Wrapf(ErrAlreadyDeleted, "contribution %s", id)
	}

	contribution, _ := l.contributions.SoftDelete(id, nil)

	event := l.activity.Append(&models.ActivityEvent{
		Action:      models.ActivityDeleted,
		TargetKind:  models.TargetContribution,
		TargetID:    contribution.ID,
		TargetLabel: contributionLabel(contribution),
		Slices:      contribution.Slices,
	})

	return &Change{Contributions: []*models.Contribution{contribution}, Event: event}, nil
}

// RestoreContribution brings one contribution back directly. The owning
// contributor must be active so restored slices always count toward an
// active contributor's equity.
func (l *Ledger) RestoreContribution(id string) (*Change, error) {
	existing, ok := l.contributions.GetByID(id)
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "contribution %s", id)
	}
	if !existing.IsDeleted() {
		return nil, errors.Wrapf(ErrNotDeleted, "contribution %s", id)
	}
	if _, err := l.activeContributor(existing.ContributorID); err != nil {
		return nil, err
	}

	contribution, _ := l.contributions.Restore(id)

	event := l.activity.Append(&models.ActivityEvent{
		Action:      models.ActivityRestored,
		TargetKind:  models.TargetContribution,
		TargetID:    contribution.ID,
		TargetLabel: contributionLabel(contribution),
		Slices:      contribution.Slices,
	})

	return &Change{Contributions: []*models.Contribution{contribution}, Event: event}, nil
}

// contributionLabel is the display label captured on activity events.
func contributionLabel(contribution *models.Contribution) string {
	if contribution.Description != "" {
		return contribution.Description
	}
	return string(contribution.Type)
}
