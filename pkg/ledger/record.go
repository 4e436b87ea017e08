package ledger

import (
	"github.com/fairslice/pie/pkg/models"
	"github.com/fairslice/pie/pkg/slicing"
	"github.com/pkg/errors"
)

// AddContributor validates and stores a new contributor.
func (l *Ledger) AddContributor(req models.CreateContributorRequest) (*Change, error) {
	if req.HourlyRate != nil {
		if err := validatePositive(*req.HourlyRate); err != nil {
			return nil, errors.Wrap(err, "hourly rate")
		}
	}
	if err := validateVesting(req.Vesting); err != nil {
		return nil, err
	}

	contributor := l.contributors.Add(&models.Contributor{
		Name:       req.Name,
		HourlyRate: req.HourlyRate,
		Vesting:    req.Vesting,
	})
	return &Change{Contributor: contributor}, nil
}

// UpdateContributor applies a partial patch to an active contributor. Changing
// the hourly rate only affects future slice calculations; recorded slices keep
// the rate they were priced at.
func (l *Ledger) UpdateContributor(id string, req models.UpdateContributorRequest) (*Change, error) {
	existing, ok := l.contributors.GetByID(id)
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "contributor %s", id)
	}
	if existing.IsDeleted() {
		return nil, errors.Wrapf(ErrAlreadyDeleted, "contributor %s", id)
	}
	if req.HourlyRate != nil {
		if err := validatePositive(*req.HourlyRate); err != nil {
			return nil, errors.Wrap(err, "hourly rate")
		}
	}
	if err := validateVesting(req.Vesting); err != nil {
		return nil, err
	}

	contributor, _ := l.contributors.Update(id, func(c *models.Contributor) {
		if req.Name != nil {
			c.Name = *req.Name
		}
		if req.HourlyRate != nil {
			c.HourlyRate = req.HourlyRate
		}
		if req.Vesting != nil {
			c.Vesting = req.Vesting
		}
	})
	return &Change{Contributor: contributor}, nil
}

// AddContribution validates the request, prices it into slices, and stores it.
// The owning contributor must be active, and time contributions require the
// contributor's hourly rate at recording time.
func (l *Ledger) AddContribution(req models.CreateContributionRequest) (*Change, error) {
	contributor, err := l.activeContributor(req.ContributorID)
	if err != nil {
		return nil, err
	}
	if !req.Type.IsValid() {
		return nil, errors.Wrapf(ErrUnknownContributionType, "%q", req.Type)
	}
	if err := validatePositive(req.Value); err != nil {
		return nil, errors.Wrap(err, "value")
	}
	if req.DollarValue != nil {
		if err := validatePositive(*req.DollarValue); err != nil {
			return nil, errors.Wrap(err, "dollar value")
		}
	}
	rate, err := timeRate(contributor, req.Type)
	if err != nil {
		return nil, err
	}

	contribution := l.contributions.Add(&models.Contribution{
		ContributorID: contributor.ID,
		Type:          req.Type,
		Value:         req.Value,
		DollarValue:   req.DollarValue,
		Description:   req.Description,
		EffectiveDate: req.EffectiveDate,
		Multiplier:    slicing.Multiplier(req.Type),
		Slices:        slicing.Calculate(req.Type, req.Value, rate),
	})
	return &Change{Contributions: []*models.Contribution{contribution}}, nil
}

// UpdateContribution applies a partial patch to an active contribution and
// reprices its slices from the patched type and value. The owning contributor
// never changes; a request naming a different contributor is rejected.
func (l *Ledger) UpdateContribution(id string, req models.UpdateContributionRequest) (*Change, error) {
	existing, ok := l.contributions.GetByID(id)
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "contribution %s", id)
	}
	if existing.IsDeleted() {
		return nil, errors.Wrapf(ErrAlreadyDeleted, "contribution %s", id)
	}
	if req.ContributorID != nil && *req.ContributorID != existing.ContributorID {
		return nil, errors.Wrapf(ErrContributorImmutable, "contribution %s", id)
	}

	nextType := existing.Type
	if req.Type != nil {
		nextType = *req.Type
	}
	nextValue := existing.Value
	if req.Value != nil {
		nextValue = *req.Value
	}
	if !nextType.IsValid() {
		return nil, errors.Wrapf(ErrUnknownContributionType, "%q", nextType)
	}
	if err := validatePositive(nextValue); err != nil {
		return nil, errors.Wrap(err, "value")
	}
	if req.DollarValue != nil {
		if err := validatePositive(*req.DollarValue); err != nil {
			return nil, errors.Wrap(err, "dollar value")
		}
	}

	contributor, err := l.activeContributor(existing.ContributorID)
	if err != nil {
		return nil, err
	}
	rate, err := timeRate(contributor, nextType)
	if err != nil {
		return nil, err
	}

	contribution, _ := l.contributions.Update(id, func(c *models.Contribution) {
		c.Type = nextType
		c.Value = nextValue
		if req.DollarValue != nil {
			c.DollarValue = req.DollarValue
		}
		if req.Description != nil {
			c.Description = *req.Description
		}
		if req.EffectiveDate != nil {
			c.EffectiveDate = *req.EffectiveDate
		}
		c.Multiplier = slicing.Multiplier(nextType)
		c.Slices = slicing.Calculate(nextType, nextValue, rate)
	})
	return &Change{Contributions: []*models.Contribution{contribution}}, nil
}

// PreviewContribution prices a contribution without recording anything. It
// runs the same validation as AddContribution so a preview that succeeds will
// also record successfully against unchanged state.
func (l *Ledger) PreviewContribution(req models.PreviewContributionRequest) (*models.ContributionPreview, error) {
	contributor, err := l.activeContributor(req.ContributorID)
	if err != nil {
		return nil, err
	}
	if !req.Type.IsValid() {
		return nil, errors.Wrapf(ErrUnknownContributionType, "%q", req.Type)
	}
	if err := validatePositive(req.Value); err != nil {
		return nil, errors.Wrap(err, "value")
	}
	rate, err := timeRate(contributor, req.Type)
	if err != nil {
		return nil, err
	}

	return &models.ContributionPreview{
		ContributorID: contributor.ID,
		Type:          req.Type,
		Value:         req.Value,
		Multiplier:    slicing.Multiplier(req.Type),
		Slices:        slicing.Calculate(req.Type, req.Value, rate),
	}, nil
}
