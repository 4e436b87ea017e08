package ledger

import (
	"github.com/pkg/errors"
)

// Sentinel errors returned by ledger operations. Callers match them with
// errors.Is; the service layer maps them onto HTTP status codes.
var (
	// ErrNotFound means no record with the given id exists in any state.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyDeleted means the operation requires an active record but
	// the target is soft deleted.
	ErrAlreadyDeleted = errors.New("record is already deleted")
	// ErrNotDeleted means restore was called on a record that is active.
	ErrNotDeleted = errors.New("record is not deleted")
	// ErrValueNotPositive rejects zero, negative, and non-finite amounts.
	ErrValueNotPositive = errors.New("value must be a positive finite number")
	// ErrHourlyRateRequired rejects time contributions for contributors
	// with no hourly rate on file. A rate is never fabricated.
	ErrHourlyRateRequired = errors.New("contributor has no hourly rate")
	// ErrContributorRequired means the referenced contributor is missing
	// or soft deleted, so no contribution can be recorded against it.
	ErrContributorRequired = errors.New("contributor does not exist or is deleted")
	// ErrContributorImmutable rejects moving a contribution to a different
	// contributor after creation.
	ErrContributorImmutable = errors.New("contributions cannot change contributor")
	// ErrUnknownContributionType rejects types outside the fixed set.
	ErrUnknownContributionType = errors.New("unknown contribution type")
	// ErrVestingInvalid rejects malformed vesting schedules.
	ErrVestingInvalid = errors.New("vesting schedule is invalid")
)
