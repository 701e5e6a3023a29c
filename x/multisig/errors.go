package multisig

import (
	"github.com/gatework/gate/errors"
)

// multisig reserves the 1200-1209 error code range.
var (
	// ErrInvalidMembers is returned when the member set is empty
	// after sorting and deduplication, or otherwise unusable.
	ErrInvalidMembers = errors.Register(1200, "invalid members")

	// ErrInvalidThreshold is returned when the threshold is zero or
	// exceeds the member count.
	ErrInvalidThreshold = errors.Register(1201, "invalid threshold")

	// ErrNotMember is returned when the caller is not part of the
	// group's member set.
	ErrNotMember = errors.Register(1202, "not a member")

	// ErrAlreadyApproved is returned on a duplicate approval by the
	// same member.
	ErrAlreadyApproved = errors.Register(1203, "already approved")

	// ErrNotExecutable is returned when the distinct approvals are
	// below the threshold.
	ErrNotExecutable = errors.Register(1204, "not enough approvals")

	// ErrNotProposer is returned when anyone but the proposer
	// attempts a cancellation.
	ErrNotProposer = errors.Register(1205, "only proposer can cancel")

	// ErrAlreadyProcessed is returned for any operation on a
	// proposal that is no longer pending.
	ErrAlreadyProcessed = errors.Register(1206, "already processed")

	// ErrAccountMismatch is returned when the supplied execution
	// accounts do not correspond 1:1 to the stored call descriptor.
	ErrAccountMismatch = errors.Register(1207, "account mismatch")
)
