package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnauthorized is a generic sentinel for auth failures.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrCheckInFinalized marks a mutation attempted on a closed check-in.
	ErrCheckInFinalized = errors.New("check-in already finalized")
	// ErrNotReadyForFinalization marks a finalize decision against a
	// check-in that is not both-complete.
	ErrNotReadyForFinalization = errors.New("check-in not ready for finalization")
	// ErrWrongTeammate marks a batch entry that does not belong to the
	// teammate the batch was invoked for.
	ErrWrongTeammate = errors.New("check-in belongs to a different teammate")
	// ErrAlreadyAcknowledged marks a second acknowledgement of a snapshot.
	ErrAlreadyAcknowledged = errors.New("snapshot already acknowledged")
	// ErrNoActiveTenure marks a position check-in request for a teammate
	// without an active employment tenure.
	ErrNoActiveTenure = errors.New("no active employment tenure")
)
