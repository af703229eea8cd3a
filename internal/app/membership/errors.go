// internal/app/membership/errors.go
package membership

import "errors"

// Engine error kinds. User-input-shaped errors (ErrAlreadyMember,
// ErrGroupFull, ...) are returned for direct display. ErrLockTimeout and
// ErrVersionConflict are transient: callers may retry the whole operation
// from scratch, never by re-applying a stale computed batch.
// ErrSuccessorMissing and ErrInvariantViolation indicate data or program
// faults and are never retried automatically.
var (
	ErrNotFound               = errors.New("entity not found")
	ErrAlreadyMember          = errors.New("user is already a member of this group")
	ErrNotAMember             = errors.New("user is not a member of this group")
	ErrGroupFull              = errors.New("group has reached its member cap")
	ErrAlreadyInAnotherGroup  = errors.New("user already belongs to another group of this kind")
	ErrCannotKickLeader       = errors.New("the leader cannot be kicked; transfer leadership or leave instead")
	ErrCannotModifyLeaderTier = errors.New("the leader's tier cannot be changed while they lead the group")
	ErrAlreadyOfficer         = errors.New("user is already an officer")
	ErrNotAnOfficer           = errors.New("user is not an officer")
	ErrTargetNotMember        = errors.New("leadership target is not a member of this group")
	ErrSuccessorMissing       = errors.New("successor user record is missing")
	ErrLockTimeout            = errors.New("timed out waiting for the group lock")
	ErrVersionConflict        = errors.New("entity was modified concurrently")
	ErrInvariantViolation     = errors.New("group state failed invariant validation")

	// Clan/federation linkage errors.
	ErrClanAlreadyAttached = errors.New("clan already belongs to a federation")
	ErrClanNotAttached     = errors.New("clan does not belong to this federation")
	ErrNotAClan            = errors.New("group is not a clan")
	ErrNotAFederation      = errors.New("group is not a federation")
)

// Transient reports whether err may succeed if the operation is retried
// from scratch (re-read, re-validate, re-apply).
func Transient(err error) bool {
	return errors.Is(err, ErrLockTimeout) || errors.Is(err, ErrVersionConflict)
}
