package replication

import (
	"errors"
	"fmt"
	"strings"
)

// ErrReplicationIncomplete is matched by errors.Is for every write that
// could not reach all of its owners.
var ErrReplicationIncomplete = errors.New("replication incomplete")

// OwnerFailure records why a single owner did not acknowledge a write.
type OwnerFailure struct {
	Owner string
	Err   error
}

// IncompleteError is returned by a coordinated Set when at least one
// owner failed. Owners that did succeed keep the value.
type IncompleteError struct {
	Key      string
	Owners   []string
	Failures []OwnerFailure
}

func (e *IncompleteError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s: %v", f.Owner, f.Err))
	}
	return fmt.Sprintf("replication incomplete for key %q: %d/%d owners failed [%s]",
		e.Key, len(e.Failures), len(e.Owners), strings.Join(parts, "; "))
}

// Is reports whether target is ErrReplicationIncomplete.
func (e *IncompleteError) Is(target error) bool {
	return target == ErrReplicationIncomplete
}

// Unwrap exposes the per-owner errors.
func (e *IncompleteError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}

// FailedOwners returns the owners that did not acknowledge the write.
func (e *IncompleteError) FailedOwners() []string {
	owners := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		owners = append(owners, f.Owner)
	}
	return owners
}
