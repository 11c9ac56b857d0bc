package generator

import (
	"errors"
	"fmt"
)

// ErrUnauthenticated indicates no resolvable identity for the call.
var ErrUnauthenticated = errors.New("generator: unauthenticated")

// ErrProfileMissing indicates the identity resolved but the profile is too
// empty to ground a generation. The user should finish onboarding first.
var ErrProfileMissing = errors.New("generator: profile incomplete")

// QuotaExceededError is the terminal, user-facing quota denial. It carries
// enough context for actionable messaging.
type QuotaExceededError struct {
	Kind           string // Artifact kind that was gated.
	Limit          int    // Effective limit for the kind.
	DaysUntilReset int    // Whole days until the counter resets.
	Reason         string // Reason string from the quota manager.
}

// Error implements the error interface.
func (e *QuotaExceededError) Error() string {
	if e.DaysUntilReset > 0 {
		return fmt.Sprintf("%s (resets in %d days)", e.Reason, e.DaysUntilReset)
	}
	return e.Reason
}
