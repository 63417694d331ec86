package session

import (
	"errors"
	"fmt"
)

var (
	// ErrOperationInFlight rejects a login/logout/register started
	// while another one is still running. Single-slot guard; callers
	// retry once the first operation settles.
	ErrOperationInFlight = errors.New("session: another authentication operation is in flight")

	// ErrNotAdministrator rejects valid credentials attached to a
	// non-administrative account. The UI shows a specialized hint
	// instead of the generic credential error.
	ErrNotAdministrator = errors.New("session: only administrator accounts may access this interface")
)

// ValidationError reports a client-side input check failure. Raised
// before any network traffic and before the loading flag is touched.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("session: %s: %s", e.Field, e.Message)
}
