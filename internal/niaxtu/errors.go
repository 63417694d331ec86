package niaxtu

import (
	"errors"
	"fmt"
)

// ErrSessionExpired maps HTTP 401 from the API. The session manager
// reacts by discarding the local session; screens redirect to login.
var ErrSessionExpired = errors.New("niaxtu: session expired")

// AuthenticationError carries the server's rejection message for a
// login attempt. The message is surfaced verbatim to the operator.
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string {
	if e.Message == "" {
		return "niaxtu: authentication failed"
	}
	return "niaxtu: authentication failed: " + e.Message
}

// AuthorizationError maps HTTP 403: the caller lacks the permission or
// role for the attempted operation. The session stays intact.
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string {
	if e.Message == "" {
		return "niaxtu: operation not allowed"
	}
	return "niaxtu: operation not allowed: " + e.Message
}

// NetworkError wraps any failure to complete a remote call. It never
// mutates the session and screens offer a retry.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("niaxtu: %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
