package shared

import "errors"

var (
	// ErrCSRFTokenMissing occurs when a mutating request carries no
	// CSRF token.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when the supplied CSRF token does
	// not match the one bound to the browser session.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)
