// Package v1 provides the business logic for API version 1: account
// registration/login and the draft/publish session lifecycle.
//
// Error Handling:
// This package defines sentinel errors for the failure modes handlers map to
// HTTP status codes. They should be wrapped with context using
// fmt.Errorf("%w") when returned.
//
// Error Checking (in handlers):
//
//	switch {
//	case errors.Is(err, logicv1.ErrSessionNotFound):
//	    c.JSON(http.StatusNotFound, gin.H{"detail": "Session not found."})
//	case errors.Is(err, logicv1.ErrSessionIDRequired):
//	    c.JSON(http.StatusBadRequest, gin.H{"detail": "Session id required."})
//	...
//	}
//
// Validation failures are not sentinels: they carry per-field messages in a
// *ValidationError, extracted with errors.As.
package v1

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrInvalidCredentials indicates the provided credentials are incorrect.
	// HTTP Status: 401 Unauthorized
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserNotFound indicates the user does not exist.
	// HTTP Status: 401 Unauthorized (don't reveal user existence)
	ErrUserNotFound = errors.New("user not found")

	// ErrUserInactive indicates the account exists but has been deactivated.
	// HTTP Status: 401 Unauthorized
	ErrUserInactive = errors.New("user inactive")

	// ErrUserExists indicates the email is already registered.
	// HTTP Status: 409 Conflict
	ErrUserExists = errors.New("user already exists")

	// ErrSessionNotFound indicates the session is absent or owned by another
	// user; the two cases are deliberately indistinguishable.
	// HTTP Status: 404 Not Found
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionIDRequired indicates a publish request without an id.
	// HTTP Status: 400 Bad Request
	ErrSessionIDRequired = errors.New("session id required")
)

// ValidationError reports field-level validation failures. A request that
// produces one performs no persisted mutation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("validation failed")
	for _, k := range keys {
		fmt.Fprintf(&b, "; %s: %s", k, e.Fields[k])
	}
	return b.String()
}
