package errors

import (
	"errors"
	"fmt"
)

// Common error types for the LLM backend
var (
	// Credential errors (token decode/verify)
	ErrMalformedToken = errors.New("malformed token")
	ErrBadSignature   = errors.New("bad token signature")
	ErrTokenExpired   = errors.New("token expired")

	// Authorization errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRevokedOrDeleted   = errors.New("user revoked or deleted")
	ErrStaleCredential    = errors.New("credential no longer matches user record")
	ErrForbidden          = errors.New("forbidden")

	// Tenant errors
	ErrTenantNotFound  = errors.New("tenant not found")
	ErrDuplicateTenant = errors.New("tenant already exists")

	// User errors
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already registered")

	// Provider errors
	ErrProviderUnavailable = errors.New("generation provider unavailable")
	ErrProviderTimeout     = errors.New("generation provider timeout")
	ErrGenerationFailed    = errors.New("generation failed")
	ErrStreamInterrupted   = errors.New("stream interrupted")

	// Persistence errors
	ErrNotFound      = errors.New("not found")
	ErrStorageFailed = errors.New("storage failed")

	// General errors
	ErrInternal    = errors.New("internal error")
	ErrUnsupported = errors.New("unsupported operation")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
