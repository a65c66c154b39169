package authkit

import "errors"

var (
	// ErrInvalidCredentials is returned for any login failure: unknown
	// email, missing password hash, or password mismatch. The three cases
	// are deliberately indistinguishable to callers.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized is returned when a token is missing, malformed,
	// expired, or its subject no longer exists.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrAccessDenied is returned when a refresh token is structurally
	// valid but does not match the currently active session hash.
	ErrAccessDenied = errors.New("access denied")
	// ErrConfiguration is an exported constant or variable used by the authentication service.
	ErrConfiguration = errors.New("invalid authentication configuration")
	// ErrUserNotFound is an exported constant or variable used by the authentication service.
	ErrUserNotFound = errors.New("user not found")
	// ErrStoreUnavailable is an exported constant or variable used by the authentication service.
	ErrStoreUnavailable = errors.New("credential store unavailable")
	// ErrServiceNotReady is an exported constant or variable used by the authentication service.
	ErrServiceNotReady = errors.New("service not initialized")
)
