package careauth

import "errors"

var (
	// ErrInvalidLogin is returned by Login before any network call when the
	// email or password fails local validation.
	ErrInvalidLogin = errors.New("invalid login input")
	// ErrAuthenticationFailed is returned when the sign-in endpoint rejects
	// the credentials or answers without an access token.
	ErrAuthenticationFailed = errors.New("authentication failed")
	// ErrUnauthorized is returned when the identity endpoint rejects the
	// presented access token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrSessionRestoreFailed marks a restoration that held a token pair
	// but could not turn it into an authenticated session. Restore resolves
	// it to an anonymous session; the error surfaces only in the audit
	// trail.
	ErrSessionRestoreFailed = errors.New("session restoration failed")
	// ErrNoRefreshToken is returned when a refresh is required but no
	// refresh token is held.
	ErrNoRefreshToken = errors.New("no refresh token")
	// ErrRefreshFailed is returned when the refresh endpoint rejects the
	// refresh token; the session is forcibly ended.
	ErrRefreshFailed = errors.New("refresh failed")
	// ErrNetwork wraps transport-level failures on any platform endpoint.
	ErrNetwork = errors.New("network error")
	// ErrManagerClosed is returned by operations on a closed Manager.
	ErrManagerClosed = errors.New("manager closed")
	// ErrNotInitialized is returned when a session operation requires a
	// completed Restore and none has run.
	ErrNotInitialized = errors.New("session not initialized")
)
