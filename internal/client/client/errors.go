package client

import "errors"

var (
	// ErrInvalidCredentials: the backend rejected a login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrRegistrationFailed: the backend rejected a registration (e.g. duplicate email).
	ErrRegistrationFailed = errors.New("registration failed")
	// ErrTokenInvalid: the backend does not recognise the token or it has expired.
	ErrTokenInvalid = errors.New("token invalid")
	// ErrNetwork: the backend could not be reached, timed out or answered garbage.
	ErrNetwork = errors.New("network error")
)
