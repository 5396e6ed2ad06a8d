package service

import "errors"

var (
	// ErrValidation marks a malformed request rejected before any side effect.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidState is returned when a campaign is started from a state
	// that is not startable, or reset while not stuck in sending.
	ErrInvalidState = errors.New("campaign is not in a startable state")

	// ErrNoConnectedInstance is returned when no WhatsApp instance is
	// connected to carry the send.
	ErrNoConnectedInstance = errors.New("no connected whatsapp instance available")

	// ErrInvalidCredentials is returned on a failed login.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
