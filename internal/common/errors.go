// Package common contains shared helpers and sentinel errors used across the
// Hearth bot's layers. Callers should match these values with errors.Is.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Configuration-missing conditions, surfaced to the acting user as a
	// private notice.
	ErrNotConfigured   = errors.New("community not configured")
	ErrChannelNotFound = errors.New("channel not found")

	// Token failures. Deliberately one error for both the unknown and the
	// already-used case so callers cannot leak which one happened.
	ErrInvalidToken = errors.New("invalid or already used token")

	// Setup wizard.
	ErrSessionExists = errors.New("setup session already running")

	// Vent pipeline.
	ErrRateLimited = errors.New("rate limited")
)
