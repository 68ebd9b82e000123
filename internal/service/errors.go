package service

import "errors"

var (
	// ErrNoForwardTarget means no sync channel is registered and no default
	// channel is configured.
	ErrNoForwardTarget = errors.New("no forward target")

	// ErrForwardFailed means every attempted Discord forward failed.
	ErrForwardFailed = errors.New("failed to forward message to Discord")
)
