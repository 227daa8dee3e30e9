package domain

import "errors"

// Sentinel errors shared by the transport layer and the client.
// The client turns these into its public error types in a single place.
var (
	ErrUnexpectedStatus = errors.New("unexpected status")
	ErrTransport        = errors.New("transport failure")
	ErrSecondary        = errors.New("secondary provider failure")
	ErrRateLimited      = errors.New("rate limit wait aborted")
)
