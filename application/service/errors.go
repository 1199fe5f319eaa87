package service

import "errors"

// Stable error kinds surfaced by the services. The API edge maps these
// to HTTP statuses; everything else is an internal error.
var (
	// ErrClientClosed indicates the client has been closed.
	ErrClientClosed = errors.New("playtaste: client is closed")

	// ErrNotFound indicates the requested row does not exist or is not
	// visible to the caller.
	ErrNotFound = errors.New("playtaste: not found")

	// ErrInsufficientSeeds indicates none of the user's seeds resolve
	// to a taste-graph entity.
	ErrInsufficientSeeds = errors.New("playtaste: no seeds resolve to taste-graph entities")

	// ErrUnsupportedLocale indicates a locale outside the supported set.
	ErrUnsupportedLocale = errors.New("playtaste: unsupported locale")

	// ErrUpstream indicates an upstream provider call failed. It wraps
	// the provider error.
	ErrUpstream = errors.New("playtaste: upstream provider failed")

	// ErrSeedLimit indicates the user already holds the maximum number
	// of seeds.
	ErrSeedLimit = errors.New("playtaste: seed limit reached")

	// ErrUnsupportedByCatalog indicates the game has no taste-graph
	// mapping and none could be resolved.
	ErrUnsupportedByCatalog = errors.New("playtaste: game is not known to the taste graph")
)
