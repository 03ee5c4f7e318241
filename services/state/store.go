package state

import "errors"

var (
	// ErrNotFound is returned by Load when nothing has been saved yet
	ErrNotFound = errors.New("state not found")

	// ErrCorrupt is returned by Load when the saved state cannot be decoded
	ErrCorrupt = errors.New("state corrupt")
)

// Store persists the number of promo codes seen on the previous check.
//
// Load returns ErrNotFound when no state exists, which callers treat as a
// first run. Save fully replaces any previous value.
type Store interface {
	Load() (int, error)
	Save(count int) error
}
