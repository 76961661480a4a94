package session

import "errors"

var (
	// ErrInsufficientCoins is returned when a spend exceeds the balance.
	// The balance is never mutated on failure.
	ErrInsufficientCoins = errors.New("not enough coins")

	// ErrNotFound is returned by id lookups that match nothing. The
	// operation mutates nothing; callers may treat it as a soft no-op.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyOwned is returned when buying a prompt twice.
	ErrAlreadyOwned = errors.New("prompt already owned")

	// ErrSeatsFull is returned when the team roster is at capacity.
	ErrSeatsFull = errors.New("team seats full")

	// ErrNotLoggedIn is returned by operations that need a session.
	ErrNotLoggedIn = errors.New("not logged in")
)
