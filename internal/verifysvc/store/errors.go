package store

import "errors"

var (
	// ErrNotFound means no record matched the given productId.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate means a create collided with the unique productId index.
	ErrDuplicate = errors.New("duplicate productId")
)

// ListFilter narrows an administrative product listing.
type ListFilter struct {
	Search string // case-insensitive substring on productName or productId
	Status string // "active", "invalid" or empty for all
}
