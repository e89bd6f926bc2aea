// Package services defines the business logic for the gift registry: users,
// events, categories, giftlists, gifts, wishlists and the seed pass. This
// file centralizes service-level error values so that they can be returned
// consistently by service methods and checked by callers.
//
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import (
	"errors"
	"fmt"

	"github.com/tbourn/go-gift-registry/internal/repo"
)

// Lookup errors.
var (
	// ErrUserNotFound indicates that the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrEventNotFound indicates that the requested event does not exist.
	ErrEventNotFound = errors.New("event not found")

	// ErrCategoryNotFound indicates that the requested category does not exist.
	ErrCategoryNotFound = errors.New("category not found")

	// ErrGiftlistNotFound indicates that the requested giftlist does not exist.
	ErrGiftlistNotFound = errors.New("giftlist not found")

	// ErrGiftNotFound indicates that the requested gift does not exist.
	ErrGiftNotFound = errors.New("gift not found")

	// ErrWishlistNotFound indicates that the requested wishlist does not exist.
	ErrWishlistNotFound = errors.New("wishlist not found")
)

// Write errors.
var (
	// ErrConflict is returned when a write collides with a unique key, such
	// as a second category with the same folded name.
	ErrConflict = errors.New("resource already exists")

	// ErrInvalidReference is returned when a record points at a related
	// record that does not exist.
	ErrInvalidReference = errors.New("referenced resource does not exist")

	// ErrEmptyGiftIDs is returned when a wishlist insertion names no gifts.
	ErrEmptyGiftIDs = errors.New("at least one gift id is required")

	// ErrEventMismatch is returned when gifts are added to a wishlist under
	// an event the wishlist does not belong to.
	ErrEventMismatch = errors.New("event does not match the wishlist")
)

// IsNotFound reports whether err is one of the lookup errors above.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrEventNotFound) ||
		errors.Is(err, ErrCategoryNotFound) ||
		errors.Is(err, ErrGiftlistNotFound) ||
		errors.Is(err, ErrGiftNotFound) ||
		errors.Is(err, ErrWishlistNotFound)
}

// translate maps repository errors onto service errors. notFound is the
// lookup error of the entity being addressed.
func translate(err, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repo.ErrNotFound):
		return notFound
	case errors.Is(err, repo.ErrDuplicate):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	case errors.Is(err, repo.ErrInvalidReference):
		return fmt.Errorf("%w: %v", ErrInvalidReference, err)
	}
	return err
}
