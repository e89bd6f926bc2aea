package repo

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	// It aliases gorm.ErrRecordNotFound for convenience and consistency
	// across the service layer and handlers.
	ErrNotFound = gorm.ErrRecordNotFound

	// ErrDuplicate indicates a unique constraint rejected the write.
	ErrDuplicate = errors.New("duplicate")

	// ErrInvalidReference indicates a foreign key points at a missing row.
	ErrInvalidReference = errors.New("invalid reference")
)

// classify maps driver-specific constraint failures onto ErrDuplicate and
// ErrInvalidReference. Other errors are returned unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return fmt.Errorf("%w: %v", ErrInvalidReference, err)
	}
	// glebarez/sqlite and pgx often return plain-text errors.
	low := strings.ToLower(err.Error())
	switch {
	case strings.Contains(low, "unique constraint failed"),
		strings.Contains(low, "constraint failed: unique"),
		strings.Contains(low, "duplicate key value violates unique constraint"),
		strings.Contains(low, "sqlstate 23505"):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	case strings.Contains(low, "foreign key constraint failed"),
		strings.Contains(low, "violates foreign key constraint"),
		strings.Contains(low, "sqlstate 23503"):
		return fmt.Errorf("%w: %v", ErrInvalidReference, err)
	}
	return err
}
