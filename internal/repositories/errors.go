package repositories

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is the storage-agnostic not-found error. Postgres
// implementations translate gorm.ErrRecordNotFound; other backends
// (Casdoor) return it directly.
var ErrNotFound = errors.New("record not found")

// IsNotFoundError reports whether err represents a missing record.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}
