package repositories

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// IsNotFoundError reports whether err represents a missing record, either
// a raw gorm.ErrRecordNotFound or a wrapped "not found" from the cache or
// casdoor layers.
func IsNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return true
	}
	return strings.Contains(err.Error(), "not found")
}

// IsDuplicateError reports whether err stems from a unique constraint
// violation. Postgres reports these as SQLSTATE 23505.
func IsDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "23505") || strings.Contains(msg, "duplicate key")
}
