package shopping

import (
	"errors"
	"fmt"

	"github.com/dukerupert/goshop/internal/backup"
	"github.com/dukerupert/goshop/internal/csvimport"
	"github.com/dukerupert/goshop/internal/store"
)

var (
	ErrBusy          = errors.New("another operation is still in progress")
	ErrEmptyName     = errors.New("item name is required")
	ErrEmptyCategory = errors.New("category name is required")
	ErrEmptyNote     = errors.New("note text is required")
	ErrItemNotFound  = errors.New("item not found")
	ErrItemNotActive = errors.New("item is not selected for the current session")
)

// DuplicateError reports an item whose name and category collide with an
// existing item.
type DuplicateError struct {
	Name     string
	Category string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("item %q already exists in category %q", e.Name, e.Category)
}

type CategoryExistsError struct {
	Name string
}

func (e *CategoryExistsError) Error() string {
	return fmt.Sprintf("category %q already exists", e.Name)
}

var validationErrors = []error{
	ErrEmptyName,
	ErrEmptyCategory,
	ErrEmptyNote,
	ErrItemNotActive,
	store.ErrMissingName,
	store.ErrMissingCategory,
	store.ErrMissingNote,
	backup.ErrEmptyInput,
	backup.ErrUnsupportedFormat,
	backup.ErrCorruptPayload,
	backup.ErrInvalidStructure,
	backup.ErrSealedTooSmall,
	backup.ErrWrongPassphrase,
	csvimport.ErrMissingHeader,
	csvimport.ErrNoValidItems,
}

// IsValidation reports whether err is a user-facing validation failure rather
// than a storage error. Validation failures leave the store untouched.
func IsValidation(err error) bool {
	if err == nil {
		return false
	}
	var dup *DuplicateError
	var exists *CategoryExistsError
	var parse *csvimport.ParseError
	if errors.As(err, &dup) || errors.As(err, &exists) || errors.As(err, &parse) {
		return true
	}
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
