package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dukerupert/goshop/internal/model"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrMissingName     = errors.New("item name is required")
	ErrMissingCategory = errors.New("item category cannot be empty")
	ErrMissingItemID   = errors.New("session note requires an item id")
	ErrMissingNote     = errors.New("session note text is required")
)

// Notifier is told about every committed mutation, before the mutating call
// returns.
type Notifier interface {
	Notify(change model.Change)
}

// NotifierFunc adapts a plain function to Notifier.
type NotifierFunc func(model.Change)

func (f NotifierFunc) Notify(change model.Change) { f(change) }

func notify(n Notifier, change model.Change) {
	if n != nil {
		n.Notify(change)
	}
}

func millis(t time.Time) int64 {
	return t.UnixMilli()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// normalizeCategory trims a category and substitutes the default for blanks.
func normalizeCategory(category string) string {
	category = strings.TrimSpace(category)
	if category == "" {
		return model.DefaultCategory
	}
	return category
}

func withTx(db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
