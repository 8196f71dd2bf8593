// Package shopping holds the rules that sit on top of the record store:
// duplicate detection, category maintenance, shopping sessions and bulk
// import/export.
package shopping

import (
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dukerupert/goshop/internal/model"
	"github.com/dukerupert/goshop/internal/store"
)

type ItemRepository interface {
	Add(item model.Item) (int64, error)
	GetByID(id int64) (*model.Item, error)
	Update(id int64, patch model.ItemPatch) (*model.Item, error)
	Delete(id int64) error
	Clear() (int64, error)
	List() ([]model.Item, error)
	ListActive() ([]model.Item, error)
	RenameCategory(oldName, newName string) (int64, error)
	DeleteByCategory(name string) (int64, error)
	SetActive(ids []int64, active bool) (int64, error)
	ReplaceAll(items []model.Item) (int, error)
}

type NoteRepository interface {
	Add(itemID int64, note string) (int64, error)
	GetByID(id int64) (*model.SessionNote, error)
	Delete(id int64) error
	ListVisible() ([]model.SessionNote, error)
	ListByItem(itemID int64) ([]model.SessionNote, error)
	Clear() (int64, error)
}

type Service struct {
	items    ItemRepository
	notes    NoteRepository
	cart     *Cart
	notifier store.Notifier
	logger   *slog.Logger
	now      func() time.Time

	// busy is set while a mutation is in flight.
	busy atomic.Bool
}

// NewService builds a service over the given repositories. notifier, which
// may be nil, is told about cart changes; store changes reach it through the
// repositories themselves.
func NewService(items ItemRepository, notes NoteRepository, notifier store.Notifier, logger *slog.Logger) *Service {
	return &Service{
		items:    items,
		notes:    notes,
		cart:     NewCart(),
		notifier: notifier,
		logger:   logger.With("component", "shopping"),
		now:      time.Now,
	}
}

// Cart returns the in-memory cart of the current session.
func (s *Service) Cart() *Cart {
	return s.cart
}

// Busy reports whether a mutation is currently in flight.
func (s *Service) Busy() bool {
	return s.busy.Load()
}

// exclusive runs fn unless another mutation holds the busy flag. The flag is
// always released, even when fn fails.
func (s *Service) exclusive(fn func() error) error {
	if !s.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer s.busy.Store(false)
	return fn()
}

func (s *Service) notifyCart(action string, id, count int64) {
	if s.notifier != nil {
		s.notifier.Notify(model.Change{Entity: model.EntityCart, Action: action, ID: id, Count: count})
	}
}

// clearCart empties the cart, notifying only when something was in it.
func (s *Service) clearCart() {
	n := s.cart.Len()
	s.cart.Clear()
	if n > 0 {
		s.notifyCart(model.ActionCleared, 0, int64(n))
	}
}

func dedupKey(name, category string) string {
	return strings.ToLower(strings.TrimSpace(name)) + "\x00" + strings.ToLower(strings.TrimSpace(category))
}

func normalizeCategory(category string) string {
	category = strings.TrimSpace(category)
	if category == "" {
		return model.DefaultCategory
	}
	return category
}
