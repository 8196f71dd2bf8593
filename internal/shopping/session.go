package shopping

import (
	"fmt"
	"strings"

	"github.com/dukerupert/goshop/internal/backup"
	"github.com/dukerupert/goshop/internal/model"
)

const (
	shareHeader    = "🛒 Shopping List"
	shareCollected = "All items collected!"
)

// ActiveItems returns the items selected for the current session.
func (s *Service) ActiveItems() ([]model.Item, error) {
	items, err := s.items.ListActive()
	if err != nil {
		return nil, fmt.Errorf("list active items: %w", err)
	}
	return items, nil
}

// AddSessionNote annotates an active item for the current session.
func (s *Service) AddSessionNote(itemID int64, note string) (*model.SessionNote, error) {
	var created *model.SessionNote
	err := s.exclusive(func() error {
		note = strings.TrimSpace(note)
		if note == "" {
			return ErrEmptyNote
		}
		item, err := s.items.GetByID(itemID)
		if err != nil {
			return fmt.Errorf("get item: %w", err)
		}
		if item == nil {
			return ErrItemNotFound
		}
		if !item.IsActive {
			return ErrItemNotActive
		}

		id, err := s.notes.Add(itemID, note)
		if err != nil {
			return fmt.Errorf("add session note: %w", err)
		}
		created, err = s.notes.GetByID(id)
		if err != nil {
			return fmt.Errorf("get session note: %w", err)
		}
		if created == nil {
			return fmt.Errorf("session note %d vanished after insert", id)
		}
		return nil
	})
	return created, err
}

// SessionNotes returns every note whose item still exists.
func (s *Service) SessionNotes() ([]model.SessionNote, error) {
	notes, err := s.notes.ListVisible()
	if err != nil {
		return nil, fmt.Errorf("list session notes: %w", err)
	}
	return notes, nil
}

func (s *Service) NotesForItem(itemID int64) ([]model.SessionNote, error) {
	notes, err := s.notes.ListByItem(itemID)
	if err != nil {
		return nil, fmt.Errorf("list notes for item: %w", err)
	}
	return notes, nil
}

func (s *Service) DeleteSessionNote(id int64) error {
	return s.exclusive(func() error {
		if err := s.notes.Delete(id); err != nil {
			return fmt.Errorf("delete session note: %w", err)
		}
		return nil
	})
}

// SessionSummary describes what CompleteSession changed.
type SessionSummary struct {
	Deactivated  int64 `json:"deactivated"`
	NotesCleared int64 `json:"notes_cleared"`
}

// CompleteSession deselects every active item, wipes all session notes
// (including notes on items outside the session) and empties the cart.
func (s *Service) CompleteSession() (SessionSummary, error) {
	var summary SessionSummary
	err := s.exclusive(func() error {
		active, err := s.items.ListActive()
		if err != nil {
			return fmt.Errorf("list active items: %w", err)
		}
		ids := make([]int64, len(active))
		for i, item := range active {
			ids[i] = item.ID
		}
		if len(ids) > 0 {
			summary.Deactivated, err = s.items.SetActive(ids, false)
			if err != nil {
				return fmt.Errorf("deactivate items: %w", err)
			}
		}

		summary.NotesCleared, err = s.notes.Clear()
		if err != nil {
			return fmt.Errorf("clear session notes: %w", err)
		}
		s.clearCart()
		s.logger.Info("session completed", "deactivated", summary.Deactivated, "notes_cleared", summary.NotesCleared)
		return nil
	})
	return summary, err
}

// Progress counts cart items against the session's active items.
type Progress struct {
	InCart     int                `json:"in_cart"`
	Total      int                `json:"total"`
	Categories []CategoryProgress `json:"categories"`
}

type CategoryProgress struct {
	Category string `json:"category"`
	InCart   int    `json:"in_cart"`
	Total    int    `json:"total"`
}

func (p Progress) String() string {
	return fmt.Sprintf("%d / %d in cart", p.InCart, p.Total)
}

// SessionProgress computes cart progress overall and per category.
func SessionProgress(items []model.Item, inCart func(id int64) bool) Progress {
	var p Progress
	for _, group := range GroupByCategory(items) {
		cp := CategoryProgress{Category: group.Name, Total: len(group.Items)}
		for _, item := range group.Items {
			if inCart(item.ID) {
				cp.InCart++
			}
		}
		p.InCart += cp.InCart
		p.Total += cp.Total
		p.Categories = append(p.Categories, cp)
	}
	return p
}

// ShareText renders the items not yet in the cart as a messaging-friendly
// list grouped by category. Categories with nothing left are omitted.
func ShareText(items []model.Item, inCart func(id int64) bool) string {
	var sections []string
	for _, group := range GroupByCategory(items) {
		var lines []string
		for _, item := range group.Items {
			if !inCart(item.ID) {
				lines = append(lines, "• "+item.Name)
			}
		}
		if len(lines) > 0 {
			sections = append(sections, "*"+group.Name+"*\n"+strings.Join(lines, "\n"))
		}
	}

	body := strings.Join(sections, "\n\n")
	if body == "" {
		body = shareCollected
	}
	return shareHeader + "\n\n" + body
}

// Progress reports cart progress for the current session.
func (s *Service) Progress() (Progress, error) {
	items, err := s.ActiveItems()
	if err != nil {
		return Progress{}, err
	}
	return SessionProgress(items, s.cart.Has), nil
}

// ShareSession renders the current session's share text.
func (s *Service) ShareSession() (string, error) {
	items, err := s.ActiveItems()
	if err != nil {
		return "", err
	}
	return ShareText(items, s.cart.Has), nil
}

// ExportSessionList encodes the current session's items and cart state.
func (s *Service) ExportSessionList() (string, error) {
	items, err := s.ActiveItems()
	if err != nil {
		return "", err
	}
	return backup.EncodeSessionList(items, s.cart.Has, s.now())
}

// ToggleCart moves an active item into or out of the cart and reports whether
// it is now in the cart.
func (s *Service) ToggleCart(itemID int64) (bool, error) {
	item, err := s.items.GetByID(itemID)
	if err != nil {
		return false, fmt.Errorf("get item: %w", err)
	}
	if item == nil {
		return false, ErrItemNotFound
	}
	if !item.IsActive {
		return false, ErrItemNotActive
	}
	inCart := s.cart.Toggle(itemID)
	s.notifyCart(model.ActionUpdated, itemID, 1)
	return inCart, nil
}

// ClearCart takes every item out of the cart.
func (s *Service) ClearCart() {
	s.clearCart()
}
