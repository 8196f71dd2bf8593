package shopping

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/dukerupert/goshop/internal/grocery"
	"github.com/dukerupert/goshop/internal/model"
)

// IsDuplicate reports whether an item other than excludeID already has the
// same name and category, compared trimmed and case-insensitively. Pass 0
// for excludeID when checking a new item.
func (s *Service) IsDuplicate(name, category string, excludeID int64) (bool, error) {
	items, err := s.items.List()
	if err != nil {
		return false, fmt.Errorf("check duplicate: %w", err)
	}
	return findDuplicate(items, name, category, excludeID) != nil, nil
}

func findDuplicate(items []model.Item, name, category string, excludeID int64) *model.Item {
	key := dedupKey(name, category)
	for i := range items {
		if items[i].ID != excludeID && dedupKey(items[i].Name, items[i].Category) == key {
			return &items[i]
		}
	}
	return nil
}

// AddItem creates an inactive item. A blank category becomes
// model.DefaultCategory.
func (s *Service) AddItem(name, category string) (*model.Item, error) {
	var created *model.Item
	err := s.exclusive(func() error {
		name = strings.TrimSpace(name)
		if name == "" {
			return ErrEmptyName
		}
		category = normalizeCategory(category)

		dup, err := s.IsDuplicate(name, category, 0)
		if err != nil {
			return err
		}
		if dup {
			return &DuplicateError{Name: name, Category: category}
		}

		item := model.Item{Name: name, Category: category, CreatedAt: s.now().UnixMilli()}
		id, err := s.items.Add(item)
		if err != nil {
			return fmt.Errorf("add item: %w", err)
		}
		item.ID = id
		created = &item
		return nil
	})
	return created, err
}

// SuggestCategory proposes a category for a new item name, falling back to
// model.DefaultCategory.
func (s *Service) SuggestCategory(name string) string {
	if cat := grocery.Suggest(name); cat != "" {
		return cat
	}
	return model.DefaultCategory
}

// UpdateItem renames an item and/or moves it to another category.
func (s *Service) UpdateItem(id int64, name, category string) (*model.Item, error) {
	var updated *model.Item
	err := s.exclusive(func() error {
		name = strings.TrimSpace(name)
		category = strings.TrimSpace(category)
		if name == "" {
			return ErrEmptyName
		}
		if category == "" {
			return ErrEmptyCategory
		}

		dup, err := s.IsDuplicate(name, category, id)
		if err != nil {
			return err
		}
		if dup {
			return &DuplicateError{Name: name, Category: category}
		}

		updated, err = s.items.Update(id, model.ItemPatch{Name: &name, Category: &category})
		if err != nil {
			return fmt.Errorf("update item: %w", err)
		}
		return nil
	})
	return updated, err
}

// ToggleActive flips whether an item is selected for the shopping session.
func (s *Service) ToggleActive(id int64) (*model.Item, error) {
	var updated *model.Item
	err := s.exclusive(func() error {
		item, err := s.items.GetByID(id)
		if err != nil {
			return fmt.Errorf("get item: %w", err)
		}
		if item == nil {
			return ErrItemNotFound
		}
		active := !item.IsActive
		updated, err = s.items.Update(id, model.ItemPatch{IsActive: &active})
		if err != nil {
			return fmt.Errorf("toggle item: %w", err)
		}
		if !active {
			s.cart.Remove(id)
		}
		return nil
	})
	return updated, err
}

// DeleteItem removes an item. Deleting a missing item succeeds.
func (s *Service) DeleteItem(id int64) error {
	return s.exclusive(func() error {
		if err := s.items.Delete(id); err != nil {
			return fmt.Errorf("delete item: %w", err)
		}
		s.cart.Remove(id)
		return nil
	})
}

// DeleteAll removes every item and returns how many were removed.
func (s *Service) DeleteAll() (int64, error) {
	var n int64
	err := s.exclusive(func() error {
		var err error
		n, err = s.items.Clear()
		if err != nil {
			return fmt.Errorf("delete all items: %w", err)
		}
		s.clearCart()
		return nil
	})
	return n, err
}

// SelectAll activates every inactive item matching query and returns how many
// changed. An empty query matches everything.
func (s *Service) SelectAll(query string) (int64, error) {
	return s.setActiveMatching(query, true)
}

// ClearAll deactivates every active item matching query.
func (s *Service) ClearAll(query string) (int64, error) {
	return s.setActiveMatching(query, false)
}

func (s *Service) setActiveMatching(query string, active bool) (int64, error) {
	var n int64
	err := s.exclusive(func() error {
		items, err := s.Search(query)
		if err != nil {
			return err
		}
		var ids []int64
		for _, item := range items {
			if item.IsActive != active {
				ids = append(ids, item.ID)
			}
		}
		if len(ids) == 0 {
			return nil
		}
		n, err = s.items.SetActive(ids, active)
		if err != nil {
			return fmt.Errorf("set active: %w", err)
		}
		if !active {
			for _, id := range ids {
				s.cart.Remove(id)
			}
		}
		return nil
	})
	return n, err
}

// Search returns items whose name or category contains query,
// case-insensitively.
func (s *Service) Search(query string) ([]model.Item, error) {
	items, err := s.items.List()
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return items, nil
	}
	matched := items[:0]
	for _, item := range items {
		if Matches(item, query) {
			matched = append(matched, item)
		}
	}
	return matched, nil
}

// Matches reports whether item matches a search query.
func Matches(item model.Item, query string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(item.Name), query) ||
		strings.Contains(strings.ToLower(item.Category), query)
}

// GroupByCategory groups items by category, sorted by category name. Items
// keep their relative order within a group.
func GroupByCategory(items []model.Item) []model.CategoryGroup {
	index := make(map[string]int)
	var groups []model.CategoryGroup
	for _, item := range items {
		category := item.Category
		if category == "" {
			category = model.DefaultCategory
		}
		i, ok := index[category]
		if !ok {
			i = len(groups)
			index[category] = i
			groups = append(groups, model.CategoryGroup{Name: category})
		}
		groups[i].Items = append(groups[i].Items, item)
	}
	slices.SortStableFunc(groups, func(a, b model.CategoryGroup) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return groups
}
