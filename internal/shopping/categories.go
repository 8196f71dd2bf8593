package shopping

import (
	"fmt"
	"slices"
	"strings"
)

// ListCategories returns the distinct item categories, sorted. Categories are
// derived from items on every call.
func (s *Service) ListCategories() ([]string, error) {
	items, err := s.items.List()
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	seen := make(map[string]bool)
	var categories []string
	for _, item := range items {
		if !seen[item.Category] {
			seen[item.Category] = true
			categories = append(categories, item.Category)
		}
	}
	slices.Sort(categories)
	return categories, nil
}

// RenameCategory moves every item in oldName to newName and returns the
// number of items moved. Renaming to a case-variant of oldName is a no-op.
// Renaming onto another existing category fails with *CategoryExistsError.
func (s *Service) RenameCategory(oldName, newName string) (int64, error) {
	var n int64
	err := s.exclusive(func() error {
		newName = strings.TrimSpace(newName)
		if newName == "" {
			return ErrEmptyCategory
		}
		if strings.EqualFold(newName, oldName) {
			return nil
		}

		categories, err := s.ListCategories()
		if err != nil {
			return err
		}
		for _, c := range categories {
			if c != oldName && strings.EqualFold(c, newName) {
				return &CategoryExistsError{Name: newName}
			}
		}

		n, err = s.items.RenameCategory(oldName, newName)
		if err != nil {
			return fmt.Errorf("rename category: %w", err)
		}
		s.logger.Info("category renamed", "from", oldName, "to", newName, "items", n)
		return nil
	})
	return n, err
}

// DeleteCategory deletes every item in the category.
func (s *Service) DeleteCategory(name string) (int64, error) {
	var n int64
	err := s.exclusive(func() error {
		var err error
		n, err = s.items.DeleteByCategory(name)
		if err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		s.logger.Info("category deleted", "category", name, "items", n)
		return nil
	})
	return n, err
}
