package shopping

import (
	"fmt"
	"io"

	"github.com/dukerupert/goshop/internal/backup"
	"github.com/dukerupert/goshop/internal/csvimport"
	"github.com/dukerupert/goshop/internal/model"
)

// ImportResult counts the outcome of a CSV import.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func (r ImportResult) String() string {
	switch {
	case r.Imported > 0 && r.Skipped > 0:
		return fmt.Sprintf("Successfully imported %s (%s skipped)", plural(r.Imported, "item"), plural(r.Skipped, "duplicate"))
	case r.Imported > 0:
		return fmt.Sprintf("Successfully imported %s", plural(r.Imported, "item"))
	case r.Skipped > 0:
		return fmt.Sprintf("All %d items already exist (duplicates skipped)", r.Skipped)
	default:
		return "No items imported"
	}
}

// ImportCSV adds the rows of a CSV file as new inactive items, skipping rows
// that duplicate an existing item or an earlier row. Nothing is inserted if
// the file fails to parse.
func (s *Service) ImportCSV(r io.Reader) (ImportResult, error) {
	var result ImportResult
	err := s.exclusive(func() error {
		proposals, err := csvimport.Parse(r)
		if err != nil {
			return err
		}

		existing, err := s.items.List()
		if err != nil {
			return fmt.Errorf("list items: %w", err)
		}
		seen := make(map[string]bool, len(existing)+len(proposals))
		for _, item := range existing {
			seen[dedupKey(item.Name, item.Category)] = true
		}

		for _, p := range proposals {
			key := dedupKey(p.Name, p.Category)
			if seen[key] {
				result.Skipped++
				continue
			}
			item := model.Item{Name: p.Name, Category: p.Category, CreatedAt: s.now().UnixMilli()}
			if _, err := s.items.Add(item); err != nil {
				return fmt.Errorf("import %q: %w", p.Name, err)
			}
			seen[key] = true
			result.Imported++
		}
		s.logger.Info("csv imported", "imported", result.Imported, "skipped", result.Skipped)
		return nil
	})
	return result, err
}

// ExportBackup encodes every item into a backup string.
func (s *Service) ExportBackup() (string, error) {
	items, err := s.items.List()
	if err != nil {
		return "", fmt.Errorf("list items: %w", err)
	}
	return backup.Encode(items, s.now())
}

// ImportBackup replaces every item with the contents of a backup string and
// returns how many items were imported. The string is fully validated before
// the store is touched.
func (s *Service) ImportBackup(data string) (int, error) {
	var n int
	err := s.exclusive(func() error {
		items, err := backup.Decode(data, s.now())
		if err != nil {
			return err
		}
		n, err = s.items.ReplaceAll(items)
		if err != nil {
			return fmt.Errorf("replace items: %w", err)
		}
		s.clearCart()
		s.logger.Info("backup imported", "items", n)
		return nil
	})
	return n, err
}

// SealBackup exports a backup string encrypted with passphrase.
func (s *Service) SealBackup(passphrase string) ([]byte, error) {
	data, err := s.ExportBackup()
	if err != nil {
		return nil, err
	}
	return backup.Seal([]byte(data), passphrase)
}

// OpenSealedBackup decrypts a sealed backup and imports it.
func (s *Service) OpenSealedBackup(sealed []byte, passphrase string) (int, error) {
	data, err := backup.Unseal(sealed, passphrase)
	if err != nil {
		return 0, err
	}
	return s.ImportBackup(string(data))
}
