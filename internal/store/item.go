package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dukerupert/goshop/internal/model"
)

type ItemStore struct {
	db       *sql.DB
	notifier Notifier
	now      func() time.Time
}

func NewItemStore(db *sql.DB, notifier Notifier) *ItemStore {
	return &ItemStore{db: db, notifier: notifier, now: time.Now}
}

func scanItem(scanner interface{ Scan(...any) error }) (*model.Item, error) {
	var item model.Item
	var active int
	err := scanner.Scan(&item.ID, &item.Name, &item.Category, &active, &item.CreatedAt)
	if err != nil {
		return nil, err
	}
	item.IsActive = active != 0
	return &item, nil
}

const itemCols = `id, name, category, is_active, created_at`

// prepareNew validates an item for insertion and fills in creation defaults.
func (s *ItemStore) prepareNew(item model.Item) (model.Item, error) {
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return item, ErrMissingName
	}
	item.Category = normalizeCategory(item.Category)
	if item.CreatedAt == 0 {
		item.CreatedAt = millis(s.now())
	}
	return item, nil
}

// Add inserts an item and returns its new id. A blank category is stored as
// model.DefaultCategory.
func (s *ItemStore) Add(item model.Item) (int64, error) {
	item, err := s.prepareNew(item)
	if err != nil {
		return 0, err
	}

	result, err := s.db.Exec(
		`INSERT INTO items (name, category, is_active, created_at) VALUES (?, ?, ?, ?)`,
		item.Name, item.Category, boolToInt(item.IsActive), item.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	notify(s.notifier, model.Change{Entity: model.EntityItem, Action: model.ActionCreated, ID: id, Count: 1})
	return id, nil
}

func (s *ItemStore) GetByID(id int64) (*model.Item, error) {
	row := s.db.QueryRow(`SELECT `+itemCols+` FROM items WHERE id = ?`, id)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// Update merges patch into the item with the given id. Updating an id that
// does not exist returns ErrNotFound.
func (s *ItemStore) Update(id int64, patch model.ItemPatch) (*model.Item, error) {
	existing, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("update item %d: %w", id, ErrNotFound)
	}

	updated := *existing
	if patch.Name != nil {
		updated.Name = strings.TrimSpace(*patch.Name)
		if updated.Name == "" {
			return nil, ErrMissingName
		}
	}
	if patch.Category != nil {
		updated.Category = strings.TrimSpace(*patch.Category)
		if updated.Category == "" {
			return nil, ErrMissingCategory
		}
	}
	if patch.IsActive != nil {
		updated.IsActive = *patch.IsActive
	}

	result, err := s.db.Exec(
		`UPDATE items SET name = ?, category = ?, is_active = ? WHERE id = ?`,
		updated.Name, updated.Category, boolToInt(updated.IsActive), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("update item %d: %w", id, ErrNotFound)
	}

	notify(s.notifier, model.Change{Entity: model.EntityItem, Action: model.ActionUpdated, ID: id, Count: 1})
	return &updated, nil
}

// Delete removes an item. Deleting a missing id is not an error.
func (s *ItemStore) Delete(id int64) error {
	result, err := s.db.Exec(`DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if n, _ := result.RowsAffected(); n > 0 {
		notify(s.notifier, model.Change{Entity: model.EntityItem, Action: model.ActionDeleted, ID: id, Count: n})
	}
	return nil
}

// Clear deletes every item and returns how many were removed.
func (s *ItemStore) Clear() (int64, error) {
	result, err := s.db.Exec(`DELETE FROM items`)
	if err != nil {
		return 0, fmt.Errorf("clear items: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	notify(s.notifier, model.Change{Entity: model.EntityItem, Action: model.ActionCleared, Count: count})
	return count, nil
}

func (s *ItemStore) queryItems(query string, args ...any) ([]model.Item, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// List returns every item in insertion order.
func (s *ItemStore) List() ([]model.Item, error) {
	return s.queryItems(`SELECT ` + itemCols + ` FROM items ORDER BY id ASC`)
}

// Filter returns the items for which keep reports true.
func (s *ItemStore) Filter(keep func(model.Item) bool) ([]model.Item, error) {
	all, err := s.List()
	if err != nil {
		return nil, err
	}
	var items []model.Item
	for _, item := range all {
		if keep(item) {
			items = append(items, item)
		}
	}
	return items, nil
}

func (s *ItemStore) ListActive() ([]model.Item, error) {
	return s.queryItems(`SELECT `+itemCols+` FROM items WHERE is_active = ? ORDER BY id ASC`, 1)
}

// ListByCategory returns items whose category equals name exactly.
func (s *ItemStore) ListByCategory(name string) ([]model.Item, error) {
	return s.queryItems(`SELECT `+itemCols+` FROM items WHERE category = ? ORDER BY id ASC`, name)
}

// RenameCategory moves every item in oldName to newName with one statement,
// so readers see either all items moved or none.
func (s *ItemStore) RenameCategory(oldName, newName string) (int64, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return 0, ErrMissingCategory
	}

	result, err := s.db.Exec(`UPDATE items SET category = ? WHERE category = ?`, newName, oldName)
	if err != nil {
		return 0, fmt.Errorf("rename category: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	if count > 0 {
		notify(s.notifier, model.Change{Entity: model.EntityItem, Action: model.ActionUpdated, Count: count})
	}
	return count, nil
}

// DeleteByCategory deletes every item carrying the category.
func (s *ItemStore) DeleteByCategory(name string) (int64, error) {
	result, err := s.db.Exec(`DELETE FROM items WHERE category = ?`, name)
	if err != nil {
		return 0, fmt.Errorf("delete category: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	if count > 0 {
		notify(s.notifier, model.Change{Entity: model.EntityItem, Action: model.ActionDeleted, Count: count})
	}
	return count, nil
}

// SetActive sets is_active on every listed item inside one transaction.
// Ids that no longer exist are skipped.
func (s *ItemStore) SetActive(ids []int64, active bool) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var count int64
	err := withTx(s.db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`UPDATE items SET is_active = ? WHERE id = ?`)
		if err != nil {
			return fmt.Errorf("prepare set active: %w", err)
		}
		defer stmt.Close()

		for _, id := range ids {
			result, err := stmt.Exec(boolToInt(active), id)
			if err != nil {
				return fmt.Errorf("set active %d: %w", id, err)
			}
			n, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("rows affected: %w", err)
			}
			count += n
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if count > 0 {
		notify(s.notifier, model.Change{Entity: model.EntityItem, Action: model.ActionUpdated, Count: count})
	}
	return count, nil
}

// ReplaceAll deletes every item and inserts items in their place, inside one
// transaction. Items are validated before anything is deleted.
func (s *ItemStore) ReplaceAll(items []model.Item) (int, error) {
	prepared := make([]model.Item, 0, len(items))
	for i, item := range items {
		p, err := s.prepareNew(item)
		if err != nil {
			return 0, fmt.Errorf("item %d: %w", i, err)
		}
		prepared = append(prepared, p)
	}

	err := withTx(s.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM items`); err != nil {
			return fmt.Errorf("clear items: %w", err)
		}

		stmt, err := tx.Prepare(`INSERT INTO items (name, category, is_active, created_at) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, item := range prepared {
			if _, err := stmt.Exec(item.Name, item.Category, boolToInt(item.IsActive), item.CreatedAt); err != nil {
				return fmt.Errorf("insert item %q: %w", item.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	notify(s.notifier, model.Change{Entity: model.EntityItem, Action: model.ActionReplaced, Count: int64(len(prepared))})
	return len(prepared), nil
}
