package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dukerupert/goshop/internal/model"
)

// SessionNoteStore persists per-item notes for the running shopping session.
// Notes whose item has been deleted are never returned.
type SessionNoteStore struct {
	db       *sql.DB
	notifier Notifier
	now      func() time.Time
}

func NewSessionNoteStore(db *sql.DB, notifier Notifier) *SessionNoteStore {
	return &SessionNoteStore{db: db, notifier: notifier, now: time.Now}
}

func scanSessionNote(scanner interface{ Scan(...any) error }) (*model.SessionNote, error) {
	var n model.SessionNote
	if err := scanner.Scan(&n.ID, &n.ItemID, &n.Note, &n.CreatedAt); err != nil {
		return nil, err
	}
	return &n, nil
}

const (
	sessionNoteCols = `n.id, n.item_id, n.note, n.created_at`
	visibleNotes    = ` FROM session_notes n JOIN items i ON i.id = n.item_id`
)

func (s *SessionNoteStore) Add(itemID int64, note string) (int64, error) {
	note = strings.TrimSpace(note)
	if itemID <= 0 {
		return 0, ErrMissingItemID
	}
	if note == "" {
		return 0, ErrMissingNote
	}

	result, err := s.db.Exec(
		`INSERT INTO session_notes (item_id, note, created_at) VALUES (?, ?, ?)`,
		itemID, note, millis(s.now()),
	)
	if err != nil {
		return 0, fmt.Errorf("insert session note: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	notify(s.notifier, model.Change{Entity: model.EntitySessionNote, Action: model.ActionCreated, ID: id, Count: 1})
	return id, nil
}

func (s *SessionNoteStore) GetByID(id int64) (*model.SessionNote, error) {
	row := s.db.QueryRow(`SELECT `+sessionNoteCols+visibleNotes+` WHERE n.id = ?`, id)
	n, err := scanSessionNote(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session note: %w", err)
	}
	return n, nil
}

func (s *SessionNoteStore) Update(id int64, note string) (*model.SessionNote, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, ErrMissingNote
	}

	result, err := s.db.Exec(`UPDATE session_notes SET note = ? WHERE id = ?`, note, id)
	if err != nil {
		return nil, fmt.Errorf("update session note: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("update session note %d: %w", id, ErrNotFound)
	}

	notify(s.notifier, model.Change{Entity: model.EntitySessionNote, Action: model.ActionUpdated, ID: id, Count: 1})
	return s.GetByID(id)
}

func (s *SessionNoteStore) Delete(id int64) error {
	result, err := s.db.Exec(`DELETE FROM session_notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session note: %w", err)
	}
	if n, _ := result.RowsAffected(); n > 0 {
		notify(s.notifier, model.Change{Entity: model.EntitySessionNote, Action: model.ActionDeleted, ID: id, Count: n})
	}
	return nil
}

func (s *SessionNoteStore) queryNotes(query string, args ...any) ([]model.SessionNote, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list session notes: %w", err)
	}
	defer rows.Close()

	var notes []model.SessionNote
	for rows.Next() {
		n, err := scanSessionNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session note: %w", err)
		}
		notes = append(notes, *n)
	}
	return notes, rows.Err()
}

// ListVisible returns every note whose item still exists, oldest first.
func (s *SessionNoteStore) ListVisible() ([]model.SessionNote, error) {
	return s.queryNotes(`SELECT ` + sessionNoteCols + visibleNotes + ` ORDER BY n.created_at ASC, n.id ASC`)
}

func (s *SessionNoteStore) ListByItem(itemID int64) ([]model.SessionNote, error) {
	return s.queryNotes(`SELECT `+sessionNoteCols+visibleNotes+` WHERE n.item_id = ? ORDER BY n.created_at ASC, n.id ASC`, itemID)
}

// Clear wipes every session note, orphaned or not.
func (s *SessionNoteStore) Clear() (int64, error) {
	result, err := s.db.Exec(`DELETE FROM session_notes`)
	if err != nil {
		return 0, fmt.Errorf("clear session notes: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	notify(s.notifier, model.Change{Entity: model.EntitySessionNote, Action: model.ActionCleared, Count: count})
	return count, nil
}
