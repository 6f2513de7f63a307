package storage

import (
	"encoding/json"
	"fmt"

	"studio/internal/history"
)

const (
	stackUndo = "undo"
	stackRedo = "redo"
)

// HistoryStore persists a document's undo/redo log in SQLite.
type HistoryStore struct {
	db *DB
}

func NewHistoryStore(db *DB) *HistoryStore {
	return &HistoryStore{db: db}
}

// Save replaces the stored log of a document.
func (s *HistoryStore) Save(documentID string, snap history.Snapshot) error {
	tx, err := s.db.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin history save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM history WHERE document_id = ?`, documentID); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	for _, stack := range []struct {
		name    string
		entries []history.Entry
	}{{stackUndo, snap.Undo}, {stackRedo, snap.Redo}} {
		for seq, e := range stack.entries {
			data, err := json.Marshal(e)
			if err != nil {
				return fmt.Errorf("encode history entry: %w", err)
			}
			if _, err := tx.Exec(
				`INSERT INTO history (document_id, stack, seq, entry_json) VALUES (?, ?, ?, ?)`,
				documentID, stack.name, seq, string(data),
			); err != nil {
				return fmt.Errorf("insert history entry: %w", err)
			}
		}
	}
	return tx.Commit()
}

// Load returns the stored log of a document; an empty snapshot if none.
func (s *HistoryStore) Load(documentID string) (history.Snapshot, error) {
	var snap history.Snapshot
	rows, err := s.db.conn.Query(
		`SELECT stack, entry_json FROM history WHERE document_id = ? ORDER BY stack, seq ASC`, documentID,
	)
	if err != nil {
		return snap, fmt.Errorf("load history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var stack, data string
		if err := rows.Scan(&stack, &data); err != nil {
			return snap, fmt.Errorf("scan history entry: %w", err)
		}
		var e history.Entry
		if err := json.Unmarshal([]byte(data), &e); err != nil {
			return snap, fmt.Errorf("decode history entry: %w", err)
		}
		if stack == stackRedo {
			snap.Redo = append(snap.Redo, e)
		} else {
			snap.Undo = append(snap.Undo, e)
		}
	}
	return snap, rows.Err()
}

// Clear removes all history of a document.
func (s *HistoryStore) Clear(documentID string) error {
	_, err := s.db.conn.Exec(`DELETE FROM history WHERE document_id = ?`, documentID)
	return err
}

// Prune drops the oldest undo entries of every document beyond keep and
// returns how many rows were removed.
func (s *HistoryStore) Prune(keep int) (int64, error) {
	res, err := s.db.conn.Exec(
		`DELETE FROM history WHERE stack = ? AND seq < (
			SELECT MAX(h.seq) - ? + 1 FROM history h
			WHERE h.document_id = history.document_id AND h.stack = ?
		)`,
		stackUndo, keep, stackUndo,
	)
	if err != nil {
		return 0, fmt.Errorf("prune history: %w", err)
	}
	return res.RowsAffected()
}
