package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"studio/internal/domain"
)

// DocumentStore implements domain.DocumentStore using SQLite.
type DocumentStore struct {
	db *DB
}

func NewDocumentStore(db *DB) *DocumentStore {
	return &DocumentStore{db: db}
}

func (s *DocumentStore) CreateDocument(d *domain.Document) error {
	now := time.Now()
	d.CreatedAt = now
	d.UpdatedAt = now
	_, err := s.db.conn.Exec(
		`INSERT INTO documents (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		d.ID, d.Name, d.CreatedAt, d.UpdatedAt,
	)
	return err
}

func (s *DocumentStore) GetDocument(id string) (*domain.Document, error) {
	d := &domain.Document{}
	err := s.db.conn.QueryRow(
		`SELECT id, name, created_at, updated_at FROM documents WHERE id = ?`, id,
	).Scan(&d.ID, &d.Name, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get document %s: %w", id, domain.ErrDocumentNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return d, nil
}

func (s *DocumentStore) ListDocuments() ([]domain.Document, error) {
	rows, err := s.db.conn.Query(`SELECT id, name, created_at, updated_at FROM documents ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		var d domain.Document
		if err := rows.Scan(&d.ID, &d.Name, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (s *DocumentStore) UpdateDocument(d *domain.Document) error {
	d.UpdatedAt = time.Now()
	_, err := s.db.conn.Exec(
		`UPDATE documents SET name = ?, updated_at = ? WHERE id = ?`,
		d.Name, d.UpdatedAt, d.ID,
	)
	return err
}

func (s *DocumentStore) DeleteDocument(id string) error {
	_, err := s.db.conn.Exec(`DELETE FROM documents WHERE id = ?`, id)
	return err
}

const pageColumns = `id, document_id, sort_order, canvas_name, canvas_width, canvas_height, canvas_category, elements_json, created_at, updated_at`

func (s *DocumentStore) CreatePage(p *domain.Page) error {
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	elements, err := encodeElements(p.Elements)
	if err != nil {
		return err
	}
	_, err = s.db.conn.Exec(
		`INSERT INTO pages (`+pageColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.DocumentID, p.Order, p.CanvasSize.Name, p.CanvasSize.Width, p.CanvasSize.Height, p.CanvasSize.Category,
		elements, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPage(row scanner) (domain.Page, error) {
	var p domain.Page
	var elements string
	err := row.Scan(&p.ID, &p.DocumentID, &p.Order, &p.CanvasSize.Name, &p.CanvasSize.Width, &p.CanvasSize.Height,
		&p.CanvasSize.Category, &elements, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return p, err
	}
	if err := json.Unmarshal([]byte(elements), &p.Elements); err != nil {
		return p, fmt.Errorf("decode elements of page %s: %w", p.ID, err)
	}
	return p, nil
}

func (s *DocumentStore) GetPage(id string) (*domain.Page, error) {
	p, err := scanPage(s.db.conn.QueryRow(`SELECT `+pageColumns+` FROM pages WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get page %s: %w", id, domain.ErrPageNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get page: %w", err)
	}
	return &p, nil
}

func (s *DocumentStore) ListPages(documentID string) ([]domain.Page, error) {
	rows, err := s.db.conn.Query(
		`SELECT `+pageColumns+` FROM pages WHERE document_id = ? ORDER BY sort_order ASC`,
		documentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pages []domain.Page
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

func (s *DocumentStore) UpdatePage(p *domain.Page) error {
	p.UpdatedAt = time.Now()
	elements, err := encodeElements(p.Elements)
	if err != nil {
		return err
	}
	res, err := s.db.conn.Exec(
		`UPDATE pages SET sort_order = ?, canvas_name = ?, canvas_width = ?, canvas_height = ?, canvas_category = ?, elements_json = ?, updated_at = ? WHERE id = ?`,
		p.Order, p.CanvasSize.Name, p.CanvasSize.Width, p.CanvasSize.Height, p.CanvasSize.Category, elements, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update page %s: %w", p.ID, domain.ErrPageNotFound)
	}
	return nil
}

func (s *DocumentStore) DeletePage(id string) error {
	_, err := s.db.conn.Exec(`DELETE FROM pages WHERE id = ?`, id)
	return err
}

func (s *DocumentStore) DeletePagesByDocument(documentID string) error {
	_, err := s.db.conn.Exec(`DELETE FROM pages WHERE document_id = ?`, documentID)
	return err
}

// Fingerprint summarizes a document's pages so watchers can detect outside
// edits cheaply.
func (s *DocumentStore) Fingerprint(documentID string) (string, error) {
	var count int
	var updated string
	err := s.db.conn.QueryRow(
		`SELECT COUNT(*), COALESCE(MAX(updated_at), '') FROM pages WHERE document_id = ?`, documentID,
	).Scan(&count, &updated)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d:%s", count, updated), nil
}

// encodeElements drops the new-element marker; it only lives in the
// editor and its history.
func encodeElements(elements []domain.Element) (string, error) {
	if elements == nil {
		return "[]", nil
	}
	stored := make([]domain.Element, len(elements))
	for i, el := range elements {
		el.IsNew = false
		stored[i] = el
	}
	data, err := json.Marshal(stored)
	if err != nil {
		return "", fmt.Errorf("encode elements: %w", err)
	}
	return string(data), nil
}
