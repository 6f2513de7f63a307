package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"studio/internal/domain"
	"studio/internal/editor"
	"studio/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// Document Service: documents, pages and editor sessions
// ─────────────────────────────────────────────────────────────

// DefaultSaveDelay is how long autosave waits after the last change.
const DefaultSaveDelay = 3 * time.Second

// DocumentService manages documents and opens editing sessions on them.
type DocumentService struct {
	ctx       context.Context
	store     *storage.DocumentStore
	histories *storage.HistoryStore
	emitter   EventEmitter
	saveDelay time.Duration
	saves     saveTracker
}

// NewDocumentService creates a DocumentService. A zero saveDelay uses
// DefaultSaveDelay.
func NewDocumentService(
	ctx context.Context,
	db *storage.DB,
	emitter EventEmitter,
	saveDelay time.Duration,
) *DocumentService {
	if saveDelay <= 0 {
		saveDelay = DefaultSaveDelay
	}
	return &DocumentService{
		ctx:       ctx,
		store:     storage.NewDocumentStore(db),
		histories: storage.NewHistoryStore(db),
		emitter:   emitter,
		saveDelay: saveDelay,
	}
}

// ── Documents ──────────────────────────────────────────────

func (s *DocumentService) ListDocuments() ([]domain.Document, error) {
	docs, err := s.store.ListDocuments()
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	if docs == nil {
		docs = []domain.Document{}
	}
	return docs, nil
}

func (s *DocumentService) GetDocument(id string) (*domain.Document, error) {
	return s.store.GetDocument(id)
}

// CreateDocument creates a document with one empty page of the given size.
// A zero size uses the default preset.
func (s *DocumentService) CreateDocument(name string, size domain.CanvasSize) (*domain.Document, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Untitled"
	}
	if size.Width <= 0 || size.Height <= 0 {
		size = domain.DefaultCanvasSize()
	}
	doc := &domain.Document{ID: uuid.New().String(), Name: name}
	if err := s.store.CreateDocument(doc); err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	page := &domain.Page{
		ID:         uuid.New().String(),
		DocumentID: doc.ID,
		CanvasSize: size,
		Elements:   []domain.Element{},
	}
	if err := s.store.CreatePage(page); err != nil {
		return nil, fmt.Errorf("create first page: %w", err)
	}
	return doc, nil
}

func (s *DocumentService) RenameDocument(id, name string) error {
	doc, err := s.store.GetDocument(id)
	if err != nil {
		return err
	}
	doc.Name = name
	return s.store.UpdateDocument(doc)
}

func (s *DocumentService) DeleteDocument(id string) error {
	if err := s.histories.Clear(id); err != nil {
		return fmt.Errorf("delete history: %w", err)
	}
	if err := s.store.DeletePagesByDocument(id); err != nil {
		return fmt.Errorf("delete pages: %w", err)
	}
	return s.store.DeleteDocument(id)
}

func (s *DocumentService) ListPages(documentID string) ([]domain.Page, error) {
	return s.store.ListPages(documentID)
}

// Fingerprint reports a value that changes whenever the document's pages
// are written by any process.
func (s *DocumentService) Fingerprint(documentID string) (string, error) {
	return s.store.Fingerprint(documentID)
}

// ── Sessions ───────────────────────────────────────────────

// Open loads a document into an editor session. The persisted history is
// restored so undo survives restarts.
func (s *DocumentService) Open(id string, opts editor.Options) (*Session, error) {
	doc, err := s.store.GetDocument(id)
	if err != nil {
		return nil, err
	}
	sess := newSession(s, doc)
	if err := sess.load(); err != nil {
		return nil, err
	}
	ed, err := editor.New(sess, opts)
	if err != nil {
		return nil, fmt.Errorf("open editor: %w", err)
	}
	sess.editor = ed
	if snap, err := s.histories.Load(id); err != nil {
		log.Printf("[AUTOSAVE] load history for %s: %v", id, err)
	} else {
		ed.RestoreHistory(snap)
	}
	// A brand-new first page was created by the editor and is still dirty
	if sess.Dirty() {
		if err := sess.Flush(); err != nil {
			return nil, err
		}
	}
	return sess, nil
}

// WaitSaving blocks until in-flight saves finish or ctx is cancelled.
// Used for graceful shutdown.
func (s *DocumentService) WaitSaving(ctx context.Context) {
	s.saves.Wait(ctx)
}
