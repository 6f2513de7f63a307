package service

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/bep/debounce"

	"studio/internal/domain"
	"studio/internal/editor"
)

// Session is one open document. It implements editor.Document over an
// in-memory copy of the pages; changes are written to SQLite by a
// debounced autosave.
type Session struct {
	svc    *DocumentService
	doc    domain.Document
	editor *editor.Editor

	mu          sync.Mutex
	pages       []domain.Page
	dirty       map[string]bool
	removed     map[string]bool
	fingerprint string

	debounced func(f func())
}

var _ editor.Document = (*Session)(nil)

func newSession(svc *DocumentService, doc *domain.Document) *Session {
	return &Session{
		svc:       svc,
		doc:       *doc,
		dirty:     map[string]bool{},
		removed:   map[string]bool{},
		debounced: debounce.New(svc.saveDelay),
	}
}

func (s *Session) load() error {
	pages, err := s.svc.store.ListPages(s.doc.ID)
	if err != nil {
		return fmt.Errorf("load pages: %w", err)
	}
	fp, err := s.svc.store.Fingerprint(s.doc.ID)
	if err != nil {
		return fmt.Errorf("fingerprint: %w", err)
	}
	s.mu.Lock()
	s.pages = pages
	s.fingerprint = fp
	s.mu.Unlock()
	return nil
}

func (s *Session) Document() domain.Document { return s.doc }
func (s *Session) Editor() *editor.Editor    { return s.editor }

// State is everything the UI needs to draw the document.
func (s *Session) State() domain.DocumentState {
	return domain.DocumentState{
		Document:     s.doc,
		Pages:        s.editor.Pages(),
		ActivePageID: s.editor.ActivePage().ID,
		Selection:    s.editor.Selection(),
	}
}

// ── editor.Document ────────────────────────────────────────

func (s *Session) Pages() []domain.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Page, len(s.pages))
	for i, p := range s.pages {
		out[i] = p.Clone()
	}
	return out
}

func (s *Session) indexOf(pageID string) int {
	for i, p := range s.pages {
		if p.ID == pageID {
			return i
		}
	}
	return -1
}

func (s *Session) UpdateElements(pageID string, elements []domain.Element) error {
	return s.mutate(pageID, func(p *domain.Page) {
		p.Elements = domain.CloneElements(elements)
	})
}

func (s *Session) UpdateCanvasSize(pageID string, size domain.CanvasSize) error {
	return s.mutate(pageID, func(p *domain.Page) {
		p.CanvasSize = size
	})
}

func (s *Session) mutate(pageID string, fn func(p *domain.Page)) error {
	s.mu.Lock()
	i := s.indexOf(pageID)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("page %s: %w", pageID, domain.ErrPageNotFound)
	}
	fn(&s.pages[i])
	s.dirty[pageID] = true
	s.mu.Unlock()
	s.schedule()
	return nil
}

func (s *Session) InsertPage(p domain.Page, index int) error {
	s.mu.Lock()
	p = p.Clone()
	p.DocumentID = s.doc.ID
	if p.Elements == nil {
		p.Elements = []domain.Element{}
	}
	if index < 0 || index > len(s.pages) {
		index = len(s.pages)
	}
	s.pages = append(s.pages[:index:index], append([]domain.Page{p}, s.pages[index:]...)...)
	delete(s.removed, p.ID)
	s.dirty[p.ID] = true
	s.renumberLocked()
	s.mu.Unlock()
	s.schedule()
	return nil
}

func (s *Session) RemovePage(pageID string) error {
	s.mu.Lock()
	i := s.indexOf(pageID)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("remove page %s: %w", pageID, domain.ErrPageNotFound)
	}
	s.pages = append(s.pages[:i:i], s.pages[i+1:]...)
	delete(s.dirty, pageID)
	s.removed[pageID] = true
	s.renumberLocked()
	s.mu.Unlock()
	s.schedule()
	return nil
}

func (s *Session) ReorderPages(order []string) error {
	s.mu.Lock()
	if len(order) != len(s.pages) {
		s.mu.Unlock()
		return fmt.Errorf("reorder pages: got %d ids for %d pages", len(order), len(s.pages))
	}
	out := make([]domain.Page, 0, len(order))
	for _, id := range order {
		i := s.indexOf(id)
		if i < 0 {
			s.mu.Unlock()
			return fmt.Errorf("reorder pages: %s: %w", id, domain.ErrPageNotFound)
		}
		out = append(out, s.pages[i])
	}
	s.pages = out
	s.renumberLocked()
	s.mu.Unlock()
	s.schedule()
	return nil
}

// renumberLocked keeps Order in sync with position and marks pages whose
// order moved as dirty.
func (s *Session) renumberLocked() {
	for i := range s.pages {
		if s.pages[i].Order != i {
			s.pages[i].Order = i
			s.dirty[s.pages[i].ID] = true
		}
	}
}

// ── Autosave ───────────────────────────────────────────────

func (s *Session) schedule() {
	s.debounced(func() {
		if err := s.Flush(); err != nil {
			log.Printf("[AUTOSAVE] document %s: %v", s.doc.ID, err)
		}
	})
}

// Dirty reports whether there are unsaved changes.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.dirty) > 0 || len(s.removed) > 0
}

// Flush writes pending changes and the undo log now. When a save of the
// same document is already writing, that save makes one more pass instead
// and Flush returns at once.
func (s *Session) Flush() error {
	if !s.svc.saves.begin(s.doc.ID) {
		return nil
	}
	for {
		err := s.flushPass()
		if !s.svc.saves.finish(s.doc.ID, err == nil) {
			return err
		}
	}
}

func (s *Session) flushPass() error {
	s.mu.Lock()
	var pending []domain.Page
	for _, p := range s.pages {
		if s.dirty[p.ID] {
			pending = append(pending, p.Clone())
		}
	}
	removed := make([]string, 0, len(s.removed))
	for id := range s.removed {
		removed = append(removed, id)
	}
	s.dirty = map[string]bool{}
	s.removed = map[string]bool{}
	s.mu.Unlock()

	if err := s.write(pending, removed); err != nil {
		// Put the work back so the next save retries it
		s.mu.Lock()
		for _, p := range pending {
			s.dirty[p.ID] = true
		}
		for _, id := range removed {
			s.removed[id] = true
		}
		s.mu.Unlock()
		return err
	}

	if s.editor != nil {
		if err := s.svc.histories.Save(s.doc.ID, s.editor.History()); err != nil {
			return fmt.Errorf("save history: %w", err)
		}
	}
	if len(pending) > 0 || len(removed) > 0 {
		doc := s.doc
		if err := s.svc.store.UpdateDocument(&doc); err != nil {
			log.Printf("[AUTOSAVE] touch document %s: %v", s.doc.ID, err)
		}
	}

	if fp, err := s.svc.store.Fingerprint(s.doc.ID); err == nil {
		s.mu.Lock()
		s.fingerprint = fp
		s.mu.Unlock()
	}
	if s.svc.emitter != nil {
		s.svc.emitter.Emit(s.svc.ctx, "document:saved", s.doc.ID)
	}
	return nil
}

func (s *Session) write(pending []domain.Page, removed []string) error {
	for _, id := range removed {
		if err := s.svc.store.DeletePage(id); err != nil {
			return fmt.Errorf("delete page %s: %w", id, err)
		}
	}
	for i := range pending {
		p := &pending[i]
		err := s.svc.store.UpdatePage(p)
		if errors.Is(err, domain.ErrPageNotFound) {
			err = s.svc.store.CreatePage(p)
		}
		if err != nil {
			return fmt.Errorf("save page %s: %w", p.ID, err)
		}
	}
	return nil
}

// ── Outside changes ────────────────────────────────────────

// Refresh reloads the document when another process wrote it since the
// last load or save. Local unsaved edits win: a dirty session is left
// alone. Returns true when the editor was reloaded.
func (s *Session) Refresh() (bool, error) {
	fp, err := s.svc.store.Fingerprint(s.doc.ID)
	if err != nil {
		return false, fmt.Errorf("fingerprint: %w", err)
	}
	s.mu.Lock()
	unchanged := fp == s.fingerprint
	dirty := len(s.dirty) > 0 || len(s.removed) > 0
	s.mu.Unlock()
	if unchanged || dirty {
		return false, nil
	}

	if err := s.load(); err != nil {
		return false, err
	}
	s.editor.Reload()
	if snap, err := s.svc.histories.Load(s.doc.ID); err == nil {
		s.editor.RestoreHistory(snap)
	}
	return true, nil
}

// Close flushes and stops autosave.
func (s *Session) Close() error {
	s.debounced(func() {})
	return s.Flush()
}
