package editor

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"studio/internal/domain"
	"studio/internal/geometry"
	"studio/internal/history"
)

// ElementUpdate is a patch addressed to one element.
type ElementUpdate struct {
	ID    string              `json:"id"`
	Patch domain.ElementPatch `json:"patch"`
}

// AddElement creates an element of kind on the active page with factory
// defaults, selects it and records one history entry.
func (e *Editor) AddElement(kind domain.ElementKind, opts geometry.CreateOptions) (domain.Element, error) {
	if !kind.Valid() {
		return domain.Element{}, fmt.Errorf("add element: unknown kind %q", kind)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelGesture()

	page := e.activePage()
	if opts.FontRatio <= 0 {
		opts.FontRatio = e.opts.FontRatio
	}
	el := geometry.CreateElement(kind, opts, page.CanvasSize.Width, page.CanvasSize.Height, e.opts.Measurer)
	el.ID = uuid.New().String()

	index := len(page.Elements)
	page.Elements = append(page.Elements, el)
	e.log.Record(history.AddElementEntry(page.ID, el, index))
	e.writeElements(page)
	e.sel.Select(el.ID, false)
	e.emit(true)
	return el.Clone(), nil
}

// AddElements inserts prepared elements on the active page as one history
// step. Missing ids are generated; sizes are raised to the minimums.
func (e *Editor) AddElements(elements []domain.Element) ([]domain.Element, error) {
	for _, el := range elements {
		if !el.Kind.Valid() {
			return nil, fmt.Errorf("add elements: unknown kind %q", el.Kind)
		}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelGesture()

	page := e.activePage()
	var entries []history.Entry
	out := make([]domain.Element, 0, len(elements))
	for _, el := range elements {
		el = el.Clone()
		if el.ID == "" || domain.IndexOf(page.Elements, el.ID) >= 0 {
			el.ID = uuid.New().String()
		}
		el.Width = math.Max(el.Width, domain.MinWidth)
		el.Height = math.Max(el.Height, domain.MinHeight)
		entries = append(entries, history.AddElementEntry(page.ID, el, len(page.Elements)))
		page.Elements = append(page.Elements, el)
		out = append(out, el.Clone())
	}
	if len(entries) == 0 {
		return out, nil
	}
	e.log.RecordGroup(entries)
	e.writeElements(page)
	e.emit(true)
	return out, nil
}

// normalizePatch enforces the size and font minimums on a patch.
func normalizePatch(p domain.ElementPatch) domain.ElementPatch {
	p.IsNew = nil
	if p.Width != nil && *p.Width < domain.MinWidth {
		p.Width = domain.Float(domain.MinWidth)
	}
	if p.Height != nil && *p.Height < domain.MinHeight {
		p.Height = domain.Float(domain.MinHeight)
	}
	if p.FontSize != nil && *p.FontSize < domain.MinFontSize {
		p.FontSize = domain.Float(domain.MinFontSize)
	}
	return p
}

// UpdateElement patches one element on the active page.
func (e *Editor) UpdateElement(id string, patch domain.ElementPatch) error {
	return e.UpdateElements([]ElementUpdate{{ID: id, Patch: patch}})
}

// UpdateElements patches several elements as one history step. An unknown
// id fails the whole call before anything changes.
func (e *Editor) UpdateElements(updates []ElementUpdate) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelGesture()

	page := e.activePage()
	for _, u := range updates {
		if domain.IndexOf(page.Elements, u.ID) < 0 {
			return fmt.Errorf("update element %s: %w", u.ID, domain.ErrElementNotFound)
		}
	}
	var entries []history.Entry
	for _, u := range updates {
		if u.Patch.IsEmpty() {
			continue
		}
		i := domain.IndexOf(page.Elements, u.ID)
		after := normalizePatch(u.Patch).Settled(page.Elements[i])
		before := after.Capture(page.Elements[i])
		page.Elements[i] = after.Apply(page.Elements[i])
		entries = append(entries, history.UpdateElementEntry(page.ID, u.ID, before, after))
	}
	if len(entries) == 0 {
		return nil
	}
	e.log.RecordGroup(entries)
	e.writeElements(page)
	e.emit(true)
	return nil
}

// DeleteElement removes one element. A missing id is a no-op.
func (e *Editor) DeleteElement(id string) {
	e.DeleteElements(id)
}

// DeleteElements removes elements from the active page, one history entry
// per element removed. Missing ids are ignored. Returns the number removed.
func (e *Editor) DeleteElements(ids ...string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.deleteLocked(ids)
}

// DeleteSelection removes every selected element.
func (e *Editor) DeleteSelection() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.deleteLocked(e.sel.Selected())
}

func (e *Editor) deleteLocked(ids []string) int {
	e.cancelGesture()
	page := e.activePage()
	removed := 0
	for _, id := range ids {
		i := domain.IndexOf(page.Elements, id)
		if i < 0 {
			continue
		}
		e.log.Record(history.DeleteElementEntry(page.ID, page.Elements[i], i))
		page.Elements = append(page.Elements[:i:i], page.Elements[i+1:]...)
		removed++
	}
	e.sel.Remove(ids...)
	if removed > 0 {
		e.writeElements(page)
		e.emit(true)
	}
	return removed
}

// ChangeCanvasSize resizes the active page's canvas.
func (e *Editor) ChangeCanvasSize(size domain.CanvasSize) error {
	if size.Width <= 0 || size.Height <= 0 {
		return fmt.Errorf("change canvas size: invalid size %v×%v", size.Width, size.Height)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelGesture()
	page := e.activePage()
	if page.CanvasSize == size {
		return nil
	}
	e.log.Record(history.CanvasSizeEntry(page.ID, page.CanvasSize, size))
	page.CanvasSize = size
	e.writeCanvasSize(page)
	e.emit(true)
	return nil
}

func (e *Editor) newPage(size domain.CanvasSize) domain.Page {
	now := time.Now()
	return domain.Page{
		ID:         uuid.New().String(),
		CanvasSize: size,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// AddPage appends a page after the active one and makes it active. A zero
// size takes the active page's canvas size.
func (e *Editor) AddPage(size domain.CanvasSize) (domain.Page, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if size.Width <= 0 || size.Height <= 0 {
		size = e.activePage().CanvasSize
	}
	p := e.newPage(size)
	index := e.pageIndex(e.activeID) + 1
	if err := e.insertPage(p, index); err != nil {
		return domain.Page{}, err
	}
	e.log.Record(history.AddPageEntry(p, index))
	e.emit(true)
	return p.Clone(), nil
}

// DeletePage removes a page. The last remaining page cannot be deleted.
func (e *Editor) DeletePage(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	i := e.pageIndex(id)
	if i < 0 {
		return fmt.Errorf("delete page %s: %w", id, domain.ErrPageNotFound)
	}
	if len(e.pages) == 1 {
		return domain.ErrLastPage
	}
	snapshot := e.pages[i].Clone()
	if err := e.removePage(id); err != nil {
		return err
	}
	e.log.Record(history.DeletePageEntry(snapshot, i))
	e.emit(true)
	return nil
}

// ReorderPages puts pages in the given order, which must name every page
// exactly once.
func (e *Editor) ReorderPages(order []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.validOrder(order); err != nil {
		return err
	}
	prev := e.pageOrder()
	if err := e.reorderPages(order); err != nil {
		return err
	}
	e.log.Record(history.ReorderPagesEntry(prev, order))
	e.emit(true)
	return nil
}

func (e *Editor) validOrder(order []string) error {
	if len(order) != len(e.pages) {
		return fmt.Errorf("reorder pages: got %d ids for %d pages", len(order), len(e.pages))
	}
	seen := map[string]bool{}
	for _, id := range order {
		if seen[id] || e.pageIndex(id) < 0 {
			return fmt.Errorf("reorder pages: bad id %s: %w", id, domain.ErrPageNotFound)
		}
		seen[id] = true
	}
	return nil
}

func (e *Editor) insertPage(p domain.Page, index int) error {
	if index < 0 || index > len(e.pages) {
		index = len(e.pages)
	}
	if err := e.doc.InsertPage(p.Clone(), index); err != nil {
		return fmt.Errorf("insert page: %w", err)
	}
	e.pages = append(e.pages[:index:index], append([]domain.Page{p.Clone()}, e.pages[index:]...)...)
	e.renumber()
	e.switchPage(p.ID)
	return nil
}

// removePage drops a page. When it was active, the page before it becomes
// active.
func (e *Editor) removePage(id string) error {
	i := e.pageIndex(id)
	if i < 0 {
		return fmt.Errorf("remove page %s: %w", id, domain.ErrPageNotFound)
	}
	if err := e.doc.RemovePage(id); err != nil {
		return fmt.Errorf("remove page: %w", err)
	}
	wasActive := id == e.activeID
	if wasActive {
		e.cancelGesture()
		e.sel.Clear()
	}
	e.pages = append(e.pages[:i:i], e.pages[i+1:]...)
	e.renumber()
	if wasActive && len(e.pages) > 0 {
		e.activeID = e.pages[max(0, i-1)].ID
	}
	return nil
}

func (e *Editor) reorderPages(order []string) error {
	if err := e.validOrder(order); err != nil {
		return err
	}
	if err := e.doc.ReorderPages(order); err != nil {
		return fmt.Errorf("reorder pages: %w", err)
	}
	out := make([]domain.Page, 0, len(order))
	for _, id := range order {
		out = append(out, e.pages[e.pageIndex(id)])
	}
	e.pages = out
	e.renumber()
	return nil
}
