// Package editor is the interactive canvas engine. It turns pointer intents
// into drag and resize gestures, keeps selection and history, and writes
// committed changes through to a Document.
package editor

import (
	"fmt"
	"log"
	"sync"
	"time"

	"studio/internal/domain"
	"studio/internal/geometry"
	"studio/internal/history"
	"studio/internal/selection"
)

// Document is the persistence collaborator. Writes are fire-and-forget from
// the editor's point of view: a failed write is logged, never rolled back.
type Document interface {
	Pages() []domain.Page
	UpdateElements(pageID string, elements []domain.Element) error
	UpdateCanvasSize(pageID string, size domain.CanvasSize) error
	InsertPage(p domain.Page, index int) error
	RemovePage(pageID string) error
	ReorderPages(order []string) error
}

type Options struct {
	SnapThreshold     float64
	HandleSize        float64
	ResizeSuppression time.Duration
	HistoryLimit      int
	FontRatio         float64
	Measurer          geometry.Measurer
	Now               func() time.Time
}

func DefaultOptions() Options {
	return Options{
		SnapThreshold:     geometry.DefaultSnapThreshold,
		HandleSize:        geometry.DefaultHandleSize,
		ResizeSuppression: 200 * time.Millisecond,
		HistoryLimit:      history.DefaultLimit,
		FontRatio:         geometry.DefaultFontRatio,
		Measurer:          geometry.FixedMeasurer{},
		Now:               time.Now,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.SnapThreshold <= 0 {
		o.SnapThreshold = d.SnapThreshold
	}
	if o.HandleSize <= 0 {
		o.HandleSize = d.HandleSize
	}
	if o.ResizeSuppression <= 0 {
		o.ResizeSuppression = d.ResizeSuppression
	}
	if o.HistoryLimit <= 0 {
		o.HistoryLimit = d.HistoryLimit
	}
	if o.FontRatio <= 0 {
		o.FontRatio = d.FontRatio
	}
	if o.Measurer == nil {
		o.Measurer = d.Measurer
	}
	if o.Now == nil {
		o.Now = d.Now
	}
	return o
}

// Change is the editor state after a mutation, handed to listeners.
type Change struct {
	PageID     string                       `json:"pageId"`
	Elements   []domain.Element             `json:"elements"`
	CanvasSize domain.CanvasSize            `json:"canvasSize"`
	Selection  domain.Selection             `json:"selection"`
	Guides     domain.GuideSet              `json:"guides"`
	State      State                        `json:"state"`
	CanUndo    bool                         `json:"canUndo"`
	CanRedo    bool                         `json:"canRedo"`
	Committed  bool                         `json:"committed"`
	Handles    map[string][]geometry.Handle `json:"handles,omitempty"`
}

// Editor owns the working copy of a document's pages. All methods are safe
// to call from multiple goroutines; only one gesture runs at a time.
type Editor struct {
	mu sync.Mutex

	opts     Options
	doc      Document
	pages    []domain.Page
	activeID string

	sel     *selection.Manager
	log     *history.Log
	snapper geometry.Snapper
	resizer geometry.Resizer

	editMode bool
	viewport geometry.Viewport
	state    State
	drag     *dragGesture
	resize   *resizeGesture
	pending  *Pointer
	guides   domain.GuideSet

	resizeEndedAt time.Time
	listeners     []func(Change)
}

// New loads the document's pages into a new editor. A document without
// pages gets one default page.
func New(doc Document, opts Options) (*Editor, error) {
	opts = opts.withDefaults()
	snapper := geometry.NewSnapper(opts.SnapThreshold)
	e := &Editor{
		opts:     opts,
		doc:      doc,
		sel:      selection.New(),
		log:      history.New(opts.HistoryLimit),
		snapper:  snapper,
		resizer:  geometry.Resizer{Snapper: snapper, Measurer: opts.Measurer},
		editMode: true,
		viewport: geometry.Viewport{Scale: 1},
	}
	e.pages = doc.Pages()
	if len(e.pages) == 0 {
		p := e.newPage(domain.DefaultCanvasSize())
		if err := doc.InsertPage(p, 0); err != nil {
			return nil, fmt.Errorf("create first page: %w", err)
		}
		e.pages = []domain.Page{p}
	}
	e.activeID = e.pages[0].ID
	return e, nil
}

// OnChange registers a listener called after every state change. Listeners
// run with the editor locked and must not call back into it.
func (e *Editor) OnChange(fn func(Change)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, fn)
}

func (e *Editor) emit(committed bool) {
	if len(e.listeners) == 0 {
		return
	}
	c := e.changeLocked()
	c.Committed = committed
	for _, fn := range e.listeners {
		fn(c)
	}
}

func (e *Editor) changeLocked() Change {
	p := e.activePage()
	return Change{
		PageID:     p.ID,
		Elements:   domain.CloneElements(p.Elements),
		CanvasSize: p.CanvasSize,
		Selection:  e.sel.State(),
		Guides:     e.guides,
		State:      e.state,
		CanUndo:    e.log.CanUndo(),
		CanRedo:    e.log.CanRedo(),
		Handles:    e.handlesLocked(),
	}
}

// Snapshot returns the current editor state.
func (e *Editor) Snapshot() Change {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.changeLocked()
}

// ─── Pages ──────────────────────────────────────────────────

func (e *Editor) activePage() *domain.Page {
	for i := range e.pages {
		if e.pages[i].ID == e.activeID {
			return &e.pages[i]
		}
	}
	return &e.pages[0]
}

func (e *Editor) pageIndex(id string) int {
	for i := range e.pages {
		if e.pages[i].ID == id {
			return i
		}
	}
	return -1
}

func (e *Editor) page(id string) (*domain.Page, error) {
	if i := e.pageIndex(id); i >= 0 {
		return &e.pages[i], nil
	}
	return nil, fmt.Errorf("page %s: %w", id, domain.ErrPageNotFound)
}

func (e *Editor) pageOrder() []string {
	ids := make([]string, len(e.pages))
	for i, p := range e.pages {
		ids[i] = p.ID
	}
	return ids
}

func (e *Editor) renumber() {
	for i := range e.pages {
		e.pages[i].Order = i
	}
}

func (e *Editor) Pages() []domain.Page {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]domain.Page, len(e.pages))
	for i, p := range e.pages {
		out[i] = p.Clone()
	}
	return out
}

func (e *Editor) ActivePage() domain.Page {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.activePage().Clone()
}

// SetActivePage switches pages, abandoning any gesture and clearing the
// selection.
func (e *Editor) SetActivePage(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pageIndex(id) < 0 {
		return fmt.Errorf("set active page %s: %w", id, domain.ErrPageNotFound)
	}
	e.switchPage(id)
	e.emit(false)
	return nil
}

func (e *Editor) switchPage(id string) {
	if id == e.activeID {
		return
	}
	e.cancelGesture()
	e.sel.Clear()
	e.activeID = id
}

func (e *Editor) Elements() []domain.Element {
	e.mu.Lock()
	defer e.mu.Unlock()
	return domain.CloneElements(e.activePage().Elements)
}

func (e *Editor) Element(id string) (domain.Element, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p := e.activePage()
	i := domain.IndexOf(p.Elements, id)
	if i < 0 {
		return domain.Element{}, fmt.Errorf("element %s: %w", id, domain.ErrElementNotFound)
	}
	return p.Elements[i].Clone(), nil
}

func (e *Editor) CanvasSize() domain.CanvasSize {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.activePage().CanvasSize
}

// Reload replaces the working copy with the document's current pages after
// an outside edit. History is dropped since it may no longer apply.
func (e *Editor) Reload() {
	e.mu.Lock()
	defer e.mu.Unlock()
	pages := e.doc.Pages()
	if len(pages) == 0 {
		return
	}
	e.cancelGesture()
	e.pages = pages
	if e.pageIndex(e.activeID) < 0 {
		e.activeID = e.pages[0].ID
	}
	e.pruneSelection()
	e.log.Clear()
	e.emit(false)
}

// ─── Selection ──────────────────────────────────────────────

func (e *Editor) Selection() domain.Selection {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sel.State()
}

// Select selects an element on the active page; shift extends.
func (e *Editor) Select(id string, shift bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if domain.IndexOf(e.activePage().Elements, id) < 0 {
		return fmt.Errorf("select %s: %w", id, domain.ErrElementNotFound)
	}
	e.sel.Select(id, shift)
	e.emit(false)
	return nil
}

// SelectElements replaces the selection with the given ids. Unknown ids are
// skipped.
func (e *Editor) SelectElements(ids []string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	var known []string
	for _, id := range ids {
		if domain.IndexOf(e.activePage().Elements, id) >= 0 {
			known = append(known, id)
		}
	}
	e.sel.SetAll(known)
	e.emit(false)
}

func (e *Editor) SelectCanvas(shift bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sel.SelectCanvas(shift)
	e.emit(false)
}

func (e *Editor) ClearSelection() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sel.Clear()
	e.emit(false)
}

// pruneSelection drops selected ids that are no longer on the active page.
func (e *Editor) pruneSelection() {
	p := e.activePage()
	for _, id := range e.sel.Selected() {
		if domain.IndexOf(p.Elements, id) < 0 {
			e.sel.Remove(id)
		}
	}
}

// ─── View ───────────────────────────────────────────────────

// SetEditMode toggles edit mode. Either direction clears the selection;
// leaving edit mode also abandons any gesture in progress.
func (e *Editor) SetEditMode(on bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if on == e.editMode {
		return
	}
	e.cancelGesture()
	e.sel.Clear()
	e.editMode = on
	e.emit(false)
}

func (e *Editor) EditMode() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.editMode
}

func (e *Editor) SetScale(scale float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if scale > 0 {
		e.viewport.Scale = scale
	}
}

func (e *Editor) SetViewport(v geometry.Viewport) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if v.Scale <= 0 {
		v.Scale = 1
	}
	e.viewport = v
}

func (e *Editor) Viewport() geometry.Viewport {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewport
}

// Alignments returns the guides of the gesture in progress.
func (e *Editor) Alignments() domain.GuideSet {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.guides
}

// Handles returns the resize handles of every selected element.
func (e *Editor) Handles() map[string][]geometry.Handle {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.handlesLocked()
}

func (e *Editor) handlesLocked() map[string][]geometry.Handle {
	if !e.editMode || e.sel.Len() == 0 {
		return nil
	}
	out := map[string][]geometry.Handle{}
	for _, el := range e.activePage().Elements {
		if el.Locked || !e.sel.IsSelected(el.ID) {
			continue
		}
		out[el.ID] = geometry.Handles(el, e.viewport.Scale, e.opts.HandleSize)
	}
	return out
}

// ─── History ────────────────────────────────────────────────

func (e *Editor) CanUndo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.log.CanUndo()
}

func (e *Editor) CanRedo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.log.CanRedo()
}

// Undo inverts the last committed step. If it belongs to another page, that
// page becomes active first.
func (e *Editor) Undo() (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelGesture()
	top, ok := e.log.PeekUndo()
	if !ok {
		return false, nil
	}
	e.focusEntryPage(top)
	done, err := e.log.Undo(applier{e})
	e.afterHistory()
	return done, err
}

func (e *Editor) Redo() (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelGesture()
	top, ok := e.log.PeekRedo()
	if !ok {
		return false, nil
	}
	e.focusEntryPage(top)
	done, err := e.log.Redo(applier{e})
	e.afterHistory()
	return done, err
}

func (e *Editor) focusEntryPage(entry history.Entry) {
	if entry.PageID != "" && e.pageIndex(entry.PageID) >= 0 {
		e.switchPage(entry.PageID)
	}
}

func (e *Editor) afterHistory() {
	e.pruneSelection()
	e.emit(true)
}

// History returns the serializable undo/redo log.
func (e *Editor) History() history.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.log.Snapshot()
}

func (e *Editor) RestoreHistory(s history.Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.log.Restore(s)
}

// ─── Write-through ──────────────────────────────────────────

func (e *Editor) writeElements(p *domain.Page) {
	if err := e.doc.UpdateElements(p.ID, domain.CloneElements(p.Elements)); err != nil {
		log.Printf("[EDITOR] write elements for page %s: %v", p.ID, err)
	}
}

func (e *Editor) writeCanvasSize(p *domain.Page) {
	if err := e.doc.UpdateCanvasSize(p.ID, p.CanvasSize); err != nil {
		log.Printf("[EDITOR] write canvas size for page %s: %v", p.ID, err)
	}
}
