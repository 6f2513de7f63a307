package app

// ─────────────────────────────────────────────────────────────
// Canvas Handlers: delegates to the open document's editor
// ─────────────────────────────────────────────────────────────

import (
	"studio/internal/domain"
	"studio/internal/editor"
	"studio/internal/geometry"
)

// ── Pages ──────────────────────────────────────────────────

func (a *App) SetActivePage(pageID string) error {
	ed, err := a.activeEditor()
	if err != nil {
		return err
	}
	return ed.SetActivePage(pageID)
}

// AddPage adds a page after the active one. An empty preset copies the
// active page's canvas size.
func (a *App) AddPage(preset string) (*domain.Page, error) {
	ed, err := a.activeEditor()
	if err != nil {
		return nil, err
	}
	size, _ := domain.PresetByName(preset)
	p, err := ed.AddPage(size)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (a *App) DeletePage(pageID string) error {
	ed, err := a.activeEditor()
	if err != nil {
		return err
	}
	return ed.DeletePage(pageID)
}

func (a *App) ReorderPages(order []string) error {
	ed, err := a.activeEditor()
	if err != nil {
		return err
	}
	return ed.ReorderPages(order)
}

func (a *App) ChangeCanvasSize(size domain.CanvasSize) error {
	ed, err := a.activeEditor()
	if err != nil {
		return err
	}
	return ed.ChangeCanvasSize(size)
}

// ── Elements ───────────────────────────────────────────────

func (a *App) AddElement(kind string, in CreateElementInput) (*domain.Element, error) {
	ed, err := a.activeEditor()
	if err != nil {
		return nil, err
	}
	el, err := ed.AddElement(domain.ElementKind(kind), in.options())
	if err != nil {
		return nil, err
	}
	return &el, nil
}

func (a *App) UpdateElement(id string, patch domain.ElementPatch) error {
	ed, err := a.activeEditor()
	if err != nil {
		return err
	}
	return ed.UpdateElement(id, patch)
}

func (a *App) UpdateElements(updates []editor.ElementUpdate) error {
	ed, err := a.activeEditor()
	if err != nil {
		return err
	}
	return ed.UpdateElements(updates)
}

func (a *App) DeleteElements(ids []string) (int, error) {
	ed, err := a.activeEditor()
	if err != nil {
		return 0, err
	}
	return ed.DeleteElements(ids...), nil
}

func (a *App) DeleteSelection() (int, error) {
	ed, err := a.activeEditor()
	if err != nil {
		return 0, err
	}
	return ed.DeleteSelection(), nil
}

// ── Selection ──────────────────────────────────────────────

func (a *App) Select(id string, shift bool) error {
	ed, err := a.activeEditor()
	if err != nil {
		return err
	}
	return ed.Select(id, shift)
}

func (a *App) SelectAll() error {
	ed, err := a.activeEditor()
	if err != nil {
		return err
	}
	els := ed.Elements()
	ids := make([]string, len(els))
	for i, el := range els {
		ids[i] = el.ID
	}
	ed.SelectElements(ids)
	return nil
}

func (a *App) SelectCanvas(shift bool) error {
	ed, err := a.activeEditor()
	if err != nil {
		return err
	}
	ed.SelectCanvas(shift)
	return nil
}

func (a *App) ClearSelection() error {
	ed, err := a.activeEditor()
	if err != nil {
		return err
	}
	ed.ClearSelection()
	return nil
}

// ── History ────────────────────────────────────────────────

func (a *App) Undo() (HistoryState, error) {
	ed, err := a.activeEditor()
	if err != nil {
		return HistoryState{}, err
	}
	if _, err := ed.Undo(); err != nil {
		return HistoryState{}, err
	}
	return HistoryState{CanUndo: ed.CanUndo(), CanRedo: ed.CanRedo()}, nil
}

func (a *App) Redo() (HistoryState, error) {
	ed, err := a.activeEditor()
	if err != nil {
		return HistoryState{}, err
	}
	if _, err := ed.Redo(); err != nil {
		return HistoryState{}, err
	}
	return HistoryState{CanUndo: ed.CanUndo(), CanRedo: ed.CanRedo()}, nil
}

// ── View ───────────────────────────────────────────────────

func (a *App) SetEditMode(on bool) error {
	ed, err := a.activeEditor()
	if err != nil {
		return err
	}
	ed.SetEditMode(on)
	return nil
}

func (a *App) SetViewport(v geometry.Viewport) error {
	ed, err := a.activeEditor()
	if err != nil {
		return err
	}
	ed.SetViewport(v)
	return nil
}

// FitToView scales the active page to fit a view of the given pixel size
// and returns the scale applied.
func (a *App) FitToView(viewW, viewH float64) (float64, error) {
	ed, err := a.activeEditor()
	if err != nil {
		return 0, err
	}
	size := ed.CanvasSize()
	scale := geometry.FitScale(size.Width, size.Height, viewW, viewH, 40)
	ed.SetScale(scale)
	return scale, nil
}

func (a *App) GetHandles() (map[string][]geometry.Handle, error) {
	ed, err := a.activeEditor()
	if err != nil {
		return nil, err
	}
	return ed.Handles(), nil
}

// ── Gestures ───────────────────────────────────────────────
// Pointer coordinates are screen pixels. Moves are queued and applied on
// the next FrameTick, which the frontend calls from requestAnimationFrame.

func (a *App) OnDragStart(id string, p editor.Pointer) bool {
	ed, err := a.activeEditor()
	if err != nil {
		return false
	}
	return ed.OnDragStart(id, p)
}

func (a *App) OnDrag(p editor.Pointer) {
	if ed, err := a.activeEditor(); err == nil {
		ed.OnDrag(p)
	}
}

func (a *App) OnDragEnd(p editor.Pointer) {
	if ed, err := a.activeEditor(); err == nil {
		ed.OnDragEnd(p)
	}
}

func (a *App) OnResizeStart(id string, dir string, p editor.Pointer) bool {
	ed, err := a.activeEditor()
	if err != nil {
		return false
	}
	return ed.OnResizeStart(id, geometry.Direction(dir), p)
}

func (a *App) OnResize(p editor.Pointer) {
	if ed, err := a.activeEditor(); err == nil {
		ed.OnResize(p)
	}
}

func (a *App) OnResizeEnd(p editor.Pointer) {
	if ed, err := a.activeEditor(); err == nil {
		ed.OnResizeEnd(p)
	}
}

func (a *App) OnHover(id string, inside bool) {
	if ed, err := a.activeEditor(); err == nil {
		ed.OnHover(id, inside)
	}
}

func (a *App) FrameTick() bool {
	ed, err := a.activeEditor()
	if err != nil {
		return false
	}
	return ed.Frame()
}

func (a *App) CancelGesture() {
	if ed, err := a.activeEditor(); err == nil {
		ed.Cancel()
	}
}
