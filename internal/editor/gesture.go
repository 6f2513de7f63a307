package editor

import (
	"studio/internal/domain"
	"studio/internal/geometry"
	"studio/internal/history"
)

type Mode string

const (
	Idle     Mode = "idle"
	Hovering Mode = "hovering"
	Dragging Mode = "dragging"
	Resizing Mode = "resizing"
)

// State is the interaction state machine's current state.
type State struct {
	Mode      Mode               `json:"mode"`
	ElementID string             `json:"elementId,omitempty"`
	Direction geometry.Direction `json:"direction,omitempty"`
}

// Pointer is one pointer event in screen pixels with its modifier keys.
// Alt and Shift together request a uniform center scale during resize.
type Pointer struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Shift bool    `json:"shift"`
	Alt   bool    `json:"alt"`
}

func (p Pointer) centerScale() bool { return p.Alt && p.Shift }

type dragGesture struct {
	elementID string
	pointerX  float64
	pointerY  float64
	// gesture-start position of every element moving with the drag
	origins map[string]domain.Rect
}

type resizeGesture struct {
	start  geometry.ResizeStart
	origin domain.Element
	last   *geometry.ResizeResult
}

func (e *Editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// OnDragStart begins dragging an element. The element is selected first:
// shift extends the selection, and a plain press on a member of a
// multi-selection keeps the set so the whole set moves. Locked elements are
// selected but not dragged. Returns false when no drag started.
func (e *Editor) OnDragStart(id string, p Pointer) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.editMode {
		e.state = State{Mode: Idle}
		return false
	}
	if e.gestureActive() {
		return false
	}
	page := e.activePage()
	i := domain.IndexOf(page.Elements, id)
	if i < 0 {
		return false
	}
	switch {
	case p.Shift:
		e.sel.Select(id, true)
	case e.sel.IsSelected(id):
		e.sel.Ensure(id)
	default:
		e.sel.Select(id, false)
	}
	if page.Elements[i].Locked {
		e.emit(false)
		return false
	}

	g := &dragGesture{elementID: id, pointerX: p.X, pointerY: p.Y, origins: map[string]domain.Rect{}}
	for _, el := range page.Elements {
		if el.ID == id || (e.sel.Len() > 1 && e.sel.IsSelected(el.ID) && !el.Locked) {
			g.origins[el.ID] = el.Rect()
		}
	}
	e.drag = g
	e.pending = nil
	e.state = State{Mode: Dragging, ElementID: id}
	e.emit(false)
	return true
}

// OnDrag queues a pointer move. Only the latest queued move is processed,
// on the next Frame.
func (e *Editor) OnDrag(p Pointer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.drag == nil {
		return
	}
	e.pending = &p
}

// OnDragEnd applies the final pointer position and commits the move as one
// history step.
func (e *Editor) OnDragEnd(p Pointer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	g := e.drag
	if g == nil {
		return
	}
	e.applyDrag(p)
	e.pending = nil
	e.drag = nil
	e.guides = domain.GuideSet{}
	e.state = State{Mode: Idle}

	page := e.activePage()
	var entries []history.Entry
	for i, el := range page.Elements {
		o, ok := g.origins[el.ID]
		if !ok || (el.X == o.X && el.Y == o.Y) {
			continue
		}
		after := domain.PositionPatch(el.X, el.Y).Settled(el)
		before := domain.PositionPatch(o.X, o.Y)
		before.IsNew = after.Capture(el).IsNew
		page.Elements[i] = after.Apply(el)
		entries = append(entries, history.UpdateElementEntry(page.ID, el.ID, before, after))
	}
	if len(entries) > 0 {
		e.log.RecordGroup(entries)
		e.writeElements(page)
	}
	e.emit(len(entries) > 0)
}

func (e *Editor) applyDrag(p Pointer) {
	g := e.drag
	page := e.activePage()
	i := domain.IndexOf(page.Elements, g.elementID)
	if i < 0 {
		return
	}
	dx, dy := e.viewport.ScreenDelta(p.X-g.pointerX, p.Y-g.pointerY)
	o := g.origins[g.elementID]

	var siblings []domain.Element
	for _, el := range page.Elements {
		if _, moving := g.origins[el.ID]; !moving {
			siblings = append(siblings, el)
		}
	}
	cs := page.CanvasSize
	res := e.snapper.Snap(page.Elements[i], o.X+dx, o.Y+dy, siblings, cs.Width, cs.Height, true, e.sel.IsSelected(g.elementID))

	// followers take the dragged element's applied delta, unsnapped
	ax, ay := res.X-o.X, res.Y-o.Y
	for j := range page.Elements {
		if start, ok := g.origins[page.Elements[j].ID]; ok {
			page.Elements[j].X = start.X + ax
			page.Elements[j].Y = start.Y + ay
		}
	}
	e.guides = res.Guides
}

// OnResizeStart begins resizing an element from a handle. Text elements
// offer no top or bottom edge handles.
func (e *Editor) OnResizeStart(id string, dir geometry.Direction, p Pointer) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.editMode {
		e.state = State{Mode: Idle}
		return false
	}
	if e.gestureActive() || !dir.Valid() {
		return false
	}
	page := e.activePage()
	i := domain.IndexOf(page.Elements, id)
	if i < 0 {
		return false
	}
	el := page.Elements[i]
	if el.Locked || (el.IsText() && (dir == geometry.DirN || dir == geometry.DirS)) {
		return false
	}
	e.sel.Ensure(id)
	e.resize = &resizeGesture{
		start:  geometry.NewResizeStart(el, dir, p.X, p.Y),
		origin: el.Clone(),
	}
	e.pending = nil
	e.state = State{Mode: Resizing, ElementID: id, Direction: dir}
	e.emit(false)
	return true
}

// OnResize queues a pointer move for the resize in progress.
func (e *Editor) OnResize(p Pointer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.resize == nil {
		return
	}
	e.pending = &p
}

// OnResizeEnd applies the final pointer position, commits the new geometry,
// re-asserts the selection and opens the hover-exit suppression window.
func (e *Editor) OnResizeEnd(p Pointer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	g := e.resize
	if g == nil {
		return
	}
	e.applyResize(p)
	e.pending = nil
	e.resize = nil
	e.guides = domain.GuideSet{}
	e.state = State{Mode: Idle}
	e.resizeEndedAt = e.opts.Now()
	e.sel.Ensure(g.origin.ID)

	committed := false
	page := e.activePage()
	if i := domain.IndexOf(page.Elements, g.origin.ID); g.last != nil && i >= 0 {
		after := g.last.Patch().Settled(g.origin)
		before := after.Capture(g.origin)
		if !sameGeometry(after.Apply(g.origin), g.origin) {
			page.Elements[i] = after.Apply(g.origin)
			e.log.Record(history.UpdateElementEntry(page.ID, g.origin.ID, before, after))
			e.writeElements(page)
			committed = true
		}
	}
	e.emit(committed)
}

func sameGeometry(a, b domain.Element) bool {
	return a.X == b.X && a.Y == b.Y && a.Width == b.Width && a.Height == b.Height && a.FontSize() == b.FontSize()
}

func (e *Editor) applyResize(p Pointer) {
	g := e.resize
	page := e.activePage()
	i := domain.IndexOf(page.Elements, g.origin.ID)
	if i < 0 {
		return
	}
	cs := page.CanvasSize
	res, ok := e.resizer.Resize(g.start, geometry.ResizeInput{
		PointerX:    p.X,
		PointerY:    p.Y,
		Scale:       e.viewport.Scale,
		Alt:         p.Alt,
		CenterScale: p.centerScale(),
		Siblings:    page.Elements,
		CanvasW:     cs.Width,
		CanvasH:     cs.Height,
	})
	if !ok {
		return
	}
	g.last = &res
	page.Elements[i] = res.Patch().Apply(g.origin)
	e.guides = res.Guides
}

// Frame processes the latest queued pointer move, if any. The UI calls it
// once per animation frame. Returns whether anything was processed.
func (e *Editor) Frame() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pending == nil {
		return false
	}
	p := *e.pending
	e.pending = nil
	switch {
	case e.drag != nil:
		e.applyDrag(p)
	case e.resize != nil:
		e.applyResize(p)
	default:
		return false
	}
	e.emit(false)
	return true
}

// OnHover tracks the pointer entering or leaving an element. Leaving is
// ignored right after a resize ends.
func (e *Editor) OnHover(id string, inside bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.editMode {
		e.state = State{Mode: Idle}
		return
	}
	if e.gestureActive() {
		return
	}
	if inside {
		e.state = State{Mode: Hovering, ElementID: id}
		return
	}
	if e.opts.Now().Sub(e.resizeEndedAt) < e.opts.ResizeSuppression {
		return
	}
	if e.state.Mode == Hovering && e.state.ElementID == id {
		e.state = State{Mode: Idle}
	}
}

// Cancel abandons the gesture in progress and restores the geometry it
// started from.
func (e *Editor) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gestureActive() {
		e.cancelGesture()
		e.emit(false)
	}
}

func (e *Editor) gestureActive() bool {
	return e.drag != nil || e.resize != nil
}

func (e *Editor) cancelGesture() {
	page := e.activePage()
	if g := e.drag; g != nil {
		for j := range page.Elements {
			if o, ok := g.origins[page.Elements[j].ID]; ok {
				page.Elements[j].X, page.Elements[j].Y = o.X, o.Y
			}
		}
	}
	if g := e.resize; g != nil {
		if j := domain.IndexOf(page.Elements, g.origin.ID); j >= 0 {
			page.Elements[j] = g.origin.Clone()
		}
	}
	e.drag = nil
	e.resize = nil
	e.pending = nil
	e.guides = domain.GuideSet{}
	e.state = State{Mode: Idle}
}
