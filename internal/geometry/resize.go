package geometry

import (
	"math"

	"studio/internal/domain"
)

// ResizeStart is the geometry captured when a resize gesture begins. All
// frames of the gesture compute from it with the total pointer delta.
type ResizeStart struct {
	ElementID   string
	Kind        domain.ElementKind
	Direction   Direction
	PointerX    float64
	PointerY    float64
	Rect        domain.Rect
	AspectRatio float64
	FontSize    float64
	Text        *domain.TextProps
}

// NewResizeStart snapshots el at the start of a resize from dir.
func NewResizeStart(el domain.Element, dir Direction, pointerX, pointerY float64) ResizeStart {
	s := ResizeStart{
		ElementID: el.ID,
		Kind:      el.Kind,
		Direction: dir,
		PointerX:  pointerX,
		PointerY:  pointerY,
		Rect:      el.Rect(),
		FontSize:  el.FontSize(),
	}
	if el.Height > 0 {
		s.AspectRatio = el.Width / el.Height
	}
	if el.Text != nil {
		t := *el.Text
		s.Text = &t
	}
	return s
}

// Active reports whether s describes a gesture in progress.
func (s ResizeStart) Active() bool {
	return s.Direction.Valid()
}

// ResizeInput is one pointer frame of a resize gesture.
type ResizeInput struct {
	PointerX, PointerY float64
	Scale              float64
	Alt                bool
	CenterScale        bool
	Siblings           []domain.Element
	CanvasW, CanvasH   float64
}

type ResizeResult struct {
	X, Y          float64
	Width, Height float64
	// FontSize is set for text resized from a corner or by center scale.
	FontSize     *float64
	WidthChanged bool
	Guides       domain.GuideSet
}

// Patch returns the history field subset this result writes.
func (r ResizeResult) Patch() domain.ElementPatch {
	p := domain.GeometryPatch(r.X, r.Y, r.Width, r.Height)
	if r.FontSize != nil {
		p.FontSize = domain.Float(*r.FontSize)
	}
	return p
}

// Resizer computes resize geometry. Measurer may be nil, in which case text
// height is never re-measured.
type Resizer struct {
	Snapper  Snapper
	Measurer Measurer
}

// Resize computes the new geometry for one frame. It returns false when
// start is not an active gesture.
func (rz Resizer) Resize(start ResizeStart, in ResizeInput) (ResizeResult, bool) {
	if !start.Active() {
		return ResizeResult{}, false
	}
	scale := in.Scale
	if scale <= 0 {
		scale = 1
	}
	dx := (in.PointerX - start.PointerX) / scale
	dy := (in.PointerY - start.PointerY) / scale

	if in.CenterScale {
		return rz.centerScale(start, dx, dy), true
	}

	dir := start.Direction
	if dir.IsCorner() && start.Kind == domain.KindText {
		return rz.textCorner(start, dx, dy, in), true
	}

	o := start.Rect
	w, h := o.W, o.H
	if dir.HasE() || dir.HasW() {
		w = math.Max(domain.MinWidth, o.W+axisGrowth(dx, dir.HasE(), in.Alt))
	}
	if dir.HasN() || dir.HasS() {
		h = math.Max(domain.MinHeight, o.H+axisGrowth(dy, dir.HasS(), in.Alt))
	}
	x, y := anchor(o, w, h, dir, in.Alt)

	snapped, g := rz.Snapper.SnapResize(domain.Rect{X: x, Y: y, W: w, H: h}, dir, in.Alt, false, start.ElementID, in.Siblings, in.CanvasW, in.CanvasH)
	res := ResizeResult{X: snapped.X, Y: snapped.Y, Width: snapped.W, Height: snapped.H, Guides: g}
	res.WidthChanged = res.Width != o.W

	if start.Kind == domain.KindText && !dir.IsCorner() && res.WidthChanged && rz.Measurer != nil && start.Text != nil {
		res.Height = math.Max(domain.MinHeight, rz.Measurer.TextHeight(start.Text.Content, res.Width, StyleOf(start.Text)))
		if dir.HasN() || dir.HasS() || in.Alt {
			_, res.Y = anchor(o, res.Width, res.Height, dir, in.Alt)
		}
	}
	return res, true
}

// axisGrowth is how much one dimension grows for a pointer delta d. far is
// true when the handle sits on the right or bottom edge.
func axisGrowth(d float64, far, alt bool) float64 {
	if !far {
		d = -d
	}
	if alt {
		return 2 * d
	}
	return d
}

// anchor positions a w×h box so the edges opposite the handle stay put, or
// the center stays put under alt.
func anchor(o domain.Rect, w, h float64, dir Direction, alt bool) (float64, float64) {
	x, y := o.X, o.Y
	switch {
	case alt:
		x = o.CenterX() - w/2
	case dir.HasW():
		x = o.Right() - w
	}
	switch {
	case alt:
		y = o.CenterY() - h/2
	case dir.HasN():
		y = o.Bottom() - h
	}
	return x, y
}

func (rz Resizer) textCorner(start ResizeStart, dx, dy float64, in ResizeInput) ResizeResult {
	o := start.Rect
	dir := start.Direction
	ratio := start.AspectRatio
	if ratio <= 0 {
		ratio = o.W / math.Max(o.H, domain.MinHeight)
	}

	cw := math.Max(domain.MinWidth, o.W+axisGrowth(dx, dir.HasE(), in.Alt))
	ch := math.Max(domain.MinHeight, o.H+axisGrowth(dy, dir.HasS(), in.Alt))

	// width-driven against height-driven, larger area wins
	w, h := cw, cw/ratio
	if hw := ch * ratio; hw*ch > w*h {
		w, h = hw, ch
	}
	w, h = clampRatio(w, h, ratio)

	x, y := anchor(o, w, h, dir, in.Alt)
	snapped, g := rz.Snapper.SnapResize(domain.Rect{X: x, Y: y, W: w, H: h}, dir, in.Alt, true, start.ElementID, in.Siblings, in.CanvasW, in.CanvasH)
	if snapped.W != w && snapped.W/ratio >= domain.MinHeight {
		w, h = snapped.W, snapped.W/ratio
		x, y = anchor(o, w, h, dir, in.Alt)
	} else {
		g.Vertical = nil
	}

	fs := scaledFont(start.FontSize, w/o.W)
	return ResizeResult{X: x, Y: y, Width: w, Height: h, FontSize: &fs, WidthChanged: w != o.W, Guides: g}
}

// clampRatio raises w and h to the minimums while keeping w/h == ratio.
func clampRatio(w, h, ratio float64) (float64, float64) {
	if w < domain.MinWidth {
		w, h = domain.MinWidth, domain.MinWidth/ratio
	}
	if h < domain.MinHeight {
		w, h = domain.MinHeight*ratio, domain.MinHeight
	}
	return w, h
}

func (rz Resizer) centerScale(start ResizeStart, dx, dy float64) ResizeResult {
	o := start.Rect
	dir := start.Direction

	fx := (o.W + axisGrowth(dx, dir.HasE(), true)) / o.W
	fy := (o.H + axisGrowth(dy, dir.HasS(), true)) / o.H

	var f float64
	switch {
	case dir.IsCorner():
		f = math.Max(fx, fy)
	case dir.HasE() || dir.HasW():
		f = fx
	default:
		f = fy
	}
	f = math.Max(f, math.Max(domain.MinWidth/o.W, domain.MinHeight/o.H))

	w, h := o.W*f, o.H*f
	res := ResizeResult{
		X:            o.CenterX() - w/2,
		Y:            o.CenterY() - h/2,
		Width:        w,
		Height:       h,
		WidthChanged: w != o.W,
	}
	if start.Kind == domain.KindText {
		fs := scaledFont(start.FontSize, f)
		res.FontSize = &fs
	}
	return res
}

func scaledFont(size, factor float64) float64 {
	return math.Max(domain.MinFontSize, math.Round(size*factor))
}
