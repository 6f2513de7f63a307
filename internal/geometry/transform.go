package geometry

import "math"

// Viewport maps between screen pixels and canvas units. Scale is screen
// pixels per canvas unit; the offset is the canvas origin on screen.
type Viewport struct {
	Scale   float64 `json:"scale"`
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
}

func (v Viewport) scale() float64 {
	if v.Scale <= 0 {
		return 1
	}
	return v.Scale
}

// ScreenDelta converts a pointer delta in pixels to canvas units.
func (v Viewport) ScreenDelta(dx, dy float64) (float64, float64) {
	s := v.scale()
	return dx / s, dy / s
}

func (v Viewport) ScreenToCanvas(sx, sy float64) (float64, float64) {
	s := v.scale()
	return (sx - v.OffsetX) / s, (sy - v.OffsetY) / s
}

func (v Viewport) CanvasToScreen(cx, cy float64) (float64, float64) {
	s := v.scale()
	return cx*s + v.OffsetX, cy*s + v.OffsetY
}

// FitScale returns the largest scale, capped at 1, at which a canvas fits
// the view with padding on each side.
func FitScale(canvasW, canvasH, viewW, viewH, padding float64) float64 {
	if canvasW <= 0 || canvasH <= 0 {
		return 1
	}
	availW := viewW - 2*padding
	availH := viewH - 2*padding
	if availW <= 0 || availH <= 0 {
		return 1
	}
	return math.Min(1, math.Min(availW/canvasW, availH/canvasH))
}
