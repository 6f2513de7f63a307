package mcpserver

import (
	"math"

	"studio/internal/domain"
)

const (
	GridSize = 10.0
	Padding  = 20.0 // gap kept between placed elements
)

// LayoutEngine places agent-created elements on a page so that they don't
// overlap existing ones. Rows are as wide as the canvas.
type LayoutEngine struct {
	gridSize float64
	padding  float64
	maxRowW  float64
}

func NewLayoutEngine(canvasWidth float64) *LayoutEngine {
	return &LayoutEngine{
		gridSize: GridSize,
		padding:  Padding,
		maxRowW:  canvasWidth,
	}
}

// snap rounds v to the nearest grid point.
func (le *LayoutEngine) snap(v float64) float64 {
	return math.Round(v/le.gridSize) * le.gridSize
}

// NextPosition finds the next non-overlapping grid position for an element
// of size (newW, newH), scanning rows top-to-bottom and columns
// left-to-right from the canvas padding.
func (le *LayoutEngine) NextPosition(existing []domain.Element, newW, newH float64) (float64, float64) {
	occupied := make([]domain.Rect, len(existing))
	for i, el := range existing {
		occupied[i] = el.Rect()
	}

	maxX := math.Max(le.padding, le.maxRowW-newW-le.padding)
	for y := le.padding; y < 100000; y += le.gridSize {
		for x := le.padding; x <= maxX; x += le.gridSize {
			candidate := domain.Rect{X: le.snap(x), Y: le.snap(y), W: newW, H: newH}
			if !le.overlapsAny(candidate, occupied) {
				return candidate.X, candidate.Y
			}
		}
	}

	// Fallback: place below everything
	maxY := 0.0
	for _, r := range occupied {
		maxY = math.Max(maxY, r.Bottom())
	}
	return le.padding, le.snap(maxY + le.padding)
}

func (le *LayoutEngine) overlapsAny(c domain.Rect, occupied []domain.Rect) bool {
	for _, occ := range occupied {
		padded := domain.Rect{
			X: occ.X - le.padding,
			Y: occ.Y - le.padding,
			W: occ.W + le.padding*2,
			H: occ.H + le.padding*2,
		}
		if intersects(c, padded) {
			return true
		}
	}
	return false
}

func intersects(a, b domain.Rect) bool {
	return a.X < b.Right() && a.Right() > b.X &&
		a.Y < b.Bottom() && a.Bottom() > b.Y
}

// ArrangeGroup lays elements out in rows starting from (startX, startY),
// wrapping at the canvas width. It modifies positions in place and returns
// the slice.
func (le *LayoutEngine) ArrangeGroup(elements []domain.Element, startX, startY float64) []domain.Element {
	x := le.snap(startX)
	y := le.snap(startY)
	rowHeight := 0.0

	for i := range elements {
		// Wrap before overflowing, unless the row is still empty
		if x > le.snap(startX) && x+elements[i].Width > le.maxRowW {
			x = le.snap(startX)
			y += le.snap(rowHeight + le.padding)
			rowHeight = 0
		}

		elements[i].X = x
		elements[i].Y = y
		rowHeight = math.Max(rowHeight, elements[i].Height)
		x += le.snap(elements[i].Width + le.padding)
	}

	return elements
}
