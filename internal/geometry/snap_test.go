package geometry

import (
	"reflect"
	"testing"

	"studio/internal/domain"
)

func box(id string, x, y, w, h float64) domain.Element {
	return domain.Element{ID: id, Kind: domain.KindRectangle, X: x, Y: y, Width: w, Height: h, Shape: &domain.ShapeProps{}}
}

func TestSnap_RightEdgeOntoSiblingLeft(t *testing.T) {
	a := box("a", 0, 0, 100, 100)
	b := box("b", 98, 0, 100, 100)
	s := NewSnapper(5)

	for _, x := range []float64{-4, -3, -1.5} {
		res := s.Snap(a, x, 0, []domain.Element{a, b}, 1000, 1000, true, true)
		if res.X != b.X-a.Width {
			t.Errorf("candidate %v: expected x=%v, got %v", x, b.X-a.Width, res.X)
		}
		if !reflect.DeepEqual(res.Guides.Vertical, []float64{98}) {
			t.Errorf("candidate %v: expected vertical guide at 98, got %v", x, res.Guides.Vertical)
		}
		if !reflect.DeepEqual(res.Guides.Horizontal, []float64{0, 50, 100}) {
			t.Errorf("candidate %v: expected horizontal guides [0 50 100], got %v", x, res.Guides.Horizontal)
		}
	}
}

func TestSnap_RequiresDraggingAndSelected(t *testing.T) {
	a := box("a", 0, 0, 100, 100)
	s := NewSnapper(5)
	for _, flags := range [][2]bool{{false, true}, {true, false}, {false, false}} {
		res := s.Snap(a, 448, 3, nil, 1000, 1000, flags[0], flags[1])
		if res.X != 448 || res.Y != 3 || !res.Guides.Empty() {
			t.Errorf("flags %v: expected passthrough, got %+v", flags, res)
		}
	}
}

func TestSnap_CanvasCenter(t *testing.T) {
	a := box("a", 0, 0, 100, 100)
	res := NewSnapper(5).Snap(a, 447, 452, nil, 1000, 1000, true, true)
	if res.X != 450 || res.Y != 450 {
		t.Errorf("expected (450, 450), got (%v, %v)", res.X, res.Y)
	}
	if !reflect.DeepEqual(res.Guides.Vertical, []float64{500}) || !reflect.DeepEqual(res.Guides.Horizontal, []float64{500}) {
		t.Errorf("expected center guides, got %+v", res.Guides)
	}
}

func TestSnap_ClosestWins(t *testing.T) {
	a := box("a", 0, 300, 100, 100)
	left := box("l", 0, 0, 100, 50)   // right edge at 100
	right := box("r", 203, 0, 50, 50) // left edge at 203

	// left edge 102 is 2 from 100, right edge 202 is 1 from 203
	res := NewSnapper(5).Snap(a, 102, 300, []domain.Element{left, right}, 1000, 1000, true, true)
	if res.X != 103 {
		t.Errorf("expected closest snap x=103, got %v", res.X)
	}
}

func TestSnap_TieGoesToCanvas(t *testing.T) {
	a := box("a", 0, 0, 100, 100)
	b := box("b", 98, 300, 100, 100)
	// left edge 1 from canvas 0, right edge 1 from sibling 98
	res := NewSnapper(5).Snap(a, -1, 300, []domain.Element{b}, 1000, 1000, true, true)
	if res.X != 0 {
		t.Errorf("expected canvas edge to win the tie, got x=%v", res.X)
	}
}

func TestSnap_OutsideThreshold(t *testing.T) {
	a := box("a", 0, 0, 100, 100)
	res := NewSnapper(5).Snap(a, 20, 30, nil, 1000, 1000, true, true)
	if res.X != 20 || res.Y != 30 || !res.Guides.Empty() {
		t.Errorf("expected no snap, got %+v", res)
	}
}

func TestSnapResize_RejectsBelowMinimum(t *testing.T) {
	sib := box("s", 130, 0, 100, 100)
	r := domain.Rect{X: 100, Y: 500, W: 52, H: 100}
	// snapping the right edge onto 130 would make the box 30 wide
	got, _ := NewSnapper(25).SnapResize(r, DirE, false, false, "a", []domain.Element{sib}, 1000, 1000)
	if got.W < domain.MinWidth {
		t.Errorf("snap produced width %v", got.W)
	}
}
