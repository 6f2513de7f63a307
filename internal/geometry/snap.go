package geometry

import (
	"math"
	"sort"

	"studio/internal/domain"
)

const DefaultSnapThreshold = 5.0

const eps = 1e-6

// Candidate priorities, lower wins a distance tie.
const (
	prioCanvasCenter = iota
	prioCanvasEdge
	prioSiblingCenter
	prioSiblingEdge
)

// Snapper pulls moving edges and centers onto alignment targets: the canvas
// center, the canvas edges and the edges and centers of sibling elements.
// On each axis the closest target within Threshold wins; ties go to the
// higher priority target and then to the earlier sibling.
type Snapper struct {
	Threshold float64
}

func NewSnapper(threshold float64) Snapper {
	if threshold <= 0 {
		threshold = DefaultSnapThreshold
	}
	return Snapper{Threshold: threshold}
}

// SnapResult is a snapped position plus the guides to draw.
type SnapResult struct {
	X, Y   float64
	Guides domain.GuideSet
}

// pair matches one moving feature, offset from the moving start, against
// one target coordinate.
type pair struct {
	offset   float64
	target   float64
	priority int
}

type span struct {
	start, size float64
}

func (s span) features() [3]float64 {
	return [3]float64{s.start, s.start + s.size/2, s.start + s.size}
}

func siblingSpans(selfID string, siblings []domain.Element) (xs, ys []span) {
	for _, sib := range siblings {
		if sib.ID == selfID {
			continue
		}
		xs = append(xs, span{sib.X, sib.Width})
		ys = append(ys, span{sib.Y, sib.Height})
	}
	return xs, ys
}

// dragPairs lists every feature/target combination for one axis of a moving
// box of the given size.
func dragPairs(size, extent float64, sibs []span) []pair {
	pairs := []pair{
		{offset: size / 2, target: extent / 2, priority: prioCanvasCenter},
		{offset: 0, target: 0, priority: prioCanvasEdge},
		{offset: size, target: extent, priority: prioCanvasEdge},
	}
	moving := [3]float64{0, size / 2, size}
	for _, sib := range sibs {
		for fi, target := range sib.features() {
			prio := prioSiblingEdge
			if fi == 1 {
				prio = prioSiblingCenter
			}
			for _, off := range moving {
				pairs = append(pairs, pair{offset: off, target: target, priority: prio})
			}
		}
	}
	return pairs
}

// edgePairs lists targets for moving edges at the given offsets.
func edgePairs(offsets []float64, extent float64, sibs []span) []pair {
	var pairs []pair
	for _, off := range offsets {
		pairs = append(pairs,
			pair{offset: off, target: extent / 2, priority: prioCanvasCenter},
			pair{offset: off, target: 0, priority: prioCanvasEdge},
			pair{offset: off, target: extent, priority: prioCanvasEdge},
		)
		for _, sib := range sibs {
			for fi, target := range sib.features() {
				prio := prioSiblingEdge
				if fi == 1 {
					prio = prioSiblingCenter
				}
				pairs = append(pairs, pair{offset: off, target: target, priority: prio})
			}
		}
	}
	return pairs
}

// closest returns the best pair within threshold for a box starting at
// start. Pairs are ranked by distance, then priority, then list order.
func (s Snapper) closest(start float64, pairs []pair, accept func(pair) bool) (pair, bool) {
	var best pair
	bestDist := math.Inf(1)
	found := false
	for _, p := range pairs {
		d := math.Abs(start + p.offset - p.target)
		if d > s.Threshold+eps {
			continue
		}
		if accept != nil && !accept(p) {
			continue
		}
		if !found || d < bestDist-eps || (math.Abs(d-bestDist) <= eps && p.priority < best.priority) {
			best, bestDist, found = p, d, true
		}
	}
	return best, found
}

// guides collects every target that a moving feature sits exactly on.
func guides(start float64, pairs []pair) []float64 {
	var out []float64
	for _, p := range pairs {
		if math.Abs(start+p.offset-p.target) <= eps {
			out = append(out, p.target)
		}
	}
	return dedupe(out)
}

func dedupe(values []float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	sort.Float64s(values)
	out := values[:1]
	for _, v := range values[1:] {
		if math.Abs(v-out[len(out)-1]) > eps {
			out = append(out, v)
		}
	}
	return out
}

// Snap returns the snapped position of el moved to (x, y). Nothing snaps
// unless the element is both being dragged and selected.
func (s Snapper) Snap(el domain.Element, x, y float64, siblings []domain.Element, canvasW, canvasH float64, dragging, selected bool) SnapResult {
	res := SnapResult{X: x, Y: y}
	if !dragging || !selected {
		return res
	}
	xs, ys := siblingSpans(el.ID, siblings)

	px := dragPairs(el.Width, canvasW, xs)
	if p, ok := s.closest(x, px, nil); ok {
		res.X = p.target - p.offset
	}
	py := dragPairs(el.Height, canvasH, ys)
	if p, ok := s.closest(y, py, nil); ok {
		res.Y = p.target - p.offset
	}

	res.Guides.Vertical = guides(res.X, px)
	res.Guides.Horizontal = guides(res.Y, py)
	return res
}

// SnapResize snaps the edges a resize handle moves. Under symmetric resize
// both edges of an axis move about the center. Snaps that would shrink the
// box below the minimum size are rejected. With lockY the vertical axis is
// left alone.
func (s Snapper) SnapResize(r domain.Rect, dir Direction, symmetric, lockY bool, selfID string, siblings []domain.Element, canvasW, canvasH float64) (domain.Rect, domain.GuideSet) {
	xs, ys := siblingSpans(selfID, siblings)
	var g domain.GuideSet

	if dir.HasE() || dir.HasW() {
		r.X, r.W, g.Vertical = s.snapEdges(r.X, r.W, dir.HasE(), symmetric, domain.MinWidth, canvasW, xs)
	}
	if !lockY && (dir.HasN() || dir.HasS()) {
		r.Y, r.H, g.Horizontal = s.snapEdges(r.Y, r.H, dir.HasS(), symmetric, domain.MinHeight, canvasH, ys)
	}
	return r, g
}

// snapEdges snaps one axis of a resize. far reports whether the handle
// drags the far edge (right or bottom).
func (s Snapper) snapEdges(start, size float64, far, symmetric bool, minSize, extent float64, sibs []span) (float64, float64, []float64) {
	center := start + size/2
	end := start + size

	apply := func(p pair) (float64, float64) {
		edge := p.target
		switch {
		case symmetric:
			half := math.Abs(edge - center)
			return center - half, 2 * half
		case far:
			return start, edge - start
		default:
			return edge, end - edge
		}
	}

	pairs := edgePairs(offsetsFor(size, far, symmetric), extent, sibs)
	p, ok := s.closest(start, pairs, func(p pair) bool {
		_, n := apply(p)
		return n >= minSize-eps
	})
	if ok {
		start, size = apply(p)
	}

	moved := edgePairs(offsetsFor(size, far, symmetric), extent, sibs)
	return start, size, guides(start, moved)
}

func offsetsFor(size float64, far, symmetric bool) []float64 {
	switch {
	case symmetric:
		return []float64{0, size}
	case far:
		return []float64{size}
	default:
		return []float64{0}
	}
}
