package geometry

import (
	"strings"

	"studio/internal/domain"
)

// Direction names a resize handle by compass point.
type Direction string

const (
	DirN  Direction = "n"
	DirS  Direction = "s"
	DirE  Direction = "e"
	DirW  Direction = "w"
	DirNE Direction = "ne"
	DirNW Direction = "nw"
	DirSE Direction = "se"
	DirSW Direction = "sw"
)

// Directions lists all handles, top-left first.
var Directions = []Direction{DirNW, DirN, DirNE, DirE, DirSE, DirS, DirSW, DirW}

func (d Direction) Valid() bool {
	for _, known := range Directions {
		if d == known {
			return true
		}
	}
	return false
}

func (d Direction) HasN() bool     { return strings.HasPrefix(string(d), "n") }
func (d Direction) HasS() bool     { return strings.HasPrefix(string(d), "s") }
func (d Direction) HasE() bool     { return strings.HasSuffix(string(d), "e") }
func (d Direction) HasW() bool     { return strings.HasSuffix(string(d), "w") }
func (d Direction) IsCorner() bool { return len(d) == 2 }

const (
	DefaultHandleSize = 8.0
	// handles other than nw disappear below this many handle sizes
	handleCrowding = 3.5
)

// Handle is one resize handle, positioned at its center in canvas units.
type Handle struct {
	Direction Direction `json:"direction"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
}

// Handles returns the resize handles offered for a selected element drawn
// at scale with handles handlePx screen pixels wide.
func Handles(el domain.Element, scale, handlePx float64) []Handle {
	if scale <= 0 {
		scale = 1
	}
	if handlePx <= 0 {
		handlePx = DefaultHandleSize
	}
	crowded := el.Width*scale < handleCrowding*handlePx || el.Height*scale < handleCrowding*handlePx

	r := el.Rect()
	var out []Handle
	for _, d := range Directions {
		if crowded && d != DirNW {
			continue
		}
		if el.IsText() && (d == DirN || d == DirS) {
			continue
		}
		h := Handle{Direction: d, X: r.CenterX(), Y: r.CenterY()}
		switch {
		case d.HasW():
			h.X = r.X
		case d.HasE():
			h.X = r.Right()
		}
		switch {
		case d.HasN():
			h.Y = r.Y
		case d.HasS():
			h.Y = r.Bottom()
		}
		out = append(out, h)
	}
	return out
}
