package domain

// Selection is the editor's selection state as seen by the UI.
// CanvasSelected and a non-empty element selection only coexist during a
// shift-extended sequence.
type Selection struct {
	ActiveElementID    string   `json:"activeElementId"`
	SelectedElementIDs []string `json:"selectedElementIds"`
	CanvasSelected     bool     `json:"canvasSelected"`
}

// GuideSet holds alignment guide coordinates. Horizontal holds y values of
// horizontal guide lines, Vertical holds x values of vertical guide lines.
type GuideSet struct {
	Horizontal []float64 `json:"horizontal"`
	Vertical   []float64 `json:"vertical"`
}

func (g GuideSet) Empty() bool {
	return len(g.Horizontal) == 0 && len(g.Vertical) == 0
}
