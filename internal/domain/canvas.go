package domain

// CanvasSize describes one page's drawing surface.
type CanvasSize struct {
	Name     string  `json:"name"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Category string  `json:"category,omitempty"`
}

var CanvasPresets = []CanvasSize{
	{Name: "Presentation 16:9", Width: 1280, Height: 720, Category: "presentation"},
	{Name: "Instagram Post", Width: 1080, Height: 1080, Category: "social"},
	{Name: "Instagram Story", Width: 1080, Height: 1920, Category: "social"},
	{Name: "A4", Width: 794, Height: 1123, Category: "print"},
	{Name: "Twitter Post", Width: 1200, Height: 675, Category: "social"},
}

// DefaultCanvasSize is the size given to new pages.
func DefaultCanvasSize() CanvasSize {
	return CanvasPresets[0]
}

// PresetByName looks up a preset canvas size.
func PresetByName(name string) (CanvasSize, bool) {
	for _, p := range CanvasPresets {
		if p.Name == name {
			return p, true
		}
	}
	return CanvasSize{}, false
}
