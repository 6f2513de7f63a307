package domain

// ElementKind tags the variant of an Element.
type ElementKind string

const (
	KindText      ElementKind = "text"
	KindRectangle ElementKind = "rectangle"
	KindCircle    ElementKind = "circle"
	KindLine      ElementKind = "line"
	KindArrow     ElementKind = "arrow"
)

// Kinds lists every element kind in toolbar order.
var Kinds = []ElementKind{KindText, KindRectangle, KindCircle, KindLine, KindArrow}

// Valid reports whether k is one of the known element kinds.
func (k ElementKind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

const (
	MinWidth    = 50.0
	MinHeight   = 20.0
	MinFontSize = 8.0
)

type TextAlign string

const (
	AlignLeft   TextAlign = "left"
	AlignCenter TextAlign = "center"
	AlignRight  TextAlign = "right"
)

type BorderStyle string

const (
	BorderSolid  BorderStyle = "solid"
	BorderDashed BorderStyle = "dashed"
	BorderDotted BorderStyle = "dotted"
)

// TextProps holds the fields that only text elements carry.
type TextProps struct {
	Content       string    `json:"content"`
	FontSize      float64   `json:"fontSize"`
	FontFamily    string    `json:"fontFamily"`
	TextAlign     TextAlign `json:"textAlign"`
	Bold          bool      `json:"bold"`
	Italic        bool      `json:"italic"`
	Underline     bool      `json:"underline"`
	Strikethrough bool      `json:"strikethrough"`
	TextColor     string    `json:"textColor"`
	IsEditable    bool      `json:"isEditable"`
}

// ShapeProps holds the fields shared by rectangle, circle, line and arrow.
type ShapeProps struct {
	BackgroundColor string      `json:"backgroundColor"`
	BorderColor     string      `json:"borderColor"`
	BorderWidth     float64     `json:"borderWidth"`
	BorderStyle     BorderStyle `json:"borderStyle"`
}

// Element is a positioned, sized visual unit on a page.
// Exactly one of Text or Shape is set, matching Kind.
type Element struct {
	ID       string      `json:"id"`
	Kind     ElementKind `json:"type"`
	X        float64     `json:"x"`
	Y        float64     `json:"y"`
	Width    float64     `json:"width"`
	Height   float64     `json:"height"`
	Rotation float64     `json:"rotation"`
	Locked   bool        `json:"locked"`
	IsNew    bool        `json:"isNew,omitempty"`
	Text     *TextProps  `json:"text,omitempty"`
	Shape    *ShapeProps `json:"shape,omitempty"`
}

func (e Element) IsText() bool { return e.Kind == KindText }

// Clone returns a deep copy; the variant payloads are not shared.
func (e Element) Clone() Element {
	c := e
	if e.Text != nil {
		t := *e.Text
		c.Text = &t
	}
	if e.Shape != nil {
		s := *e.Shape
		c.Shape = &s
	}
	return c
}

// Rect returns the axis-aligned bounds of the element.
func (e Element) Rect() Rect {
	return Rect{X: e.X, Y: e.Y, W: e.Width, H: e.Height}
}

// FontSize returns the text font size, or 0 for shapes.
func (e Element) FontSize() float64 {
	if e.Text == nil {
		return 0
	}
	return e.Text.FontSize
}

// Rect is an axis-aligned box in canvas units.
type Rect struct {
	X, Y, W, H float64
}

func (r Rect) Right() float64   { return r.X + r.W }
func (r Rect) Bottom() float64  { return r.Y + r.H }
func (r Rect) CenterX() float64 { return r.X + r.W/2 }
func (r Rect) CenterY() float64 { return r.Y + r.H/2 }

// CloneElements deep-copies a slice of elements.
func CloneElements(in []Element) []Element {
	if in == nil {
		return nil
	}
	out := make([]Element, len(in))
	for i, el := range in {
		out[i] = el.Clone()
	}
	return out
}

// IndexOf returns the position of the element with id, or -1.
func IndexOf(elements []Element, id string) int {
	for i, el := range elements {
		if el.ID == id {
			return i
		}
	}
	return -1
}
