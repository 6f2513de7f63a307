package domain

// ElementPatch is a subset of element fields. Nil fields are untouched.
// Update history entries store a before/after pair of patches over the
// same field set, so a drag records only {x, y}.
type ElementPatch struct {
	X        *float64 `json:"x,omitempty"`
	Y        *float64 `json:"y,omitempty"`
	Width    *float64 `json:"width,omitempty"`
	Height   *float64 `json:"height,omitempty"`
	Rotation *float64 `json:"rotation,omitempty"`
	Locked   *bool    `json:"locked,omitempty"`

	Content       *string    `json:"content,omitempty"`
	FontSize      *float64   `json:"fontSize,omitempty"`
	FontFamily    *string    `json:"fontFamily,omitempty"`
	TextAlign     *TextAlign `json:"textAlign,omitempty"`
	Bold          *bool      `json:"bold,omitempty"`
	Italic        *bool      `json:"italic,omitempty"`
	Underline     *bool      `json:"underline,omitempty"`
	Strikethrough *bool      `json:"strikethrough,omitempty"`
	TextColor     *string    `json:"textColor,omitempty"`

	BackgroundColor *string      `json:"backgroundColor,omitempty"`
	BorderColor     *string      `json:"borderColor,omitempty"`
	BorderWidth     *float64     `json:"borderWidth,omitempty"`
	BorderStyle     *BorderStyle `json:"borderStyle,omitempty"`

	IsNew *bool `json:"isNew,omitempty"`
}

func Float(v float64) *float64 { return &v }
func String(v string) *string  { return &v }
func Bool(v bool) *bool        { return &v }

// PositionPatch is the field subset written by a drag.
func PositionPatch(x, y float64) ElementPatch {
	return ElementPatch{X: Float(x), Y: Float(y)}
}

// GeometryPatch is the field subset written by a resize.
func GeometryPatch(x, y, w, h float64) ElementPatch {
	return ElementPatch{X: Float(x), Y: Float(y), Width: Float(w), Height: Float(h)}
}

// GeometryOf captures position and size of el, plus font size for text.
func GeometryOf(el Element) ElementPatch {
	p := GeometryPatch(el.X, el.Y, el.Width, el.Height)
	if el.Text != nil {
		p.FontSize = Float(el.Text.FontSize)
	}
	return p
}

// Settled extends p to clear el's new-element marker when el still carries
// it. The marker then travels through history like any other field.
func (p ElementPatch) Settled(el Element) ElementPatch {
	if el.IsNew {
		p.IsNew = Bool(false)
	}
	return p
}

// IsEmpty reports whether the patch touches no field.
func (p ElementPatch) IsEmpty() bool {
	return p == ElementPatch{}
}

// Apply returns a copy of el with the patch fields written. Text fields are
// ignored for shapes and shape fields for text.
func (p ElementPatch) Apply(el Element) Element {
	out := el.Clone()
	setF(&out.X, p.X)
	setF(&out.Y, p.Y)
	setF(&out.Width, p.Width)
	setF(&out.Height, p.Height)
	setF(&out.Rotation, p.Rotation)
	setB(&out.Locked, p.Locked)
	setB(&out.IsNew, p.IsNew)

	if t := out.Text; t != nil {
		setS(&t.Content, p.Content)
		setF(&t.FontSize, p.FontSize)
		setS(&t.FontFamily, p.FontFamily)
		if p.TextAlign != nil {
			t.TextAlign = *p.TextAlign
		}
		setB(&t.Bold, p.Bold)
		setB(&t.Italic, p.Italic)
		setB(&t.Underline, p.Underline)
		setB(&t.Strikethrough, p.Strikethrough)
		setS(&t.TextColor, p.TextColor)
	}
	if s := out.Shape; s != nil {
		setS(&s.BackgroundColor, p.BackgroundColor)
		setS(&s.BorderColor, p.BorderColor)
		setF(&s.BorderWidth, p.BorderWidth)
		if p.BorderStyle != nil {
			s.BorderStyle = *p.BorderStyle
		}
	}
	return out
}

// Capture returns a patch over the same field set as p holding el's
// current values. Fields el does not carry are left nil.
func (p ElementPatch) Capture(el Element) ElementPatch {
	var c ElementPatch
	capF(&c.X, p.X, el.X)
	capF(&c.Y, p.Y, el.Y)
	capF(&c.Width, p.Width, el.Width)
	capF(&c.Height, p.Height, el.Height)
	capF(&c.Rotation, p.Rotation, el.Rotation)
	capB(&c.Locked, p.Locked, el.Locked)
	capB(&c.IsNew, p.IsNew, el.IsNew)

	if t := el.Text; t != nil {
		capS(&c.Content, p.Content, t.Content)
		capF(&c.FontSize, p.FontSize, t.FontSize)
		capS(&c.FontFamily, p.FontFamily, t.FontFamily)
		if p.TextAlign != nil {
			v := t.TextAlign
			c.TextAlign = &v
		}
		capB(&c.Bold, p.Bold, t.Bold)
		capB(&c.Italic, p.Italic, t.Italic)
		capB(&c.Underline, p.Underline, t.Underline)
		capB(&c.Strikethrough, p.Strikethrough, t.Strikethrough)
		capS(&c.TextColor, p.TextColor, t.TextColor)
	}
	if s := el.Shape; s != nil {
		capS(&c.BackgroundColor, p.BackgroundColor, s.BackgroundColor)
		capS(&c.BorderColor, p.BorderColor, s.BorderColor)
		capF(&c.BorderWidth, p.BorderWidth, s.BorderWidth)
		if p.BorderStyle != nil {
			v := s.BorderStyle
			c.BorderStyle = &v
		}
	}
	return c
}

func setF(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setS(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setB(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func capF(dst **float64, field *float64, v float64) {
	if field != nil {
		*dst = &v
	}
}

func capS(dst **string, field *string, v string) {
	if field != nil {
		*dst = &v
	}
}

func capB(dst **bool, field *bool, v bool) {
	if field != nil {
		*dst = &v
	}
}
