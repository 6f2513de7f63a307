package geometry

import (
	"math"

	"studio/internal/domain"
)

const (
	DefaultFontRatio  = 0.025
	DefaultTextWidth  = 200.0
	DefaultShapeRatio = 0.2
	textHeightFactor  = 1.4

	DefaultText            = "Add your text"
	DefaultFontFamily      = "Inter"
	DefaultTextColor       = "#000000"
	DefaultBackgroundColor = "#3b82f6"
	DefaultBorderColor     = "#1e40af"
	DefaultBorderWidth     = 2.0
	Transparent            = "transparent"
)

// CreateOptions overrides factory defaults. Zero values mean "use default".
type CreateOptions struct {
	X, Y          *float64
	Width, Height float64

	Content    string
	FontSize   float64
	FontRatio  float64
	FontFamily string
	TextAlign  domain.TextAlign
	TextColor  string
	Bold       bool
	Italic     bool

	BackgroundColor string
	BorderColor     string
	BorderWidth     *float64
	BorderStyle     domain.BorderStyle
}

// CreateElement builds a new element of the given kind centered on the
// canvas unless a position is given. The id is left empty.
func CreateElement(kind domain.ElementKind, opts CreateOptions, canvasW, canvasH float64, m Measurer) domain.Element {
	var el domain.Element
	if kind == domain.KindText {
		el = newText(opts, canvasW, m)
	} else {
		el = newShape(kind, opts, canvasW, canvasH)
	}
	el.Width = math.Max(el.Width, domain.MinWidth)
	el.Height = math.Max(el.Height, domain.MinHeight)

	el.X = (canvasW - el.Width) / 2
	el.Y = (canvasH - el.Height) / 2
	if opts.X != nil {
		el.X = *opts.X
	}
	if opts.Y != nil {
		el.Y = *opts.Y
	}
	el.IsNew = true
	return el
}

func newText(opts CreateOptions, canvasW float64, m Measurer) domain.Element {
	ratio := opts.FontRatio
	if ratio <= 0 {
		ratio = DefaultFontRatio
	}
	props := &domain.TextProps{
		Content:    or(opts.Content, DefaultText),
		FontSize:   opts.FontSize,
		FontFamily: or(opts.FontFamily, DefaultFontFamily),
		TextAlign:  domain.AlignCenter,
		TextColor:  or(opts.TextColor, DefaultTextColor),
		Bold:       opts.Bold,
		Italic:     opts.Italic,
		IsEditable: true,
	}
	if props.FontSize <= 0 {
		props.FontSize = math.Max(domain.MinFontSize, math.Round(canvasW*ratio))
	}
	if opts.TextAlign != "" {
		props.TextAlign = opts.TextAlign
	}

	width := opts.Width
	if width <= 0 {
		measured := 0.0
		if m != nil {
			measured = m.TextWidth(props.Content, StyleOf(props))
		}
		width = math.Max(DefaultTextWidth, math.Ceil(measured)+2*TextPadding)
	}
	height := opts.Height
	if height <= 0 {
		height = props.FontSize * textHeightFactor
	}
	return domain.Element{Kind: domain.KindText, Width: width, Height: height, Text: props}
}

func newShape(kind domain.ElementKind, opts CreateOptions, canvasW, canvasH float64) domain.Element {
	side := math.Min(canvasW, canvasH) * DefaultShapeRatio
	props := &domain.ShapeProps{
		BackgroundColor: or(opts.BackgroundColor, DefaultBackgroundColor),
		BorderColor:     or(opts.BorderColor, DefaultBorderColor),
		BorderWidth:     DefaultBorderWidth,
		BorderStyle:     domain.BorderSolid,
	}
	if kind == domain.KindLine || kind == domain.KindArrow {
		props.BackgroundColor = or(opts.BackgroundColor, Transparent)
	}
	if opts.BorderWidth != nil {
		props.BorderWidth = *opts.BorderWidth
	}
	if opts.BorderStyle != "" {
		props.BorderStyle = opts.BorderStyle
	}
	w, h := side, side
	if opts.Width > 0 {
		w = opts.Width
	}
	if opts.Height > 0 {
		h = opts.Height
	}
	return domain.Element{Kind: kind, Width: w, Height: h, Shape: props}
}

func or(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
