package geometry

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"studio/internal/domain"
)

const (
	// TextPadding is the inner padding on each side of a text box.
	TextPadding       = 8.0
	DefaultLineHeight = 1.5
)

// TextStyle is everything measurement needs to know about a text element.
type TextStyle struct {
	FontSize   float64
	FontFamily string
	Bold       bool
	Italic     bool
	LineHeight float64
}

// StyleOf derives the measurement style from a text payload.
func StyleOf(t *domain.TextProps) TextStyle {
	if t == nil {
		return TextStyle{FontSize: 16, LineHeight: DefaultLineHeight}
	}
	return TextStyle{
		FontSize:   t.FontSize,
		FontFamily: t.FontFamily,
		Bold:       t.Bold,
		Italic:     t.Italic,
		LineHeight: DefaultLineHeight,
	}
}

func (s TextStyle) lineHeight() float64 {
	if s.LineHeight <= 0 {
		return DefaultLineHeight
	}
	return s.LineHeight
}

// Measurer measures text content. Width is the natural single-line width of
// the longest line; height is the wrapped height inside a box of the given
// width, padding included.
type Measurer interface {
	TextWidth(content string, style TextStyle) float64
	TextHeight(content string, width float64, style TextStyle) float64
}

// ─── Font measurer ──────────────────────────────────────────

type faceKey struct {
	size   int
	bold   bool
	italic bool
	mono   bool
}

// FontMeasurer measures text with the Go font family. Faces are cached per
// rounded size and style.
type FontMeasurer struct {
	mu         sync.Mutex
	regular    *opentype.Font
	bold       *opentype.Font
	italic     *opentype.Font
	boldItalic *opentype.Font
	mono       *opentype.Font
	cache      map[faceKey]font.Face
}

func NewFontMeasurer() (*FontMeasurer, error) {
	m := &FontMeasurer{cache: map[faceKey]font.Face{}}
	sources := []struct {
		dst  **opentype.Font
		name string
		ttf  []byte
	}{
		{&m.regular, "regular", goregular.TTF},
		{&m.bold, "bold", gobold.TTF},
		{&m.italic, "italic", goitalic.TTF},
		{&m.boldItalic, "bold italic", gobolditalic.TTF},
		{&m.mono, "mono", gomono.TTF},
	}
	for _, s := range sources {
		f, err := opentype.Parse(s.ttf)
		if err != nil {
			return nil, fmt.Errorf("parse %s font: %w", s.name, err)
		}
		*s.dst = f
	}
	return m, nil
}

func isMonospace(family string) bool {
	f := strings.ToLower(family)
	return strings.Contains(f, "mono") || strings.Contains(f, "courier") || strings.Contains(f, "code")
}

// faceLocked returns the cached face for style. m.mu must be held.
func (m *FontMeasurer) faceLocked(style TextStyle) (font.Face, error) {
	size := int(math.Round(style.FontSize))
	if size < 1 {
		size = 1
	}
	key := faceKey{size: size, bold: style.Bold, italic: style.Italic, mono: isMonospace(style.FontFamily)}
	if f, ok := m.cache[key]; ok {
		return f, nil
	}

	var base *opentype.Font
	switch {
	case key.mono:
		base = m.mono
	case key.bold && key.italic:
		base = m.boldItalic
	case key.bold:
		base = m.bold
	case key.italic:
		base = m.italic
	default:
		base = m.regular
	}
	face, err := opentype.NewFace(base, &opentype.FaceOptions{Size: float64(size), DPI: 72, Hinting: font.HintingNone})
	if err != nil {
		return nil, fmt.Errorf("new face size %d: %w", size, err)
	}
	m.cache[key] = face
	return face, nil
}

// measure runs fn with a width function for style. Faces keep glyph state,
// so the whole measurement holds m.mu.
func (m *FontMeasurer) measure(style TextStyle, fn func(width func(string) float64) float64) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	face, err := m.faceLocked(style)
	if err != nil {
		// approximate with half an em per rune
		return fn(approxWidth(style.FontSize))
	}
	scale := style.FontSize / math.Max(1, math.Round(style.FontSize))
	return fn(func(s string) float64 {
		return float64(font.MeasureString(face, s)) / 64 * scale
	})
}

func (m *FontMeasurer) TextWidth(content string, style TextStyle) float64 {
	return m.measure(style, func(width func(string) float64) float64 {
		return longestLine(content, width)
	})
}

func (m *FontMeasurer) TextHeight(content string, width float64, style TextStyle) float64 {
	lines := m.measure(style, func(measure func(string) float64) float64 {
		return float64(wrapLineCount(content, width-2*TextPadding, measure))
	})
	return lines*style.FontSize*style.lineHeight() + 2*TextPadding
}

// ─── Fixed measurer ─────────────────────────────────────────

// FixedMeasurer gives every rune an advance of Advance × font size. It is
// deterministic and font-free, for tests and headless use.
type FixedMeasurer struct {
	Advance float64
}

func (f FixedMeasurer) advance() float64 {
	if f.Advance <= 0 {
		return 0.5
	}
	return f.Advance
}

func (f FixedMeasurer) TextWidth(content string, style TextStyle) float64 {
	return longestLine(content, approxWidthRatio(style.FontSize, f.advance()))
}

func (f FixedMeasurer) TextHeight(content string, width float64, style TextStyle) float64 {
	lines := wrapLineCount(content, width-2*TextPadding, approxWidthRatio(style.FontSize, f.advance()))
	return float64(lines)*style.FontSize*style.lineHeight() + 2*TextPadding
}

func approxWidth(size float64) func(string) float64 {
	return approxWidthRatio(size, 0.5)
}

func approxWidthRatio(size, ratio float64) func(string) float64 {
	return func(s string) float64 {
		return float64(utf8.RuneCountInString(s)) * size * ratio
	}
}

// ─── Wrapping ───────────────────────────────────────────────

func longestLine(content string, measure func(string) float64) float64 {
	var widest float64
	for _, line := range strings.Split(content, "\n") {
		widest = math.Max(widest, measure(line))
	}
	return widest
}

// wrapLineCount greedily word-wraps content into maxWidth and returns the
// number of lines. A word wider than maxWidth takes a line of its own.
func wrapLineCount(content string, maxWidth float64, measure func(string) float64) int {
	count := 0
	for _, para := range strings.Split(content, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			count++
			continue
		}
		line := words[0]
		count++
		for _, w := range words[1:] {
			next := line + " " + w
			if measure(next) <= maxWidth {
				line = next
				continue
			}
			line = w
			count++
		}
	}
	return count
}
