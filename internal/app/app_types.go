package app

import (
	"studio/internal/domain"
	"studio/internal/geometry"
)

// CreateElementInput is the frontend's request for a new element. Zero
// values take the factory defaults.
type CreateElementInput struct {
	X      *float64 `json:"x,omitempty"`
	Y      *float64 `json:"y,omitempty"`
	Width  float64  `json:"width,omitempty"`
	Height float64  `json:"height,omitempty"`

	Content    string  `json:"content,omitempty"`
	FontSize   float64 `json:"fontSize,omitempty"`
	FontFamily string  `json:"fontFamily,omitempty"`
	TextAlign  string  `json:"textAlign,omitempty"`
	TextColor  string  `json:"textColor,omitempty"`
	Bold       bool    `json:"bold,omitempty"`
	Italic     bool    `json:"italic,omitempty"`

	BackgroundColor string   `json:"backgroundColor,omitempty"`
	BorderColor     string   `json:"borderColor,omitempty"`
	BorderWidth     *float64 `json:"borderWidth,omitempty"`
	BorderStyle     string   `json:"borderStyle,omitempty"`
}

func (in CreateElementInput) options() geometry.CreateOptions {
	return geometry.CreateOptions{
		X:               in.X,
		Y:               in.Y,
		Width:           in.Width,
		Height:          in.Height,
		Content:         in.Content,
		FontSize:        in.FontSize,
		FontFamily:      in.FontFamily,
		TextAlign:       domain.TextAlign(in.TextAlign),
		TextColor:       in.TextColor,
		Bold:            in.Bold,
		Italic:          in.Italic,
		BackgroundColor: in.BackgroundColor,
		BorderColor:     in.BorderColor,
		BorderWidth:     in.BorderWidth,
		BorderStyle:     domain.BorderStyle(in.BorderStyle),
	}
}

// HistoryState tells the toolbar which history buttons are enabled.
type HistoryState struct {
	CanUndo bool `json:"canUndo"`
	CanRedo bool `json:"canRedo"`
}
