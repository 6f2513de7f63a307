package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"studio/internal/domain"
	"studio/internal/editor"
	"studio/internal/geometry"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerElementTools() {
	// ── list_elements ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_elements",
		mcp.WithDescription("List the elements on a page in stacking order, optionally filtered by type"),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
		mcp.WithString("type", mcp.Description("Filter by element type: text, rectangle, circle, line, arrow (optional)")),
	), s.handleListElements)

	// ── add_element ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("add_element",
		mcp.WithDescription("Add an element to a page. It is centered on the canvas unless x and y are given. Text font size defaults to 2.5% of the canvas width."),
		mcp.WithString("type",
			mcp.Description("Element type: text, rectangle, circle, line, arrow"),
			mcp.Required(),
		),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
		mcp.WithNumber("x", mcp.Description("X position (optional)")),
		mcp.WithNumber("y", mcp.Description("Y position (optional)")),
		mcp.WithNumber("width", mcp.Description("Width (optional)")),
		mcp.WithNumber("height", mcp.Description("Height (optional, shapes only)")),
		mcp.WithString("content", mcp.Description("Text content (text only)")),
		mcp.WithNumber("fontSize", mcp.Description("Font size (text only)")),
		mcp.WithString("fontFamily", mcp.Description("Font family (text only)")),
		mcp.WithString("textAlign", mcp.Description("left, center or right (text only)")),
		mcp.WithString("textColor", mcp.Description("Hex text color (text only)")),
		mcp.WithBoolean("bold", mcp.Description("Bold text (text only)")),
		mcp.WithBoolean("italic", mcp.Description("Italic text (text only)")),
		mcp.WithString("backgroundColor", mcp.Description("Hex fill color (shapes only)")),
		mcp.WithString("borderColor", mcp.Description("Hex border color (shapes only)")),
		mcp.WithNumber("borderWidth", mcp.Description("Border width (shapes only)")),
		mcp.WithString("borderStyle", mcp.Description("solid, dashed or dotted (shapes only)")),
	), s.handleAddElement)

	// ── batch_add_elements ─────────────────────────────
	s.mcp.AddTool(mcp.NewTool("batch_add_elements",
		mcp.WithDescription("Add several elements at once as a single undo step. Elements without x/y are placed so they don't overlap existing ones."),
		mcp.WithString("elements",
			mcp.Description("JSON array of element objects with the same fields as add_element"),
			mcp.Required(),
		),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
	), s.handleBatchAddElements)

	// ── update_element ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("update_element",
		mcp.WithDescription("Change fields of an element. Width and height are raised to the minimum size."),
		mcp.WithString("elementId", mcp.Description("Element ID"), mcp.Required()),
		mcp.WithString("patch",
			mcp.Description(`JSON object of fields to change, e.g. {"x":10,"content":"Hi","backgroundColor":"#ff0000","locked":true}`),
			mcp.Required(),
		),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
	), s.handleUpdateElement)

	// ── move_element ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("move_element",
		mcp.WithDescription("Drag an element to a new position. Snaps to the canvas and sibling elements like a manual drag; if the element is part of the selection the whole selection moves."),
		mcp.WithString("elementId", mcp.Description("Element ID"), mcp.Required()),
		mcp.WithNumber("x", mcp.Description("Target X position"), mcp.Required()),
		mcp.WithNumber("y", mcp.Description("Target Y position"), mcp.Required()),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
	), s.handleMoveElement)

	// ── resize_element ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("resize_element",
		mcp.WithDescription("Drag a resize handle by (dx, dy). Corners of text keep the aspect ratio and scale the font. Text has no n/s handles."),
		mcp.WithString("elementId", mcp.Description("Element ID"), mcp.Required()),
		mcp.WithString("handle", mcp.Description("Handle: n, s, e, w, ne, nw, se, sw (default se)")),
		mcp.WithNumber("dx", mcp.Description("Horizontal handle movement"), mcp.Required()),
		mcp.WithNumber("dy", mcp.Description("Vertical handle movement"), mcp.Required()),
		mcp.WithBoolean("alt", mcp.Description("Resize symmetrically around the center")),
		mcp.WithBoolean("shift", mcp.Description("With alt, scale uniformly from the center")),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
	), s.handleResizeElement)

	// ── delete_elements (destructive) ──────────────────
	s.mcp.AddTool(mcp.NewTool("delete_elements",
		mcp.WithDescription("🛑 DESTRUCTIVE: Delete elements with a single approval. Unknown IDs are ignored. Requires user approval."),
		mcp.WithString("elementIds",
			mcp.Description("Comma-separated element IDs to delete"),
			mcp.Required(),
		),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDeleteElements)

	// ── select_elements ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("select_elements",
		mcp.WithDescription("Replace the selection. An empty list clears it. The selection decides what move_element drags together."),
		mcp.WithString("elementIds", mcp.Description("Comma-separated element IDs")),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
	), s.handleSelectElements)

	// ── arrange_elements ───────────────────────────────
	s.mcp.AddTool(mcp.NewTool("arrange_elements",
		mcp.WithDescription("Lay out all unlocked elements of a page in rows as a single undo step"),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
		mcp.WithNumber("startX", mcp.Description("Starting X position (default 20)")),
		mcp.WithNumber("startY", mcp.Description("Starting Y position (default 20)")),
	), s.handleArrangeElements)
}

// ── Handlers ───────────────────────────────────────────────

type elementSummary struct {
	ID      string  `json:"id"`
	Type    string  `json:"type"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Locked  bool    `json:"locked,omitempty"`
	Preview string  `json:"preview,omitempty"` // first 200 chars of text content
}

func summarizeElement(el domain.Element) elementSummary {
	sum := elementSummary{
		ID:     el.ID,
		Type:   string(el.Kind),
		X:      el.X,
		Y:      el.Y,
		Width:  el.Width,
		Height: el.Height,
		Locked: el.Locked,
	}
	if el.Text != nil {
		preview := []rune(el.Text.Content)
		if len(preview) > 200 {
			preview = append(preview[:200], []rune("...")...)
		}
		sum.Preview = string(preview)
	}
	return sum
}

func (s *Server) handleListElements(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	ed, err := s.resolveEditor(args)
	if err != nil {
		return nil, err
	}
	filter := req.GetString("type", "")
	summaries := []elementSummary{}
	for _, el := range ed.Elements() {
		if filter != "" && string(el.Kind) != filter {
			continue
		}
		summaries = append(summaries, summarizeElement(el))
	}
	return jsonResult(summaries)
}

// elementSpec is the agent-facing shape of a new element.
type elementSpec struct {
	Type            string   `json:"type"`
	X               *float64 `json:"x"`
	Y               *float64 `json:"y"`
	Width           float64  `json:"width"`
	Height          float64  `json:"height"`
	Content         string   `json:"content"`
	FontSize        float64  `json:"fontSize"`
	FontFamily      string   `json:"fontFamily"`
	TextAlign       string   `json:"textAlign"`
	TextColor       string   `json:"textColor"`
	Bold            bool     `json:"bold"`
	Italic          bool     `json:"italic"`
	BackgroundColor string   `json:"backgroundColor"`
	BorderColor     string   `json:"borderColor"`
	BorderWidth     *float64 `json:"borderWidth"`
	BorderStyle     string   `json:"borderStyle"`
}

func (sp elementSpec) kind() (domain.ElementKind, error) {
	k := domain.ElementKind(sp.Type)
	if !k.Valid() {
		return k, fmt.Errorf("unknown element type %q", sp.Type)
	}
	return k, nil
}

func (sp elementSpec) options() geometry.CreateOptions {
	return geometry.CreateOptions{
		X:               sp.X,
		Y:               sp.Y,
		Width:           sp.Width,
		Height:          sp.Height,
		Content:         sp.Content,
		FontSize:        sp.FontSize,
		FontFamily:      sp.FontFamily,
		TextAlign:       domain.TextAlign(sp.TextAlign),
		TextColor:       sp.TextColor,
		Bold:            sp.Bold,
		Italic:          sp.Italic,
		BackgroundColor: sp.BackgroundColor,
		BorderColor:     sp.BorderColor,
		BorderWidth:     sp.BorderWidth,
		BorderStyle:     domain.BorderStyle(sp.BorderStyle),
	}
}

// specFromArgs reads add_element arguments, which share elementSpec's keys.
func specFromArgs(args map[string]any) (elementSpec, error) {
	var sp elementSpec
	data, err := marshalJSON(args)
	if err != nil {
		return sp, err
	}
	if err := json.Unmarshal(data, &sp); err != nil {
		return sp, fmt.Errorf("invalid element arguments: %w", err)
	}
	return sp, nil
}

func (s *Server) handleAddElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	sp, err := specFromArgs(args)
	if err != nil {
		return nil, err
	}
	kind, err := sp.kind()
	if err != nil {
		return nil, err
	}
	ed, err := s.resolveEditor(args)
	if err != nil {
		return nil, err
	}
	el, err := ed.AddElement(kind, sp.options())
	if err != nil {
		return nil, err
	}
	s.commit(ctx, ed)
	return jsonResult(el)
}

func (s *Server) measurerOrDefault() geometry.Measurer {
	if s.measurer != nil {
		return s.measurer
	}
	return geometry.FixedMeasurer{}
}

func (s *Server) handleBatchAddElements(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	var specs []elementSpec
	if err := parseJSON(req.GetString("elements", ""), &specs); err != nil {
		return nil, fmt.Errorf("invalid elements JSON: %w", err)
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("elements is required")
	}
	ed, err := s.resolveEditor(args)
	if err != nil {
		return nil, err
	}

	size := ed.CanvasSize()
	layout := NewLayoutEngine(size.Width)
	occupied := ed.Elements()
	built := make([]domain.Element, 0, len(specs))
	for i, sp := range specs {
		kind, err := sp.kind()
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		el := geometry.CreateElement(kind, sp.options(), size.Width, size.Height, s.measurerOrDefault())
		if sp.X == nil || sp.Y == nil {
			el.X, el.Y = layout.NextPosition(occupied, el.Width, el.Height)
		}
		occupied = append(occupied, el)
		built = append(built, el)
	}

	added, err := ed.AddElements(built)
	if err != nil {
		return nil, err
	}
	s.commit(ctx, ed)

	summaries := make([]elementSummary, len(added))
	for i, el := range added {
		summaries[i] = summarizeElement(el)
	}
	return jsonResult(summaries)
}

func (s *Server) handleUpdateElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	ed, err := s.resolveEditor(args)
	if err != nil {
		return nil, err
	}
	el, err := getElementForTool(ed, args)
	if err != nil {
		return nil, err
	}
	var patch domain.ElementPatch
	if err := parseJSON(req.GetString("patch", ""), &patch); err != nil {
		return nil, fmt.Errorf("invalid patch JSON: %w", err)
	}
	if patch.IsEmpty() {
		return nil, fmt.Errorf("patch changes nothing")
	}
	if err := ed.UpdateElement(el.ID, patch); err != nil {
		return nil, err
	}
	s.commit(ctx, ed)
	updated, _ := ed.Element(el.ID)
	return jsonResult(updated)
}

func (s *Server) handleMoveElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	ed, err := s.resolveEditor(args)
	if err != nil {
		return nil, err
	}
	el, err := getElementForTool(ed, args)
	if err != nil {
		return nil, err
	}
	x := getFloat(args, "x", el.X)
	y := getFloat(args, "y", el.Y)

	// Replay a pointer drag in screen space so snapping applies
	v := ed.Viewport()
	start := editor.Pointer{X: el.X * v.Scale, Y: el.Y * v.Scale}
	end := editor.Pointer{X: x * v.Scale, Y: y * v.Scale}
	if !ed.OnDragStart(el.ID, start) {
		return nil, fmt.Errorf("element %s cannot be moved (locked or not in edit mode)", el.ID)
	}
	ed.OnDrag(end)
	ed.Frame()
	guides := ed.Alignments()
	ed.OnDragEnd(end)
	s.commit(ctx, ed)

	moved, _ := ed.Element(el.ID)
	return jsonResult(map[string]any{
		"element": summarizeElement(moved),
		"snapped": moved.X != x || moved.Y != y,
		"guides":  guides,
	})
}

func (s *Server) handleResizeElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	ed, err := s.resolveEditor(args)
	if err != nil {
		return nil, err
	}
	el, err := getElementForTool(ed, args)
	if err != nil {
		return nil, err
	}
	dir := geometry.Direction(req.GetString("handle", string(geometry.DirSE)))
	if !dir.Valid() {
		return nil, fmt.Errorf("unknown handle %q", dir)
	}
	v := ed.Viewport()
	end := editor.Pointer{
		X:     getFloat(args, "dx", 0) * v.Scale,
		Y:     getFloat(args, "dy", 0) * v.Scale,
		Alt:   getBool(args, "alt"),
		Shift: getBool(args, "shift"),
	}
	if !ed.OnResizeStart(el.ID, dir, editor.Pointer{}) {
		return nil, fmt.Errorf("element %s has no %s handle or is locked", el.ID, dir)
	}
	ed.OnResize(end)
	ed.OnResizeEnd(end)
	s.commit(ctx, ed)

	resized, _ := ed.Element(el.ID)
	return jsonResult(resized)
}

func (s *Server) handleDeleteElements(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	ids := splitIDs(req.GetString("elementIds", ""))
	if len(ids) == 0 {
		return nil, fmt.Errorf("elementIds is required")
	}
	ed, err := s.resolveEditor(args)
	if err != nil {
		return nil, err
	}
	sess, err := s.resolveSession(args)
	if err != nil {
		return nil, err
	}

	// Only ids on the page are shown to the user
	var present []string
	for _, id := range ids {
		if _, err := ed.Element(id); err == nil {
			present = append(present, id)
		}
	}
	if len(present) == 0 {
		return textResult("Deleted 0 element(s)"), nil
	}
	err = s.approval.ConfirmDeletion("delete_elements",
		fmt.Sprintf("Delete %d element(s)", len(present)),
		DeletionTarget{DocumentID: sess.Document().ID, PageID: ed.ActivePage().ID, ElementIDs: present})
	if err != nil {
		return textResult(deletionRefused(err)), nil
	}

	n := ed.DeleteElements(present...)
	if n > 0 {
		s.commit(ctx, ed)
	}
	return textResult(fmt.Sprintf("Deleted %d element(s)", n)), nil
}

func (s *Server) handleSelectElements(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	ed, err := s.resolveEditor(args)
	if err != nil {
		return nil, err
	}
	ids := splitIDs(req.GetString("elementIds", ""))
	if len(ids) == 0 {
		ed.ClearSelection()
	} else {
		ed.SelectElements(ids)
	}
	return jsonResult(ed.Selection())
}

func (s *Server) handleArrangeElements(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	ed, err := s.resolveEditor(args)
	if err != nil {
		return nil, err
	}
	var movable []domain.Element
	for _, el := range ed.Elements() {
		if !el.Locked {
			movable = append(movable, el)
		}
	}
	if len(movable) == 0 {
		return textResult("Nothing to arrange"), nil
	}

	layout := NewLayoutEngine(ed.CanvasSize().Width)
	arranged := layout.ArrangeGroup(domain.CloneElements(movable),
		getFloat(args, "startX", Padding), getFloat(args, "startY", Padding))

	updates := make([]editor.ElementUpdate, len(arranged))
	for i, el := range arranged {
		updates[i] = editor.ElementUpdate{ID: el.ID, Patch: domain.PositionPatch(el.X, el.Y)}
	}
	if err := ed.UpdateElements(updates); err != nil {
		return nil, err
	}
	s.commit(ctx, ed)
	return textResult(fmt.Sprintf("Arranged %d elements", len(arranged))), nil
}
