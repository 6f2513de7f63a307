package mcpserver

import (
	"context"
	"fmt"

	"studio/internal/domain"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPageTools() {
	// ── list_pages ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_pages",
		mcp.WithDescription("List the pages of the open document in order, with canvas sizes and element counts"),
		mcp.WithString("documentId", mcp.Description("Document ID (optional, defaults to the open document)")),
	), s.handleListPages)

	// ── set_active_page ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("set_active_page",
		mcp.WithDescription("Set the active page for subsequent tool calls. Tools that accept pageId will default to this."),
		mcp.WithString("pageId",
			mcp.Description("ID of the page to make active"),
			mcp.Required(),
		),
	), s.handleSetActivePage)

	// ── add_page ───────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("add_page",
		mcp.WithDescription("Add a page after the active page and make it active. Canvas size defaults to the active page's."),
		mcp.WithString("canvas", mcp.Description("Canvas preset name (optional)")),
		mcp.WithNumber("width", mcp.Description("Custom canvas width (optional, with height)")),
		mcp.WithNumber("height", mcp.Description("Custom canvas height (optional, with width)")),
	), s.handleAddPage)

	// ── delete_page (destructive) ──────────────────────
	s.mcp.AddTool(mcp.NewTool("delete_page",
		mcp.WithDescription("🛑 DESTRUCTIVE: Delete a page and its elements. The last page cannot be deleted. Requires user approval."),
		mcp.WithString("pageId", mcp.Description("Page ID to delete"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDeletePage)

	// ── reorder_pages ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("reorder_pages",
		mcp.WithDescription("Put the pages in a new order. Every page ID must appear exactly once."),
		mcp.WithString("pageIds",
			mcp.Description("Comma-separated page IDs in the new order"),
			mcp.Required(),
		),
	), s.handleReorderPages)

	// ── set_canvas_size ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("set_canvas_size",
		mcp.WithDescription("Change the canvas size of a page, by preset name or custom width and height"),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
		mcp.WithString("canvas", mcp.Description("Canvas preset name")),
		mcp.WithNumber("width", mcp.Description("Custom canvas width")),
		mcp.WithNumber("height", mcp.Description("Custom canvas height")),
	), s.handleSetCanvasSize)
}

type pageSummary struct {
	ID           string            `json:"id"`
	Order        int               `json:"order"`
	CanvasSize   domain.CanvasSize `json:"canvasSize"`
	ElementCount int               `json:"elementCount"`
	Active       bool              `json:"active"`
}

func (s *Server) handleListPages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.resolveSession(req.GetArguments())
	if err != nil {
		return nil, err
	}
	ed := sess.Editor()
	active := ed.ActivePage().ID
	pages := ed.Pages()
	out := make([]pageSummary, len(pages))
	for i, p := range pages {
		out[i] = pageSummary{
			ID:           p.ID,
			Order:        p.Order,
			CanvasSize:   p.CanvasSize,
			ElementCount: len(p.Elements),
			Active:       p.ID == active,
		}
	}
	return jsonResult(out)
}

func (s *Server) handleSetActivePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID := req.GetString("pageId", "")
	if pageID == "" {
		return nil, fmt.Errorf("pageId is required")
	}
	if _, err := s.resolveEditor(req.GetArguments()); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Active page set to %s", pageID)), nil
}

// sizeFromArgs reads a canvas size from a preset name or width/height.
// ok is false when neither was given.
func sizeFromArgs(args map[string]any) (size domain.CanvasSize, ok bool, err error) {
	if name, _ := args["canvas"].(string); name != "" {
		p, found := domain.PresetByName(name)
		if !found {
			return size, false, fmt.Errorf("unknown canvas preset %q", name)
		}
		return p, true, nil
	}
	w, hasW := args["width"].(float64)
	h, hasH := args["height"].(float64)
	if !hasW && !hasH {
		return size, false, nil
	}
	if w <= 0 || h <= 0 {
		return size, false, fmt.Errorf("width and height must both be positive")
	}
	return domain.CanvasSize{Name: "Custom", Width: w, Height: h, Category: "custom"}, true, nil
}

func (s *Server) handleAddPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	ed, err := s.resolveEditor(args)
	if err != nil {
		return nil, err
	}
	size, _, err := sizeFromArgs(args)
	if err != nil {
		return nil, err
	}
	page, err := ed.AddPage(size)
	if err != nil {
		return nil, fmt.Errorf("add page: %w", err)
	}
	s.commit(ctx, ed)
	return jsonResult(page)
}

func (s *Server) handleDeletePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.resolveSession(req.GetArguments())
	if err != nil {
		return nil, err
	}
	ed := sess.Editor()
	pageID := req.GetString("pageId", "")
	if pageID == "" {
		return nil, fmt.Errorf("pageId is required")
	}
	var target *domain.Page
	pages := ed.Pages()
	for i := range pages {
		if pages[i].ID == pageID {
			target = &pages[i]
		}
	}
	if target == nil {
		return nil, fmt.Errorf("delete page %s: %w", pageID, domain.ErrPageNotFound)
	}
	if len(pages) == 1 {
		return nil, domain.ErrLastPage
	}

	err = s.approval.ConfirmDeletion("delete_page",
		fmt.Sprintf("Delete page %d with %d element(s)", target.Order+1, len(target.Elements)),
		DeletionTarget{DocumentID: sess.Document().ID, PageID: pageID})
	if err != nil {
		return textResult(deletionRefused(err)), nil
	}

	if err := ed.DeletePage(pageID); err != nil {
		return nil, fmt.Errorf("delete page: %w", err)
	}
	s.commit(ctx, ed)
	return textResult(fmt.Sprintf("Page %s deleted", pageID)), nil
}

func (s *Server) handleReorderPages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	ids := splitIDs(req.GetString("pageIds", ""))
	if len(ids) == 0 {
		return nil, fmt.Errorf("pageIds is required")
	}
	sess, err := s.resolveSession(args)
	if err != nil {
		return nil, err
	}
	ed := sess.Editor()
	if err := ed.ReorderPages(ids); err != nil {
		return nil, err
	}
	s.commit(ctx, ed)
	return textResult(fmt.Sprintf("Reordered %d pages", len(ids))), nil
}

func (s *Server) handleSetCanvasSize(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	ed, err := s.resolveEditor(args)
	if err != nil {
		return nil, err
	}
	size, ok, err := sizeFromArgs(args)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("canvas or width and height is required")
	}
	if err := ed.ChangeCanvasSize(size); err != nil {
		return nil, fmt.Errorf("set canvas size: %w", err)
	}
	s.commit(ctx, ed)
	return jsonResult(ed.CanvasSize())
}
