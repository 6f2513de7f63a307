package mcpserver

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"studio/internal/domain"
	"studio/internal/service"
	"studio/internal/storage"
)

type toolHandler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

func newTestServer(t *testing.T) (*Server, *service.MockEmitter) {
	t.Helper()
	db, err := storage.New(filepath.Join(t.TempDir(), "studio.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	em := &service.MockEmitter{}
	s := New(ctx, Deps{
		Emitter:   em,
		Documents: service.NewDocumentService(ctx, db, em, time.Minute),
		Settings:  service.NewSettingsService(db),
	})
	t.Cleanup(func() { s.Close() })
	return s, em
}

func call(t *testing.T, h toolHandler, args map[string]any) string {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	res, err := h(context.Background(), req)
	if err != nil {
		t.Fatalf("tool failed: %v", err)
	}
	if len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("unexpected content %T", res.Content[0])
	}
	return text.Text
}

func decode[T any](t *testing.T, text string) T {
	t.Helper()
	var v T
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		t.Fatalf("decode %q: %v", text, err)
	}
	return v
}

func TestTools_RequireOpenDocument(t *testing.T) {
	s, _ := newTestServer(t)
	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{}
	if _, err := s.handleListElements(context.Background(), req); err == nil {
		t.Error("expected error without an open document")
	}
}

func TestTools_AddMoveUndo(t *testing.T) {
	s, em := newTestServer(t)

	state := decode[domain.DocumentState](t, call(t, s.handleCreateDocument, map[string]any{"name": "Deck"}))
	if len(state.Pages) != 1 {
		t.Fatalf("expected one page, got %d", len(state.Pages))
	}

	el := decode[domain.Element](t, call(t, s.handleAddElement, map[string]any{
		"type": "rectangle", "x": 100.0, "y": 100.0, "width": 200.0, "height": 100.0,
	}))
	if el.X != 100 || el.Width != 200 || el.Shape == nil {
		t.Fatalf("unexpected element %+v", el)
	}

	// 538 is 2px from centering the 200-wide box on the 1280 canvas
	moved := decode[struct {
		Element elementSummary  `json:"element"`
		Snapped bool            `json:"snapped"`
		Guides  domain.GuideSet `json:"guides"`
	}](t, call(t, s.handleMoveElement, map[string]any{"elementId": el.ID, "x": 538.0, "y": 400.0}))
	if moved.Element.X != 540 || !moved.Snapped {
		t.Errorf("expected snap to x=540, got %+v", moved)
	}

	res := decode[historyResult](t, call(t, s.handleUndo, map[string]any{}))
	if !res.Applied || !res.CanRedo {
		t.Errorf("unexpected undo result %+v", res)
	}
	list := decode[[]elementSummary](t, call(t, s.handleListElements, map[string]any{}))
	if len(list) != 1 || list[0].X != 100 || list[0].Y != 100 {
		t.Errorf("expected element back at (100,100), got %+v", list)
	}
	if em.Count("mcp:canvas-changed") < 3 {
		t.Errorf("expected canvas-changed events, got %d", em.Count("mcp:canvas-changed"))
	}
}

func TestTools_BatchAddDoesNotOverlap(t *testing.T) {
	s, _ := newTestServer(t)
	call(t, s.handleCreateDocument, map[string]any{"name": "Grid"})

	added := decode[[]elementSummary](t, call(t, s.handleBatchAddElements, map[string]any{
		"elements": `[{"type":"rectangle","width":300,"height":200},{"type":"circle","width":150,"height":150},{"type":"text","content":"Title"}]`,
	}))
	if len(added) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(added))
	}
	for i := range added {
		for j := i + 1; j < len(added); j++ {
			a := domain.Rect{X: added[i].X, Y: added[i].Y, W: added[i].Width, H: added[i].Height}
			b := domain.Rect{X: added[j].X, Y: added[j].Y, W: added[j].Width, H: added[j].Height}
			if intersects(a, b) {
				t.Errorf("elements %d and %d overlap", i, j)
			}
		}
	}

	// One undo removes the whole batch
	call(t, s.handleUndo, map[string]any{})
	list := decode[[]elementSummary](t, call(t, s.handleListElements, map[string]any{}))
	if len(list) != 0 {
		t.Errorf("expected batch undone, got %d elements", len(list))
	}
}

func TestTools_ResizeTextCornerScalesFont(t *testing.T) {
	s, _ := newTestServer(t)
	call(t, s.handleCreateDocument, map[string]any{"name": "Type"})
	el := decode[domain.Element](t, call(t, s.handleAddElement, map[string]any{
		"type": "text", "x": 100.0, "y": 100.0, "width": 200.0, "fontSize": 20.0,
	}))

	resized := decode[domain.Element](t, call(t, s.handleResizeElement, map[string]any{
		"elementId": el.ID, "handle": "se", "dx": 200.0, "dy": 0.0,
	}))
	if resized.Width <= el.Width || resized.FontSize() <= 20 {
		t.Errorf("expected wider text with a larger font, got w=%.0f font=%.0f", resized.Width, resized.FontSize())
	}
	if got, want := resized.Width/resized.Height, el.Width/el.Height; got-want > 0.01 || want-got > 0.01 {
		t.Errorf("aspect ratio changed: %.3f, want %.3f", got, want)
	}

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"elementId": el.ID, "handle": "n", "dx": 0.0, "dy": 10.0}
	if _, err := s.handleResizeElement(context.Background(), req); err == nil {
		t.Error("expected text n handle to be refused")
	}
}

func TestTools_DeleteElementsWaitsForApproval(t *testing.T) {
	s, em := newTestServer(t)
	call(t, s.handleCreateDocument, map[string]any{"name": "Trash"})
	a := decode[domain.Element](t, call(t, s.handleAddElement, map[string]any{"type": "circle"}))
	b := decode[domain.Element](t, call(t, s.handleAddElement, map[string]any{"type": "line"}))

	go func() {
		for i := 0; i < 200; i++ {
			if reqs := em.Filter("mcp:approval-required"); len(reqs) > 0 {
				s.Approve(reqs[0].Data.(PendingAction).ID)
				return
			}
			time.Sleep(5 * time.Millisecond)
		}
	}()

	out := call(t, s.handleDeleteElements, map[string]any{"elementIds": a.ID + ", missing, " + b.ID})
	if out != "Deleted 2 element(s)" {
		t.Errorf("unexpected result %q", out)
	}
}

func TestTools_DeleteRejected(t *testing.T) {
	s, em := newTestServer(t)
	call(t, s.handleCreateDocument, map[string]any{"name": "Keep"})
	a := decode[domain.Element](t, call(t, s.handleAddElement, map[string]any{"type": "circle"}))

	go func() {
		for i := 0; i < 200; i++ {
			if reqs := em.Filter("mcp:approval-required"); len(reqs) > 0 {
				s.Reject(reqs[0].Data.(PendingAction).ID)
				return
			}
			time.Sleep(5 * time.Millisecond)
		}
	}()

	out := call(t, s.handleDeleteElements, map[string]any{"elementIds": a.ID})
	if out != "Action rejected by user" {
		t.Errorf("unexpected result %q", out)
	}
	list := decode[[]elementSummary](t, call(t, s.handleListElements, map[string]any{}))
	if len(list) != 1 {
		t.Errorf("element should survive a rejected delete, got %d", len(list))
	}
}

func TestTools_Pages(t *testing.T) {
	s, _ := newTestServer(t)
	call(t, s.handleCreateDocument, map[string]any{"name": "Pages", "canvas": "A4"})

	second := decode[domain.Page](t, call(t, s.handleAddPage, map[string]any{"canvas": "Instagram Story"}))
	if second.CanvasSize.Name != "Instagram Story" {
		t.Errorf("unexpected canvas %+v", second.CanvasSize)
	}
	pages := decode[[]pageSummary](t, call(t, s.handleListPages, map[string]any{}))
	if len(pages) != 2 || !pages[1].Active || pages[0].CanvasSize.Name != "A4" {
		t.Fatalf("unexpected pages %+v", pages)
	}

	call(t, s.handleReorderPages, map[string]any{"pageIds": pages[1].ID + "," + pages[0].ID})
	size := decode[domain.CanvasSize](t, call(t, s.handleSetCanvasSize, map[string]any{
		"pageId": pages[0].ID, "width": 800.0, "height": 600.0,
	}))
	if size.Width != 800 || size.Name != "Custom" {
		t.Errorf("unexpected size %+v", size)
	}

	reordered := decode[[]pageSummary](t, call(t, s.handleListPages, map[string]any{}))
	if reordered[0].ID != pages[1].ID || !reordered[1].Active {
		t.Errorf("unexpected order %+v", reordered)
	}
}

func TestExtractPageIDFromURI(t *testing.T) {
	tests := []struct {
		uri, want string
	}{
		{"studio://page/abc-123/elements", "abc-123"},
		{"studio://page/abc-123", ""},
		{"other://page/abc/elements", ""},
	}
	for _, tt := range tests {
		if got := extractPageIDFromURI(tt.uri); got != tt.want {
			t.Errorf("extractPageIDFromURI(%q) = %q, want %q", tt.uri, got, tt.want)
		}
	}
}
