package storage

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"studio/internal/domain"
	"studio/internal/history"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "studio.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNew_MigrateTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "studio.db")
	db, err := New(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	db.Close()

	db, err = New(path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	db.Close()
}

func TestDocumentStore_PageRoundTrip(t *testing.T) {
	s := NewDocumentStore(openTestDB(t))

	doc := &domain.Document{ID: "doc-1", Name: "Deck"}
	if err := s.CreateDocument(doc); err != nil {
		t.Fatalf("create document: %v", err)
	}

	size := 24.0
	pages := []domain.Page{
		{ID: "p2", DocumentID: "doc-1", Order: 1, CanvasSize: domain.DefaultCanvasSize()},
		{ID: "p1", DocumentID: "doc-1", Order: 0, CanvasSize: domain.CanvasPresets[1], Elements: []domain.Element{
			{ID: "t1", Kind: domain.KindText, X: 10, Y: 20, Width: 200, Height: 60,
				Text: &domain.TextProps{Content: "Hello", FontSize: size}},
		}},
	}
	for i := range pages {
		if err := s.CreatePage(&pages[i]); err != nil {
			t.Fatalf("create page: %v", err)
		}
	}

	got, err := s.ListPages("doc-1")
	if err != nil {
		t.Fatalf("list pages: %v", err)
	}
	if len(got) != 2 || got[0].ID != "p1" || got[1].ID != "p2" {
		t.Fatalf("expected pages ordered p1,p2, got %+v", got)
	}
	if got[0].CanvasSize != domain.CanvasPresets[1] {
		t.Errorf("canvas size = %+v, want %+v", got[0].CanvasSize, domain.CanvasPresets[1])
	}
	if len(got[0].Elements) != 1 || got[0].Elements[0].Text == nil || got[0].Elements[0].Text.Content != "Hello" {
		t.Errorf("elements not restored: %+v", got[0].Elements)
	}
	if got[1].Elements == nil {
		// empty pages decode as an empty list, not null
		t.Errorf("expected empty element list on p2")
	}

	p := got[1]
	p.Order = 0
	p.Elements = append(p.Elements, domain.Element{ID: "r1", Kind: domain.KindRectangle, Width: 100, Height: 100,
		Shape: &domain.ShapeProps{BackgroundColor: "#fff"}})
	if err := s.UpdatePage(&p); err != nil {
		t.Fatalf("update page: %v", err)
	}
	reloaded, err := s.GetPage("p2")
	if err != nil {
		t.Fatalf("get page: %v", err)
	}
	if len(reloaded.Elements) != 1 || reloaded.Elements[0].ID != "r1" {
		t.Errorf("update not persisted: %+v", reloaded.Elements)
	}
}

func TestDocumentStore_NewMarkerNotStored(t *testing.T) {
	db := openTestDB(t)
	s := NewDocumentStore(db)
	if err := s.CreateDocument(&domain.Document{ID: "doc-1", Name: "Deck"}); err != nil {
		t.Fatal(err)
	}
	elements := []domain.Element{{ID: "c1", Kind: domain.KindCircle, Width: 80, Height: 80, IsNew: true,
		Shape: &domain.ShapeProps{BackgroundColor: "#000"}}}
	if err := s.CreatePage(&domain.Page{ID: "p1", DocumentID: "doc-1", Elements: elements}); err != nil {
		t.Fatal(err)
	}

	var raw string
	if err := db.Conn().QueryRow(`SELECT elements_json FROM pages WHERE id = ?`, "p1").Scan(&raw); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(raw, "isNew") {
		t.Errorf("stored elements carry the new marker: %s", raw)
	}
	if !elements[0].IsNew {
		t.Error("encoding should not modify the caller's elements")
	}
	got, err := s.GetPage("p1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Elements[0].IsNew {
		t.Error("reloaded element should not be new")
	}
}

func TestDocumentStore_NotFound(t *testing.T) {
	s := NewDocumentStore(openTestDB(t))

	if _, err := s.GetDocument("missing"); !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Errorf("expected ErrDocumentNotFound, got %v", err)
	}
	if _, err := s.GetPage("missing"); !errors.Is(err, domain.ErrPageNotFound) {
		t.Errorf("expected ErrPageNotFound, got %v", err)
	}
	if err := s.UpdatePage(&domain.Page{ID: "missing"}); !errors.Is(err, domain.ErrPageNotFound) {
		t.Errorf("expected ErrPageNotFound on update, got %v", err)
	}
}

func TestDocumentStore_Fingerprint(t *testing.T) {
	s := NewDocumentStore(openTestDB(t))
	if err := s.CreateDocument(&domain.Document{ID: "d", Name: "D"}); err != nil {
		t.Fatal(err)
	}

	before, err := s.Fingerprint("d")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.CreatePage(&domain.Page{ID: "p", DocumentID: "d", CanvasSize: domain.DefaultCanvasSize()}); err != nil {
		t.Fatal(err)
	}
	after, err := s.Fingerprint("d")
	if err != nil {
		t.Fatal(err)
	}
	if before == after {
		t.Errorf("fingerprint did not change after adding a page: %q", after)
	}
}

func TestHistoryStore_SaveLoad(t *testing.T) {
	db := openTestDB(t)
	if err := NewDocumentStore(db).CreateDocument(&domain.Document{ID: "d", Name: "D"}); err != nil {
		t.Fatal(err)
	}
	h := NewHistoryStore(db)

	el := domain.Element{ID: "e1", Kind: domain.KindCircle, Width: 50, Height: 50}
	snap := history.Snapshot{
		Undo: []history.Entry{
			history.AddElementEntry("p", el, -1),
			history.UpdateElementEntry("p", "e1", domain.PositionPatch(0, 0), domain.PositionPatch(10, 5)),
		},
		Redo: []history.Entry{history.DeleteElementEntry("p", el, 0)},
	}
	if err := h.Save("d", snap); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := h.Load("d")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Undo) != 2 || len(got.Redo) != 1 {
		t.Fatalf("expected 2 undo and 1 redo, got %d/%d", len(got.Undo), len(got.Redo))
	}
	if got.Undo[0].Kind != history.AddElement || got.Undo[1].Kind != history.UpdateElement {
		t.Errorf("undo order not preserved: %s, %s", got.Undo[0].Kind, got.Undo[1].Kind)
	}
	if x := got.Undo[1].After.X; x == nil || *x != 10 {
		t.Errorf("patch not restored: %+v", got.Undo[1].After)
	}

	// Saving again replaces instead of appending
	if err := h.Save("d", history.Snapshot{}); err != nil {
		t.Fatal(err)
	}
	got, _ = h.Load("d")
	if len(got.Undo) != 0 || len(got.Redo) != 0 {
		t.Errorf("expected empty history, got %+v", got)
	}
}

func TestHistoryStore_Prune(t *testing.T) {
	db := openTestDB(t)
	if err := NewDocumentStore(db).CreateDocument(&domain.Document{ID: "d", Name: "D"}); err != nil {
		t.Fatal(err)
	}
	h := NewHistoryStore(db)

	var undo []history.Entry
	for i := 0; i < 5; i++ {
		undo = append(undo, history.CanvasSizeEntry("p", domain.DefaultCanvasSize(), domain.CanvasPresets[i]))
	}
	if err := h.Save("d", history.Snapshot{Undo: undo}); err != nil {
		t.Fatal(err)
	}

	n, err := h.Prune(2)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if n != 3 {
		t.Errorf("pruned %d rows, want 3", n)
	}
	got, _ := h.Load("d")
	if len(got.Undo) != 2 || *got.Undo[1].NextSize != domain.CanvasPresets[4] {
		t.Errorf("expected the two newest entries to survive, got %+v", got.Undo)
	}
}
