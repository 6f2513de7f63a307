package service_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"studio/internal/domain"
	"studio/internal/editor"
	"studio/internal/geometry"
	"studio/internal/service"
	"studio/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// DocumentService / Session tests
// ─────────────────────────────────────────────────────────────

func newTestService(t *testing.T, delay time.Duration) (*service.DocumentService, *storage.DB, *service.MockEmitter) {
	t.Helper()
	db, err := storage.New(filepath.Join(t.TempDir(), "studio.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	em := &service.MockEmitter{}
	return service.NewDocumentService(context.Background(), db, em, delay), db, em
}

func openSession(t *testing.T, svc *service.DocumentService, id string) *service.Session {
	t.Helper()
	sess, err := svc.Open(id, editor.DefaultOptions())
	if err != nil {
		t.Fatalf("open document: %v", err)
	}
	return sess
}

func TestDocumentService_CreateDocumentHasOnePage(t *testing.T) {
	svc, _, _ := newTestService(t, time.Minute)

	doc, err := svc.CreateDocument("  ", domain.CanvasSize{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if doc.Name != "Untitled" {
		t.Errorf("expected default name, got %q", doc.Name)
	}
	pages, err := svc.ListPages(doc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(pages) != 1 || pages[0].CanvasSize != domain.DefaultCanvasSize() {
		t.Fatalf("expected one default page, got %+v", pages)
	}
}

func TestSession_FlushPersistsElementsAndHistory(t *testing.T) {
	svc, _, em := newTestService(t, time.Minute)
	doc, _ := svc.CreateDocument("Deck", domain.CanvasSize{})

	sess := openSession(t, svc, doc.ID)
	if _, err := sess.Editor().AddElement(domain.KindRectangle, geometry.CreateOptions{}); err != nil {
		t.Fatalf("add element: %v", err)
	}
	if !sess.Dirty() {
		t.Fatal("expected unsaved changes after add")
	}
	if err := sess.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if em.Count("document:saved") == 0 {
		t.Error("expected document:saved event")
	}

	reopened := openSession(t, svc, doc.ID)
	ed := reopened.Editor()
	if n := len(ed.Elements()); n != 1 {
		t.Fatalf("expected 1 element after reopen, got %d", n)
	}
	if !ed.CanUndo() {
		t.Fatal("expected history to survive reopen")
	}
	if ok, err := ed.Undo(); !ok || err != nil {
		t.Fatalf("undo: %v %v", ok, err)
	}
	if n := len(ed.Elements()); n != 0 {
		t.Errorf("expected 0 elements after undo, got %d", n)
	}
}

func TestSession_EditorCreatesMissingFirstPage(t *testing.T) {
	svc, db, _ := newTestService(t, time.Minute)
	doc, _ := svc.CreateDocument("Empty", domain.CanvasSize{})
	if err := storage.NewDocumentStore(db).DeletePagesByDocument(doc.ID); err != nil {
		t.Fatal(err)
	}

	sess := openSession(t, svc, doc.ID)
	if sess.Dirty() {
		t.Error("expected the new first page to be saved on open")
	}
	pages, _ := svc.ListPages(doc.ID)
	if len(pages) != 1 || pages[0].ID != sess.Editor().ActivePage().ID {
		t.Fatalf("expected the editor's first page to be stored, got %+v", pages)
	}
}

func TestSession_PageOperationsPersist(t *testing.T) {
	svc, _, _ := newTestService(t, time.Minute)
	doc, _ := svc.CreateDocument("Deck", domain.CanvasSize{})
	sess := openSession(t, svc, doc.ID)
	ed := sess.Editor()
	first := ed.ActivePage().ID

	second, err := ed.AddPage(domain.CanvasPresets[1])
	if err != nil {
		t.Fatal(err)
	}
	third, err := ed.AddPage(domain.CanvasSize{})
	if err != nil {
		t.Fatal(err)
	}
	if err := ed.ReorderPages([]string{third.ID, first, second.ID}); err != nil {
		t.Fatal(err)
	}
	if err := ed.DeletePage(first); err != nil {
		t.Fatal(err)
	}
	if err := sess.Flush(); err != nil {
		t.Fatal(err)
	}

	pages, _ := svc.ListPages(doc.ID)
	if len(pages) != 2 || pages[0].ID != third.ID || pages[1].ID != second.ID {
		t.Fatalf("unexpected stored pages: %+v", pages)
	}
	if pages[1].CanvasSize != domain.CanvasPresets[1] {
		t.Errorf("canvas size not stored: %+v", pages[1].CanvasSize)
	}
	if pages[0].Order != 0 || pages[1].Order != 1 {
		t.Errorf("orders not renumbered: %d, %d", pages[0].Order, pages[1].Order)
	}
}

func TestSession_RefreshPicksUpOutsideWrites(t *testing.T) {
	svc, _, _ := newTestService(t, time.Minute)
	doc, _ := svc.CreateDocument("Shared", domain.CanvasSize{})

	viewer := openSession(t, svc, doc.ID)
	writer := openSession(t, svc, doc.ID)

	// Timestamps need to move for the fingerprint to change
	time.Sleep(5 * time.Millisecond)
	if _, err := writer.Editor().AddElement(domain.KindCircle, geometry.CreateOptions{}); err != nil {
		t.Fatal(err)
	}
	if err := writer.Flush(); err != nil {
		t.Fatal(err)
	}

	reloaded, err := viewer.Refresh()
	if err != nil {
		t.Fatal(err)
	}
	if !reloaded {
		t.Fatal("expected viewer to reload")
	}
	if n := len(viewer.Editor().Elements()); n != 1 {
		t.Errorf("expected 1 element after refresh, got %d", n)
	}

	again, _ := viewer.Refresh()
	if again {
		t.Error("expected no reload without new writes")
	}
}

func TestSession_RefreshKeepsLocalEdits(t *testing.T) {
	svc, _, _ := newTestService(t, time.Minute)
	doc, _ := svc.CreateDocument("Shared", domain.CanvasSize{})

	local := openSession(t, svc, doc.ID)
	other := openSession(t, svc, doc.ID)

	time.Sleep(5 * time.Millisecond)
	other.Editor().AddElement(domain.KindCircle, geometry.CreateOptions{})
	if err := other.Flush(); err != nil {
		t.Fatal(err)
	}
	local.Editor().AddElement(domain.KindText, geometry.CreateOptions{})

	reloaded, err := local.Refresh()
	if err != nil {
		t.Fatal(err)
	}
	if reloaded {
		t.Error("a dirty session must not be reloaded")
	}
	if els := local.Editor().Elements(); len(els) != 1 || els[0].Kind != domain.KindText {
		t.Errorf("local edits lost: %+v", els)
	}
}

func TestSession_DebouncedAutosave(t *testing.T) {
	svc, _, em := newTestService(t, 20*time.Millisecond)
	doc, _ := svc.CreateDocument("Auto", domain.CanvasSize{})
	sess := openSession(t, svc, doc.ID)

	sess.Editor().AddElement(domain.KindRectangle, geometry.CreateOptions{})
	sess.Editor().AddElement(domain.KindRectangle, geometry.CreateOptions{})

	deadline := time.Now().Add(2 * time.Second)
	for em.Count("document:saved") == 0 {
		if time.Now().After(deadline) {
			t.Fatal("autosave did not run")
		}
		time.Sleep(10 * time.Millisecond)
	}
	svc.WaitSaving(context.Background())

	pages, _ := svc.ListPages(doc.ID)
	if len(pages) != 1 || len(pages[0].Elements) != 2 {
		t.Fatalf("expected 2 saved elements, got %+v", pages)
	}
}

func TestSession_OverlappingFlushesSaveEveryEdit(t *testing.T) {
	svc, _, _ := newTestService(t, time.Minute)
	doc, _ := svc.CreateDocument("Busy", domain.CanvasSize{})
	sess := openSession(t, svc, doc.ID)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		if _, err := sess.Editor().AddElement(domain.KindRectangle, geometry.CreateOptions{}); err != nil {
			t.Fatalf("add element: %v", err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := sess.Flush(); err != nil {
				t.Errorf("flush: %v", err)
			}
		}()
	}
	wg.Wait()
	svc.WaitSaving(context.Background())

	if sess.Dirty() {
		t.Fatal("expected every edit saved once overlapping flushes finish")
	}
	pages, _ := svc.ListPages(doc.ID)
	if len(pages) != 1 || len(pages[0].Elements) != 20 {
		t.Fatalf("expected 20 saved elements, got %+v", pages)
	}
}

func TestDocumentService_DeleteDocument(t *testing.T) {
	svc, _, _ := newTestService(t, time.Minute)
	doc, _ := svc.CreateDocument("Gone", domain.CanvasSize{})

	if err := svc.DeleteDocument(doc.ID); err != nil {
		t.Fatal(err)
	}
	docs, _ := svc.ListDocuments()
	if len(docs) != 0 {
		t.Errorf("expected no documents, got %d", len(docs))
	}
	if _, err := svc.Open(doc.ID, editor.DefaultOptions()); err == nil {
		t.Error("expected open of deleted document to fail")
	}
}
