package app

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"studio/internal/domain"
	"studio/internal/editor"
	"studio/internal/geometry"
	mcpserver "studio/internal/mcp"
	"studio/internal/service"
	"studio/internal/storage"
)

func openTestEditor(t *testing.T) *editor.Editor {
	t.Helper()
	db, err := storage.New(filepath.Join(t.TempDir(), "studio.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	svc := service.NewDocumentService(context.Background(), db, &service.MockEmitter{}, time.Minute)
	doc, err := svc.CreateDocument("Deck", domain.CanvasSize{})
	if err != nil {
		t.Fatalf("create document: %v", err)
	}
	sess, err := svc.Open(doc.ID, editor.DefaultOptions())
	if err != nil {
		t.Fatalf("open document: %v", err)
	}
	t.Cleanup(func() { sess.Close() })
	return sess.Editor()
}

func TestShowDeletion(t *testing.T) {
	ed := openTestEditor(t)
	first := ed.ActivePage().ID
	a, _ := ed.AddElement(domain.KindCircle, geometry.CreateOptions{})
	b, _ := ed.AddElement(domain.KindRectangle, geometry.CreateOptions{})
	ed.AddElement(domain.KindText, geometry.CreateOptions{})
	second, err := ed.AddPage(domain.CanvasSize{})
	if err != nil {
		t.Fatalf("add page: %v", err)
	}

	tests := []struct {
		name       string
		target     mcpserver.DeletionTarget
		ok         bool
		wantPage   string
		wantSelect []string
	}{
		{"elements on another page", mcpserver.DeletionTarget{PageID: first, ElementIDs: []string{b.ID, a.ID}}, true, first, sortedIDs(a.ID, b.ID)},
		{"whole page", mcpserver.DeletionTarget{PageID: second.ID}, true, second.ID, []string{}},
		{"unknown page", mcpserver.DeletionTarget{PageID: "missing", ElementIDs: []string{a.ID}}, false, second.ID, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := showDeletion(ed, tt.target); got != tt.ok {
				t.Fatalf("showDeletion = %v, want %v", got, tt.ok)
			}
			if got := ed.ActivePage().ID; got != tt.wantPage {
				t.Errorf("active page = %s, want %s", got, tt.wantPage)
			}
			if got := ed.Selection().SelectedElementIDs; !reflect.DeepEqual(got, tt.wantSelect) {
				t.Errorf("selection = %v, want %v", got, tt.wantSelect)
			}
		})
	}
}

func sortedIDs(x, y string) []string {
	if x > y {
		x, y = y, x
	}
	return []string{x, y}
}

func TestDocumentWatcher_StopEndsPollLoop(t *testing.T) {
	w := newDocumentWatcher(context.Background(), &App{})

	done := make(chan struct{})
	go func() {
		w.pollLoop(w.stop)
		close(done)
	}()

	w.Stop()
	w.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poll loop still running after Stop")
	}
}

func TestDocumentWatcher_StartThenStop(t *testing.T) {
	w := newDocumentWatcher(context.Background(), &App{})
	if err := w.Start(t.TempDir()); err != nil {
		t.Fatalf("start: %v", err)
	}
	w.Stop()
	w.Stop()
}
