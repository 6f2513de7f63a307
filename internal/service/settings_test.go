package service_test

import (
	"path/filepath"
	"testing"

	"studio/internal/domain"
	"studio/internal/editor"
	"studio/internal/history"
	"studio/internal/service"
	"studio/internal/storage"
)

func newSettings(t *testing.T) (*service.SettingsService, *storage.DB) {
	t.Helper()
	db, err := storage.New(filepath.Join(t.TempDir(), "studio.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return service.NewSettingsService(db), db
}

func TestSettings_Defaults(t *testing.T) {
	s, _ := newSettings(t)

	if got := s.LoadEditorSettings(); got != service.DefaultEditorSettings() {
		t.Errorf("expected defaults, got %+v", got)
	}
	ws := s.LoadWindowSize()
	if ws.Width != 1280 || ws.Height != 800 {
		t.Errorf("expected default window 1280x800, got %+v", ws)
	}
}

func TestSettings_RoundTrip(t *testing.T) {
	s, _ := newSettings(t)

	want := service.EditorSettings{SnapThreshold: 8, HandleSize: 10, HistoryLimit: 50}
	if err := s.SaveEditorSettings(want); err != nil {
		t.Fatal(err)
	}
	if got := s.LoadEditorSettings(); got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}

	opts := s.EditorOptions(nil)
	if opts.SnapThreshold != 8 || opts.HandleSize != 10 || opts.HistoryLimit != 50 {
		t.Errorf("options not derived from settings: %+v", opts)
	}
	if opts.ResizeSuppression != editor.DefaultOptions().ResizeSuppression {
		t.Errorf("unrelated options should keep defaults")
	}

	if err := s.SaveWindowSize(500, 1000); err != nil {
		t.Fatal(err)
	}
	ws := s.LoadWindowSize()
	if ws.Width != 1280 || ws.Height != 1000 {
		t.Errorf("expected too-small width to fall back, got %+v", ws)
	}
}

func TestSettings_RejectsNonPositive(t *testing.T) {
	s, _ := newSettings(t)
	if err := s.SaveEditorSettings(service.EditorSettings{SnapThreshold: 0, HandleSize: 8, HistoryLimit: 10}); err == nil {
		t.Error("expected error for zero snap threshold")
	}
}

func TestHistoryPruner_PruneNow(t *testing.T) {
	s, db := newSettings(t)
	if err := s.SaveEditorSettings(service.EditorSettings{SnapThreshold: 5, HandleSize: 8, HistoryLimit: 3}); err != nil {
		t.Fatal(err)
	}
	store := storage.NewDocumentStore(db)
	if err := store.CreateDocument(&domain.Document{ID: "d", Name: "D"}); err != nil {
		t.Fatal(err)
	}
	var entries []history.Entry
	for i := 0; i < 10; i++ {
		entries = append(entries, history.CanvasSizeEntry("p", domain.DefaultCanvasSize(), domain.DefaultCanvasSize()))
	}
	hs := storage.NewHistoryStore(db)
	if err := hs.Save("d", history.Snapshot{Undo: entries}); err != nil {
		t.Fatal(err)
	}

	p := service.NewHistoryPruner(db, s)
	if err := p.Start(""); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer p.Stop()

	n, err := p.PruneNow()
	if err != nil {
		t.Fatal(err)
	}
	if n != 7 {
		t.Errorf("pruned %d, want 7", n)
	}
	snap, _ := hs.Load("d")
	if len(snap.Undo) != 3 {
		t.Errorf("expected 3 entries kept, got %d", len(snap.Undo))
	}
}

func TestHistoryPruner_BadSchedule(t *testing.T) {
	s, db := newSettings(t)
	p := service.NewHistoryPruner(db, s)
	if err := p.Start("not a schedule"); err == nil {
		p.Stop()
		t.Error("expected invalid cron spec to fail")
	}
}
