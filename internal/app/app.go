package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"studio/internal/domain"
	"studio/internal/editor"
	"studio/internal/geometry"
	"studio/internal/service"
	"studio/internal/storage"
)

// App is the main Wails application struct.
// All exported methods are available as Wails bindings.
type App struct {
	ctx context.Context

	db        *storage.DB
	documents *service.DocumentService
	settings  *service.SettingsService
	pruner    *service.HistoryPruner
	measurer  geometry.Measurer
	watcher   *documentWatcher

	// Open document
	mu      sync.Mutex
	session *service.Session
}

// New creates a new App.
func New() *App {
	return &App{}
}

// wailsEmitter delivers service events to the frontend.
type wailsEmitter struct{}

func (wailsEmitter) Emit(ctx context.Context, event string, data any) {
	wailsRuntime.EventsEmit(ctx, event, data)
}

// dataPaths returns the data directory and SQLite file path.
func dataPaths() (string, string) {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".local", "share", "studio")
	return dataDir, filepath.Join(dataDir, "studio.db")
}

// newMeasurer prefers real font metrics and falls back to a fixed advance.
func newMeasurer() (geometry.Measurer, error) {
	m, err := geometry.NewFontMeasurer()
	if err != nil {
		return geometry.FixedMeasurer{}, err
	}
	return m, nil
}

// Startup is called when the app starts.
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx

	dataDir, dbPath := dataPaths()
	db, err := storage.New(dbPath)
	if err != nil {
		wailsRuntime.LogFatalf(ctx, "Failed to open database: %v", err)
		return
	}
	a.db = db

	measurer, err := newMeasurer()
	if err != nil {
		wailsRuntime.LogErrorf(ctx, "Failed to load fonts, using fixed metrics: %v", err)
	}
	a.measurer = measurer

	a.documents = service.NewDocumentService(ctx, db, wailsEmitter{}, service.DefaultSaveDelay)
	a.settings = service.NewSettingsService(db)

	a.pruner = service.NewHistoryPruner(db, a.settings)
	if err := a.pruner.Start(service.DefaultPruneSchedule); err != nil {
		wailsRuntime.LogErrorf(ctx, "Failed to schedule history pruning: %v", err)
	}

	// Picks up edits made by a standalone MCP process
	a.watcher = newDocumentWatcher(ctx, a)
	if err := a.watcher.Start(dataDir); err != nil {
		wailsRuntime.LogErrorf(ctx, "File watcher unavailable, polling only: %v", err)
	}

	if size := a.settings.LoadWindowSize(); size.Width > 0 {
		wailsRuntime.WindowSetSize(ctx, size.Width, size.Height)
	}
}

// Shutdown is called when the app is closing.
func (a *App) Shutdown(ctx context.Context) {
	if a.watcher != nil {
		a.watcher.Stop()
	}
	if a.pruner != nil {
		a.pruner.Stop()
	}
	if w, h := wailsRuntime.WindowGetSize(ctx); w > 0 && a.settings != nil {
		a.settings.SaveWindowSize(w, h)
	}

	a.mu.Lock()
	if a.session != nil {
		if err := a.session.Close(); err != nil {
			wailsRuntime.LogErrorf(ctx, "Failed to save document: %v", err)
		}
		a.session = nil
	}
	a.mu.Unlock()
	if a.documents != nil {
		a.documents.WaitSaving(ctx)
	}

	if a.db != nil {
		a.db.Close()
	}
}

// currentSession returns the open document session, or nil.
func (a *App) currentSession() *service.Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session
}

// activeEditor returns the open document's editor.
func (a *App) activeEditor() (*editor.Editor, error) {
	sess := a.currentSession()
	if sess == nil {
		return nil, fmt.Errorf("no document open")
	}
	return sess.Editor(), nil
}

// ── Documents ──────────────────────────────────────────────

func (a *App) ListDocuments() ([]domain.Document, error) {
	return a.documents.ListDocuments()
}

// CreateDocument creates a document whose first page uses the named canvas
// preset ("" for the default) and opens it.
func (a *App) CreateDocument(name, preset string) (*domain.DocumentState, error) {
	size := domain.DefaultCanvasSize()
	if preset != "" {
		p, ok := domain.PresetByName(preset)
		if !ok {
			return nil, fmt.Errorf("unknown canvas preset %q", preset)
		}
		size = p
	}
	doc, err := a.documents.CreateDocument(name, size)
	if err != nil {
		return nil, err
	}
	return a.OpenDocument(doc.ID)
}

// OpenDocument loads a document into the editor, saving the previous one.
func (a *App) OpenDocument(id string) (*domain.DocumentState, error) {
	wailsRuntime.LogInfof(a.ctx, "[OpenDocument] loading document: %s", id)
	sess, err := a.documents.Open(id, a.settings.EditorOptions(a.measurer))
	if err != nil {
		return nil, err
	}
	sess.Editor().OnChange(func(c editor.Change) {
		wailsRuntime.EventsEmit(a.ctx, "canvas:changed", c)
	})

	a.mu.Lock()
	prev := a.session
	a.session = sess
	a.mu.Unlock()
	if prev != nil {
		if err := prev.Close(); err != nil {
			wailsRuntime.LogErrorf(a.ctx, "Failed to save document %s: %v", prev.Document().ID, err)
		}
	}
	a.watcher.SetDocument(id)

	state := sess.State()
	return &state, nil
}

// CloseDocument saves and closes the open document.
func (a *App) CloseDocument() error {
	a.mu.Lock()
	sess := a.session
	a.session = nil
	a.mu.Unlock()
	a.watcher.SetDocument("")
	if sess == nil {
		return nil
	}
	return sess.Close()
}

// GetDocumentState returns the open document for a full redraw.
func (a *App) GetDocumentState() (*domain.DocumentState, error) {
	sess := a.currentSession()
	if sess == nil {
		return nil, fmt.Errorf("no document open")
	}
	state := sess.State()
	return &state, nil
}

func (a *App) RenameDocument(id, name string) error {
	return a.documents.RenameDocument(id, name)
}

func (a *App) DeleteDocument(id string) error {
	if sess := a.currentSession(); sess != nil && sess.Document().ID == id {
		if err := a.CloseDocument(); err != nil {
			return err
		}
	}
	return a.documents.DeleteDocument(id)
}

// SaveDocument writes pending changes now instead of waiting for autosave.
func (a *App) SaveDocument() error {
	sess := a.currentSession()
	if sess == nil {
		return nil
	}
	return sess.Flush()
}

func (a *App) CanvasPresets() []domain.CanvasSize {
	return domain.CanvasPresets
}
