package app

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	mcpserver "studio/internal/mcp"
)

// documentWatcher detects writes by other processes (the standalone MCP
// server) to the open document and to the approval queue, and emits Wails
// events so the frontend refreshes. fsnotify on the data directory gives
// quick reaction; a 2s ticker covers platforms where WAL writes are missed.
type documentWatcher struct {
	ctx context.Context
	app *App
	mu  sync.Mutex

	documentID string
	lastDocs   string // documents fingerprint (count + newest update)

	fsw      *fsnotify.Watcher
	debounce func(f func())
	stop     chan struct{}
	stopOnce sync.Once

	// Track emitted approval IDs to avoid infinite re-emission
	emittedApprovals map[string]bool
}

func newDocumentWatcher(ctx context.Context, app *App) *documentWatcher {
	return &documentWatcher{
		ctx:              ctx,
		app:              app,
		debounce:         debounce.New(250 * time.Millisecond),
		stop:             make(chan struct{}),
		emittedApprovals: map[string]bool{},
	}
}

// SetDocument updates the watched document. Called when the user opens one.
func (w *documentWatcher) SetDocument(documentID string) {
	if w == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.documentID = documentID
}

// Start begins watching dataDir and the polling loop. The poll loop runs
// even when fsnotify cannot be set up; that error is returned.
func (w *documentWatcher) Start(dataDir string) error {
	go w.pollLoop(w.stop)

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(dataDir); err != nil {
		fsw.Close()
		return fmt.Errorf("watch %s: %w", dataDir, err)
	}
	w.mu.Lock()
	w.fsw = fsw
	w.mu.Unlock()
	go w.eventLoop(fsw)
	return nil
}

// Stop terminates both loops. Safe to call more than once.
func (w *documentWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stop)
		w.mu.Lock()
		fsw := w.fsw
		w.mu.Unlock()
		if fsw != nil {
			fsw.Close()
		}
	})
}

func (w *documentWatcher) pollLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.check()
		case <-stop:
			return
		case <-w.ctx.Done():
			return
		}
	}
}

// eventLoop ends when Stop closes fsw.
func (w *documentWatcher) eventLoop(fsw *fsnotify.Watcher) {
	for {
		select {
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			// studio.db, studio.db-wal, studio.db-shm
			if !strings.HasPrefix(filepath.Base(event.Name), "studio.db") {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.debounce(w.check)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			log.Printf("[WATCHER] error: %v", err)
		}
	}
}

func (w *documentWatcher) check() {
	if w.app.db == nil {
		return
	}
	w.mu.Lock()
	documentID := w.documentID
	w.mu.Unlock()

	// ── Open document ───────────────────────────────────
	if sess := w.app.currentSession(); sess != nil && sess.Document().ID == documentID {
		reloaded, err := sess.Refresh()
		if err != nil {
			log.Printf("[WATCHER] refresh %s: %v", documentID, err)
		}
		if reloaded {
			wailsRuntime.EventsEmit(w.ctx, "document:changed", map[string]string{"documentId": documentID})
		}
	}

	// ── Document list (sidebar) ─────────────────────────
	if docs, err := w.app.documents.ListDocuments(); err == nil {
		fp := fmt.Sprintf("%d", len(docs))
		if len(docs) > 0 {
			fp += ":" + docs[0].UpdatedAt.String()
		}
		w.mu.Lock()
		changed := w.lastDocs != "" && w.lastDocs != fp
		w.lastDocs = fp
		w.mu.Unlock()
		if changed {
			wailsRuntime.EventsEmit(w.ctx, "documents:changed", nil)
		}
	}

	// ── Pending MCP approvals (cross-process IPC) ───────
	pending, err := mcpserver.PendingActions(w.app.db.Conn())
	if err != nil {
		return
	}
	live := make(map[string]bool, len(pending))
	for _, p := range pending {
		live[p.ID] = true
		w.mu.Lock()
		alreadySent := w.emittedApprovals[p.ID]
		w.emittedApprovals[p.ID] = true
		w.mu.Unlock()
		if !alreadySent {
			wailsRuntime.EventsEmit(w.ctx, "mcp:activity", map[string]any{
				"changes":    1,
				"documentId": p.Target.DocumentID,
			})
			if sess := w.app.currentSession(); sess != nil && sess.Document().ID == p.Target.DocumentID {
				showDeletion(sess.Editor(), p.Target)
			}
			wailsRuntime.EventsEmit(w.ctx, "mcp:approval-required", p)
		}
	}

	// Forget resolved approvals (the standalone server deletes them)
	w.mu.Lock()
	for id := range w.emittedApprovals {
		if !live[id] {
			delete(w.emittedApprovals, id)
		}
	}
	w.mu.Unlock()
}
