package app

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	mcpserver "studio/internal/mcp"
	"studio/internal/service"
	"studio/internal/storage"
)

// noopEmitter is a no-op EventEmitter used in MCP-only mode (no Wails frontend).
type noopEmitter struct{}

func (noopEmitter) Emit(_ context.Context, _ string, _ any) {}

// ServeMCP runs the app as a standalone MCP server on stdin/stdout with no GUI.
// It shares the desktop app's database; a running desktop app sees the edits
// through its document watcher.
func ServeMCP() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	_, dbPath := dataPaths()
	db, err := storage.New(dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	measurer, err := newMeasurer()
	if err != nil {
		log.Printf("[MCP] fonts unavailable, using fixed metrics: %v", err)
	}

	emitter := noopEmitter{}
	settings := service.NewSettingsService(db)
	// Agents expect their edits on disk right away; tools flush explicitly
	documents := service.NewDocumentService(ctx, db, emitter, service.DefaultSaveDelay)

	mcpSrv := mcpserver.New(ctx, mcpserver.Deps{
		Emitter:    emitter,
		Documents:  documents,
		Settings:   settings,
		Measurer:   measurer,
		ApprovalDB: db.Conn(), // Enable SQLite-based approval IPC
	})
	defer func() {
		if err := mcpSrv.Close(); err != nil {
			log.Printf("[MCP] save on exit: %v", err)
		}
	}()

	log.Println("[MCP] Starting standalone stdio server...")
	if err := mcpSrv.ServeStdio(); err != nil {
		log.Fatalf("MCP server error: %v", err)
	}
}
