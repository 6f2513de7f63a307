package mcpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"studio/internal/domain"
	"studio/internal/editor"
	"studio/internal/geometry"
	"studio/internal/service"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server is the MCP server for the studio app.
// It exposes tools, resources, and prompts so AI agents can edit documents
// through the same editor entry points the canvas UI uses.
type Server struct {
	mcp      *server.MCPServer
	emitter  EventEmitter
	approval *ApprovalQueue

	documents *service.DocumentService
	settings  *service.SettingsService
	measurer  geometry.Measurer

	// Open document context (set by create_document / open_document)
	mu      sync.Mutex
	session *service.Session
}

// Deps holds all dependencies passed from the App layer to the MCP server.
type Deps struct {
	Emitter    EventEmitter
	Documents  *service.DocumentService
	Settings   *service.SettingsService
	Measurer   geometry.Measurer
	ApprovalDB *sql.DB // When set, deletions wait on pending_deletions (standalone mode)
}

// New creates and configures a new MCP server with all tools and resources.
func New(ctx context.Context, deps Deps) *Server {
	approval := NewApprovalQueue(ctx, deps.Emitter)
	if deps.ApprovalDB != nil {
		approval.SetDB(deps.ApprovalDB)
	}
	s := &Server{
		emitter:   deps.Emitter,
		approval:  approval,
		documents: deps.Documents,
		settings:  deps.Settings,
		measurer:  deps.Measurer,
	}

	s.mcp = server.NewMCPServer(
		"studio-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	s.registerDocumentTools()
	s.registerPageTools()
	s.registerElementTools()
	s.registerHistoryTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	log.Println("[MCP] Starting stdio server...")
	return server.ServeStdio(s.mcp)
}

// Close flushes the open document.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil
	}
	err := s.session.Close()
	s.session = nil
	return err
}

// Approve confirms a deletion the frontend was asked about. It reports
// false when nothing with that id is waiting.
func (s *Server) Approve(actionID string) bool {
	return s.approval.Decide(actionID, true)
}

func (s *Server) Reject(actionID string) bool {
	return s.approval.Decide(actionID, false)
}

// ── Helpers ────────────────────────────────────────────────

// open switches the server to document id, flushing the previous one.
func (s *Server) open(id string) (*service.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session != nil && s.session.Document().ID == id {
		return s.session, nil
	}
	opts := editor.DefaultOptions()
	if s.settings != nil {
		opts = s.settings.EditorOptions(s.measurer)
	} else if s.measurer != nil {
		opts.Measurer = s.measurer
	}
	sess, err := s.documents.Open(id, opts)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	if s.session != nil {
		if err := s.session.Close(); err != nil {
			log.Printf("[MCP] close document %s: %v", s.session.Document().ID, err)
		}
	}
	s.session = sess
	return sess, nil
}

// resolveSession returns the session for documentId from tool args, or the
// open document.
func (s *Server) resolveSession(args map[string]any) (*service.Session, error) {
	if id, ok := args["documentId"].(string); ok && id != "" {
		return s.open(id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil, fmt.Errorf("no document open (use create_document or open_document first)")
	}
	return s.session, nil
}

// resolveEditor returns the editor with the pageId from tool args made
// active, falling back to the current active page.
func (s *Server) resolveEditor(args map[string]any) (*editor.Editor, error) {
	sess, err := s.resolveSession(args)
	if err != nil {
		return nil, err
	}
	ed := sess.Editor()
	if pid, ok := args["pageId"].(string); ok && pid != "" && pid != ed.ActivePage().ID {
		if err := ed.SetActivePage(pid); err != nil {
			return nil, err
		}
	}
	return ed, nil
}

// commit writes the open document so the desktop app picks the change up,
// then notifies the frontend.
func (s *Server) commit(ctx context.Context, ed *editor.Editor) {
	s.mu.Lock()
	sess := s.session
	s.mu.Unlock()
	if sess != nil {
		if err := sess.Flush(); err != nil {
			log.Printf("[MCP] save document %s: %v", sess.Document().ID, err)
		}
	}
	s.emitter.Emit(ctx, "mcp:canvas-changed", map[string]string{"pageId": ed.ActivePage().ID})
}

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

// getElementForTool retrieves an element on the active page and validates it
// exists.
func getElementForTool(ed *editor.Editor, args map[string]any) (domain.Element, error) {
	id, ok := args["elementId"].(string)
	if !ok || id == "" {
		return domain.Element{}, fmt.Errorf("elementId is required")
	}
	return ed.Element(id)
}

func getFloat(args map[string]any, key string, fallback float64) float64 {
	if v, ok := args[key].(float64); ok {
		return v
	}
	return fallback
}

func getFloatPtr(args map[string]any, key string) *float64 {
	if v, ok := args[key].(float64); ok {
		return &v
	}
	return nil
}

func getBool(args map[string]any, key string) bool {
	v, _ := args[key].(bool)
	return v
}

func boolPtr(v bool) *bool { return &v }
