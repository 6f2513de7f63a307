package mcpserver

import (
	"context"
	"fmt"

	"studio/internal/domain"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerDocumentTools() {
	// ── list_documents ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_documents",
		mcp.WithDescription("List all documents, most recently edited first"),
	), s.handleListDocuments)

	// ── create_document ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("create_document",
		mcp.WithDescription("Create a new document with one empty page and open it. Subsequent tools act on it."),
		mcp.WithString("name",
			mcp.Description("Name of the new document"),
			mcp.Required(),
		),
		mcp.WithString("canvas",
			mcp.Description("Canvas preset for the first page: Presentation 16:9, Instagram Post, Instagram Story, A4, Twitter Post (optional)"),
		),
	), s.handleCreateDocument)

	// ── open_document ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("open_document",
		mcp.WithDescription("Open an existing document. Subsequent tools act on it."),
		mcp.WithString("documentId",
			mcp.Description("ID of the document"),
			mcp.Required(),
		),
	), s.handleOpenDocument)
}

func (s *Server) handleListDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docs, err := s.documents.ListDocuments()
	if err != nil {
		return nil, err
	}
	return jsonResult(docs)
}

func (s *Server) handleCreateDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("name", "")
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	size := domain.DefaultCanvasSize()
	if preset := req.GetString("canvas", ""); preset != "" {
		p, ok := domain.PresetByName(preset)
		if !ok {
			return nil, fmt.Errorf("unknown canvas preset %q", preset)
		}
		size = p
	}
	doc, err := s.documents.CreateDocument(name, size)
	if err != nil {
		return nil, err
	}
	// Auto-open the new document
	sess, err := s.open(doc.ID)
	if err != nil {
		return nil, err
	}
	return jsonResult(sess.State())
}

func (s *Server) handleOpenDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("documentId", "")
	if id == "" {
		return nil, fmt.Errorf("documentId is required")
	}
	sess, err := s.open(id)
	if err != nil {
		return nil, err
	}
	return jsonResult(sess.State())
}
