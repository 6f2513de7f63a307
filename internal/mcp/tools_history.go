package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerHistoryTools() {
	s.mcp.AddTool(mcp.NewTool("undo",
		mcp.WithDescription("Undo the most recent change in the open document. Switches to the page the change was made on."),
	), s.handleUndo)

	s.mcp.AddTool(mcp.NewTool("redo",
		mcp.WithDescription("Redo the most recently undone change in the open document"),
	), s.handleRedo)
}

type historyResult struct {
	Applied      bool   `json:"applied"`
	ActivePageID string `json:"activePageId"`
	CanUndo      bool   `json:"canUndo"`
	CanRedo      bool   `json:"canRedo"`
}

func (s *Server) handleUndo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.resolveSession(req.GetArguments())
	if err != nil {
		return nil, err
	}
	ed := sess.Editor()
	ok, err := ed.Undo()
	if err != nil {
		return nil, err
	}
	if ok {
		s.commit(ctx, ed)
	}
	return jsonResult(historyResult{Applied: ok, ActivePageID: ed.ActivePage().ID, CanUndo: ed.CanUndo(), CanRedo: ed.CanRedo()})
}

func (s *Server) handleRedo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, err := s.resolveSession(req.GetArguments())
	if err != nil {
		return nil, err
	}
	ed := sess.Editor()
	ok, err := ed.Redo()
	if err != nil {
		return nil, err
	}
	if ok {
		s.commit(ctx, ed)
	}
	return jsonResult(historyResult{Applied: ok, ActivePageID: ed.ActivePage().ID, CanUndo: ed.CanUndo(), CanRedo: ed.CanRedo()})
}
