package app

import (
	"studio/internal/editor"
	mcpserver "studio/internal/mcp"
)

// ============================================================
// MCP deletions awaiting approval (standalone server)
// ============================================================

func (a *App) ListPendingApprovals() ([]mcpserver.PendingAction, error) {
	return mcpserver.PendingActions(a.db.Conn())
}

func (a *App) ApproveMCPAction(id string) error {
	return mcpserver.ResolveAction(a.db.Conn(), id, true)
}

func (a *App) RejectMCPAction(id string) error {
	return mcpserver.ResolveAction(a.db.Conn(), id, false)
}

// showDeletion brings the page an agent wants to change into view and
// selects the elements it would delete. A whole-page deletion shows the
// page with nothing selected. Returns false when the page is not in ed.
func showDeletion(ed *editor.Editor, t mcpserver.DeletionTarget) bool {
	if err := ed.SetActivePage(t.PageID); err != nil {
		return false
	}
	if t.WholePage() {
		ed.ClearSelection()
		return true
	}
	ed.SelectElements(t.ElementIDs)
	return true
}
