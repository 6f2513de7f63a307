package mcpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventEmitter allows the approval queue to notify the frontend.
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

// ─── Deletion approvals ─────────────────────────────────────
// Agents delete pages and elements only after the user confirms. A request
// names exactly what would be removed, so the desktop app can show it on
// the canvas while the prompt is open.

// DeletionTarget is what a pending deletion would remove. No element ids
// means the whole page.
type DeletionTarget struct {
	DocumentID string   `json:"documentId"`
	PageID     string   `json:"pageId"`
	ElementIDs []string `json:"elementIds,omitempty"`
}

func (t DeletionTarget) WholePage() bool { return len(t.ElementIDs) == 0 }

// PendingAction is a deletion waiting for the user's decision.
type PendingAction struct {
	ID          string         `json:"id"`
	Tool        string         `json:"tool"`
	Description string         `json:"description"`
	Target      DeletionTarget `json:"target"`
	CreatedAt   time.Time      `json:"createdAt"`
}

var (
	ErrDeletionRejected = errors.New("deletion rejected by user")
	ErrApprovalTimeout  = errors.New("approval timed out")
)

const (
	statusPending  = "pending"
	statusApproved = "approved"
	statusRejected = "rejected"

	approvalPollInterval   = 500 * time.Millisecond
	defaultApprovalTimeout = 2 * time.Minute
)

// ApprovalQueue holds deletions until the user decides. Inside the desktop
// app decisions arrive through Decide; a standalone server sets a database
// and the desktop app resolves rows in pending_deletions instead.
type ApprovalQueue struct {
	ctx     context.Context
	emitter EventEmitter
	timeout time.Duration
	db      *sql.DB

	mu        sync.Mutex
	decisions map[string]chan bool
}

func NewApprovalQueue(ctx context.Context, emitter EventEmitter) *ApprovalQueue {
	return &ApprovalQueue{
		ctx:       ctx,
		emitter:   emitter,
		timeout:   defaultApprovalTimeout,
		decisions: map[string]chan bool{},
	}
}

// SetTimeout changes how long a request waits for the user.
func (q *ApprovalQueue) SetTimeout(d time.Duration) {
	q.timeout = d
}

// SetDB routes requests through the shared database (standalone mode).
func (q *ApprovalQueue) SetDB(db *sql.DB) {
	q.db = db
}

// ConfirmDeletion blocks until the user approves the deletion. It returns
// nil on approval and wraps ErrDeletionRejected or ErrApprovalTimeout
// otherwise.
func (q *ApprovalQueue) ConfirmDeletion(tool, description string, target DeletionTarget) error {
	a := PendingAction{
		ID:          uuid.New().String(),
		Tool:        tool,
		Description: description,
		Target:      target,
		CreatedAt:   time.Now().UTC(),
	}
	decided := make(chan bool, 1)
	q.mu.Lock()
	q.decisions[a.ID] = decided
	q.mu.Unlock()
	defer q.forget(a.ID)

	var poll <-chan time.Time
	if q.db != nil {
		if err := insertPendingDeletion(q.db, a); err != nil {
			return err
		}
		defer deletePendingDeletion(q.db, a.ID)
		ticker := time.NewTicker(approvalPollInterval)
		defer ticker.Stop()
		poll = ticker.C
	} else {
		q.emitter.Emit(q.ctx, "mcp:approval-required", a)
	}

	expired := time.NewTimer(q.timeout)
	defer expired.Stop()

	for {
		select {
		case approved := <-decided:
			return verdict(tool, approved)
		case <-poll:
			status, err := deletionStatus(q.db, a.ID)
			if err != nil || status == statusPending {
				continue
			}
			return verdict(tool, status == statusApproved)
		case <-expired.C:
			if q.db == nil {
				q.emitter.Emit(q.ctx, "mcp:approval-dismissed", map[string]string{"id": a.ID})
			}
			return fmt.Errorf("%s after %s: %w", tool, q.timeout, ErrApprovalTimeout)
		case <-q.ctx.Done():
			return fmt.Errorf("%s: %w", tool, q.ctx.Err())
		}
	}
}

func verdict(tool string, approved bool) error {
	if approved {
		return nil
	}
	return fmt.Errorf("%s: %w", tool, ErrDeletionRejected)
}

// Decide delivers the user's answer to an in-process request. It reports
// false when no request with that id is waiting.
func (q *ApprovalQueue) Decide(actionID string, approved bool) bool {
	q.mu.Lock()
	decided, ok := q.decisions[actionID]
	q.mu.Unlock()
	if !ok {
		return false
	}
	select {
	case decided <- approved:
		return true
	default:
		// already decided
		return false
	}
}

func (q *ApprovalQueue) forget(id string) {
	q.mu.Lock()
	delete(q.decisions, id)
	q.mu.Unlock()
}

// ─── pending_deletions table ────────────────────────────────

func insertPendingDeletion(db *sql.DB, a PendingAction) error {
	ids, err := json.Marshal(a.Target.ElementIDs)
	if err != nil {
		return fmt.Errorf("encode element ids: %w", err)
	}
	_, err = db.Exec(
		`INSERT INTO pending_deletions (id, tool, description, document_id, page_id, element_ids, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Tool, a.Description, a.Target.DocumentID, a.Target.PageID, string(ids), statusPending, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert pending deletion: %w", err)
	}
	return nil
}

func deletionStatus(db *sql.DB, id string) (string, error) {
	var status string
	err := db.QueryRow(`SELECT status FROM pending_deletions WHERE id = ?`, id).Scan(&status)
	return status, err
}

func deletePendingDeletion(db *sql.DB, id string) {
	db.Exec(`DELETE FROM pending_deletions WHERE id = ?`, id)
}

// PendingActions lists deletions a standalone server is waiting on, oldest
// first.
func PendingActions(db *sql.DB) ([]PendingAction, error) {
	rows, err := db.Query(
		`SELECT id, tool, description, document_id, page_id, element_ids, created_at
		 FROM pending_deletions WHERE status = ? ORDER BY created_at ASC`, statusPending)
	if err != nil {
		return nil, fmt.Errorf("list pending deletions: %w", err)
	}
	defer rows.Close()

	var out []PendingAction
	for rows.Next() {
		var a PendingAction
		var ids string
		if err := rows.Scan(&a.ID, &a.Tool, &a.Description, &a.Target.DocumentID, &a.Target.PageID, &ids, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pending deletion: %w", err)
		}
		if err := json.Unmarshal([]byte(ids), &a.Target.ElementIDs); err != nil {
			return nil, fmt.Errorf("decode element ids of %s: %w", a.ID, err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ResolveAction records the user's decision on a standalone server's
// deletion. The server sees it on its next poll.
func ResolveAction(db *sql.DB, actionID string, approved bool) error {
	status := statusRejected
	if approved {
		status = statusApproved
	}
	res, err := db.Exec(`UPDATE pending_deletions SET status = ? WHERE id = ? AND status = ?`, status, actionID, statusPending)
	if err != nil {
		return fmt.Errorf("resolve deletion %s: %w", actionID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("deletion %s is not pending", actionID)
	}
	return nil
}

// deletionRefused is the tool text for a deletion that did not go ahead.
func deletionRefused(err error) string {
	switch {
	case errors.Is(err, ErrDeletionRejected):
		return "Action rejected by user"
	case errors.Is(err, ErrApprovalTimeout):
		return "No answer from the user, nothing was deleted"
	default:
		return "Nothing was deleted: " + err.Error()
	}
}
