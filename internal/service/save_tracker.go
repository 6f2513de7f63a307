package service

import (
	"context"
	"sync"
)

// ─────────────────────────────────────────────────────────────
// saveTracker: one writer per document, coalesced follow-ups
// ─────────────────────────────────────────────────────────────

// saveTracker lets at most one save of a document write at a time. A save
// requested while another is writing is folded into one extra pass by the
// running writer, so edits made mid-save are never left behind.
type saveTracker struct {
	mu     sync.Mutex
	docs   map[string]*saveState
	active sync.WaitGroup
}

type saveState struct {
	again bool
}

// begin claims docID for writing. When a save of docID is already writing
// it records the request for that writer and returns false.
func (t *saveTracker) begin(docID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.docs == nil {
		t.docs = map[string]*saveState{}
	}
	if st, ok := t.docs[docID]; ok {
		st.again = true
		return false
	}
	t.docs[docID] = &saveState{}
	t.active.Add(1)
	return true
}

// finish ends a pass. It returns true, keeping the claim, when another save
// was requested during the pass and the pass succeeded; the caller must
// write again and call finish once more. A failed pass always releases.
func (t *saveTracker) finish(docID string, ok bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	st := t.docs[docID]
	if st == nil {
		return false
	}
	if ok && st.again {
		st.again = false
		return true
	}
	delete(t.docs, docID)
	t.active.Done()
	return false
}

// writing reports whether a save of docID is in flight.
func (t *saveTracker) writing(docID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.docs[docID]
	return ok
}

// Wait blocks until no document is being written or ctx is cancelled.
func (t *saveTracker) Wait(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		t.active.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}
