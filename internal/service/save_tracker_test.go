package service

import (
	"context"
	"testing"
	"time"
)

func TestSaveTracker_OneWriterPerDocument(t *testing.T) {
	var tr saveTracker

	if !tr.begin("doc-1") {
		t.Fatal("expected first save to claim the document")
	}
	if tr.begin("doc-1") {
		t.Fatal("expected a second save of the same document to fold in")
	}
	if !tr.begin("doc-2") {
		t.Fatal("expected a save of another document to proceed")
	}
	if !tr.writing("doc-1") || !tr.writing("doc-2") {
		t.Fatal("expected both documents to be writing")
	}

	// The folded request costs doc-1 exactly one more pass
	if !tr.finish("doc-1", true) {
		t.Fatal("expected a follow-up pass for doc-1")
	}
	if tr.finish("doc-1", true) {
		t.Fatal("expected doc-1 to be released after the follow-up")
	}
	if tr.finish("doc-2", true) {
		t.Fatal("expected doc-2 to be released")
	}
	if tr.writing("doc-1") || tr.writing("doc-2") {
		t.Fatal("expected no saves in flight")
	}
	if !tr.begin("doc-1") {
		t.Fatal("expected a new save to claim doc-1")
	}
	tr.finish("doc-1", true)
}

func TestSaveTracker_FailedPassReleases(t *testing.T) {
	var tr saveTracker
	tr.begin("doc-1")
	tr.begin("doc-1")

	if tr.finish("doc-1", false) {
		t.Fatal("a failed pass should not run again")
	}
	if tr.writing("doc-1") {
		t.Fatal("expected doc-1 released after failure")
	}
}

func TestSaveTracker_Wait(t *testing.T) {
	var tr saveTracker
	tr.begin("doc-a")

	done := make(chan struct{})
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()
		tr.Wait(ctx)
		close(done)
	}()

	go func() {
		time.Sleep(20 * time.Millisecond)
		tr.finish("doc-a", true)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait did not return")
	}
}
