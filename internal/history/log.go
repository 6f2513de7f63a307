// Package history is the editor's undo/redo log. One log spans every page
// of a document; each entry carries the page it belongs to.
package history

import (
	"fmt"

	"github.com/google/uuid"
)

const DefaultLimit = 100

// Log holds the undo and redo stacks. Recording clears redo.
type Log struct {
	limit int
	undo  []Entry
	redo  []Entry
}

func New(limit int) *Log {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Log{limit: limit}
}

// Record appends one entry.
func (l *Log) Record(e Entry) {
	l.undo = append(l.undo, e)
	l.redo = nil
	l.trim()
}

// RecordGroup appends entries that undo and redo as one step.
func (l *Log) RecordGroup(entries []Entry) {
	switch len(entries) {
	case 0:
		return
	case 1:
		l.Record(entries[0])
		return
	}
	group := uuid.New().String()
	for _, e := range entries {
		e.Group = group
		l.undo = append(l.undo, e)
	}
	l.redo = nil
	l.trim()
}

// trim drops the oldest entries past the limit, never splitting a group.
func (l *Log) trim() {
	if len(l.undo) <= l.limit {
		return
	}
	cut := len(l.undo) - l.limit
	if g := l.undo[cut-1].Group; g != "" {
		for cut < len(l.undo) && l.undo[cut].Group == g {
			cut++
		}
	}
	l.undo = append([]Entry(nil), l.undo[cut:]...)
}

func (l *Log) CanUndo() bool { return len(l.undo) > 0 }
func (l *Log) CanRedo() bool { return len(l.redo) > 0 }
func (l *Log) Len() int      { return len(l.undo) }

// PeekUndo returns the entry the next Undo would invert first.
func (l *Log) PeekUndo() (Entry, bool) {
	if len(l.undo) == 0 {
		return Entry{}, false
	}
	return l.undo[len(l.undo)-1], true
}

func (l *Log) PeekRedo() (Entry, bool) {
	if len(l.redo) == 0 {
		return Entry{}, false
	}
	return l.redo[len(l.redo)-1], true
}

// topStep returns how many entries from the end of stack form one step.
func topStep(stack []Entry) int {
	n := len(stack)
	if n == 0 {
		return 0
	}
	g := stack[n-1].Group
	if g == "" {
		return 1
	}
	i := n - 1
	for i > 0 && stack[i-1].Group == g {
		i--
	}
	return n - i
}

// Undo inverts the most recent step against t and moves it to the redo
// stack. It returns false on an empty log. If t fails the stacks are left
// as they were.
func (l *Log) Undo(t Target) (bool, error) {
	n := topStep(l.undo)
	if n == 0 {
		return false, nil
	}
	step := l.undo[len(l.undo)-n:]
	for i := len(step) - 1; i >= 0; i-- {
		if err := step[i].undo(t); err != nil {
			return false, fmt.Errorf("undo %s: %w", step[i].Kind, err)
		}
	}
	// redo stack keeps the step in forward order, top at the end
	l.redo = append(l.redo, step...)
	l.undo = l.undo[:len(l.undo)-n]
	return true, nil
}

// Redo re-applies the most recently undone step.
func (l *Log) Redo(t Target) (bool, error) {
	n := topStep(l.redo)
	if n == 0 {
		return false, nil
	}
	step := l.redo[len(l.redo)-n:]
	for _, e := range step {
		if err := e.redo(t); err != nil {
			return false, fmt.Errorf("redo %s: %w", e.Kind, err)
		}
	}
	l.undo = append(l.undo, step...)
	l.redo = l.redo[:len(l.redo)-n]
	return true, nil
}

// Clear drops both stacks.
func (l *Log) Clear() {
	l.undo = nil
	l.redo = nil
}

// Snapshot is the serializable form of a log.
type Snapshot struct {
	Undo []Entry `json:"undo"`
	Redo []Entry `json:"redo"`
}

func (l *Log) Snapshot() Snapshot {
	return Snapshot{
		Undo: append([]Entry(nil), l.undo...),
		Redo: append([]Entry(nil), l.redo...),
	}
}

// Restore replaces the log contents with s, trimmed to the limit.
func (l *Log) Restore(s Snapshot) {
	l.undo = append([]Entry(nil), s.Undo...)
	l.redo = append([]Entry(nil), s.Redo...)
	l.trim()
}
