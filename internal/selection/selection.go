// Package selection tracks which elements, or the canvas itself, are
// selected in the editor.
package selection

import (
	"sort"

	"studio/internal/domain"
)

// Manager holds the active element, the multi-select set and the
// canvas-selected flag. It is not safe for concurrent use.
type Manager struct {
	active   string
	selected map[string]struct{}
	canvas   bool
}

func New() *Manager {
	return &Manager{selected: map[string]struct{}{}}
}

// Select makes id the active element. Without shift it replaces the
// selection; with shift it is added to the set. Either way canvas
// selection is cleared.
func (m *Manager) Select(id string, shift bool) {
	if !shift {
		clear(m.selected)
	}
	m.selected[id] = struct{}{}
	m.active = id
	m.canvas = false
}

// Ensure re-asserts id as selected without disturbing a multi-selection it
// already belongs to.
func (m *Manager) Ensure(id string) {
	if _, ok := m.selected[id]; ok {
		m.active = id
		m.canvas = false
		return
	}
	m.Select(id, false)
}

// SelectCanvas selects the canvas. Without shift it clears the element
// selection. With shift it extends an existing element selection and does
// nothing when no element is selected.
func (m *Manager) SelectCanvas(shift bool) {
	if shift {
		if len(m.selected) == 0 {
			return
		}
		m.canvas = true
		return
	}
	clear(m.selected)
	m.active = ""
	m.canvas = true
}

// SetAll replaces the selection with ids; the first becomes active.
func (m *Manager) SetAll(ids []string) {
	m.Clear()
	for _, id := range ids {
		m.selected[id] = struct{}{}
	}
	if len(ids) > 0 {
		m.active = ids[0]
	}
}

// Clear resets active element, set and canvas flag together.
func (m *Manager) Clear() {
	clear(m.selected)
	m.active = ""
	m.canvas = false
}

// Remove drops ids from every part of the selection. Unknown ids are
// ignored.
func (m *Manager) Remove(ids ...string) {
	for _, id := range ids {
		delete(m.selected, id)
		if m.active == id {
			m.active = ""
		}
	}
	if m.active == "" && len(m.selected) > 0 {
		m.active = m.Selected()[0]
	}
}

func (m *Manager) IsSelected(id string) bool {
	_, ok := m.selected[id]
	return ok
}

func (m *Manager) Active() string       { return m.active }
func (m *Manager) CanvasSelected() bool { return m.canvas }
func (m *Manager) Len() int             { return len(m.selected) }

// Selected returns the selected ids in sorted order.
func (m *Manager) Selected() []string {
	ids := make([]string, 0, len(m.selected))
	for id := range m.selected {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (m *Manager) State() domain.Selection {
	return domain.Selection{
		ActiveElementID:    m.active,
		SelectedElementIDs: m.Selected(),
		CanvasSelected:     m.canvas,
	}
}
