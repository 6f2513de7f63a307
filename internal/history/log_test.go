package history

import (
	"fmt"
	"reflect"
	"testing"

	"studio/internal/domain"
)

// memDoc is an in-memory Target.
type memDoc struct {
	pages []domain.Page
}

func newMemDoc(pageIDs ...string) *memDoc {
	d := &memDoc{}
	for _, id := range pageIDs {
		d.pages = append(d.pages, domain.Page{ID: id, CanvasSize: domain.DefaultCanvasSize()})
	}
	return d
}

func (d *memDoc) page(id string) (*domain.Page, error) {
	for i := range d.pages {
		if d.pages[i].ID == id {
			return &d.pages[i], nil
		}
	}
	return nil, domain.ErrPageNotFound
}

func (d *memDoc) InsertElement(pageID string, el domain.Element, index int) error {
	p, err := d.page(pageID)
	if err != nil {
		return err
	}
	if index < 0 || index > len(p.Elements) {
		index = len(p.Elements)
	}
	p.Elements = append(p.Elements[:index], append([]domain.Element{el}, p.Elements[index:]...)...)
	return nil
}

func (d *memDoc) RemoveElement(pageID, elementID string) error {
	p, err := d.page(pageID)
	if err != nil {
		return err
	}
	if i := domain.IndexOf(p.Elements, elementID); i >= 0 {
		p.Elements = append(p.Elements[:i], p.Elements[i+1:]...)
	}
	return nil
}

func (d *memDoc) PatchElement(pageID, elementID string, patch domain.ElementPatch) error {
	p, err := d.page(pageID)
	if err != nil {
		return err
	}
	i := domain.IndexOf(p.Elements, elementID)
	if i < 0 {
		return domain.ErrElementNotFound
	}
	p.Elements[i] = patch.Apply(p.Elements[i])
	return nil
}

func (d *memDoc) SetCanvasSize(pageID string, size domain.CanvasSize) error {
	p, err := d.page(pageID)
	if err != nil {
		return err
	}
	p.CanvasSize = size
	return nil
}

func (d *memDoc) InsertPage(p domain.Page, index int) error {
	if index < 0 || index > len(d.pages) {
		index = len(d.pages)
	}
	d.pages = append(d.pages[:index], append([]domain.Page{p}, d.pages[index:]...)...)
	return nil
}

func (d *memDoc) RemovePage(pageID string) error {
	for i, p := range d.pages {
		if p.ID == pageID {
			d.pages = append(d.pages[:i], d.pages[i+1:]...)
			return nil
		}
	}
	return domain.ErrPageNotFound
}

func (d *memDoc) ReorderPages(order []string) error {
	var out []domain.Page
	for _, id := range order {
		p, err := d.page(id)
		if err != nil {
			return err
		}
		out = append(out, *p)
	}
	d.pages = out
	return nil
}

func (d *memDoc) pageIDs() []string {
	var ids []string
	for _, p := range d.pages {
		ids = append(ids, p.ID)
	}
	return ids
}

func rect(id string, x float64) domain.Element {
	return domain.Element{ID: id, Kind: domain.KindRectangle, X: x, Y: x, Width: 100, Height: 60, Shape: &domain.ShapeProps{BorderWidth: 2}}
}

func TestUndoRedo_EmptyIsNoop(t *testing.T) {
	l := New(10)
	d := newMemDoc("p1")
	if ok, err := l.Undo(d); ok || err != nil {
		t.Errorf("Undo on empty log = (%v, %v)", ok, err)
	}
	if ok, err := l.Redo(d); ok || err != nil {
		t.Errorf("Redo on empty log = (%v, %v)", ok, err)
	}
}

func TestDeleteThreeUndoThree(t *testing.T) {
	d := newMemDoc("p1")
	l := New(10)
	for i := 0; i < 5; i++ {
		d.InsertElement("p1", rect(fmt.Sprintf("e%d", i), float64(i*10)), -1)
	}
	original := domain.CloneElements(d.pages[0].Elements)

	for _, id := range []string{"e1", "e3", "e4"} {
		idx := domain.IndexOf(d.pages[0].Elements, id)
		el := d.pages[0].Elements[idx]
		d.RemoveElement("p1", id)
		l.Record(DeleteElementEntry("p1", el, idx))
	}
	if len(d.pages[0].Elements) != 2 {
		t.Fatalf("expected 2 elements left, got %d", len(d.pages[0].Elements))
	}

	for i := 0; i < 3; i++ {
		if ok, err := l.Undo(d); !ok || err != nil {
			t.Fatalf("undo %d = (%v, %v)", i, ok, err)
		}
	}
	if !reflect.DeepEqual(d.pages[0].Elements, original) {
		t.Errorf("restored elements differ:\n got %+v\nwant %+v", d.pages[0].Elements, original)
	}
}

func TestUndoRedoRoundTrip(t *testing.T) {
	d := newMemDoc("p1", "p2")
	l := New(50)

	// add
	a := rect("a", 0)
	d.InsertElement("p1", a, -1)
	l.Record(AddElementEntry("p1", a, -1))

	// move
	after := domain.PositionPatch(40, 50)
	before := after.Capture(a)
	d.PatchElement("p1", "a", after)
	l.Record(UpdateElementEntry("p1", "a", before, after))

	// canvas
	next := domain.CanvasPresets[1]
	l.Record(CanvasSizeEntry("p1", d.pages[0].CanvasSize, next))
	d.SetCanvasSize("p1", next)

	// add page
	p3 := domain.Page{ID: "p3", CanvasSize: domain.DefaultCanvasSize()}
	d.InsertPage(p3, 2)
	l.Record(AddPageEntry(p3, 2))

	// reorder
	prev := d.pageIDs()
	order := []string{"p3", "p1", "p2"}
	d.ReorderPages(order)
	l.Record(ReorderPagesEntry(prev, order))

	// delete page
	p2, _ := d.page("p2")
	deleted := p2.Clone()
	d.RemovePage("p2")
	l.Record(DeletePageEntry(deleted, 2))

	final := clonePages(d.pages)

	for round := 0; round < 3; round++ {
		for l.CanUndo() {
			if _, err := l.Undo(d); err != nil {
				t.Fatalf("round %d undo: %v", round, err)
			}
		}
		if len(d.pages) != 2 || len(d.pages[0].Elements) != 0 {
			t.Fatalf("round %d: expected pristine document, got %+v", round, d.pages)
		}
		for l.CanRedo() {
			if _, err := l.Redo(d); err != nil {
				t.Fatalf("round %d redo: %v", round, err)
			}
		}
		if !reflect.DeepEqual(d.pages, final) {
			t.Fatalf("round %d: redo did not reproduce state:\n got %+v\nwant %+v", round, d.pages, final)
		}
	}
}

func clonePages(in []domain.Page) []domain.Page {
	out := make([]domain.Page, len(in))
	for i, p := range in {
		out[i] = p.Clone()
	}
	return out
}

func TestRecordClearsRedo(t *testing.T) {
	d := newMemDoc("p1")
	l := New(10)
	a := rect("a", 0)
	d.InsertElement("p1", a, -1)
	l.Record(AddElementEntry("p1", a, -1))
	l.Undo(d)
	if !l.CanRedo() {
		t.Fatal("expected redo available")
	}
	b := rect("b", 0)
	d.InsertElement("p1", b, -1)
	l.Record(AddElementEntry("p1", b, -1))
	if l.CanRedo() {
		t.Error("recording must clear redo")
	}
}

func TestGroupUndoesAsOneStep(t *testing.T) {
	d := newMemDoc("p1")
	l := New(10)
	var entries []Entry
	for _, id := range []string{"a", "b", "c"} {
		el := rect(id, 0)
		d.InsertElement("p1", el, -1)
		after := domain.PositionPatch(10, 10)
		entries = append(entries, UpdateElementEntry("p1", id, after.Capture(el), after))
		d.PatchElement("p1", id, after)
	}
	l.RecordGroup(entries)

	if ok, _ := l.Undo(d); !ok {
		t.Fatal("expected undo")
	}
	for _, el := range d.pages[0].Elements {
		if el.X != 0 || el.Y != 0 {
			t.Errorf("%s not restored: (%v, %v)", el.ID, el.X, el.Y)
		}
	}
	if l.CanUndo() {
		t.Error("group should be one step")
	}
	l.Redo(d)
	for _, el := range d.pages[0].Elements {
		if el.X != 10 {
			t.Errorf("%s not redone", el.ID)
		}
	}
}

func TestLimitDropsOldest(t *testing.T) {
	l := New(3)
	for i := 0; i < 5; i++ {
		l.Record(AddElementEntry("p1", rect(fmt.Sprintf("e%d", i), 0), -1))
	}
	if l.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", l.Len())
	}
	top, _ := l.PeekUndo()
	if top.ElementID != "e4" {
		t.Errorf("expected newest entry on top, got %s", top.ElementID)
	}
}

func TestUndoErrorLeavesStacks(t *testing.T) {
	d := newMemDoc("p1")
	l := New(10)
	l.Record(UpdateElementEntry("p1", "ghost", domain.PositionPatch(0, 0), domain.PositionPatch(1, 1)))
	if ok, err := l.Undo(d); ok || err == nil {
		t.Fatalf("expected failure, got (%v, %v)", ok, err)
	}
	if !l.CanUndo() || l.CanRedo() {
		t.Error("stacks changed after failed undo")
	}
}

func TestSnapshotRestore(t *testing.T) {
	l := New(10)
	l.Record(AddElementEntry("p1", rect("a", 0), -1))
	l.Record(AddElementEntry("p1", rect("b", 0), -1))
	d := newMemDoc("p1")
	d.InsertElement("p1", rect("a", 0), -1)
	d.InsertElement("p1", rect("b", 0), -1)
	l.Undo(d)

	other := New(10)
	other.Restore(l.Snapshot())
	if other.Len() != 1 || !other.CanRedo() {
		t.Errorf("restore lost entries: %+v", other.Snapshot())
	}
}
