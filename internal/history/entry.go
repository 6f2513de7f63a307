package history

import "studio/internal/domain"

type Kind string

const (
	AddElement       Kind = "add_element"
	UpdateElement    Kind = "update_element"
	DeleteElement    Kind = "delete_element"
	ChangeCanvasSize Kind = "change_canvas_size"
	AddPage          Kind = "add_page"
	DeletePage       Kind = "delete_page"
	ReorderPages     Kind = "reorder_pages"
)

// Entry is one committed mutation and what is needed to invert it. Which
// fields are set depends on Kind. Entries sharing a non-empty Group are
// undone and redone together.
type Entry struct {
	Kind      Kind                 `json:"kind"`
	PageID    string               `json:"pageId,omitempty"`
	ElementID string               `json:"elementId,omitempty"`
	Element   *domain.Element      `json:"element,omitempty"`
	Index     int                  `json:"index"`
	Before    *domain.ElementPatch `json:"before,omitempty"`
	After     *domain.ElementPatch `json:"after,omitempty"`
	PrevSize  *domain.CanvasSize   `json:"prevSize,omitempty"`
	NextSize  *domain.CanvasSize   `json:"nextSize,omitempty"`
	Page      *domain.Page         `json:"page,omitempty"`
	PrevOrder []string             `json:"prevOrder,omitempty"`
	NextOrder []string             `json:"nextOrder,omitempty"`
	Group     string               `json:"group,omitempty"`
}

// Index -1 means append.
func AddElementEntry(pageID string, el domain.Element, index int) Entry {
	c := el.Clone()
	return Entry{Kind: AddElement, PageID: pageID, ElementID: el.ID, Element: &c, Index: index}
}

func UpdateElementEntry(pageID, elementID string, before, after domain.ElementPatch) Entry {
	return Entry{Kind: UpdateElement, PageID: pageID, ElementID: elementID, Before: &before, After: &after}
}

func DeleteElementEntry(pageID string, el domain.Element, index int) Entry {
	c := el.Clone()
	return Entry{Kind: DeleteElement, PageID: pageID, ElementID: el.ID, Element: &c, Index: index}
}

func CanvasSizeEntry(pageID string, prev, next domain.CanvasSize) Entry {
	return Entry{Kind: ChangeCanvasSize, PageID: pageID, PrevSize: &prev, NextSize: &next}
}

func AddPageEntry(p domain.Page, index int) Entry {
	c := p.Clone()
	return Entry{Kind: AddPage, PageID: p.ID, Page: &c, Index: index}
}

func DeletePageEntry(p domain.Page, index int) Entry {
	c := p.Clone()
	return Entry{Kind: DeletePage, PageID: p.ID, Page: &c, Index: index}
}

func ReorderPagesEntry(prev, next []string) Entry {
	return Entry{
		Kind:      ReorderPages,
		PrevOrder: append([]string(nil), prev...),
		NextOrder: append([]string(nil), next...),
	}
}

// Target is what entries are applied to.
type Target interface {
	// InsertElement puts el at index, or appends when index is out of range.
	InsertElement(pageID string, el domain.Element, index int) error
	RemoveElement(pageID, elementID string) error
	PatchElement(pageID, elementID string, p domain.ElementPatch) error
	SetCanvasSize(pageID string, size domain.CanvasSize) error
	InsertPage(p domain.Page, index int) error
	RemovePage(pageID string) error
	ReorderPages(order []string) error
}

func (e Entry) undo(t Target) error {
	switch e.Kind {
	case AddElement:
		return t.RemoveElement(e.PageID, e.ElementID)
	case UpdateElement:
		return t.PatchElement(e.PageID, e.ElementID, *e.Before)
	case DeleteElement:
		return t.InsertElement(e.PageID, e.Element.Clone(), e.Index)
	case ChangeCanvasSize:
		return t.SetCanvasSize(e.PageID, *e.PrevSize)
	case AddPage:
		return t.RemovePage(e.Page.ID)
	case DeletePage:
		return t.InsertPage(e.Page.Clone(), e.Index)
	case ReorderPages:
		return t.ReorderPages(e.PrevOrder)
	}
	return nil
}

func (e Entry) redo(t Target) error {
	switch e.Kind {
	case AddElement:
		return t.InsertElement(e.PageID, e.Element.Clone(), e.Index)
	case UpdateElement:
		return t.PatchElement(e.PageID, e.ElementID, *e.After)
	case DeleteElement:
		return t.RemoveElement(e.PageID, e.ElementID)
	case ChangeCanvasSize:
		return t.SetCanvasSize(e.PageID, *e.NextSize)
	case AddPage:
		return t.InsertPage(e.Page.Clone(), e.Index)
	case DeletePage:
		return t.RemovePage(e.Page.ID)
	case ReorderPages:
		return t.ReorderPages(e.NextOrder)
	}
	return nil
}
