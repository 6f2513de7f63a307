package editor

import (
	"fmt"

	"studio/internal/domain"
)

// applier applies history entries to the editor's working copy and writes
// each change through. The editor lock is held by the caller.
type applier struct {
	e *Editor
}

func (a applier) InsertElement(pageID string, el domain.Element, index int) error {
	p, err := a.e.page(pageID)
	if err != nil {
		return err
	}
	if domain.IndexOf(p.Elements, el.ID) >= 0 {
		return fmt.Errorf("insert element %s: already on page", el.ID)
	}
	if index < 0 || index > len(p.Elements) {
		index = len(p.Elements)
	}
	p.Elements = append(p.Elements[:index:index], append([]domain.Element{el}, p.Elements[index:]...)...)
	a.e.writeElements(p)
	return nil
}

func (a applier) RemoveElement(pageID, elementID string) error {
	p, err := a.e.page(pageID)
	if err != nil {
		return err
	}
	if i := domain.IndexOf(p.Elements, elementID); i >= 0 {
		p.Elements = append(p.Elements[:i:i], p.Elements[i+1:]...)
		a.e.writeElements(p)
	}
	a.e.sel.Remove(elementID)
	return nil
}

func (a applier) PatchElement(pageID, elementID string, patch domain.ElementPatch) error {
	p, err := a.e.page(pageID)
	if err != nil {
		return err
	}
	i := domain.IndexOf(p.Elements, elementID)
	if i < 0 {
		return fmt.Errorf("patch element %s: %w", elementID, domain.ErrElementNotFound)
	}
	p.Elements[i] = patch.Apply(p.Elements[i])
	a.e.writeElements(p)
	return nil
}

func (a applier) SetCanvasSize(pageID string, size domain.CanvasSize) error {
	p, err := a.e.page(pageID)
	if err != nil {
		return err
	}
	p.CanvasSize = size
	a.e.writeCanvasSize(p)
	return nil
}

func (a applier) InsertPage(p domain.Page, index int) error {
	return a.e.insertPage(p, index)
}

func (a applier) RemovePage(pageID string) error {
	return a.e.removePage(pageID)
}

func (a applier) ReorderPages(order []string) error {
	return a.e.reorderPages(order)
}
