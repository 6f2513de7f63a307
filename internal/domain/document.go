package domain

import "time"

type Document struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Page is an ordered list of elements on its own canvas.
type Page struct {
	ID         string     `json:"id"`
	DocumentID string     `json:"documentId"`
	Order      int        `json:"order"`
	CanvasSize CanvasSize `json:"canvasSize"`
	Elements   []Element  `json:"elements"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// Clone returns a copy of the page with its element list deep-copied.
func (p Page) Clone() Page {
	c := p
	c.Elements = CloneElements(p.Elements)
	return c
}

type DocumentStore interface {
	CreateDocument(d *Document) error
	GetDocument(id string) (*Document, error)
	ListDocuments() ([]Document, error)
	UpdateDocument(d *Document) error
	DeleteDocument(id string) error

	CreatePage(p *Page) error
	GetPage(id string) (*Page, error)
	ListPages(documentID string) ([]Page, error)
	UpdatePage(p *Page) error
	DeletePage(id string) error
	DeletePagesByDocument(documentID string) error
}

// DocumentState is the full state handed to the UI when a document opens.
type DocumentState struct {
	Document     Document  `json:"document"`
	Pages        []Page    `json:"pages"`
	ActivePageID string    `json:"activePageId"`
	Selection    Selection `json:"selection"`
}
