package domain

import "errors"

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrPageNotFound     = errors.New("page not found")
	ErrElementNotFound  = errors.New("element not found")
	ErrLastPage         = errors.New("cannot delete the last page")
)
