package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerResources() {
	// ── studio://documents ─────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		"studio://documents",
		"All Documents",
		mcp.WithMIMEType("application/json"),
	), s.handleDocumentsResource)

	// ── studio://page/{pageId}/elements ────────────────
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			"studio://page/{pageId}/elements",
			"Elements on a Page",
		),
		s.handlePageElementsResource,
	)
}

func (s *Server) handleDocumentsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	docs, err := s.documents.ListDocuments()
	if err != nil {
		return nil, err
	}

	type documentSummary struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}

	summaries := make([]documentSummary, len(docs))
	for i, d := range docs {
		summaries[i] = documentSummary{ID: d.ID, Name: d.Name}
	}

	data, _ := json.MarshalIndent(summaries, "", "  ")
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "studio://documents",
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handlePageElementsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	pageID := extractPageIDFromURI(uri)
	if pageID == "" {
		return nil, fmt.Errorf("could not extract pageId from URI: %s", uri)
	}

	ed, err := s.resolveEditor(map[string]any{"pageId": pageID})
	if err != nil {
		return nil, err
	}
	elements := ed.Elements()
	summaries := make([]elementSummary, len(elements))
	for i, el := range elements {
		summaries[i] = summarizeElement(el)
	}

	data, _ := json.MarshalIndent(summaries, "", "  ")
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// extractPageIDFromURI extracts the page ID from "studio://page/{id}/elements".
func extractPageIDFromURI(uri string) string {
	rest, ok := strings.CutPrefix(uri, "studio://page/")
	if !ok {
		return ""
	}
	id, _, found := strings.Cut(rest, "/")
	if !found {
		return ""
	}
	return id
}
