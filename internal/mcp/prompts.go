package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("slide_deck",
		mcp.WithPromptDescription("Guide through building a multi-page presentation"),
		mcp.WithArgument("topic",
			mcp.ArgumentDescription("Topic of the presentation"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("slides",
			mcp.ArgumentDescription("Number of slides"),
		),
	), s.handleSlideDeckPrompt)

	s.mcp.AddPrompt(mcp.NewPrompt("social_post",
		mcp.WithPromptDescription("Design a single social media graphic"),
		mcp.WithArgument("message",
			mcp.ArgumentDescription("Headline or message of the post"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("format",
			mcp.ArgumentDescription("Instagram Post, Instagram Story or Twitter Post"),
		),
	), s.handleSocialPostPrompt)
}

func (s *Server) handleSlideDeckPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	topic := req.Params.Arguments["topic"]
	slides := req.Params.Arguments["slides"]
	if slides == "" {
		slides = "5"
	}
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Build a presentation about: %s", topic),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Build a %s-slide presentation about "%s". Follow these steps:

1. Use create_document with canvas "Presentation 16:9"
2. On the first page, use batch_add_elements to add a large title text and a subtitle
3. For each further slide, use add_page, then batch_add_elements for a heading and body text
4. Use rectangles or circles behind text sparingly as accents
5. Use list_elements to check the result and move_element to fix alignment; moves snap to the canvas center and to other elements

If something goes wrong, undo reverts the last change.`, slides, topic),
				},
			},
		},
	}, nil
}

func (s *Server) handleSocialPostPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	message := req.Params.Arguments["message"]
	format := req.Params.Arguments["format"]
	if format == "" {
		format = "Instagram Post"
	}
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Design a %s", format),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Design a %s that says "%s". Follow these steps:

1. Use create_document with canvas "%s"
2. Add a full-canvas rectangle as the background (x 0, y 0, canvas width and height) and lock it with update_element
3. Add the message as centered text; resize_element on a corner handle scales its font
4. Add one or two shapes as decoration

Use a consistent palette: #3b82f6 primary, #1e40af dark, #f59e0b accent.`, format, message, format),
				},
			},
		},
	}, nil
}
