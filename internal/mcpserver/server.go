// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the bookmark collection to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/depot/internal/apperr"
	"github.com/starford/depot/internal/bookmark"
)

const formatURI = "depot://bookmark-format"

// Server wraps the MCP server with the bookmark tools.
type Server struct {
	mcp   *server.MCPServer
	store *bookmark.Store
}

// New creates a new MCP server with all bookmark tools registered.
func New(store *bookmark.Store, version string) *Server {
	s := &Server{store: store}

	s.mcp = server.NewMCPServer(
		"Depot",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_bookmarks",
		mcp.WithDescription("List saved bookmarks, newest first, with their file path, date, title and URL."),
	), s.listBookmarks)

	s.mcp.AddTool(mcp.NewTool("read_bookmark",
		mcp.WithDescription("Read the raw Markdown file of a bookmark."),
		mcp.WithString("path", mcp.Required(), mcp.Description("File name of the bookmark (e.g. 2013-05-01-some-title.md)")),
	), s.readBookmark)

	s.mcp.AddTool(mcp.NewTool("save_bookmark",
		mcp.WithDescription("Save a link as a new bookmark. The page title is fetched when no title is given. "+
			"See get_bookmark_format or the depot://bookmark-format resource for the stored format."),
		mcp.WithString("url", mcp.Required(), mcp.Description("Absolute http(s) URL to bookmark")),
		mcp.WithString("title", mcp.Description("Optional title; defaults to the page <title>")),
		mcp.WithString("tags", mcp.Description("Optional comma-separated tags")),
		mcp.WithString("description", mcp.Description("Optional Markdown note shown under the link")),
	), s.saveBookmark)

	s.mcp.AddTool(mcp.NewTool("remove_bookmark",
		mcp.WithDescription("Delete a bookmark file."),
		mcp.WithString("path", mcp.Required(), mcp.Description("File name of the bookmark to delete")),
	), s.removeBookmark)

	s.mcp.AddTool(mcp.NewTool("get_bookmark_format",
		mcp.WithDescription("Returns the bookmark file format. Call this before writing bookmark files."),
	), s.getBookmarkFormat)

	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Bookmark Format",
			mcp.WithResourceDescription("Markdown format of bookmark files."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

type bookmarkItem struct {
	Path  string   `json:"path"`
	Date  string   `json:"date"`
	Title string   `json:"title"`
	URL   string   `json:"url"`
	Tags  []string `json:"tags,omitempty"`
}

func (s *Server) listBookmarks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	bs, err := s.store.List()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	items := make([]bookmarkItem, 0, len(bs))
	for _, b := range bs {
		items = append(items, bookmarkItem{
			Path:  strings.TrimPrefix(b.Filename, strings.Trim(s.store.Dir(), "/")+"/"),
			Date:  b.Date.Format("2006-01-02 15:04"),
			Title: b.Title,
			URL:   b.URL,
			Tags:  b.Tags(),
		})
	}
	out, _ := json.MarshalIndent(items, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readBookmark(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) saveBookmark(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rawURL, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	d := bookmark.Draft{
		URL:         rawURL,
		Title:       optionalString(req, "title"),
		Description: optionalString(req, "description"),
	}
	for _, tag := range strings.Split(optionalString(req, "tags"), ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			d.Tags = append(d.Tags, tag)
		}
	}

	p, err := s.store.Save(ctx, d)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("saved: %s", p)), nil
}

func optionalString(req mcp.CallToolRequest, key string) string {
	if v, err := req.RequireString(key); err == nil {
		return v
	}
	return ""
}

func (s *Server) removeBookmark(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.store.Remove(path); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("removed: %s", path)), nil
}

func (s *Server) getBookmarkFormat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(BookmarkFormat), nil
}

func (s *Server) readFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     BookmarkFormat,
		},
	}, nil
}
