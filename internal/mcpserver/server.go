// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the note operations as tools via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/notesd/internal/apperr"
	"github.com/starford/notesd/internal/storage"
)

// Server wraps the MCP server with the note tools.
type Server struct {
	mcp   *server.MCPServer
	store storage.Store
}

// New creates a new MCP server with all note tools registered.
func New(store storage.Store, version string) *Server {
	s := &Server{store: store}

	s.mcp = server.NewMCPServer(
		"notesd",
		version,
		server.WithToolCapabilities(false),
	)

	s.mcp.AddTool(mcp.NewTool("get_note",
		mcp.WithDescription("Read the full text of a note."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Name of the note")),
	), s.getNote)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List all notes as a JSON array of {name, text} objects."),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a new note. Fails if a note with the same name exists."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Name of the new note")),
		mcp.WithString("text", mcp.Required(), mcp.Description("Text of the note, may be empty")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("update_note",
		mcp.WithDescription("Replace the text of an existing note."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Name of the note")),
		mcp.WithString("text", mcp.Required(), mcp.Description("New text of the note")),
	), s.updateNote)

	s.mcp.AddTool(mcp.NewTool("delete_note",
		mcp.WithDescription("Delete an existing note."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Name of the note")),
	), s.deleteNote)

	return s
}

// ServeStdio serves on stdin/stdout until ctx is cancelled or stdin closes.
func (s *Server) ServeStdio(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve reads JSON-RPC messages from in and writes responses to out.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	return server.NewStdioServer(s.mcp).Listen(ctx, in, out)
}

func (s *Server) getNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := s.store.Read(name)
	if err != nil {
		return toolError(name, err), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	notes, err := s.store.List()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, err := json.MarshalIndent(notes, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, text, errResult := nameAndText(req)
	if errResult != nil {
		return errResult, nil
	}
	if err := s.store.Create(name, text); err != nil {
		return toolError(name, err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", name)), nil
}

func (s *Server) updateNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, text, errResult := nameAndText(req)
	if errResult != nil {
		return errResult, nil
	}
	if err := s.store.Update(name, text); err != nil {
		return toolError(name, err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("updated: %s", name)), nil
}

func (s *Server) deleteNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.store.Delete(name); err != nil {
		return toolError(name, err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %s", name)), nil
}

func nameAndText(req mcp.CallToolRequest) (string, string, *mcp.CallToolResult) {
	name, err := req.RequireString("name")
	if err != nil {
		return "", "", mcp.NewToolResultError(err.Error())
	}
	text, err := req.RequireString("text")
	if err != nil {
		return "", "", mcp.NewToolResultError(err.Error())
	}
	return name, text, nil
}

// toolError turns a store error into a tool result the model can act on.
func toolError(name string, err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", name))
	case errors.Is(err, apperr.ErrAlreadyExists):
		return mcp.NewToolResultError(fmt.Sprintf("note already exists: %s", name))
	case errors.Is(err, apperr.ErrInvalidName):
		return mcp.NewToolResultError(fmt.Sprintf("invalid note name: %q", name))
	default:
		return mcp.NewToolResultError(err.Error())
	}
}
