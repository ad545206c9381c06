// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the folio content and viewed ledger via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/portfolio"
)

const contentFormatURI = "folio://content-format"

// Server wraps the MCP server with folio tools.
type Server struct {
	mcp     *server.MCPServer
	svc     *portfolio.Service
	profile string
}

// New creates a new MCP server with all folio tools registered. profile is
// the ledger profile used when a tool call does not name one.
func New(svc *portfolio.Service, profile string, version string) *Server {
	s := &Server{svc: svc, profile: profile}

	s.mcp = server.NewMCPServer(
		"folio",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List notes in display order (pinned first), without bodies."),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read one note with its rendered body and link targets. Locked notes are refused."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Note id")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("list_events",
		mcp.WithDescription("List events. Upcoming are sorted soonest first, past most recent first."),
		mcp.WithString("timeframe", mcp.Description("upcoming or past (empty for both)"), mcp.Enum("upcoming", "past")),
	), s.listEvents)

	s.mcp.AddTool(mcp.NewTool("read_event",
		mcp.WithDescription("Read one event."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Event id")),
	), s.readEvent)

	s.mcp.AddTool(mcp.NewTool("list_socials",
		mcp.WithDescription("List the socials grid."),
	), s.listSocials)

	s.mcp.AddTool(mcp.NewTool("get_widget",
		mcp.WithDescription("Return the rotating home-screen widget cards."),
	), s.getWidget)

	s.mcp.AddTool(mcp.NewTool("get_ledger",
		mcp.WithDescription("Return what a profile has opened and its flags."),
		mcp.WithString("profile", mcp.Description("Ledger profile (defaults to the local profile)")),
	), s.getLedger)

	s.mcp.AddTool(mcp.NewTool("get_highlights",
		mcp.WithDescription("Return which items of an app still carry the unseen marker for a profile."),
		mcp.WithString("kind", mcp.Required(), mcp.Enum("notes", "events")),
		mcp.WithString("profile", mcp.Description("Ledger profile (defaults to the local profile)")),
	), s.getHighlights)

	s.mcp.AddResource(
		mcp.NewResource(contentFormatURI, "Content Format",
			mcp.WithResourceDescription("Format of the YAML content file behind the apps."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContentFormatResource,
	)

	return s
}

// Serve speaks MCP over in and out until ctx is cancelled or in is closed.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer, logger *slog.Logger) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError))
	return stdio.Listen(ctx, in, out)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) profileArg(req mcp.CallToolRequest) string {
	return req.GetString("profile", s.profile)
}

func (s *Server) listNotes(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.ListNotes())
}

func (s *Server) readNote(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.svc.GetNote(id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: note %d", id)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	if note.Locked {
		return mcp.NewToolResultError(fmt.Sprintf("note %d is locked", id)), nil
	}
	return jsonResult(note)
}

func (s *Server) listEvents(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	events, err := s.svc.ListEvents(models.Timeframe(req.GetString("timeframe", "")))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(events)
}

func (s *Server) readEvent(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ev, err := s.svc.GetEvent(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: event %d", id)), nil
	}
	return jsonResult(ev)
}

func (s *Server) listSocials(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.Socials())
}

func (s *Server) getWidget(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.Widget())
}

func (s *Server) getLedger(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, err := s.svc.State(ctx, s.profileArg(req))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(st)
}

func (s *Server) getHighlights(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("kind")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	kind, err := models.ParseKind(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	hs, err := s.svc.Highlights(ctx, s.profileArg(req), kind, 0, 0)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(hs)
}

func (s *Server) readContentFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      contentFormatURI,
			MIMEType: "text/markdown",
			Text:     ContentFormat,
		},
	}, nil
}
