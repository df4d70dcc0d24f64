// Package mcp exposes psdrun sessions as Model Context Protocol tools so an
// agent can load a prototype, click through it and inspect the result.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/psdrun"
	"github.com/aretw0/psdrun/internal/logging"
	"github.com/aretw0/psdrun/pkg/adapters/file"
	"github.com/aretw0/psdrun/pkg/domain"
	"github.com/aretw0/psdrun/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const sessionsURI = "psdrun://sessions"

// StateResponse is the structured result of every session tool.
type StateResponse struct {
	SessionID string           `json:"session_id" jsonschema_description:"The session the call targeted"`
	Applied   bool             `json:"applied" jsonschema_description:"Whether the call changed the prototype"`
	LayerID   int              `json:"layer_id,omitempty" jsonschema_description:"The layer hit by a click"`
	Snapshot  *domain.Snapshot `json:"snapshot" jsonschema_description:"The interaction state after the call"`
}

// Server publishes the sessions of a hub over MCP.
type Server struct {
	hub       *psdrun.Hub
	parser    ports.DocumentParser
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithParser sets the parser for layer dumps. Defaults to file.Parser.
func WithParser(p ports.DocumentParser) Option {
	return func(s *Server) {
		s.parser = p
	}
}

// WithLogger sets a structured logger. Defaults to discarding logs.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates an MCP server over hub.
func NewServer(hub *psdrun.Hub, opts ...Option) *Server {
	s := &Server{
		hub:       hub,
		parser:    file.NewParser(),
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("psdrun-mcp", strings.TrimSpace(psdrun.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer { return s.mcpServer }

// ServeStdio serves on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves on addr using SSE until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))
	httpServer := &http.Server{Addr: addr, Handler: mux}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("open_session",
		mcp.WithDescription("Open a session from a layer dump (JSON or YAML). Optionally load an interaction config, which may be a full model reply containing a fenced JSON block."),
		mcp.WithString("dump", mcp.Required(), mcp.Description("Layer dump of the design document")),
		mcp.WithString("session_id", mcp.Description("Session id (random when omitted)")),
		mcp.WithString("config", mcp.Description("Interaction config or model reply")),
		mcp.WithOutputSchema[StateResponse](),
	), mcp.NewStructuredToolHandler(s.handleOpen))

	s.mcpServer.AddTool(mcp.NewTool("set_config",
		mcp.WithDescription("Replace the interaction config of a session. A rejected config leaves the previous one active."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Target session")),
		mcp.WithString("config", mcp.Required(), mcp.Description("Interaction config or model reply")),
		mcp.WithOutputSchema[StateResponse](),
	), mcp.NewStructuredToolHandler(s.handleSetConfig))

	s.mcpServer.AddTool(mcp.NewTool("click",
		mcp.WithDescription("Click a layer by id, or the topmost live element under a point."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Target session")),
		mcp.WithNumber("layer_id", mcp.Description("Layer to click")),
		mcp.WithNumber("x", mcp.Description("Document x when clicking a point")),
		mcp.WithNumber("y", mcp.Description("Document y when clicking a point")),
		mcp.WithOutputSchema[StateResponse](),
	), mcp.NewStructuredToolHandler(s.handleClick))

	s.mcpServer.AddTool(mcp.NewTool("dispatch",
		mcp.WithDescription("Run an action directly: navigate, navigate_conditional, show_popup, hide_popup, navigate_from_popup, show_highlight, toggle_highlight, input_digit, clear_input, set_slider."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Target session")),
		mcp.WithString("type", mcp.Required(), mcp.Description("Action type")),
		mcp.WithString("target", mcp.Description("Screen, popup, highlight or display target")),
		mcp.WithString("value", mcp.Description("Digit or highlight value")),
		mcp.WithString("targets", mcp.Description("JSON object of condition or display targets")),
		mcp.WithNumber("layer_id", mcp.Description("Slider layer for set_slider")),
		mcp.WithNumber("number", mcp.Description("Slider value for set_slider")),
		mcp.WithOutputSchema[StateResponse](),
	), mcp.NewStructuredToolHandler(s.handleDispatch))

	s.mcpServer.AddTool(mcp.NewTool("set_override",
		mcp.WithDescription("Show or hide one layer, as a layer panel does."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Target session")),
		mcp.WithNumber("layer_id", mcp.Required(), mcp.Description("Layer to toggle")),
		mcp.WithBoolean("visible", mcp.Required(), mcp.Description("New visibility")),
		mcp.WithOutputSchema[StateResponse](),
	), mcp.NewStructuredToolHandler(s.handleOverride))

	s.mcpServer.AddTool(mcp.NewTool("get_state",
		mcp.WithDescription("Return the interaction state of a session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Target session")),
		mcp.WithOutputSchema[StateResponse](),
	), mcp.NewStructuredToolHandler(s.handleState))

	s.mcpServer.AddTool(mcp.NewTool("get_layers",
		mcp.WithDescription("Return the nested layer tree of a session's document."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Target session")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, _ := request.GetArguments()["session_id"].(string)
		sess, err := s.hub.Get(id)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("session %s: %v", id, err)), nil
		}
		data, err := sess.Tree().ExportJSON(nil)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("export failed: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	})

	s.mcpServer.AddTool(mcp.NewTool("close_session",
		mcp.WithDescription("Close a session and cancel its timers."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Target session")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, _ := request.GetArguments()["session_id"].(string)
		if err := s.hub.Close(ctx, id); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("close failed: %v", err)), nil
		}
		return mcp.NewToolResultText("closed " + id), nil
	})
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(sessionsURI, "Open sessions",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := json.Marshal(s.hub.List())
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: sessionsURI, MIMEType: "application/json", Text: string(data)},
		}, nil
	})
}

func (s *Server) handleOpen(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (StateResponse, error) {
	dump, _ := args["dump"].(string)
	id, _ := args["session_id"].(string)
	config, _ := args["config"].(string)

	doc, err := s.parser.Parse(ctx, []byte(dump))
	if err != nil {
		return StateResponse{}, fmt.Errorf("invalid layer dump: %w", err)
	}
	sess, err := s.hub.Open(doc, id)
	if err != nil {
		return StateResponse{}, err
	}
	if config != "" {
		if err := sess.SetConfigText(ctx, config); err != nil {
			_ = s.hub.Close(ctx, sess.ID())
			return StateResponse{}, describeConfigError(err)
		}
	}
	return s.state(ctx, sess, true, 0)
}

func (s *Server) handleSetConfig(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (StateResponse, error) {
	sess, err := s.session(args)
	if err != nil {
		return StateResponse{}, err
	}
	config, _ := args["config"].(string)
	if err := sess.SetConfigText(ctx, config); err != nil {
		return StateResponse{}, describeConfigError(err)
	}
	return s.state(ctx, sess, true, 0)
}

func (s *Server) handleClick(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (StateResponse, error) {
	sess, err := s.session(args)
	if err != nil {
		return StateResponse{}, err
	}
	if id, ok := intArg(args, "layer_id"); ok {
		applied, err := sess.Click(ctx, id)
		if err != nil {
			return StateResponse{}, err
		}
		return s.state(ctx, sess, applied, id)
	}
	x, okX := intArg(args, "x")
	y, okY := intArg(args, "y")
	if !okX || !okY {
		return StateResponse{}, errors.New("click needs layer_id or both x and y")
	}
	id, applied, err := sess.ClickAt(ctx, x, y)
	if err != nil {
		return StateResponse{}, err
	}
	return s.state(ctx, sess, applied, id)
}

func (s *Server) handleDispatch(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (StateResponse, error) {
	sess, err := s.session(args)
	if err != nil {
		return StateResponse{}, err
	}
	a := domain.Action{}
	if v, ok := args["type"].(string); ok {
		a.Type = domain.ActionType(v)
	}
	a.Target, _ = args["target"].(string)
	a.Value, _ = args["value"].(string)
	if raw, ok := args["targets"].(string); ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &a.Targets); err != nil {
			return StateResponse{}, fmt.Errorf("targets must be a JSON object of strings: %w", err)
		}
	}
	a.LayerID, _ = intArg(args, "layer_id")
	if n, ok := args["number"].(float64); ok {
		a.Number = n
	}

	applied, err := sess.Dispatch(ctx, a)
	if err != nil {
		return StateResponse{}, err
	}
	return s.state(ctx, sess, applied, 0)
}

func (s *Server) handleOverride(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (StateResponse, error) {
	sess, err := s.session(args)
	if err != nil {
		return StateResponse{}, err
	}
	id, ok := intArg(args, "layer_id")
	if !ok {
		return StateResponse{}, errors.New("layer_id is required")
	}
	visible, _ := args["visible"].(bool)
	applied, err := sess.SetOverride(ctx, id, visible)
	if err != nil {
		return StateResponse{}, err
	}
	return s.state(ctx, sess, applied, id)
}

func (s *Server) handleState(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (StateResponse, error) {
	sess, err := s.session(args)
	if err != nil {
		return StateResponse{}, err
	}
	return s.state(ctx, sess, false, 0)
}

func (s *Server) session(args map[string]interface{}) (*psdrun.Session, error) {
	id, _ := args["session_id"].(string)
	sess, err := s.hub.Get(id)
	if err != nil {
		return nil, fmt.Errorf("session %q: %w", id, err)
	}
	return sess, nil
}

func (s *Server) state(ctx context.Context, sess *psdrun.Session, applied bool, layerID int) (StateResponse, error) {
	snap, err := sess.Snapshot(ctx)
	if err != nil {
		return StateResponse{}, err
	}
	return StateResponse{SessionID: sess.ID(), Applied: applied, LayerID: layerID, Snapshot: snap}, nil
}

// intArg reads a JSON number argument. Tool arguments decode as float64.
func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}
