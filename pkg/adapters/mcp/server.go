// Package mcp exposes boards as Model Context Protocol tools and resources.
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

	"github.com/aretw0/boardgen"
	"github.com/aretw0/boardgen/internal/dto"
	"github.com/aretw0/boardgen/internal/logging"
	"github.com/aretw0/boardgen/pkg/session"
	"github.com/mitchellh/mapstructure"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"
)

// GenerateResponse reports a generation, its outcome once waited for.
type GenerateResponse struct {
	Token   uint64         `json:"token" jsonschema_description:"Generation token"`
	Outcome string         `json:"outcome,omitempty" jsonschema_description:"applied, failed or discarded; empty while pending"`
	Error   string         `json:"error,omitempty" jsonschema_description:"Provider error when the generation failed"`
	Board   *dto.BoardView `json:"board,omitempty" jsonschema_description:"Board after the generation ended"`
}

// Server wraps the session manager and exposes it as an MCP Server.
type Server struct {
	sessions  *session.Manager
	mcpServer *server.MCPServer
	logger    *slog.Logger
	waitLimit time.Duration
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the adapter logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithWaitLimit bounds how long generate waits when asked to (default 60s).
func WithWaitLimit(d time.Duration) Option {
	return func(s *Server) { s.waitLimit = d }
}

// NewServer creates a new MCP Server instance.
func NewServer(sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		sessions:  sessions,
		mcpServer: server.NewMCPServer("boardgen-mcp", strings.TrimSpace(boardgen.Version)),
		logger:    logging.NewNop(),
		waitLimit: 60 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer { return s.mcpServer }

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE on port until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_boards",
		mcp.WithDescription("List the ids of every stored board."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ids, err := s.sessions.List(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(ids)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	s.mcpServer.AddTool(mcp.NewTool("create_board",
		mcp.WithDescription("Create a blank board with the given shape."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Board id")),
		mcp.WithString("topic", mcp.Description("Subject of the questions")),
		mcp.WithNumber("sections", mcp.Required(), mcp.Description("Number of sections (columns)")),
		mcp.WithNumber("cells", mcp.Required(), mcp.Description("Cells per section")),
		mcp.WithNumber("scale", mcp.Description("Point value of the first row (default 100)")),
		mcp.WithOutputSchema[dto.BoardView](),
	), mcp.NewStructuredToolHandler(s.handleCreateBoard))

	s.mcpServer.AddTool(mcp.NewTool("get_board",
		mcp.WithDescription("Get a board, its generation status and content."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Board id")),
		mcp.WithOutputSchema[dto.BoardView](),
	), mcp.NewStructuredToolHandler(s.handleGetBoard))

	s.mcpServer.AddTool(mcp.NewTool("generate",
		mcp.WithDescription("Start a generation for the whole board, one section, one cell or a text refresh."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Board id")),
		mcp.WithString("kind", mcp.Required(), mcp.Enum("board", "section", "cell", "refresh")),
		mcp.WithNumber("section", mcp.Description("Section index for section and cell scopes")),
		mcp.WithNumber("cell", mcp.Description("Cell index for the cell scope")),
		mcp.WithBoolean("wait", mcp.Description("Block until the generation ends")),
		mcp.WithOutputSchema[GenerateResponse](),
	), mcp.NewStructuredToolHandler(s.handleGenerate))

	s.mcpServer.AddTool(mcp.NewTool("cancel_generation",
		mcp.WithDescription("Cancel the in-flight generation and restore the board."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Board id")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		b, err := s.sessions.Open(ctx, request.GetString("id", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if !b.Cancel(ctx) {
			return mcp.NewToolResultText("nothing to cancel"), nil
		}
		return mcp.NewToolResultText("canceled"), nil
	})

	s.mcpServer.AddTool(mcp.NewTool("rescale",
		mcp.WithDescription("Set every point value to (row+1) * scale."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Board id")),
		mcp.WithNumber("scale", mcp.Required(), mcp.Description("New point scale")),
		mcp.WithOutputSchema[dto.BoardView](),
	), mcp.NewStructuredToolHandler(s.handleRescale))

	s.mcpServer.AddTool(mcp.NewTool("edit_cell",
		mcp.WithDescription("Edit the text or progress flags of one cell."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Board id")),
		mcp.WithNumber("section", mcp.Required(), mcp.Description("Section index")),
		mcp.WithNumber("cell", mcp.Required(), mcp.Description("Cell index")),
		mcp.WithString("prompt_text", mcp.Description("New question text")),
		mcp.WithString("revealed_text", mcp.Description("New answer text")),
		mcp.WithBoolean("answered", mcp.Description("Mark as answered")),
		mcp.WithBoolean("voided", mcp.Description("Mark as voided")),
		mcp.WithOutputSchema[dto.BoardView](),
	), mcp.NewStructuredToolHandler(s.handleEditCell))
}

func (s *Server) handleCreateBoard(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (dto.BoardView, error) {
	req := dto.CreateBoardRequest{Scale: 100}
	if err := bind(args, &req); err != nil {
		return dto.BoardView{}, err
	}
	b, err := s.sessions.Create(ctx, req.ID, req.Topic, req.Sections, req.Cells, req.Scale)
	if err != nil {
		return dto.BoardView{}, fmt.Errorf("create failed: %w", err)
	}
	return dto.NewBoardView(b), nil
}

func (s *Server) handleGetBoard(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (dto.BoardView, error) {
	b, err := s.open(ctx, args)
	if err != nil {
		return dto.BoardView{}, err
	}
	return dto.NewBoardView(b), nil
}

func (s *Server) handleGenerate(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (GenerateResponse, error) {
	b, err := s.open(ctx, args)
	if err != nil {
		return GenerateResponse{}, err
	}
	var req dto.GenerateRequest
	if err := bind(args, &req); err != nil {
		return GenerateResponse{}, err
	}

	g, err := b.Generate(ctx, req.Scope())
	if err != nil {
		return GenerateResponse{}, fmt.Errorf("generate failed: %w", err)
	}
	saved := s.sessions.SaveWhenDone(ctx, b, g)

	resp := GenerateResponse{Token: uint64(g.Token)}
	if wait, _ := args["wait"].(bool); !wait {
		return resp, nil
	}

	waitCtx, cancel := context.WithTimeout(ctx, s.waitLimit)
	defer cancel()
	select {
	case <-saved:
	case <-waitCtx.Done():
		return resp, nil
	}
	resp.Outcome = string(g.Outcome())
	if err := g.Err(); err != nil {
		resp.Error = err.Error()
	}
	view := dto.NewBoardView(b)
	resp.Board = &view
	return resp, nil
}

func (s *Server) handleRescale(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (dto.BoardView, error) {
	var req dto.RescaleRequest
	if err := bind(args, &req); err != nil {
		return dto.BoardView{}, err
	}
	return s.update(ctx, args, func(ctx context.Context, b *boardgen.Board) error {
		return b.Rescale(ctx, req.Scale)
	})
}

func (s *Server) handleEditCell(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (dto.BoardView, error) {
	var req dto.EditCellRequest
	if err := bind(args, &req); err != nil {
		return dto.BoardView{}, err
	}
	section, cell := intArg(args, "section"), intArg(args, "cell")
	return s.update(ctx, args, func(ctx context.Context, b *boardgen.Board) error {
		return req.Apply(ctx, b, section, cell)
	})
}

func (s *Server) update(ctx context.Context, args map[string]any, fn func(context.Context, *boardgen.Board) error) (dto.BoardView, error) {
	id, _ := args["id"].(string)
	var view dto.BoardView
	err := s.sessions.Update(ctx, id, func(ctx context.Context, b *boardgen.Board) error {
		if err := fn(ctx, b); err != nil {
			return err
		}
		view = dto.NewBoardView(b)
		return nil
	})
	return view, err
}

func (s *Server) open(ctx context.Context, args map[string]any) (*boardgen.Board, error) {
	id, _ := args["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", dto.ErrInvalidRequest)
	}
	return s.sessions.Open(ctx, id)
}

// bind decodes tool arguments into a dto and validates it.
func bind(args map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(args); err != nil {
		return fmt.Errorf("%w: %v", dto.ErrInvalidRequest, err)
	}
	return dto.Validate(out)
}

func intArg(args map[string]any, key string) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return -1
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("boardgen://boards", "Stored Boards",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ids, err := s.sessions.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list boards: %w", err)
		}
		jsonBytes, _ := json.Marshal(ids)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "boardgen://boards",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
