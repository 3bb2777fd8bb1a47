// Package http exposes boards over a JSON REST API with per-board
// Server-Sent Event streams of diffs.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/aretw0/boardgen"
	"github.com/aretw0/boardgen/internal/dto"
	"github.com/aretw0/boardgen/internal/logging"
	"github.com/aretw0/boardgen/pkg/domain"
	"github.com/aretw0/boardgen/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server serves the board API.
type Server struct {
	Sessions *session.Manager
	Streams  *StreamManager

	logger   *slog.Logger
	gatherer prometheus.Gatherer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithGatherer mounts GET /metrics for the given registry.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// NewHandler creates the HTTP handler for the board API.
func NewHandler(sessions *session.Manager, opts ...Option) http.Handler {
	s := &Server{
		Sessions: sessions,
		Streams:  NewStreamManager(),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams.logger = s.logger

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/boards", func(r chi.Router) {
		r.Get("/", s.ListBoards)
		r.Post("/", s.CreateBoard)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetBoard)
			r.Delete("/", s.DeleteBoard)
			r.Get("/status", s.GetStatus)
			r.Get("/events", s.SubscribeEvents)
			r.Post("/generate", s.Generate)
			r.Post("/cancel", s.Cancel)
			r.Post("/rescale", s.Rescale)
			r.Put("/sections/{section}/title", s.SetTitle)
			r.Patch("/sections/{section}/cells/{cell}", s.EditCell)
		})
	})
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "boardgen-http",
		"version": strings.TrimSpace(boardgen.Version),
	})
}

// ListBoards handles GET /boards.
func (s *Server) ListBoards(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"boards": ids})
}

// CreateBoard handles POST /boards.
func (s *Server) CreateBoard(w http.ResponseWriter, r *http.Request) {
	var body dto.CreateBoardRequest
	if !s.decode(w, r, &body) {
		return
	}
	if body.ID == "" {
		body.ID = uuid.NewString()
	}
	b, err := s.Sessions.Create(r.Context(), body.ID, body.Topic, body.Sections, body.Cells, body.Scale)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.NewBoardView(b))
}

// GetBoard handles GET /boards/{id}.
func (s *Server) GetBoard(w http.ResponseWriter, r *http.Request) {
	b, ok := s.open(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, dto.NewBoardView(b))
}

// DeleteBoard handles DELETE /boards/{id}.
func (s *Server) DeleteBoard(w http.ResponseWriter, r *http.Request) {
	b, ok := s.open(w, r)
	if !ok {
		return
	}
	b.Cancel(r.Context())
	if err := s.Sessions.Delete(r.Context(), b.ID()); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetStatus handles GET /boards/{id}/status.
func (s *Server) GetStatus(w http.ResponseWriter, r *http.Request) {
	b, ok := s.open(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, b.Status())
}

// Generate handles POST /boards/{id}/generate. The generation runs in the
// background; its diff is broadcast and the board saved once it ends.
func (s *Server) Generate(w http.ResponseWriter, r *http.Request) {
	b, ok := s.open(w, r)
	if !ok {
		return
	}
	var body dto.GenerateRequest
	if !s.decode(w, r, &body) {
		return
	}

	before := b.Document()
	g, err := b.Generate(r.Context(), body.Scope())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	saved := s.Sessions.SaveWhenDone(r.Context(), b, g)
	go func() {
		<-saved
		s.broadcastDiff(b, before)
	}()

	writeJSON(w, http.StatusAccepted, dto.GenerateResponse{Token: g.Token, Scope: g.Scope})
}

// Cancel handles POST /boards/{id}/cancel.
func (s *Server) Cancel(w http.ResponseWriter, r *http.Request) {
	b, ok := s.open(w, r)
	if !ok {
		return
	}
	canceled := b.Cancel(r.Context())
	writeJSON(w, http.StatusOK, map[string]bool{"canceled": canceled})
}

// Rescale handles POST /boards/{id}/rescale.
func (s *Server) Rescale(w http.ResponseWriter, r *http.Request) {
	var body dto.RescaleRequest
	s.mutate(w, r, &body, func(ctx context.Context, b *boardgen.Board) error {
		return b.Rescale(ctx, body.Scale)
	})
}

// SetTitle handles PUT /boards/{id}/sections/{section}/title.
func (s *Server) SetTitle(w http.ResponseWriter, r *http.Request) {
	section, err := strconv.Atoi(chi.URLParam(r, "section"))
	if err != nil {
		http.Error(w, "Invalid section index", http.StatusBadRequest)
		return
	}
	var body dto.TitleRequest
	s.mutate(w, r, &body, func(ctx context.Context, b *boardgen.Board) error {
		return b.SetTitle(ctx, section, body.Title)
	})
}

// EditCell handles PATCH /boards/{id}/sections/{section}/cells/{cell}.
func (s *Server) EditCell(w http.ResponseWriter, r *http.Request) {
	section, err1 := strconv.Atoi(chi.URLParam(r, "section"))
	cell, err2 := strconv.Atoi(chi.URLParam(r, "cell"))
	if err := errors.Join(err1, err2); err != nil {
		http.Error(w, "Invalid cell address", http.StatusBadRequest)
		return
	}
	var body dto.EditCellRequest
	s.mutate(w, r, &body, func(ctx context.Context, b *boardgen.Board) error {
		return body.Apply(ctx, b, section, cell)
	})
}

// mutate decodes body, applies fn to the board, persists it and broadcasts the diff.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, body any, fn func(context.Context, *boardgen.Board) error) {
	b, ok := s.open(w, r)
	if !ok {
		return
	}
	if !s.decode(w, r, body) {
		return
	}
	before := b.Document()
	if err := fn(r.Context(), b); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.Sessions.Save(r.Context(), b); err != nil {
		s.fail(w, r, err)
		return
	}
	s.broadcastDiff(b, before)
	writeJSON(w, http.StatusOK, dto.NewBoardView(b))
}

func (s *Server) broadcastDiff(b *boardgen.Board, before *domain.Document) {
	diff := domain.Diff(before, b.Document())
	if diff == nil {
		s.logger.Debug("No diff calculated", "board", b.ID())
		return
	}
	bytes, err := json.Marshal(diff)
	if err != nil {
		s.logger.Error("Diff encode failed", "board", b.ID(), "err", err)
		return
	}
	s.Streams.Broadcast(b.ID(), string(bytes))
}

func (s *Server) open(w http.ResponseWriter, r *http.Request) (*boardgen.Board, bool) {
	b, err := s.Sessions.Open(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	return b, true
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("Invalid request body", "path", r.URL.Path, "err", err)
		return false
	}
	if err := dto.Validate(v); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// fail maps domain errors to status codes.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code >= 500 {
		s.logger.Error("Request failed", "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()), "err", err)
	}
	http.Error(w, err.Error(), code)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrBoardNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrLocked), errors.Is(err, session.ErrBoardExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidScope),
		errors.Is(err, domain.ErrInvalidScale),
		errors.Is(err, domain.ErrInvalidDimensions),
		errors.Is(err, dto.ErrInvalidRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encode failed", "err", err)
	}
}

// SubscribeEvents handles GET /boards/{id}/events (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}
	b, ok := s.open(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(b.ID())
	defer cancel()
	s.logger.Info("SSE: Subscribing to board updates", "board", b.ID())

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE client disconnected", "board", b.ID())
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: diff\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
