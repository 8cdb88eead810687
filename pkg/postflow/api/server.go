// Package api exposes the pipeline over HTTP: a JSON generation
// endpoint, run history, a WebSocket progress push, static serving of
// generated images, and an embedded browser frontend.
package api

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/randalmurphal/postflow/pkg/postflow"
	"github.com/randalmurphal/postflow/pkg/postflow/event"
	"github.com/randalmurphal/postflow/pkg/postflow/history"
)

//go:embed web
var webFS embed.FS

// Version reported by the health endpoint.
const Version = "1.0.0"

// Runner executes one pipeline run. *postflow.Pipeline satisfies it;
// tests substitute fakes.
type Runner interface {
	Run(ctx context.Context, topic string, platform postflow.Platform, tone postflow.Tone, opts ...postflow.RunOption) (*postflow.State, error)
}

// Server wires the pipeline to HTTP.
type Server struct {
	runner    Runner
	bus       *event.Bus
	history   history.Store
	imagesDir string
	logger    *slog.Logger
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithHistory records terminal snapshots into the given store and
// enables the /api/runs endpoints.
func WithHistory(store history.Store) ServerOption {
	return func(s *Server) { s.history = store }
}

// WithImagesDir serves generated artifacts from dir under
// /static/images/.
func WithImagesDir(dir string) ServerOption {
	return func(s *Server) { s.imagesDir = dir }
}

// WithServerLogger sets the request logger.
func WithServerLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) { s.logger = logger }
}

// NewServer creates a Server over the given runner.
func NewServer(runner Runner, opts ...ServerOption) (*Server, error) {
	if runner == nil {
		return nil, errors.New("runner is required")
	}
	s := &Server{
		runner: runner,
		bus:    event.NewBus(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close releases the progress bus.
func (s *Server) Close() {
	s.bus.Close()
}

// Routes returns the HTTP handler tree.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/platforms", s.handlePlatforms)
	mux.HandleFunc("GET /api/tones", s.handleTones)
	mux.HandleFunc("POST /api/generate", s.handleGenerate)
	mux.HandleFunc("GET /api/runs", s.handleListRuns)
	mux.HandleFunc("GET /api/runs/{id}", s.handleGetRun)
	mux.HandleFunc("GET /api/runs/{id}/preview", s.handlePreview)
	mux.HandleFunc("GET /ws", s.handleWS)

	if s.imagesDir != "" {
		mux.Handle("GET /static/images/",
			http.StripPrefix("/static/images/", http.FileServer(http.Dir(s.imagesDir))))
	}

	if sub, err := fs.Sub(webFS, "web"); err == nil {
		mux.Handle("GET /", http.FileServer(http.FS(sub)))
	}

	return mux
}

// generateRequest is the body of POST /api/generate and the first
// WebSocket frame.
type generateRequest struct {
	Topic    string `json:"topic"`
	Platform string `json:"platform"`
	Tone     string `json:"tone"`
}

// normalize applies the original defaults and validates enums.
func (r *generateRequest) normalize() error {
	if r.Topic == "" {
		return errors.New("topic cannot be empty")
	}
	if r.Platform == "" {
		r.Platform = string(postflow.PlatformGeneral)
	}
	if r.Tone == "" {
		r.Tone = string(postflow.ToneInformative)
	}
	if !postflow.Platform(r.Platform).Valid() {
		return fmt.Errorf("unsupported platform: %q", r.Platform)
	}
	if !postflow.Tone(r.Tone).Valid() {
		return fmt.Errorf("unsupported tone: %q", r.Tone)
	}
	return nil
}

// generateResponse is the terminal snapshot shaped for API consumers.
// Success plus a nil image distinguishes the degraded outcome without
// clients inspecting pipeline internals.
type generateResponse struct {
	RunID          string                `json:"run_id"`
	Success        bool                  `json:"success"`
	Outcome        string                `json:"outcome"`
	Topic          string                `json:"topic"`
	Platform       string                `json:"platform"`
	Tone           string                `json:"tone"`
	BulletPoints   []string              `json:"research_bullet_points,omitempty"`
	Content        string                `json:"generated_content,omitempty"`
	WordCount      int                   `json:"word_count,omitempty"`
	ImagePath      string                `json:"generated_image_path,omitempty"`
	ImagePrompt    string                `json:"image_prompt,omitempty"`
	FailedStage    string                `json:"failed_stage,omitempty"`
	Errors         []postflow.StageError `json:"errors,omitempty"`
	ElapsedSeconds float64               `json:"elapsed_seconds"`
}

// snapshotResponse maps a terminal snapshot onto the wire shape.
func snapshotResponse(st *postflow.State) generateResponse {
	resp := generateResponse{
		RunID:          st.RunID,
		Success:        st.Outcome() != postflow.OutcomeFailed,
		Outcome:        string(st.Outcome()),
		Topic:          st.Topic,
		Platform:       string(st.Platform),
		Tone:           string(st.Tone),
		Errors:         st.Errors,
		ElapsedSeconds: st.Elapsed.Seconds(),
	}
	if st.Research != nil {
		resp.BulletPoints = st.Research.BulletPoints
	}
	if st.Content != nil {
		resp.Content = st.Content.Text
		resp.WordCount = st.Content.WordCount
	}
	if st.Image != nil {
		resp.ImagePath = st.Image.Path
		resp.ImagePrompt = st.Image.Prompt
	}
	if stage, ok := st.FailedStage(); ok {
		resp.FailedStage = string(stage)
	}
	return resp
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   Version,
	})
}

func (s *Server) handlePlatforms(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"platforms": postflow.Platforms()})
}

func (s *Server) handleTones(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tones": postflow.Tones()})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	if err := req.normalize(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	runID := uuid.NewString()
	s.logRequest(r, "run_id", runID, "topic", req.Topic)

	st, runErr := s.runner.Run(r.Context(), req.Topic,
		postflow.Platform(req.Platform), postflow.Tone(req.Tone),
		postflow.WithRunID(runID),
		postflow.WithRunNotifier(event.NewNotifier(s.bus, runID)),
	)
	if st == nil {
		writeError(w, http.StatusInternalServerError, runErr)
		return
	}

	s.record(r, st)

	status := http.StatusOK
	var cancelled *postflow.CancellationError
	if errors.As(runErr, &cancelled) {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, snapshotResponse(st))
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusNotFound, errors.New("run history is not enabled"))
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid limit: %q", v))
			return
		}
		limit = n
	}
	runs, err := s.history.List(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	st, ok := s.loadRun(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snapshotResponse(st))
}

// loadRun resolves the {id} path value against the history store,
// writing the error response itself when resolution fails.
func (s *Server) loadRun(w http.ResponseWriter, r *http.Request) (*postflow.State, bool) {
	if s.history == nil {
		writeError(w, http.StatusNotFound, errors.New("run history is not enabled"))
		return nil, false
	}
	st, err := s.history.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, history.ErrNotFound) {
		writeError(w, http.StatusNotFound, err)
		return nil, false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return nil, false
	}
	return st, true
}

// record saves a terminal snapshot when history is enabled. A failed
// save never fails the request.
func (s *Server) record(r *http.Request, st *postflow.State) {
	if s.history == nil {
		return
	}
	if err := s.history.Save(r.Context(), st); err != nil && s.logger != nil {
		s.logger.Warn("history save failed",
			slog.String("run_id", st.RunID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *Server) logRequest(r *http.Request, args ...any) {
	if s.logger == nil {
		return
	}
	s.logger.Info("api request",
		append([]any{slog.String("method", r.Method), slog.String("path", r.URL.Path)}, args...)...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
