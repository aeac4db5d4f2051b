// Package server provides the local web UI: one page plus a small JSON API
// driving a ui.Controller.
package server

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"mime"
	"net/http"
	"sync"
	"time"

	"blogger-lister/internal/keystore"
	"blogger-lister/internal/lister"
	"blogger-lister/internal/ui"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Server routes HTTP requests to a single Controller.
type Server struct {
	ctrl      *ui.Controller
	router    chi.Router
	templates *template.Template
	now       func() time.Time

	inputMu  sync.Mutex
	inputSeq map[string]uint64 // last applied edit per input field
}

// New creates a server for ctrl.
func New(ctrl *ui.Controller) (*Server, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	s := &Server{
		ctrl:      ctrl,
		templates: tmpl,
		now:       time.Now,
		inputSeq:  make(map[string]uint64),
	}
	s.setupRoutes()
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)

	r.Route("/api", func(r chi.Router) {
		r.Use(requireJSON)
		r.Get("/state", s.handleState)
		r.Post("/key", s.handleKey)
		r.Post("/blog", s.handleBlog)
		r.Post("/remember", s.handleRemember)
		r.Post("/init", s.handleInit)
		r.Post("/posts", s.handlePosts)
		r.Post("/clear-key", s.handleClearKey)
		r.Post("/theme", s.handleTheme)
		r.Get("/export", s.handleExport)
	})

	s.router = r
}

// --- Page ---

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.OpenPage(r.Context(), r.URL.Query().Get("blog")); err != nil && statusFor(err) != http.StatusOK {
		slog.Warn("server: open page failed", "error", err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "index.html", map[string]interface{}{
		"State": s.ctrl.State(),
	}); err != nil {
		slog.Error("server: render index", "error", err)
	}
}

// --- API ---

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.writeState(w, nil)
}

func (s *Server) handleKey(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Key string `json:"key"`
		Seq uint64 `json:"seq"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.writeState(w, s.applyInput("key", req.Seq, func() error {
		return s.ctrl.SetKey(r.Context(), req.Key)
	}))
}

func (s *Server) handleBlog(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Blog string `json:"blog"`
		Seq  uint64 `json:"seq"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.writeState(w, s.applyInput("blog", req.Seq, func() error {
		s.ctrl.SetBlog(req.Blog)
		return nil
	}))
}

// applyInput runs apply unless an edit of field with a higher sequence number
// was already applied. Keystroke requests may arrive out of order; a zero
// sequence is always applied.
func (s *Server) applyInput(field string, seq uint64, apply func() error) error {
	s.inputMu.Lock()
	defer s.inputMu.Unlock()
	if seq != 0 {
		if seq <= s.inputSeq[field] {
			slog.Debug("server: dropped stale input", "field", field, "seq", seq)
			return nil
		}
		s.inputSeq[field] = seq
	}
	return apply()
}

func (s *Server) handleRemember(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Remember bool `json:"remember"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.writeState(w, s.ctrl.SetRemember(r.Context(), req.Remember))
}

func (s *Server) handleInit(w http.ResponseWriter, r *http.Request) {
	s.writeState(w, s.ctrl.InitializeClient(r.Context()))
}

func (s *Server) handlePosts(w http.ResponseWriter, r *http.Request) {
	s.writeState(w, s.ctrl.FetchPosts(r.Context()))
}

func (s *Server) handleClearKey(w http.ResponseWriter, r *http.Request) {
	s.writeState(w, s.ctrl.ClearKey(r.Context()))
}

func (s *Server) handleTheme(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Theme string `json:"theme"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.writeState(w, s.ctrl.SetTheme(r.Context(), req.Theme))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	name, body, err := s.ctrl.Export(s.now())
	if err != nil {
		if errors.Is(err, ui.ErrNothingToExport) {
			s.writeState(w, err)
			return
		}
		slog.Error("server: export failed", "error", err)
		http.Error(w, "Failed to render export", statusFor(err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Write(body)
}

// --- Helpers ---

// requireJSON rejects POSTs that are not declared as JSON, so a cross-site
// form or no-body request cannot drive the UI. chi's AllowContentType lets
// empty bodies through, which would leave clear-key and init open.
func requireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if ct != "application/json" {
				http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return false
	}
	return true
}

// writeState answers with the controller state. User-level failures are
// already reflected in the state's message and still return 200.
func (s *Server) writeState(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("server: request failed", "error", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(s.ctrl.State())
}

func statusFor(err error) int {
	var le *lister.Error
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ui.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, ui.ErrNothingToExport):
		return http.StatusConflict
	case errors.Is(err, keystore.ErrInvalidTheme):
		return http.StatusBadRequest
	case errors.As(err, &le),
		errors.Is(err, lister.ErrMissingKey),
		errors.Is(err, lister.ErrNotAuthenticated),
		errors.Is(err, keystore.ErrEmptyKey),
		errors.Is(err, ui.ErrMissingBlog),
		errors.Is(err, ui.ErrKeyChanged):
		return http.StatusOK
	}
	return http.StatusInternalServerError
}
