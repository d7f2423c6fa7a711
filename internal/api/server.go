package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/nniicckk78/chatai-backend-sub001/internal/engine"
)

type Server struct {
	router *chi.Mux
	engine *engine.Engine
	logger *slog.Logger
	port   int
}

func NewServer(port int, eng *engine.Engine, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	// Browser-extension callers run on the platforms' own origins.
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	s := &Server{
		router: router,
		engine: eng,
		logger: logger,
		port:   port,
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/chatai/status", s.status)
	router.Post("/api/v1/reply", s.reply)

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	slog.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

// reply runs the pipeline on one conversation snapshot. The only guaranteed
// property of the body is that it is a JSON object; an unparseable body is a
// valid, non-blocking empty result — never a 4xx/5xx, the extension must not
// be forced into a reload.
func (s *Server) reply(w http.ResponseWriter, r *http.Request) {
	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil || raw == nil {
		s.logger.Warn("malformed request body", "error", err)
		writeJSON(w, http.StatusOK, engine.EmptyResponse())
		return
	}

	resp := s.engine.HandleReply(r.Context(), raw)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "chatai",
		"status":  "ready",
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
