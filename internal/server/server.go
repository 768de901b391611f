// Package server exposes run manifests, logs and screenshots over HTTP for
// browsing captures.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"skillshots/internal/runner"
)

type Server struct {
	outputDir string
	logger    *zap.Logger
}

func New(outputDir string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{outputDir: outputDir, logger: logger}
}

func NewHTTPServer(port int, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/health", s.health)
	r.Get("/v1/runs", s.listRuns)
	r.Get("/v1/runs/{id}", s.getRun)
	r.Get("/v1/runs/{id}/logs", s.getRunLogs)

	files := http.StripPrefix("/shots/", http.FileServer(http.Dir(s.outputDir)))
	r.Get("/shots/*", files.ServeHTTP)
	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	manifests, err := runner.LoadAll(s.outputDir)
	if err != nil {
		s.logger.Warn("list runs", zap.Error(err))
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	out := make([]runner.Manifest, 0, len(manifests))
	for i := len(manifests) - 1; i >= 0; i-- {
		out = append(out, withShotURLs(manifests[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	id, ok := runID(w, r)
	if !ok {
		return
	}
	m, err := runner.LoadManifest(runner.ManifestPath(s.outputDir, id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			writeErr(w, http.StatusNotFound, errors.New("not found"))
			return
		}
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, withShotURLs(m))
}

func (s *Server) getRunLogs(w http.ResponseWriter, r *http.Request) {
	id, ok := runID(w, r)
	if !ok {
		return
	}
	path := runner.LogPath(s.outputDir, id)
	if _, err := os.Stat(path); err != nil {
		writeErr(w, http.StatusNotFound, errors.New("not found"))
		return
	}
	w.Header().Set("Content-Type", "application/x-ndjson")
	http.ServeFile(w, r, path)
}

func runID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		writeErr(w, http.StatusBadRequest, errors.New("invalid run id"))
		return "", false
	}
	return id, true
}

// withShotURLs points capture paths at the /shots/ file server.
func withShotURLs(m runner.Manifest) runner.Manifest {
	caps := make([]runner.Capture, len(m.Captures))
	for i, c := range m.Captures {
		c.Path = "/shots/" + c.File
		caps[i] = c
	}
	m.Captures = caps
	m.LogPath = "/v1/runs/" + m.RunID + "/logs"
	return m
}

type errResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errResponse{Error: msg})
}
