package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/reliefmap/reliefmap/internal/merger"
	"github.com/reliefmap/reliefmap/internal/splitter"
	"github.com/reliefmap/reliefmap/pkg/chunk"
	"github.com/reliefmap/reliefmap/pkg/heightmap"
)

// Server exposes the heightmap and tiling pipelines over HTTP. All
// operations act on paths visible to the server process.
type Server struct {
	startTime time.Time
	version   string
	layout    chunk.Layout
}

// NewServer creates a new server instance.
func NewServer(version string, layout chunk.Layout) *Server {
	return &Server{
		startTime: time.Now(),
		version:   version,
		layout:    layout,
	}
}

// NewRouter builds the chi router used by both the serve command and the
// tests: standard middleware stack, API under /api/v1.
func NewRouter(s *Server, timeout time.Duration) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(timeout))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.GetHealth)
		r.Post("/heightmap/inspect", s.InspectHeightmap)
		r.Post("/split", s.SplitImage)
		r.Post("/merge", s.MergeChunks)
	})

	return r
}

// HealthResponse reports server liveness.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    int       `json:"uptime"`
	Version   string    `json:"version"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// InspectRequest asks for metadata about a heightmap file.
type InspectRequest struct {
	Path       string `json:"path"`
	HeaderDims bool   `json:"header_dims,omitempty"`
}

// InspectResponse describes a decoded heightmap.
type InspectResponse struct {
	Path   string `json:"path"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Min    uint16 `json:"min"`
	Max    uint16 `json:"max"`
}

// SplitRequest asks for an image to be split into chunks.
type SplitRequest struct {
	Path string `json:"path"`
}

// SplitResponse lists the chunks written for one image.
type SplitResponse struct {
	Chunks []ChunkInfo `json:"chunks"`
}

// ChunkInfo mirrors chunk.Descriptor for the wire.
type ChunkInfo struct {
	Base string `json:"base"`
	Row  int    `json:"row"`
	Col  int    `json:"col"`
	Path string `json:"path"`
}

// MergeRequest asks for a chunk directory to be reassembled.
type MergeRequest struct {
	Directory string `json:"directory"`
}

// MergeGroupStatus reports one group's outcome; failed groups carry an
// error message instead of an output path.
type MergeGroupStatus struct {
	Base   string `json:"base"`
	Output string `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

// MergeResponse lists per-group outcomes, sorted by base name.
type MergeResponse struct {
	Groups []MergeGroupStatus `json:"groups"`
}

// GetHealth implements the health check endpoint.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Uptime:    int(time.Since(s.startTime).Seconds()),
		Version:   s.version,
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// InspectHeightmap decodes a heightmap file and reports its dimensions
// and elevation range.
func (s *Server) InspectHeightmap(w http.ResponseWriter, r *http.Request) {
	var req InspectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON in request body")
		return
	}
	if req.Path == "" {
		s.writeError(w, http.StatusBadRequest, "MISSING_PATH", "path is required")
		return
	}

	dec := heightmap.NewDecoder(heightmap.DecodeOptions{HeaderDims: req.HeaderDims})
	grid, err := dec.Load(req.Path)
	if err != nil {
		s.writeError(w, decodeStatus(err), "DECODE_FAILED", err.Error())
		return
	}

	lo, hi := grid.Range()
	s.writeJSON(w, http.StatusOK, InspectResponse{
		Path:   req.Path,
		Width:  grid.Width,
		Height: grid.Height,
		Min:    lo,
		Max:    hi,
	})
}

// SplitImage splits one image file into chunk files.
func (s *Server) SplitImage(w http.ResponseWriter, r *http.Request) {
	var req SplitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON in request body")
		return
	}
	if req.Path == "" {
		s.writeError(w, http.StatusBadRequest, "MISSING_PATH", "path is required")
		return
	}

	tiles, err := splitter.New(s.layout).SplitFile(req.Path)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, "SPLIT_FAILED", err.Error())
		return
	}

	resp := SplitResponse{Chunks: make([]ChunkInfo, 0, len(tiles))}
	for _, t := range tiles {
		resp.Chunks = append(resp.Chunks, ChunkInfo{Base: t.Base, Row: t.Row, Col: t.Col, Path: t.Path})
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// MergeChunks reassembles a chunk directory. Partial failures surface as
// per-group statuses, never as a request-level error.
func (s *Server) MergeChunks(w http.ResponseWriter, r *http.Request) {
	var req MergeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON in request body")
		return
	}
	if req.Directory == "" {
		s.writeError(w, http.StatusBadRequest, "MISSING_DIRECTORY", "directory is required")
		return
	}

	results, err := merger.New(s.layout).MergeToFiles(req.Directory)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, "MERGE_FAILED", err.Error())
		return
	}

	resp := MergeResponse{Groups: make([]MergeGroupStatus, 0, len(results))}
	for base, res := range results {
		status := MergeGroupStatus{Base: base, Output: res.Path}
		if res.Err != nil {
			status.Error = res.Err.Error()
		}
		resp.Groups = append(resp.Groups, status)
	}
	sort.Slice(resp.Groups, func(i, j int) bool { return resp.Groups[i].Base < resp.Groups[j].Base })
	s.writeJSON(w, http.StatusOK, resp)
}

func decodeStatus(err error) int {
	var formatErr *heightmap.FormatError
	var decodeErr *heightmap.DecodeError
	if errors.As(err, &formatErr) || errors.As(err, &decodeErr) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusNotFound
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, code, message string) {
	s.writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}
