package api

import (
	"errors"
	"net/http"

	"github.com/bytedance/sonic"

	"github.com/jdrodriguez/document-summarizer/internal/engine"
)

var json = sonic.ConfigStd

// ChunkRequest is the body for POST /api/chunk. Paths are resolved on the
// server's filesystem; this service is meant to run next to the caller.
type ChunkRequest struct {
	InputPath string `json:"input_path"`
	OutputDir string `json:"output_dir"`
	MaxTokens int    `json:"max_tokens,omitempty"`
	Overlap   int    `json:"overlap,omitempty"`
}

func (s *Server) handleChunk(w http.ResponseWriter, r *http.Request) {
	var req ChunkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.InputPath == "" || req.OutputDir == "" {
		jsonError(w, "input_path and output_dir are required", http.StatusBadRequest)
		return
	}

	eng := s.engine
	if req.MaxTokens > 0 || req.Overlap > 0 {
		opts := engine.Options{
			MaxTokens:            orDefault(req.MaxTokens, s.cfg.MaxTokens),
			OverlapTokens:        orDefault(req.Overlap, s.cfg.OverlapTokens),
			WorkerCount:          s.cfg.WorkerCount,
			PDFFallbackPdftotext: s.cfg.PDFFallbackPdftotext,
		}
		eng = engine.New(opts, s.log)
	}

	report, err := eng.Run(r.Context(), req.InputPath, req.OutputDir)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrPathNotFound):
			jsonError(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, engine.ErrUnsupportedFormat),
			errors.Is(err, engine.ErrNoSupportedFiles):
			jsonError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, engine.ErrAllFilesFailed):
			jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		default:
			jsonError(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(report)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func orDefault(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}
