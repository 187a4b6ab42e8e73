package server

import (
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/davetashner/drydock/internal/clone"
	"github.com/davetashner/drydock/internal/scan"
	"github.com/davetashner/drydock/internal/state"
)

// maxBodyBytes bounds a scan request body.
const maxBodyBytes = 1 << 20

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Drydock</title></head>
<body>
<h1>Drydock</h1>
<ul>
<li><a href="/api/data">/api/data</a> current report</li>
<li><a href="/api/trend">/api/trend</a> change since the previous scan</li>
<li><a href="/api/status">/api/status</a> scan activity</li>
</ul>
</body>
</html>
`

type scanRequest struct {
	Paths []string `json:"paths"`
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, indexHTML)
}

func (s *Server) handleData(w http.ResponseWriter, _ *http.Request) {
	writeReport(w, s.snapshot.Load())
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil || len(req.Paths) == 0 {
		writeError(w, http.StatusBadRequest, "Invalid paths")
		return
	}

	report, err := s.Scan(r.Context(), req.Paths)
	switch {
	case err == nil:
		writeReport(w, report)
	case errors.Is(err, ErrScanInProgress):
		writeError(w, http.StatusConflict, "Scan already in progress")
	case errors.Is(err, scan.ErrCancelled):
		writeError(w, http.StatusBadRequest, "Scan cancelled")
	case errors.Is(err, scan.ErrNoInput):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("scan request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Scan error")
	}
}

func (s *Server) handleCancel(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"cancelled": s.Cancel()})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Status())
}

func (s *Server) handleTrend(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshot.Trend())
}

// handleCode serves the content of a file named by an occurrence in the
// current report. Paths outside the base directory are refused.
func (s *Server) handleCode(w http.ResponseWriter, r *http.Request) {
	file := r.URL.Query().Get("file")
	if file == "" {
		writeError(w, http.StatusBadRequest, "Missing file parameter")
		return
	}

	rel, ok := s.confine(file)
	if !ok {
		writeError(w, http.StatusForbidden, "Access denied: file outside of project root")
		return
	}
	if !s.snapshot.Load().Files()[rel] {
		writeError(w, http.StatusForbidden, "Access denied: file not in report")
		return
	}

	data, err := os.ReadFile(filepath.Join(s.baseDir, filepath.FromSlash(rel))) //nolint:gosec // confined and listed in report
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			writeError(w, http.StatusNotFound, "File not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Error reading file")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write(data)
}

// confine resolves file against the base directory and returns its slash
// separated relative path. It fails when the result escapes the base.
func (s *Server) confine(file string) (string, bool) {
	abs := file
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(s.baseDir, filepath.FromSlash(file))
	}
	rel, err := filepath.Rel(s.baseDir, filepath.Clean(abs))
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// writeReport writes r in its persisted form; nil is two empty collections.
func writeReport(w http.ResponseWriter, r *clone.Report) {
	data, err := state.EncodeReport(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "encode report")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
