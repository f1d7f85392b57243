package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/underwriterhq/underwriter/internal/parser"
	"github.com/underwriterhq/underwriter/internal/pipeline"
)

type submitWritingRequest struct {
	UserID string         `json:"user_id"`
	Title  string         `json:"title"`
	Text   string         `json:"text"`
	Meta   map[string]any `json:"metadata"`
}

// handleSubmitWriting runs the full analyze/reflect/store sequence
// synchronously for pasted text.
func (s *Server) handleSubmitWriting(w http.ResponseWriter, r *http.Request) {
	var req submitWritingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		jsonError(w, "user_id is required", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		jsonError(w, "text is required", http.StatusBadRequest)
		return
	}

	res, err := s.orchestrator.Ingestor().Ingest(r.Context(), req.UserID, req.Title, req.Text, req.Meta)
	if err != nil {
		s.log.Error("writing ingest failed", "user_id", req.UserID, "error", err)
		jsonError(w, "failed to save writing", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(res)
}

func (s *Server) handleListWritings(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		jsonError(w, "user_id is required", http.StatusBadRequest)
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	writings, err := s.store.ListWritings(r.Context(), userID, limit)
	if err != nil {
		s.log.Error("list writings failed", "user_id", userID, "error", err)
		jsonError(w, "failed to list writings", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"writings": writings})
}

// handleGetWriting returns a writing with its insights and feedback.
func (s *Server) handleGetWriting(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "writingID")
	writing, err := s.store.GetWriting(r.Context(), id)
	if err != nil {
		jsonError(w, "writing not found", http.StatusNotFound)
		return
	}

	insights, err := s.store.ListInsights(r.Context(), id)
	if err != nil {
		s.log.Warn("list insights failed", "writing_id", id, "error", err)
	}
	feedback, err := s.store.ListFeedback(r.Context(), id)
	if err != nil {
		s.log.Warn("list feedback failed", "writing_id", id, "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"writing":  writing,
		"insights": insights,
		"feedback": feedback,
	})
}

// handleUpload accepts a document file and queues it for the async
// ingest pipeline.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	userID := r.FormValue("user_id")
	if userID == "" {
		jsonError(w, "user_id is required", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	now := time.Now()
	job := &pipeline.Job{
		ID:        pipeline.ContentHashHex([]byte(fmt.Sprintf("%s-%s-%d", userID, filename, now.UnixNano())))[:20],
		UserID:    userID,
		Status:    pipeline.StatusQueued,
		Phase:     "queued",
		Filename:  filename,
		Title:     r.FormValue("title"),
		CreatedAt: now,
		UpdatedAt: now,
	}
	job.SetFileData(data)

	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   job.ID,
		"status":   job.Status,
		"poll_url": fmt.Sprintf("/api/writings/upload/%s/status", job.ID),
	})
}

func (s *Server) handleUploadStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":     snap.ID,
		"writing_id": snap.WritingID,
		"status":     snap.Status,
		"phase":      snap.Phase,
		"progress":   snap.Progress,
	})
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
