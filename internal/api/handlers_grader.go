package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/underwriterhq/underwriter/internal/parser"
)

type extractRubricRequest struct {
	Text string `json:"text"`
}

// handleExtractRubric accepts rubric text (JSON body) or an uploaded
// rubric document (multipart) and returns the normalized schema.
func (s *Server) handleExtractRubric(w http.ResponseWriter, r *http.Request) {
	var rubricText string

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
			return
		}
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile("file")
		if err != nil {
			jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()

		filename := sanitizeFilename(header.Filename)
		p, err := parser.ForFile(filename)
		if err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
		if err != nil || int64(len(data)) > s.cfg.MaxUploadBytes {
			jsonError(w, "file too large or read error", http.StatusRequestEntityTooLarge)
			return
		}
		extracted, err := p.Parse(bytes.NewReader(data), filename)
		if err != nil {
			jsonError(w, "parse failed: "+err.Error(), http.StatusBadRequest)
			return
		}
		rubricText = extracted.Text
	} else {
		var req extractRubricRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}
		rubricText = req.Text
	}

	if strings.TrimSpace(rubricText) == "" {
		jsonError(w, "rubric text is required", http.StatusBadRequest)
		return
	}

	schema := s.extractor.Extract(r.Context(), rubricText)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(schema)
}
