package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/underwriterhq/underwriter/internal/pipeline"
	"github.com/underwriterhq/underwriter/internal/store"
)

type createSessionRequest struct {
	UserID          string   `json:"user_id"`
	Mode            string   `json:"mode"`
	DurationSeconds int      `json:"duration_seconds"`
	TargetWords     int      `json:"target_words"`
	GoalFocus       []string `json:"goal_focus"`
}

var validModes = map[string]bool{"timed": true, "wordcount": true, "free": true}

func (s *Server) handleCreateFlowSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		jsonError(w, "user_id is required", http.StatusBadRequest)
		return
	}
	if req.Mode == "" {
		req.Mode = "free"
	}
	if !validModes[req.Mode] {
		jsonError(w, "mode must be one of timed, wordcount, free", http.StatusBadRequest)
		return
	}

	session, err := s.store.CreateFlowSession(r.Context(), store.FlowSession{
		UserID:          req.UserID,
		Mode:            req.Mode,
		DurationSeconds: req.DurationSeconds,
		TargetWords:     req.TargetWords,
		GoalFocus:       req.GoalFocus,
	})
	if err != nil {
		s.log.Error("create flow session failed", "user_id", req.UserID, "error", err)
		jsonError(w, "failed to create session", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(session)
}

func (s *Server) handleFlowAttempt(w http.ResponseWriter, r *http.Request) {
	var in pipeline.AttemptInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if in.UserID == "" || in.SessionID == "" {
		jsonError(w, "user_id and session_id are required", http.StatusBadRequest)
		return
	}

	res, err := s.flow.SubmitAttempt(r.Context(), in)
	if err != nil {
		s.log.Error("flow attempt failed", "user_id", in.UserID, "error", err)
		jsonError(w, "failed to submit attempt", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(res)
}

// handleGetProfile returns the running style profile with its snapshots.
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		jsonError(w, "user_id is required", http.StatusBadRequest)
		return
	}

	profile, err := s.store.GetProfile(r.Context(), userID)
	if err != nil {
		s.log.Error("profile load failed", "user_id", userID, "error", err)
		jsonError(w, "failed to load profile", http.StatusInternalServerError)
		return
	}
	snapshots, err := s.store.ListSnapshots(r.Context(), userID, 10)
	if err != nil {
		s.log.Warn("snapshot list failed", "user_id", userID, "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"profile":   profile,
		"snapshots": snapshots,
	})
}

func (s *Server) handleFlowBaseline(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	metric := r.URL.Query().Get("metric")
	if userID == "" || metric == "" {
		jsonError(w, "user_id and metric are required", http.StatusBadRequest)
		return
	}
	if !store.IsBaselineMetric(metric) {
		jsonError(w, "unknown metric: "+metric, http.StatusBadRequest)
		return
	}
	days := s.cfg.BaselineDays
	if v := r.URL.Query().Get("days"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			days = n
		}
	}

	avg, found, err := s.store.MetricBaseline(r.Context(), userID, metric, days)
	if err != nil {
		s.log.Error("baseline query failed", "metric", metric, "error", err)
		jsonError(w, "failed to compute baseline", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"user_id": userID,
		"metric":  metric,
		"days":    days,
		"average": avg,
		"found":   found,
	})
}
