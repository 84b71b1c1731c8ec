package app

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ntpusu/su-services/representatives/internal/dataset"
)

// HandleDataset returns the stored dataset unchanged
func (s *Server) HandleDataset(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Dataset(), s.logger)
}

// HandleMeetings returns every meeting with its assigned representatives
func (s *Server) HandleMeetings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dataset.MeetingsWithReps(s.Dataset()), s.logger)
}

// HandleExport serves the roster as a download
// Query param: format (csv, json or xlsx; default csv)
func (s *Server) HandleExport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = ExportCSV
	}
	if format != ExportCSV && format != ExportJSON && format != ExportXLSX {
		writeError(w, http.StatusBadRequest, ErrInvalidFormat, s.logger)
		return
	}

	export, err := RenderRoster(s.Dataset(), format)
	if err != nil {
		s.logger.Error("Error rendering export", zap.String("format", format), zap.Error(err))
		writeError(w, http.StatusInternalServerError, ErrFailedToGenerateEx, s.logger)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", export.FileName))
	if _, err := w.Write(export.Body); err != nil {
		s.logger.Warn("Error writing export", zap.Error(err))
	}
}

// HandleFinanceStatements returns the published financial statements
func (s *Server) HandleFinanceStatements(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, FinancialStatements(), s.logger)
}

type syncResponse struct {
	RunID           string `json:"runId"`
	Outcome         string `json:"outcome"`
	LastUpdated     string `json:"lastUpdated"`
	Meetings        int    `json:"meetings"`
	Representatives int    `json:"representatives"`
	Assignments     int    `json:"assignments"`
	DroppedRows     int    `json:"droppedRows"`
	DurationMS      int64  `json:"durationMs"`
}

// HandleSync runs the import pipeline on demand
func (s *Server) HandleSync(w http.ResponseWriter, r *http.Request) {
	if s.syncer == nil {
		writeError(w, http.StatusServiceUnavailable, ErrSyncDisabled, s.logger)
		return
	}

	result, err := s.Sync(r.Context())
	switch {
	case errors.Is(err, ErrSyncInProgress):
		writeError(w, http.StatusConflict, ErrSyncRunning, s.logger)
		return
	case err != nil && result == nil:
		s.logger.Error("Sync request failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, fmt.Sprintf("%s: %v", ErrSyncFailed, err), s.logger)
		return
	case err != nil:
		// Persisted, but the served copy could not be refreshed
		s.logger.Warn("Sync persisted but reload failed", zap.Error(err))
	}

	meetings, reps, assignments := result.Dataset.Counts()
	writeJSON(w, http.StatusOK, syncResponse{
		RunID:           result.RunID,
		Outcome:         string(result.Outcome),
		LastUpdated:     result.Dataset.LastUpdated,
		Meetings:        meetings,
		Representatives: reps,
		Assignments:     assignments,
		DroppedRows:     result.Dropped.Total(),
		DurationMS:      result.Duration.Milliseconds(),
	}, s.logger)
}

// HandleHealth reports liveness and the age of the served data
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	d := s.data
	s.mu.RUnlock()

	status := map[string]any{
		"status":  "ok",
		"hasData": d != nil,
	}
	if d != nil {
		status["lastUpdated"] = d.LastUpdated
		if ts, err := time.Parse(time.RFC3339Nano, d.LastUpdated); err == nil {
			status["ageSeconds"] = int64(s.now().Sub(ts).Seconds())
		}
	}
	writeJSON(w, http.StatusOK, status, s.logger)
}
