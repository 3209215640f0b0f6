package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/speechcoach/tonegrade/pkg/logger"
	"github.com/speechcoach/tonegrade/pkg/models"
	"github.com/speechcoach/tonegrade/pkg/tonegrade"
)

// Server encapsulates the HTTP server and its dependencies
type Server struct {
	service tonegrade.Service
	config  *fileConfig
	log     tonegrade.Logger
}

// NewServer creates a new server instance
func NewServer(service tonegrade.Service, config *fileConfig) *Server {
	return &Server{
		service: service,
		config:  config,
		log:     logger.GetLogger(),
	}
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Errorf("Failed to encode JSON response: %v", err)
	}
}

// respondError writes an error response
func (s *Server) respondError(w http.ResponseWriter, statusCode int, message string) {
	s.respondJSON(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	})
}

// handleRoot handles GET /
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"service": "ToneGrade API",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"health":        "GET /health",
			"metrics":       "GET /api/health/metrics",
			"compare":       "POST /api/compare",
			"pitch":         "POST /api/pitch",
			"segments":      "POST /api/segments",
			"listAttempts":  "GET /api/attempts",
			"getAttempt":    "GET /api/attempts/{id}",
			"deleteAttempt": "DELETE /api/attempts/{id}",
		},
	})
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// handleMetrics handles GET /api/health/metrics
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	attempts, err := s.service.ListAttempts("", 0)
	if err != nil {
		s.log.Errorf("Failed to get attempt count: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to retrieve metrics")
		return
	}

	s.respondJSON(w, http.StatusOK, MetricsResponse{
		Status:       "healthy",
		DatabasePath: s.config.DBPath,
		AttemptCount: len(attempts),
	})
}

// handleCompare handles POST /api/compare. A JSON body carries
// precomputed pitch curves; a multipart body carries WAV uploads.
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/json") {
		s.handleCompareJSON(ctx, w, r)
		return
	}
	s.handleCompareUpload(ctx, w, r)
}

func (s *Server) handleCompareJSON(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	var req models.CompareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.log.Errorf("Failed to decode request: %v", err)
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Server-side file paths are not accepted over the API.
	if req.ReferencePath != "" || req.CandidatePath != "" {
		s.respondError(w, http.StatusBadRequest, "file input must use a multipart upload")
		return
	}
	if req.ReferenceCurve == nil || req.CandidateCurve == nil {
		s.respondError(w, http.StatusBadRequest, "reference_curve and candidate_curve are required")
		return
	}

	result, err := s.service.Compare(ctx, req)
	if err != nil {
		s.log.Errorf("Comparison failed: %v", err)
		s.respondError(w, http.StatusInternalServerError, fmt.Sprintf("Comparison failed: %v", err))
		return
	}

	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleCompareUpload(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	// Parse multipart form (max 50MB)
	if err := r.ParseMultipartForm(50 << 20); err != nil {
		s.log.Errorf("Failed to parse form: %v", err)
		s.respondError(w, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	candidatePath, err := s.saveUpload(r, "candidate")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer os.Remove(candidatePath)

	req := models.CompareRequest{
		ReferenceID:   r.FormValue("reference_id"),
		CandidatePath: candidatePath,
		SaveHistory:   r.FormValue("save") == "true",
	}

	// The reference side is either an uploaded WAV or a curve computed
	// earlier by POST /api/pitch.
	if curveJSON := r.FormValue("reference_curve"); curveJSON != "" {
		var curve models.PitchCurve
		if err := json.Unmarshal([]byte(curveJSON), &curve); err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid reference_curve JSON")
			return
		}
		req.ReferenceCurve = &curve
	} else {
		referencePath, err := s.saveUpload(r, "reference")
		if err != nil {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		defer os.Remove(referencePath)
		req.ReferencePath = referencePath
	}

	if req.ReferenceHints, err = parseHintsField(r.FormValue("reference_hints")); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid reference_hints JSON")
		return
	}
	if req.CandidateHints, err = parseHintsField(r.FormValue("candidate_hints")); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid candidate_hints JSON")
		return
	}
	if weightsJSON := r.FormValue("weights"); weightsJSON != "" {
		var weights models.Weights
		if err := json.Unmarshal([]byte(weightsJSON), &weights); err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid weights JSON")
			return
		}
		req.Weights = &weights
	}

	s.log.Infof("Comparing upload against reference %q", req.ReferenceID)
	result, err := s.service.Compare(ctx, req)
	if err != nil {
		s.log.Errorf("Comparison failed: %v", err)
		s.respondError(w, http.StatusInternalServerError, fmt.Sprintf("Comparison failed: %v", err))
		return
	}

	s.respondJSON(w, http.StatusOK, result)
}

// handlePitch handles POST /api/pitch (multipart file upload)
func (s *Server) handlePitch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(50 << 20); err != nil {
		s.log.Errorf("Failed to parse form: %v", err)
		s.respondError(w, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	tempFile, err := s.saveUpload(r, "audio")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer os.Remove(tempFile)

	curve, err := s.service.ExtractPitch(tempFile)
	if err != nil {
		s.log.Errorf("Failed to extract pitch: %v", err)
		s.respondError(w, http.StatusUnprocessableEntity, fmt.Sprintf("Failed to extract pitch: %v", err))
		return
	}

	s.respondJSON(w, http.StatusOK, PitchResponse{Curve: curve})
}

// handleSegments handles POST /api/segments (multipart file upload)
func (s *Server) handleSegments(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(50 << 20); err != nil {
		s.log.Errorf("Failed to parse form: %v", err)
		s.respondError(w, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	tempFile, err := s.saveUpload(r, "audio")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer os.Remove(tempFile)

	segments, method, err := s.service.DetectSegments(tempFile)
	if err != nil {
		s.log.Errorf("Failed to detect segments: %v", err)
		s.respondError(w, http.StatusUnprocessableEntity, fmt.Sprintf("Failed to detect segments: %v", err))
		return
	}

	s.respondJSON(w, http.StatusOK, SegmentsResponse{
		Segments: segments,
		Method:   method,
		Count:    len(segments),
	})
}

// handleListAttempts handles GET /api/attempts
func (s *Server) handleListAttempts(w http.ResponseWriter, r *http.Request) {
	referenceID := r.URL.Query().Get("reference_id")
	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 0 {
			s.respondError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = parsed
	}

	attempts, err := s.service.ListAttempts(referenceID, limit)
	if err != nil {
		s.log.Errorf("Failed to list attempts: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to retrieve attempts")
		return
	}

	s.respondJSON(w, http.StatusOK, ListAttemptsResponse{
		Attempts: attempts,
		Count:    len(attempts),
	})
}

// handleGetAttempt handles GET /api/attempts/{id}
func (s *Server) handleGetAttempt(w http.ResponseWriter, r *http.Request, id string) {
	attempt, err := s.service.GetAttempt(id)
	if err != nil {
		s.log.Warnf("Attempt not found: %s", id)
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("Attempt %s not found", id))
		return
	}

	s.respondJSON(w, http.StatusOK, attempt)
}

// handleDeleteAttempt handles DELETE /api/attempts/{id}
func (s *Server) handleDeleteAttempt(w http.ResponseWriter, r *http.Request, id string) {
	if err := s.service.DeleteAttempt(id); err != nil {
		s.log.Warnf("Attempt not found for deletion: %s", id)
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("Attempt %s not found", id))
		return
	}

	s.log.Infof("Deleted attempt %s", id)
	s.respondJSON(w, http.StatusOK, DeleteAttemptResponse{
		Message: "Attempt deleted successfully",
		ID:      id,
	})
}

// saveUpload copies the named multipart file into the temp directory
// and returns its path. The caller removes the file when done.
func (s *Server) saveUpload(r *http.Request, field string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", fmt.Errorf("%s file is required", field)
	}
	defer file.Close()

	tempFile := filepath.Join(s.config.TempDir,
		fmt.Sprintf("%s_%d_%s", field, time.Now().UnixNano(), filepath.Base(header.Filename)))
	if err := writeUpload(tempFile, file); err != nil {
		s.log.Errorf("Failed to save upload: %v", err)
		return "", fmt.Errorf("failed to save uploaded file")
	}
	return tempFile, nil
}

func writeUpload(path string, file multipart.File) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := io.Copy(out, file); err != nil {
		os.Remove(path)
		return err
	}
	return out.Close()
}

func parseHintsField(value string) ([]models.Hint, error) {
	if value == "" {
		return nil, nil
	}
	var hints []models.Hint
	if err := json.Unmarshal([]byte(value), &hints); err != nil {
		return nil, err
	}
	return hints, nil
}

// handleAttempts routes requests to /api/attempts
func (s *Server) handleAttempts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.handleListAttempts(w, r)
}

// handleAttempt routes requests to /api/attempts/{id}
func (s *Server) handleAttempt(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Path[len("/api/attempts/"):]
	if id == "" {
		s.respondError(w, http.StatusBadRequest, "Attempt ID required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleGetAttempt(w, r, id)
	case http.MethodDelete:
		s.handleDeleteAttempt(w, r, id)
	default:
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleCompareRoute routes requests to /api/compare
func (s *Server) handleCompareRoute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.handleCompare(w, r)
}

// handlePitchRoute routes requests to /api/pitch
func (s *Server) handlePitchRoute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.handlePitch(w, r)
}

// handleSegmentsRoute routes requests to /api/segments
func (s *Server) handleSegmentsRoute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.handleSegments(w, r)
}
