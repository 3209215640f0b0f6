package main

import "github.com/speechcoach/tonegrade/pkg/models"

// PitchResponse is the response for POST /api/pitch
type PitchResponse struct {
	Curve *models.PitchCurve `json:"curve"`
}

// SegmentsResponse is the response for POST /api/segments
type SegmentsResponse struct {
	Segments []models.SpeechSegment `json:"segments"`
	Method   string                 `json:"method"`
	Count    int                    `json:"count"`
}

// ListAttemptsResponse is the response for GET /api/attempts
type ListAttemptsResponse struct {
	Attempts []models.Attempt `json:"attempts"`
	Count    int              `json:"count"`
}

// DeleteAttemptResponse is the response for DELETE /api/attempts/{id}
type DeleteAttemptResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// MetricsResponse provides server health and database metrics
type MetricsResponse struct {
	Status       string `json:"status"`
	DatabasePath string `json:"database_path"`
	AttemptCount int    `json:"attempt_count"`
}

// ErrorResponse is the standard error response format
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}
