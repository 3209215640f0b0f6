package tonegrade

import (
	"context"

	"github.com/speechcoach/tonegrade/pkg/models"
)

// Service is the public surface of the pitch comparison engine. It is
// stateless across calls; concurrent invocations may share one instance.
type Service interface {
	// Compare scores a candidate attempt against a reference
	// pronunciation. The reference may be given as a WAV path or as a
	// precomputed curve; same for the candidate.
	Compare(ctx context.Context, req models.CompareRequest) (*models.ComparisonResult, error)
	// ExtractPitch returns the pitch curve of a WAV file.
	ExtractPitch(path string) (*models.PitchCurve, error)
	// DetectSegments returns the speech segments of a WAV file and the
	// detection method that ran ("model" or "energy").
	DetectSegments(path string) ([]models.SpeechSegment, string, error)
	// ListAttempts returns stored attempts, most recent first.
	ListAttempts(referenceID string, limit int) ([]models.Attempt, error)
	GetAttempt(id string) (*models.Attempt, error)
	DeleteAttempt(id string) error
	Close() error
}

// Storage persists the practice history.
type Storage interface {
	SaveAttempt(attempt models.Attempt) (string, error)
	GetAttempt(id string) (*models.Attempt, error)
	ListAttempts(referenceID string, limit int) ([]models.Attempt, error)
	DeleteAttempt(id string) error
	Close() error
}

// Logger is the logging capability the service needs.
type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
}
