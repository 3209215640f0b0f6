package tonegrade

import (
	"context"
	"errors"
	"fmt"

	"github.com/speechcoach/tonegrade/internal/align"
	"github.com/speechcoach/tonegrade/internal/audio"
	"github.com/speechcoach/tonegrade/internal/compare"
	"github.com/speechcoach/tonegrade/internal/pitch"
	"github.com/speechcoach/tonegrade/internal/score"
	"github.com/speechcoach/tonegrade/internal/vad"
	"github.com/speechcoach/tonegrade/pkg/logger"
	"github.com/speechcoach/tonegrade/pkg/models"
)

// service is the default implementation of the Service interface.
type service struct {
	extractor  *pitch.Extractor
	detector   *vad.Detector
	comparator *compare.Comparator
	storage    Storage
	log        Logger
	config     *Config
}

// NewService assembles the engine. The VAD model artifact, when
// configured, is loaded here once; everything the service holds
// afterwards is read-only, so one instance serves concurrent callers.
func NewService(opts ...Option) (Service, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger()
	}

	var stor Storage
	var err error
	if cfg.Storage != nil {
		stor = cfg.Storage
	} else {
		stor, err = newSQLiteStorage(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage: %w", err)
		}
	}

	scoreCfg := score.DefaultConfig()
	scoreCfg.Weights = weightsFromModel(cfg.Weights)
	if err := scoreCfg.Weights.Validate(); err != nil {
		return nil, fmt.Errorf("invalid score weights: %w", err)
	}

	extractor := pitch.NewExtractor(pitch.DefaultConfig())
	detector := vad.NewDetector(cfg.VADModelPath, vad.DefaultConfig(), cfg.Logger)
	engine := align.NewEngine(align.DefaultConfig())

	return &service{
		extractor:  extractor,
		detector:   detector,
		comparator: compare.NewComparator(extractor, detector, engine, scoreCfg, cfg.Logger),
		storage:    stor,
		log:        cfg.Logger,
		config:     cfg,
	}, nil
}

// Compare runs one comparison and, when requested, records the attempt.
func (s *service) Compare(ctx context.Context, req models.CompareRequest) (*models.ComparisonResult, error) {
	ref, err := s.resolveCurve(req.ReferencePath, req.ReferenceCurve)
	if err != nil {
		return nil, fmt.Errorf("resolving reference: %w", err)
	}

	candidate := compare.Input{Hints: hintsFromModel(req.CandidateHints)}
	switch {
	case req.CandidateCurve != nil:
		candidate.Curve, err = curveFromModel(req.CandidateCurve)
		if err != nil {
			return nil, fmt.Errorf("resolving candidate: %w", err)
		}
	case req.CandidatePath != "":
		candidate.Clip, err = audio.ReadWAV(req.CandidatePath)
		if err != nil {
			return nil, fmt.Errorf("reading candidate audio: %w", err)
		}
	default:
		return nil, errors.New("candidate path or curve is required")
	}

	var weights *score.Weights
	if req.Weights != nil {
		w := weightsFromModel(*req.Weights)
		weights = &w
	}

	outcome, err := s.comparator.Compare(ctx, compare.Request{
		Reference:      ref,
		ReferenceHints: hintsFromModel(req.ReferenceHints),
		Candidate:      candidate,
		Weights:        weights,
	})
	if err != nil {
		return nil, err
	}

	result := outcomeToModel(outcome)
	s.log.Infof("comparison done: total=%.1f grade=%s method=%s",
		result.TotalScore, result.Grade, result.MethodUsed)

	if req.SaveHistory && s.storage != nil {
		id, err := s.storage.SaveAttempt(models.Attempt{
			ReferenceID: req.ReferenceID,
			Accuracy:    result.Accuracy,
			Trend:       result.Trend,
			Stability:   result.Stability,
			Range:       result.Range,
			TotalScore:  result.TotalScore,
			Grade:       result.Grade,
			MethodUsed:  result.MethodUsed,
		})
		if err != nil {
			// History is best-effort; the score is still valid.
			s.log.Warnf("failed to save attempt: %v", err)
		} else {
			result.AttemptID = id
		}
	}

	return result, nil
}

// ExtractPitch returns the pitch curve of a WAV file. A file with no
// voiced frames at all is an error.
func (s *service) ExtractPitch(path string) (*models.PitchCurve, error) {
	clip, err := audio.ReadWAV(path)
	if err != nil {
		return nil, fmt.Errorf("reading audio: %w", err)
	}
	curve, err := s.extractor.Track(clip)
	if err != nil {
		return nil, fmt.Errorf("tracking pitch: %w", err)
	}
	return curveToModel(curve), nil
}

// DetectSegments returns the speech segments of a WAV file.
func (s *service) DetectSegments(path string) ([]models.SpeechSegment, string, error) {
	clip, err := audio.ReadWAV(path)
	if err != nil {
		return nil, "", fmt.Errorf("reading audio: %w", err)
	}
	segments, method := s.detector.Detect(clip)
	return segmentsToModel(segments), string(method), nil
}

func (s *service) ListAttempts(referenceID string, limit int) ([]models.Attempt, error) {
	return s.storage.ListAttempts(referenceID, limit)
}

func (s *service) GetAttempt(id string) (*models.Attempt, error) {
	return s.storage.GetAttempt(id)
}

func (s *service) DeleteAttempt(id string) error {
	return s.storage.DeleteAttempt(id)
}

func (s *service) Close() error {
	return s.storage.Close()
}

// resolveCurve loads a curve from a WAV path or converts the supplied
// DTO. Reference curves are usually precomputed once and passed as
// curves on subsequent calls.
func (s *service) resolveCurve(path string, dto *models.PitchCurve) (*pitch.Curve, error) {
	if dto != nil {
		return curveFromModel(dto)
	}
	if path == "" {
		return nil, errors.New("path or curve is required")
	}
	clip, err := audio.ReadWAV(path)
	if err != nil {
		return nil, fmt.Errorf("reading audio: %w", err)
	}
	curve, err := s.extractor.Track(clip)
	if err != nil {
		return nil, fmt.Errorf("tracking pitch: %w", err)
	}
	return curve, nil
}
