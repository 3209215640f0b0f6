package compare

import (
	"context"
	"errors"
	"fmt"

	"github.com/speechcoach/tonegrade/internal/align"
	"github.com/speechcoach/tonegrade/internal/audio"
	"github.com/speechcoach/tonegrade/internal/pitch"
	"github.com/speechcoach/tonegrade/internal/score"
	"github.com/speechcoach/tonegrade/internal/vad"
)

// Extractor is the capability this package needs from a pitch tracker.
type Extractor interface {
	Track(clip *audio.Clip) (*pitch.Curve, error)
}

// Segmenter is the capability this package needs from voice activity
// detection.
type Segmenter interface {
	Detect(clip *audio.Clip) ([]vad.Segment, vad.Method)
}

// Logger is the logging subset the comparator uses.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
}

// Input is the candidate side of a comparison: either raw audio or a
// precomputed curve, plus optional recognizer hints.
type Input struct {
	Clip  *audio.Clip
	Curve *pitch.Curve
	Hints []align.Hint
}

// Request is one comparison call. The reference curve is computed once
// per reference utterance and reused across many requests.
type Request struct {
	Reference      *pitch.Curve
	ReferenceHints []align.Hint
	Candidate      Input
	// Weights overrides the configured sub-score weights when non-nil.
	Weights *score.Weights
}

// Outcome is the immutable result of one comparison.
type Outcome struct {
	score.Breakdown
	Method    Method        `json:"method_used"`
	VADMethod vad.Method    `json:"vad_method,omitempty"`
	AlignCost float64       `json:"align_cost"`
	Reason    string        `json:"reason,omitempty"`
	Details   score.Details `json:"details"`
}

// Comparator runs the full pipeline: extraction, segmentation, alignment
// and scoring, with the fallback state machine of strategies. It holds no
// mutable state, so one instance serves concurrent callers.
type Comparator struct {
	extractor Extractor
	segmenter Segmenter
	engine    *align.Engine
	scoreCfg  score.Config
	log       Logger
}

func NewComparator(extractor Extractor, segmenter Segmenter, engine *align.Engine, scoreCfg score.Config, log Logger) *Comparator {
	return &Comparator{
		extractor: extractor,
		segmenter: segmenter,
		engine:    engine,
		scoreCfg:  scoreCfg,
		log:       log,
	}
}

// Compare evaluates a candidate against a reference. Only a total failure
// to extract pitch from the candidate surfaces as a Reject outcome; every
// other stage failure is absorbed by strategy fallback and reflected in
// Method. The context is checked between pipeline stages, not inside the
// algorithms.
func (c *Comparator) Compare(ctx context.Context, req Request) (*Outcome, error) {
	if req.Reference == nil || req.Reference.Len() == 0 {
		return nil, errors.New("reference curve is required")
	}
	if req.Candidate.Clip == nil && req.Candidate.Curve == nil {
		return nil, errors.New("candidate audio or curve is required")
	}

	// Stage 1: candidate curve.
	cand := req.Candidate.Curve
	if cand == nil {
		if reason := ValidateRecording(req.Candidate.Clip); reason != "" {
			c.log.Infof("candidate rejected before extraction: %s", reason)
			return c.reject(req.Reference, reason), nil
		}
		curve, err := c.extractor.Track(req.Candidate.Clip)
		if err != nil {
			if errors.Is(err, pitch.ErrInsufficientSignal) {
				return c.reject(req.Reference, "no voiced frames in recording"), nil
			}
			return nil, fmt.Errorf("extracting candidate pitch: %w", err)
		}
		cand = curve
	}
	if cand.VoicedCount() == 0 {
		return c.reject(req.Reference, "no voiced frames in recording"), nil
	}
	if ratio := cand.VoicedRatio(); ratio < minVoicedRatio {
		return c.reject(req.Reference, fmt.Sprintf("voiced ratio too low: %.2f", ratio)), nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 2: segmentation. Raw audio goes through VAD; a precomputed
	// curve falls back to its own voiced runs.
	var candSegments []vad.Segment
	var vadMethod vad.Method
	if req.Candidate.Clip != nil {
		candSegments, vadMethod = c.segmenter.Detect(req.Candidate.Clip)
		ratio := vad.SpeechRatio(candSegments, req.Candidate.Clip.Duration())
		if ratio < minSpeechRatio {
			c.log.Infof("candidate rejected: speech ratio %.3f below %.2f", ratio, minSpeechRatio)
			return c.reject(req.Reference, fmt.Sprintf("too little speech detected: %.0f%% of the recording", ratio*100)), nil
		}
	} else {
		candSegments = voicedSegments(cand, 0.1)
	}
	refSegments := voicedSegments(req.Reference, 0.1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 3: alignment strategies, most informed first.
	ref := req.Reference
	var (
		result     *align.Result
		scoredRef  *pitch.Curve
		scoredCand *pitch.Curve
		method     Method
	)

	segmentsValid := len(candSegments) > 0 && vad.Validate(candSegments) == nil &&
		len(refSegments) > 0

	if segmentsValid && len(req.ReferenceHints) > 0 && len(req.Candidate.Hints) > 0 {
		tr := trimCurve(ref, refSegments)
		tc := trimCurve(cand, candSegments)
		r, err := c.engine.AlignWithHints(tr, tc, req.ReferenceHints, req.Candidate.Hints)
		if err == nil {
			result, scoredRef, scoredCand, method = r, tr, tc, MethodHintGuided
		} else {
			c.log.Debugf("hint-guided alignment unavailable: %v", err)
		}
	}

	if result == nil && segmentsValid {
		tr := trimCurve(ref, refSegments)
		tc := trimCurve(cand, candSegments)
		r, err := c.engine.Align(tr, tc)
		if err == nil {
			result, scoredRef, scoredCand, method = r, tr, tc, MethodVADGuided
		} else {
			c.log.Debugf("vad-guided alignment unavailable: %v", err)
		}
	}

	if result == nil {
		r, err := c.engine.Align(ref, cand)
		if err == nil {
			result, scoredRef, scoredCand, method = r, ref, cand, MethodRaw
		} else {
			// Raw DTW only fails on a curve without voiced frames,
			// which the gate above already rules out for the
			// candidate; a degenerate reference lands here.
			c.log.Warnf("raw alignment failed: %v", err)
			return c.reject(ref, "reference and candidate could not be aligned"), nil
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 4: scoring.
	cfg := c.scoreCfg
	if req.Weights != nil {
		if err := req.Weights.Validate(); err != nil {
			return nil, fmt.Errorf("invalid weight override: %w", err)
		}
		cfg.Weights = *req.Weights
	}
	breakdown := score.NewScorer(cfg).Score(scoredRef, scoredCand, result)

	return &Outcome{
		Breakdown: breakdown,
		Method:    method,
		VADMethod: vadMethod,
		AlignCost: result.Cost,
		Details:   score.Analyze(ref, cand),
	}, nil
}

// reject builds the fixed insufficient-recording outcome of the terminal
// Reject state.
func (c *Comparator) reject(ref *pitch.Curve, reason string) *Outcome {
	return &Outcome{
		Breakdown: score.Breakdown{Grade: score.GradeNeedsImprovement},
		Method:    MethodReject,
		Reason:    reason,
		Details:   score.Analyze(ref, &pitch.Curve{Step: ref.Step}),
	}
}
