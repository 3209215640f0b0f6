package models

import "time"

// PitchSample is one frame of a pitch curve. Freq is in Hz and only
// meaningful when Voiced is true.
type PitchSample struct {
	Time   float64 `json:"time"`
	Freq   float64 `json:"freq"`
	Voiced bool    `json:"voiced"`
}

// PitchCurve is a fundamental-frequency track at a fixed time step.
type PitchCurve struct {
	Step    float64       `json:"step"`
	Samples []PitchSample `json:"samples"`
}

// SpeechSegment is a contiguous voiced region in seconds.
type SpeechSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Hint is an externally supplied word/character boundary used only as an
// alignment anchor.
type Hint struct {
	Unit  string  `json:"unit"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Weights configure how the four sub-scores combine into the total.
type Weights struct {
	Accuracy  float64 `json:"accuracy"`
	Trend     float64 `json:"trend"`
	Stability float64 `json:"stability"`
	Range     float64 `json:"range"`
}

// ScoreBreakdown is the multi-dimensional result of one comparison.
type ScoreBreakdown struct {
	Accuracy   float64 `json:"accuracy"`
	Trend      float64 `json:"trend"`
	Stability  float64 `json:"stability"`
	Range      float64 `json:"range"`
	TotalScore float64 `json:"total_score"`
	Grade      string  `json:"grade"`
	MethodUsed string  `json:"method_used"`
	Reason     string  `json:"reason,omitempty"`
}

// CurveStats summarizes one curve in the detailed report.
type CurveStats struct {
	Duration    float64 `json:"duration"`
	MeanHz      float64 `json:"mean_hz"`
	StdHz       float64 `json:"std_hz"`
	VoicedRatio float64 `json:"voiced_ratio"`
}

// Details carries the optional per-comparison analysis.
type Details struct {
	Reference      CurveStats `json:"reference"`
	Candidate      CurveStats `json:"candidate"`
	DurationRatio  float64    `json:"duration_ratio"`
	Quality        string     `json:"quality"`
	Recommendation string     `json:"recommendation"`
}

// CompareRequest is one comparison call. Exactly one of Path/Curve must
// be set per side. Hints are optional anchors from an external
// recognizer; Weights overrides the configured sub-score weights.
type CompareRequest struct {
	ReferenceID    string      `json:"reference_id"`
	ReferencePath  string      `json:"reference_path,omitempty"`
	ReferenceCurve *PitchCurve `json:"reference_curve,omitempty"`
	CandidatePath  string      `json:"candidate_path,omitempty"`
	CandidateCurve *PitchCurve `json:"candidate_curve,omitempty"`
	ReferenceHints []Hint      `json:"reference_hints,omitempty"`
	CandidateHints []Hint      `json:"candidate_hints,omitempty"`
	Weights        *Weights    `json:"weights,omitempty"`
	SaveHistory    bool        `json:"save_history,omitempty"`
}

// ComparisonResult is what a comparison call returns to the caller.
type ComparisonResult struct {
	ScoreBreakdown
	AttemptID string  `json:"attempt_id,omitempty"`
	VADMethod string  `json:"vad_method,omitempty"`
	AlignCost float64 `json:"align_cost"`
	Details   Details `json:"details"`
}

// Attempt is one stored comparison in the practice history.
type Attempt struct {
	ID          string    `json:"id"`
	ReferenceID string    `json:"reference_id"`
	Accuracy    float64   `json:"accuracy"`
	Trend       float64   `json:"trend"`
	Stability   float64   `json:"stability"`
	Range       float64   `json:"range"`
	TotalScore  float64   `json:"total_score"`
	Grade       string    `json:"grade"`
	MethodUsed  string    `json:"method_used"`
	CreatedAt   time.Time `json:"created_at"`
}
