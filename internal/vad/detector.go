package vad

import (
	"github.com/speechcoach/tonegrade/internal/audio"
)

// Method names which detection path produced a result.
type Method string

const (
	MethodModel  Method = "model"
	MethodEnergy Method = "energy"
)

// Segmenter is the capability interface for voice activity detection.
type Segmenter interface {
	Segments(clip *audio.Clip) ([]Segment, error)
}

// Logger is the subset of logging the detector needs.
type Logger interface {
	Warnf(format string, args ...any)
	Debugf(format string, args ...any)
}

// Detector runs the model-based segmenter when one is available and falls
// back to the energy method when it is not, tagging each result with the
// method that produced it. Detection never fails the caller: the energy
// path has no failure mode beyond returning no segments.
type Detector struct {
	model  Segmenter // nil when no model artifact was loaded
	energy *EnergySegmenter
	log    Logger
}

// NewDetector builds a detector. modelPath may be empty; a missing or
// corrupt artifact is logged once and disables the model path for the
// process lifetime.
func NewDetector(modelPath string, cfg Config, log Logger) *Detector {
	d := &Detector{
		energy: NewEnergySegmenter(cfg),
		log:    log,
	}
	if modelPath == "" {
		return d
	}
	model, err := LoadModel(modelPath)
	if err != nil {
		if log != nil {
			log.Warnf("VAD model disabled, using energy detection: %v", err)
		}
		return d
	}
	d.model = NewModelSegmenter(model, cfg)
	return d
}

// Detect returns the speech segments of a clip and the method that ran.
// A runtime failure in the model path falls through to energy detection.
func (d *Detector) Detect(clip *audio.Clip) ([]Segment, Method) {
	if d.model != nil {
		segments, err := d.model.Segments(clip)
		if err == nil {
			return segments, MethodModel
		}
		if d.log != nil {
			d.log.Debugf("model VAD failed, falling back to energy: %v", err)
		}
	}
	segments, _ := d.energy.Segments(clip)
	return segments, MethodEnergy
}
