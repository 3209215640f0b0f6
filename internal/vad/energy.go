package vad

import (
	"math"

	"github.com/speechcoach/tonegrade/internal/audio"
)

// Config tunes the short-time energy detector and the segment hysteresis
// shared by both detection methods.
type Config struct {
	FrameSec          float64 // analysis frame length
	HopSec            float64 // hop between frames
	EnergyThreshold   float64 // floor for the adaptive RMS threshold
	MinSpeechDuration float64 // segments shorter than this are dropped
	MaxSilenceGap     float64 // gaps shorter than this are bridged
}

func DefaultConfig() Config {
	return Config{
		FrameSec:          0.025,
		HopSec:            0.010,
		EnergyThreshold:   0.01,
		MinSpeechDuration: 0.1,
		MaxSilenceGap:     0.5,
	}
}

// EnergySegmenter detects speech with short-time RMS energy against an
// adaptive threshold. It has no model artifact and never fails.
type EnergySegmenter struct {
	cfg Config
}

func NewEnergySegmenter(cfg Config) *EnergySegmenter {
	if cfg.FrameSec <= 0 || cfg.HopSec <= 0 {
		cfg = DefaultConfig()
	}
	return &EnergySegmenter{cfg: cfg}
}

// Segments returns the ordered list of voiced regions in the clip. An
// all-silent clip yields an empty list.
func (e *EnergySegmenter) Segments(clip *audio.Clip) ([]Segment, error) {
	frameLen := int(e.cfg.FrameSec * float64(clip.SampleRate))
	hop := int(e.cfg.HopSec * float64(clip.SampleRate))
	if frameLen <= 0 || hop <= 0 || len(clip.Samples) < frameLen {
		return nil, nil
	}

	var rms []float64
	for start := 0; start+frameLen <= len(clip.Samples); start += hop {
		rms = append(rms, audio.RMS(clip.Samples[start:start+frameLen]))
	}

	threshold := adaptiveThreshold(rms, e.cfg.EnergyThreshold)
	active := make([]bool, len(rms))
	for i, v := range rms {
		active[i] = v > threshold
	}

	return mergeFrames(active, e.cfg), nil
}

// adaptiveThreshold picks max(floor, mean - 0.5*std) over the frame
// energies, so a quiet recording is not swallowed by a fixed threshold.
func adaptiveThreshold(rms []float64, floor float64) float64 {
	if len(rms) == 0 {
		return floor
	}
	var mean float64
	for _, v := range rms {
		mean += v
	}
	mean /= float64(len(rms))
	var variance float64
	for _, v := range rms {
		variance += (v - mean) * (v - mean)
	}
	std := math.Sqrt(variance / float64(len(rms)))

	t := mean - 0.5*std
	if t < floor {
		t = floor
	}
	return t
}

// mergeFrames turns per-frame decisions into segments, dropping runs
// shorter than MinSpeechDuration and bridging gaps up to MaxSilenceGap.
func mergeFrames(active []bool, cfg Config) []Segment {
	var raw []Segment
	inSpeech := false
	var start float64
	for i, a := range active {
		t := float64(i) * cfg.HopSec
		switch {
		case a && !inSpeech:
			start = t
			inSpeech = true
		case !a && inSpeech:
			if t-start >= cfg.MinSpeechDuration {
				raw = append(raw, Segment{Start: start, End: t})
			}
			inSpeech = false
		}
	}
	if inSpeech {
		end := float64(len(active)) * cfg.HopSec
		if end-start >= cfg.MinSpeechDuration {
			raw = append(raw, Segment{Start: start, End: end})
		}
	}

	var merged []Segment
	for _, s := range raw {
		if len(merged) > 0 && s.Start-merged[len(merged)-1].End <= cfg.MaxSilenceGap {
			merged[len(merged)-1].End = s.End
			continue
		}
		merged = append(merged, s)
	}
	return merged
}
