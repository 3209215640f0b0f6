package compare

import (
	"fmt"

	"github.com/speechcoach/tonegrade/internal/audio"
)

// Quality gate thresholds for the candidate recording. A recording that
// fails any of these routes straight to the Reject state.
const (
	minRecordingDuration = 0.3   // seconds
	minRecordingRMS      = 0.005 // silence floor
	minVoicedRatio       = 0.15  // voiced frames over all frames
	minSpeechRatio       = 0.1   // detected speech time over clip duration
)

// ValidateRecording checks that the candidate clip plausibly contains a
// real utterance. The returned reason is empty when the clip passes.
func ValidateRecording(clip *audio.Clip) (reason string) {
	if d := clip.Duration(); d < minRecordingDuration {
		return fmt.Sprintf("recording too short: %.2fs", d)
	}
	if rms := audio.RMS(clip.Samples); rms < minRecordingRMS {
		return fmt.Sprintf("recording is silent or nearly silent (rms %.6f)", rms)
	}
	return ""
}
