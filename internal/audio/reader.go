package audio

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-audio/wav"
)

// ReadWAV decodes a PCM WAV file into a mono Clip normalized to [-1, 1].
// Stereo files are downmixed by averaging channels.
func ReadWAV(path string) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening wav file: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, errors.New("not a valid WAV file")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decoding PCM data: %w", err)
	}
	if buf == nil || len(buf.Data) == 0 {
		return nil, errors.New("wav file contains no samples")
	}

	bitDepth := int(dec.BitDepth)
	if bitDepth == 0 {
		bitDepth = buf.SourceBitDepth
	}
	if bitDepth <= 0 || bitDepth > 32 {
		return nil, fmt.Errorf("unsupported bit depth: %d", bitDepth)
	}
	scale := 1.0 / float64(int64(1)<<(bitDepth-1))

	channels := buf.Format.NumChannels
	switch channels {
	case 1:
		samples := make([]float64, len(buf.Data))
		for i, s := range buf.Data {
			samples[i] = float64(s) * scale
		}
		return &Clip{Samples: samples, SampleRate: buf.Format.SampleRate}, nil
	case 2:
		frames := len(buf.Data) / 2
		samples := make([]float64, frames)
		for i := 0; i < frames; i++ {
			l := float64(buf.Data[2*i]) * scale
			r := float64(buf.Data[2*i+1]) * scale
			samples[i] = (l + r) * 0.5
		}
		return &Clip{Samples: samples, SampleRate: buf.Format.SampleRate}, nil
	default:
		return nil, fmt.Errorf("unsupported channel count %d: only mono/stereo supported", channels)
	}
}
