package audio

import (
	"fmt"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WriteWAV encodes a mono Clip as a 16-bit PCM WAV file. Samples outside
// [-1, 1] are clipped.
func WriteWAV(path string, clip *Clip) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating wav file: %w", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, clip.SampleRate, 16, 1, 1)

	data := make([]int, len(clip.Samples))
	for i, s := range clip.Samples {
		if s > 1.0 {
			s = 1.0
		} else if s < -1.0 {
			s = -1.0
		}
		data[i] = int(s * 32767.0)
	}

	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: clip.SampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("encoding PCM data: %w", err)
	}
	return enc.Close()
}
