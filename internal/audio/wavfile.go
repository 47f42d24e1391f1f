package audio

import (
	"errors"
	"fmt"
	"math"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ErrNotPCM reports a file that is not a decodable PCM WAV container.
var ErrNotPCM = errors.New("not a PCM WAV file")

// ReadWAV decodes a PCM WAV file into a mono Buffer. Multi-channel files
// are averaged down and samples are scaled to [-1, 1] by the source bit
// depth.
func ReadWAV(path string) (*Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("%s: %w", path, ErrNotPCM)
	}

	pcm, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	channels := pcm.Format.NumChannels
	if channels < 1 {
		return nil, fmt.Errorf("%s: %w", path, ErrNotPCM)
	}
	bitDepth := pcm.SourceBitDepth
	if bitDepth == 0 {
		bitDepth = 16
	}
	scale := 1 / float64(int(1)<<(bitDepth-1))

	frames := len(pcm.Data) / channels
	samples := make([]float64, frames)
	for i := 0; i < frames; i++ {
		sum := 0.0
		for ch := 0; ch < channels; ch++ {
			sum += float64(pcm.Data[i*channels+ch])
		}
		samples[i] = (sum / float64(channels)) * scale
	}

	return &Buffer{Samples: samples, SampleRate: pcm.Format.SampleRate}, nil
}

// WriteWAV encodes a Buffer as 16-bit mono PCM.
func WriteWAV(path string, buf *Buffer) error {
	if buf == nil || buf.SampleRate <= 0 {
		return errors.New("audio: nothing to encode")
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	encoder := wav.NewEncoder(f, buf.SampleRate, 16, 1, 1)

	data := make([]int, len(buf.Samples))
	for i, sample := range buf.Samples {
		v := int(math.Round(sample * 32767))
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		data[i] = v
	}

	err = encoder.Write(&goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: buf.SampleRate},
		Data:           data,
		SourceBitDepth: 16,
	})
	if err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}

	if err := encoder.Close(); err != nil {
		f.Close()
		return fmt.Errorf("finalize %s: %w", path, err)
	}
	return f.Close()
}
