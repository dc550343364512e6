package audio

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/hajimehoshi/go-mp3"
)

// DecodeMP3 decodes an mp3 file to stereo PCM. The file must already be at
// the device sample rate; no resampling is done.
func DecodeMP3(data []byte, sampleRate int) ([]byte, error) {
	decoder, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode mp3: %w", err)
	}
	if decoder.SampleRate() != sampleRate {
		return nil, fmt.Errorf("decode mp3: sample rate %d, want %d", decoder.SampleRate(), sampleRate)
	}
	pcm, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("decode mp3: %w", err)
	}
	pcm = pcm[:len(pcm)-len(pcm)%bytesPerFrame]
	if len(pcm) == 0 {
		return nil, fmt.Errorf("decode mp3: no audio frames")
	}
	return pcm, nil
}

// Loop repeats a PCM buffer forever.
type Loop struct {
	mu     sync.Mutex
	pcm    []byte
	offset int
}

// NewLoop creates a seamless loop over pcm.
func NewLoop(pcm []byte) *Loop {
	return &Loop{pcm: pcm}
}

func (loop *Loop) Read(p []byte) (int, error) {
	loop.mu.Lock()
	defer loop.mu.Unlock()
	if len(loop.pcm) == 0 {
		return 0, io.EOF
	}
	written := 0
	for written < len(p) {
		n := copy(p[written:], loop.pcm[loop.offset:])
		written += n
		loop.offset = (loop.offset + n) % len(loop.pcm)
	}
	return written, nil
}

// SynthBell renders a short struck-bell chime, used when no bell sample can
// be resolved.
func SynthBell(sampleRate int, length float64) []byte {
	frames := int(length * float64(sampleRate))
	pcm := make([]byte, frames*bytesPerFrame)
	partials := []struct{ ratio, level, decay float64 }{
		{1, 0.5, 1.2},
		{2.76, 0.25, 2.5},
		{5.4, 0.12, 4},
	}
	const fundamental = 528.0
	for frame := 0; frame < frames; frame++ {
		at := float64(frame) / float64(sampleRate)
		value := 0.0
		for _, partial := range partials {
			value += partial.level * math.Exp(-partial.decay*at) *
				math.Sin(2*math.Pi*fundamental*partial.ratio*at)
		}
		sample := uint16(toInt16(value * 0.8))
		offset := frame * bytesPerFrame
		pcm[offset] = byte(sample)
		pcm[offset+1] = byte(sample >> 8)
		pcm[offset+2] = byte(sample)
		pcm[offset+3] = byte(sample >> 8)
	}
	return pcm
}
