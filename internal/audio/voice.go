package audio

import (
	"encoding/binary"
	"math"
	"math/rand/v2"
	"sync"
	"time"
)

// Breath envelope bounds.
const (
	LowCutoff  = 250.0
	HighCutoff = 1400.0
	LowGain    = 0.05
	HighGain   = 0.35
)

// Voice is a persistent filtered-noise source. Cues re-envelope it instead
// of starting new streams, so transitions never click.
type Voice struct {
	mu         sync.Mutex
	sampleRate float64
	random     *rand.Rand

	cutoff      float64
	cutoffStep  float64
	cutoffLeft  int
	cutoffFinal float64

	gain      float64
	gainStep  float64
	gainLeft  int
	gainFinal float64

	master float64
	memory float64
}

// NewVoice creates a silent voice at the given sample rate.
func NewVoice(sampleRate int) *Voice {
	return &Voice{
		sampleRate: float64(sampleRate),
		random:     rand.New(rand.NewPCG(uint64(sampleRate), 0x5eed)),
		cutoff:     LowCutoff,
		master:     1,
	}
}

// Ramp moves the lowpass cutoff exponentially and the gain linearly to the
// targets over exactly d.
func (voice *Voice) Ramp(cutoff, gain float64, d time.Duration) {
	voice.mu.Lock()
	defer voice.mu.Unlock()

	frames := int(math.Round(d.Seconds() * voice.sampleRate))
	cutoff = math.Max(cutoff, 1)
	gain = math.Max(gain, 0)
	if frames <= 0 {
		voice.cutoff, voice.cutoffLeft = cutoff, 0
		voice.gain, voice.gainLeft = gain, 0
		return
	}
	voice.cutoffFinal = cutoff
	voice.cutoffLeft = frames
	voice.cutoffStep = math.Pow(cutoff/voice.cutoff, 1/float64(frames))

	voice.gainFinal = gain
	voice.gainLeft = frames
	voice.gainStep = (gain - voice.gain) / float64(frames)
}

// SetMaster scales the whole voice; zero mutes it.
func (voice *Voice) SetMaster(level float64) {
	voice.mu.Lock()
	defer voice.mu.Unlock()
	voice.master = math.Max(level, 0)
}

// Level reports the current cutoff and gain.
func (voice *Voice) Level() (cutoff, gain float64) {
	voice.mu.Lock()
	defer voice.mu.Unlock()
	return voice.cutoff, voice.gain
}

// Read renders stereo frames into p. It never returns an error.
func (voice *Voice) Read(p []byte) (int, error) {
	voice.mu.Lock()
	defer voice.mu.Unlock()

	frames := len(p) / bytesPerFrame
	for frame := 0; frame < frames; frame++ {
		voice.advanceLocked()
		alpha := 1 - math.Exp(-2*math.Pi*voice.cutoff/voice.sampleRate)
		voice.memory += alpha * (voice.random.Float64()*2 - 1 - voice.memory)
		sample := toInt16(voice.memory * voice.gain * voice.master)
		offset := frame * bytesPerFrame
		binary.LittleEndian.PutUint16(p[offset:], uint16(sample))
		binary.LittleEndian.PutUint16(p[offset+bytesPerSample:], uint16(sample))
	}
	return frames * bytesPerFrame, nil
}

func (voice *Voice) advanceLocked() {
	if voice.cutoffLeft > 0 {
		voice.cutoffLeft--
		voice.cutoff *= voice.cutoffStep
		if voice.cutoffLeft == 0 {
			voice.cutoff = voice.cutoffFinal
		}
	}
	if voice.gainLeft > 0 {
		voice.gainLeft--
		voice.gain += voice.gainStep
		if voice.gainLeft == 0 {
			voice.gain = voice.gainFinal
		}
	}
}

func toInt16(value float64) int16 {
	value = math.Max(-1, math.Min(1, value))
	return int16(value * math.MaxInt16)
}
