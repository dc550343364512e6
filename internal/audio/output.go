// Package audio renders the session's sound: a breath-synced noise voice,
// a looping ambient theme and a completion bell.
//
// Every stream is 16-bit little-endian stereo PCM at the Output's sample
// rate. Players are pulled from their own goroutine by the output device, so
// the sources here guard their state with a mutex.
package audio

import "io"

const (
	channelCount   = 2
	bytesPerSample = 2
	bytesPerFrame  = channelCount * bytesPerSample
)

// Output creates players on an audio device.
type Output interface {
	SampleRate() int
	NewPlayer(source io.Reader) Player
}

// Player is one stream on an Output.
type Player interface {
	Play()
	Pause()
	SetVolume(volume float64)
	Close() error
}
