package audio

import (
	"fmt"
	"io"

	"github.com/ebitengine/oto/v3"
)

// DefaultSampleRate matches the rate of the bundled theme recordings.
const DefaultSampleRate = 44100

// Device is the process audio output. oto allows a single context per
// process, so the binary opens one Device and hands it to every Emitter.
type Device struct {
	context    *oto.Context
	sampleRate int
}

// OpenDevice opens the default output and waits until it is ready.
func OpenDevice(sampleRate int) (*Device, error) {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	context, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channelCount,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, fmt.Errorf("open audio device: %w", err)
	}
	<-ready
	return &Device{context: context, sampleRate: sampleRate}, nil
}

// SampleRate returns the device rate in Hz.
func (device *Device) SampleRate() int {
	return device.sampleRate
}

// NewPlayer creates a paused player reading from source.
func (device *Device) NewPlayer(source io.Reader) Player {
	return otoPlayer{Player: device.context.NewPlayer(source)}
}

// otoPlayer releases a player by pausing it; a paused oto player stops
// pulling from its source and is dropped from the mixer.
type otoPlayer struct {
	*oto.Player
}

func (player otoPlayer) Close() error {
	player.Pause()
	return nil
}

