package audio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"zenbreath/internal/core/model"
)

// Status describes the theme loop.
type Status string

const (
	StatusIdle        Status = "idle"
	StatusLoading     Status = "loading"
	StatusReady       Status = "ready"
	StatusUnavailable Status = "unavailable"
)

const (
	silenceFade = 600 * time.Millisecond
	bellLength  = 3.5
)

// Config contains runtime options for an Emitter.
type Config struct {
	Fetcher     Fetcher
	ThemeVolume float64
	BellVolume  float64
	// Decode turns a fetched file into PCM at the output rate.
	Decode   func(data []byte, sampleRate int) ([]byte, error)
	Logger   *slog.Logger
	OnStatus func(Status)
}

// Emitter plays the cues of one session. It owns every player it creates;
// Close releases them.
type Emitter struct {
	mu     sync.Mutex
	output Output
	config Config
	logger *slog.Logger

	voice       *Voice
	voicePlayer Player

	theme      Player
	generation uint64
	cancelLoad context.CancelFunc
	status     Status

	bell    []byte
	ringing map[Player]struct{}

	muted     bool
	suspended bool
	closed    bool
}

// NewEmitter starts the breath voice on output.
func NewEmitter(output Output, config Config) *Emitter {
	if config.Fetcher == nil {
		config.Fetcher = Fetchers{}
	}
	if config.ThemeVolume <= 0 {
		config.ThemeVolume = 0.5
	}
	if config.BellVolume <= 0 {
		config.BellVolume = 1
	}
	if config.Decode == nil {
		config.Decode = DecodeMP3
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	emitter := &Emitter{
		output:  output,
		config:  config,
		logger:  config.Logger,
		voice:   NewVoice(output.SampleRate()),
		status:  StatusIdle,
		ringing: make(map[Player]struct{}),
	}
	emitter.voicePlayer = output.NewPlayer(emitter.voice)
	emitter.voicePlayer.Play()
	return emitter
}

// Status reports the theme loop status.
func (emitter *Emitter) Status() Status {
	emitter.mu.Lock()
	defer emitter.mu.Unlock()
	return emitter.status
}

// Voice exposes the breath voice.
func (emitter *Emitter) Voice() *Voice {
	return emitter.voice
}

// CueBreath sweeps the voice up for an inhale and down for an exhale across
// exactly duration.
func (emitter *Emitter) CueBreath(direction model.Direction, duration time.Duration) {
	if direction == model.Inhale {
		emitter.voice.Ramp(HighCutoff, HighGain, duration)
		return
	}
	emitter.voice.Ramp(LowCutoff, LowGain, duration)
}

// SilenceBreath fades the voice out.
func (emitter *Emitter) SilenceBreath() {
	emitter.voice.Ramp(LowCutoff, 0, silenceFade)
}

// CueBell rings the bell once. It is silent after Close.
func (emitter *Emitter) CueBell() {
	emitter.mu.Lock()
	defer emitter.mu.Unlock()
	if emitter.closed {
		return
	}
	if emitter.bell == nil {
		emitter.bell = SynthBell(emitter.output.SampleRate(), bellLength)
	}

	var player Player
	source := &endReader{source: bytes.NewReader(emitter.bell), onEnd: func() {
		emitter.mu.Lock()
		delete(emitter.ringing, player)
		emitter.mu.Unlock()
		go player.Close()
	}}
	player = emitter.output.NewPlayer(source)
	player.SetVolume(emitter.config.BellVolume)
	emitter.ringing[player] = struct{}{}
	if !emitter.suspended {
		player.Play()
	}
}

// SetMuted silences the theme and the breath voice.
func (emitter *Emitter) SetMuted(muted bool) {
	emitter.mu.Lock()
	defer emitter.mu.Unlock()
	emitter.muted = muted
	if muted {
		emitter.voice.SetMaster(0)
	} else {
		emitter.voice.SetMaster(1)
	}
	if emitter.theme != nil {
		emitter.theme.SetVolume(emitter.themeVolumeLocked())
	}
}

// SuspendAll pauses every player so their audio clocks freeze.
func (emitter *Emitter) SuspendAll() {
	emitter.mu.Lock()
	defer emitter.mu.Unlock()
	if emitter.suspended || emitter.closed {
		return
	}
	emitter.suspended = true
	for _, player := range emitter.playersLocked() {
		player.Pause()
	}
}

// ResumeAll continues every player where it stopped.
func (emitter *Emitter) ResumeAll() {
	emitter.mu.Lock()
	defer emitter.mu.Unlock()
	if !emitter.suspended || emitter.closed {
		return
	}
	emitter.suspended = false
	for _, player := range emitter.playersLocked() {
		player.Play()
	}
}

// StartTheme loads and loops a theme in the background.
func (emitter *Emitter) StartTheme(theme model.AudioTheme) {
	ctx, cancel := context.WithCancel(context.Background())
	emitter.mu.Lock()
	if emitter.closed {
		emitter.mu.Unlock()
		cancel()
		return
	}
	emitter.stopThemeLocked()
	emitter.cancelLoad = cancel
	generation := emitter.generation
	emitter.mu.Unlock()

	go func() {
		defer cancel()
		_ = emitter.load(ctx, theme, generation)
	}()
}

// Load resolves and starts a theme synchronously.
func (emitter *Emitter) Load(ctx context.Context, theme model.AudioTheme) error {
	emitter.mu.Lock()
	if emitter.closed {
		emitter.mu.Unlock()
		return ErrUnavailable
	}
	emitter.stopThemeLocked()
	generation := emitter.generation
	emitter.mu.Unlock()
	return emitter.load(ctx, theme, generation)
}

// StopTheme stops the theme loop and any load in progress.
func (emitter *Emitter) StopTheme() {
	emitter.mu.Lock()
	previous := emitter.status
	emitter.stopThemeLocked()
	emitter.mu.Unlock()
	if previous != StatusIdle {
		emitter.notify(StatusIdle)
	}
}

// Close releases the voice and the theme. A bell that is still ringing
// plays to its end.
func (emitter *Emitter) Close() {
	emitter.mu.Lock()
	if emitter.closed {
		emitter.mu.Unlock()
		return
	}
	emitter.closed = true
	emitter.stopThemeLocked()
	voicePlayer := emitter.voicePlayer
	emitter.mu.Unlock()

	if err := voicePlayer.Close(); err != nil {
		emitter.logger.Debug("close breath voice", "error", err)
	}
}

func (emitter *Emitter) load(ctx context.Context, theme model.AudioTheme, generation uint64) error {
	emitter.notifyIf(generation, StatusLoading)
	sampleRate := emitter.output.SampleRate()
	decode := func(asset Asset) ([]byte, error) {
		return emitter.config.Decode(asset.Data, sampleRate)
	}

	if emitter.needsBell() {
		bell, source, err := Resolve(ctx, emitter.config.Fetcher, BellCandidates(), decode)
		if err != nil {
			emitter.logger.Debug("bell sample unavailable, using synthesized bell", "error", err)
		} else {
			emitter.logger.Debug("bell sample loaded", "source", source)
			emitter.mu.Lock()
			emitter.bell = bell
			emitter.mu.Unlock()
		}
	}

	pcm, source, err := Resolve(ctx, emitter.config.Fetcher, ThemeCandidates(theme), decode)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		emitter.logger.Warn("theme audio unavailable", "theme", theme, "error", err)
		emitter.notifyIf(generation, StatusUnavailable)
		return err
	}

	emitter.mu.Lock()
	if emitter.closed || emitter.generation != generation {
		emitter.mu.Unlock()
		return context.Canceled
	}
	player := emitter.output.NewPlayer(NewLoop(pcm))
	player.SetVolume(emitter.themeVolumeLocked())
	if !emitter.suspended {
		player.Play()
	}
	emitter.theme = player
	emitter.mu.Unlock()

	emitter.logger.Info("theme audio ready", "theme", theme, "source", source)
	emitter.notifyIf(generation, StatusReady)
	return nil
}

func (emitter *Emitter) needsBell() bool {
	emitter.mu.Lock()
	defer emitter.mu.Unlock()
	return emitter.bell == nil
}

func (emitter *Emitter) stopThemeLocked() {
	emitter.generation++
	if emitter.cancelLoad != nil {
		emitter.cancelLoad()
		emitter.cancelLoad = nil
	}
	if emitter.theme != nil {
		if err := emitter.theme.Close(); err != nil {
			emitter.logger.Debug("close theme player", "error", err)
		}
		emitter.theme = nil
	}
	emitter.status = StatusIdle
}

func (emitter *Emitter) themeVolumeLocked() float64 {
	if emitter.muted {
		return 0
	}
	return emitter.config.ThemeVolume
}

func (emitter *Emitter) playersLocked() []Player {
	players := []Player{emitter.voicePlayer}
	if emitter.theme != nil {
		players = append(players, emitter.theme)
	}
	for player := range emitter.ringing {
		players = append(players, player)
	}
	return players
}

// notifyIf records status only when it belongs to the current theme load.
func (emitter *Emitter) notifyIf(generation uint64, status Status) {
	emitter.mu.Lock()
	if emitter.generation != generation {
		emitter.mu.Unlock()
		return
	}
	emitter.status = status
	emitter.mu.Unlock()
	if emitter.config.OnStatus != nil {
		emitter.config.OnStatus(status)
	}
}

func (emitter *Emitter) notify(status Status) {
	if emitter.config.OnStatus != nil {
		emitter.config.OnStatus(status)
	}
}

// endReader calls onEnd once when source is exhausted.
type endReader struct {
	source io.Reader
	onEnd  func()
	once   sync.Once
}

func (reader *endReader) Read(p []byte) (int, error) {
	n, err := reader.source.Read(p)
	if err == io.EOF {
		reader.once.Do(reader.onEnd)
	}
	return n, err
}
