package audio

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zenbreath/internal/core/model"
)

const testRate = 8000

type fakePlayer struct {
	mu      sync.Mutex
	source  io.Reader
	playing bool
	volume  float64
	closed  bool
}

func (player *fakePlayer) Play() {
	player.mu.Lock()
	defer player.mu.Unlock()
	player.playing = true
}

func (player *fakePlayer) Pause() {
	player.mu.Lock()
	defer player.mu.Unlock()
	player.playing = false
}

func (player *fakePlayer) SetVolume(volume float64) {
	player.mu.Lock()
	defer player.mu.Unlock()
	player.volume = volume
}

func (player *fakePlayer) Close() error {
	player.mu.Lock()
	defer player.mu.Unlock()
	player.closed = true
	player.playing = false
	return nil
}

func (player *fakePlayer) isPlaying() bool {
	player.mu.Lock()
	defer player.mu.Unlock()
	return player.playing
}

func (player *fakePlayer) isClosed() bool {
	player.mu.Lock()
	defer player.mu.Unlock()
	return player.closed
}

type fakeOutput struct {
	mu      sync.Mutex
	players []*fakePlayer
}

func (output *fakeOutput) SampleRate() int { return testRate }

func (output *fakeOutput) NewPlayer(source io.Reader) Player {
	output.mu.Lock()
	defer output.mu.Unlock()
	player := &fakePlayer{source: source, volume: 1}
	output.players = append(output.players, player)
	return player
}

func (output *fakeOutput) player(index int) *fakePlayer {
	output.mu.Lock()
	defer output.mu.Unlock()
	return output.players[index]
}

func (output *fakeOutput) count() int {
	output.mu.Lock()
	defer output.mu.Unlock()
	return len(output.players)
}

type mapFetcher map[string]Asset

func (fetcher mapFetcher) Fetch(_ context.Context, name string) (Asset, error) {
	asset, ok := fetcher[name]
	if !ok {
		return Asset{}, errors.New(name + ": not found")
	}
	return asset, nil
}

type countingFetcher struct {
	calls int
	inner Fetcher
}

func (fetcher *countingFetcher) Fetch(ctx context.Context, name string) (Asset, error) {
	fetcher.calls++
	return fetcher.inner.Fetch(ctx, name)
}

func rawDecode(data []byte, _ int) ([]byte, error) {
	if len(data) < bytesPerFrame {
		return nil, errors.New("too short")
	}
	return data, nil
}

func mp3Asset(data string) Asset {
	return Asset{Data: []byte(data), ContentType: "audio/mpeg"}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestResolveAllCandidatesFail(t *testing.T) {
	_, _, err := Resolve(context.Background(), mapFetcher{}, ThemeCandidates(model.ThemeSea), func(asset Asset) ([]byte, error) {
		return asset.Data, nil
	})
	require.ErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "/audio/Sea.mp3")
}

func TestResolveSecondCandidateWins(t *testing.T) {
	fetcher := mapFetcher{"/audio/city.mp3": mp3Asset("second")}
	data, source, err := Resolve(context.Background(), fetcher, ThemeCandidates(model.ThemeCity), func(asset Asset) ([]byte, error) {
		return asset.Data, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "/audio/city.mp3", source)
	assert.Equal(t, []byte("second"), data)
}

func TestResolveRejectsHTML(t *testing.T) {
	fetcher := mapFetcher{
		"/public/audio/forest.mp3": {Data: []byte("<html>"), ContentType: "text/html; charset=utf-8"},
		"/public/audio/Forest.mp3": mp3Asset("capitalized"),
	}
	data, source, err := Resolve(context.Background(), fetcher, ThemeCandidates(model.ThemeForest), func(asset Asset) ([]byte, error) {
		return asset.Data, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "/public/audio/Forest.mp3", source)
	assert.Equal(t, []byte("capitalized"), data)
}

func TestResolveSkipsUndecodable(t *testing.T) {
	fetcher := mapFetcher{
		"/public/audio/autoway.mp3": mp3Asset("x"),
		"/audio/autoway.mp3":        mp3Asset("decodable"),
	}
	_, source, err := Resolve(context.Background(), fetcher, ThemeCandidates(model.ThemeAutoway), func(asset Asset) ([]byte, error) {
		return rawDecode(asset.Data, testRate)
	})
	require.NoError(t, err)
	assert.Equal(t, "/audio/autoway.mp3", source)
}

func TestDirFetcherSniffsHTML(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "audio"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "audio", "sea.mp3"), []byte("<!DOCTYPE html><html></html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "audio", "Sea.mp3"), []byte("ID3\x03\x00\x00\x00"), 0o644))

	fetcher := DirFetcher{Root: root}
	page, err := fetcher.Fetch(context.Background(), "/audio/sea.mp3")
	require.NoError(t, err)
	assert.True(t, isHTML(page.ContentType))

	track, err := fetcher.Fetch(context.Background(), "/audio/Sea.mp3")
	require.NoError(t, err)
	assert.False(t, isHTML(track.ContentType))

	_, err = fetcher.Fetch(context.Background(), "/audio/missing.mp3")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestHTTPFetcherReportsContentType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/public/audio/sea.mp3":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html>fallback</html>"))
		case "/audio/sea.mp3":
			w.Header().Set("Content-Type", "audio/mpeg")
			_, _ = w.Write([]byte("track"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	fetcher := HTTPFetcher{BaseURL: server.URL, Client: server.Client()}
	data, source, err := Resolve(context.Background(), fetcher, ThemeCandidates(model.ThemeSea), func(asset Asset) ([]byte, error) {
		return asset.Data, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "/audio/sea.mp3", source)
	assert.Equal(t, []byte("track"), data)

	_, err = fetcher.Fetch(context.Background(), "/audio/bell.mp3")
	assert.ErrorContains(t, err, "404")
}

func TestCachedFetcherMemoizesSuccess(t *testing.T) {
	inner := &countingFetcher{inner: mapFetcher{"/audio/bell.mp3": mp3Asset("bell")}}
	fetcher := NewCachedFetcher(inner)

	for i := 0; i < 3; i++ {
		_, err := fetcher.Fetch(context.Background(), "/audio/bell.mp3")
		require.NoError(t, err)
		_, err = fetcher.Fetch(context.Background(), "/audio/Bell.mp3")
		require.Error(t, err)
	}
	assert.Equal(t, 4, inner.calls)
}

func TestFetchersFallBack(t *testing.T) {
	fetchers := Fetchers{mapFetcher{}, mapFetcher{"/audio/sea.mp3": mp3Asset("remote")}}
	asset, err := fetchers.Fetch(context.Background(), "/audio/sea.mp3")
	require.NoError(t, err)
	assert.Equal(t, []byte("remote"), asset.Data)

	_, err = Fetchers{}.Fetch(context.Background(), "/audio/sea.mp3")
	assert.Error(t, err)
}

func TestVoiceRampsAcrossDuration(t *testing.T) {
	voice := NewVoice(testRate)
	voice.Ramp(HighCutoff, HighGain, 500*time.Millisecond)

	half := make([]byte, testRate/4*bytesPerFrame)
	n, err := voice.Read(half)
	require.NoError(t, err)
	assert.Equal(t, len(half), n)

	cutoff, gain := voice.Level()
	assert.InDelta(t, HighGain/2, gain, 1e-6)
	// Exponential: the geometric mean at the midpoint.
	assert.InDelta(t, 591.6, cutoff, 1)

	_, err = voice.Read(half)
	require.NoError(t, err)
	cutoff, gain = voice.Level()
	assert.Equal(t, HighCutoff, cutoff)
	assert.Equal(t, HighGain, gain)

	voice.Ramp(LowCutoff, LowGain, time.Second)
	_, err = voice.Read(make([]byte, testRate*bytesPerFrame))
	require.NoError(t, err)
	cutoff, gain = voice.Level()
	assert.Equal(t, LowCutoff, cutoff)
	assert.Equal(t, LowGain, gain)
}

func TestVoiceMasterSilences(t *testing.T) {
	voice := NewVoice(testRate)
	voice.Ramp(HighCutoff, HighGain, 0)
	voice.SetMaster(0)

	buffer := make([]byte, 256*bytesPerFrame)
	_, err := voice.Read(buffer)
	require.NoError(t, err)
	for offset := 0; offset < len(buffer); offset += bytesPerSample {
		require.Zero(t, binary.LittleEndian.Uint16(buffer[offset:]))
	}
}

func TestLoopWraps(t *testing.T) {
	loop := NewLoop([]byte{1, 2, 3, 4, 5, 6, 7, 8})
	buffer := make([]byte, 12)
	n, err := loop.Read(buffer)
	require.NoError(t, err)
	assert.Equal(t, 12, n)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8, 1, 2, 3, 4}, buffer)

	_, err = NewLoop(nil).Read(buffer)
	assert.ErrorIs(t, err, io.EOF)
}

func TestSynthBellDecays(t *testing.T) {
	pcm := SynthBell(testRate, 1)
	require.Len(t, pcm, testRate*bytesPerFrame)
	peak := func(from, to int) int {
		highest := 0
		for frame := from; frame < to; frame++ {
			value := int(int16(binary.LittleEndian.Uint16(pcm[frame*bytesPerFrame:])))
			if value < 0 {
				value = -value
			}
			highest = max(highest, value)
		}
		return highest
	}
	assert.Greater(t, peak(0, testRate/10), peak(testRate*9/10, testRate))
}

func newTestEmitter(t *testing.T, fetcher Fetcher, statuses *[]Status) (*Emitter, *fakeOutput) {
	t.Helper()
	output := &fakeOutput{}
	var mu sync.Mutex
	emitter := NewEmitter(output, Config{
		Fetcher: fetcher,
		Decode:  rawDecode,
		Logger:  quietLogger(),
		OnStatus: func(status Status) {
			mu.Lock()
			defer mu.Unlock()
			*statuses = append(*statuses, status)
		},
	})
	return emitter, output
}

func TestEmitterLoadsThemeAndBell(t *testing.T) {
	var statuses []Status
	fetcher := mapFetcher{
		"/audio/sea.mp3":  mp3Asset("themeloop"),
		"/audio/bell.mp3": mp3Asset("bellbell"),
	}
	emitter, output := newTestEmitter(t, fetcher, &statuses)

	require.NoError(t, emitter.Load(context.Background(), model.ThemeSea))
	assert.Equal(t, StatusReady, emitter.Status())
	assert.Equal(t, []Status{StatusLoading, StatusReady}, statuses)

	require.Equal(t, 2, output.count())
	theme := output.player(1)
	assert.True(t, theme.isPlaying())
	assert.Equal(t, 0.5, theme.volume)

	emitter.CueBell()
	require.Equal(t, 3, output.count())
	bell := output.player(2)
	data, err := io.ReadAll(bell.source)
	require.NoError(t, err)
	assert.Equal(t, []byte("bellbell"), data)
	assert.Eventually(t, bell.isClosed, time.Second, 10*time.Millisecond)
}

func TestStopThemeReportsIdleOnlyOnChange(t *testing.T) {
	var statuses []Status
	fetcher := mapFetcher{"/audio/sea.mp3": mp3Asset("themeloop")}
	emitter, _ := newTestEmitter(t, fetcher, &statuses)

	emitter.StopTheme()
	assert.Empty(t, statuses)

	require.NoError(t, emitter.Load(context.Background(), model.ThemeSea))
	emitter.StopTheme()
	emitter.StopTheme()
	assert.Equal(t, []Status{StatusLoading, StatusReady, StatusIdle}, statuses)
	assert.Equal(t, StatusIdle, emitter.Status())
}

func TestEmitterUnavailableKeepsSessionSilent(t *testing.T) {
	var statuses []Status
	emitter, output := newTestEmitter(t, mapFetcher{}, &statuses)

	err := emitter.Load(context.Background(), model.ThemeCity)
	require.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, StatusUnavailable, emitter.Status())
	assert.Equal(t, 1, output.count())

	// Without a sample the bell is synthesized.
	emitter.CueBell()
	require.Equal(t, 2, output.count())
	assert.True(t, output.player(1).isPlaying())
}

func TestEmitterMuteLeavesBell(t *testing.T) {
	var statuses []Status
	emitter, output := newTestEmitter(t, mapFetcher{"/audio/forest.mp3": mp3Asset("forest!!")}, &statuses)
	require.NoError(t, emitter.Load(context.Background(), model.ThemeForest))

	emitter.SetMuted(true)
	assert.Zero(t, output.player(1).volume)
	emitter.CueBreath(model.Inhale, 0)
	_, err := emitter.Voice().Read(make([]byte, 64*bytesPerFrame))
	require.NoError(t, err)

	emitter.CueBell()
	assert.Equal(t, 1.0, output.player(2).volume)

	emitter.SetMuted(false)
	assert.Equal(t, 0.5, output.player(1).volume)
}

func TestEmitterSuspendAndResume(t *testing.T) {
	var statuses []Status
	emitter, output := newTestEmitter(t, mapFetcher{"/audio/sea.mp3": mp3Asset("seasea!!")}, &statuses)
	require.NoError(t, emitter.Load(context.Background(), model.ThemeSea))

	emitter.SuspendAll()
	emitter.SuspendAll()
	assert.False(t, output.player(0).isPlaying())
	assert.False(t, output.player(1).isPlaying())

	emitter.CueBell()
	assert.False(t, output.player(2).isPlaying())

	emitter.ResumeAll()
	for i := 0; i < output.count(); i++ {
		assert.True(t, output.player(i).isPlaying(), "player %d", i)
	}
}

func TestEmitterCueBreathDirections(t *testing.T) {
	var statuses []Status
	emitter, _ := newTestEmitter(t, mapFetcher{}, &statuses)

	emitter.CueBreath(model.Inhale, 0)
	cutoff, gain := emitter.Voice().Level()
	assert.Equal(t, HighCutoff, cutoff)
	assert.Equal(t, HighGain, gain)

	emitter.CueBreath(model.Exhale, 0)
	cutoff, gain = emitter.Voice().Level()
	assert.Equal(t, LowCutoff, cutoff)
	assert.Equal(t, LowGain, gain)

	emitter.SilenceBreath()
	_, err := emitter.Voice().Read(make([]byte, testRate*bytesPerFrame))
	require.NoError(t, err)
	_, gain = emitter.Voice().Level()
	assert.Zero(t, gain)
}

func TestEmitterCloseStopsThemeAndIgnoresLaterCues(t *testing.T) {
	var statuses []Status
	emitter, output := newTestEmitter(t, mapFetcher{"/audio/sea.mp3": mp3Asset("seasea!!")}, &statuses)
	require.NoError(t, emitter.Load(context.Background(), model.ThemeSea))

	emitter.Close()
	assert.True(t, output.player(0).isClosed())
	assert.True(t, output.player(1).isClosed())

	emitter.CueBell()
	emitter.StartTheme(model.ThemeSea)
	assert.Equal(t, 2, output.count())
	assert.ErrorIs(t, emitter.Load(context.Background(), model.ThemeSea), ErrUnavailable)
}
