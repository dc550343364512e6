package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"zenbreath/internal/core/model"
)

// ErrUnavailable reports that no candidate produced a usable asset.
var ErrUnavailable = errors.New("audio asset unavailable")

const maxAssetSize = 32 << 20

// Asset is a fetched audio file.
type Asset struct {
	Path        string
	Data        []byte
	ContentType string
}

// Fetcher loads a candidate path such as "/audio/sea.mp3".
type Fetcher interface {
	Fetch(ctx context.Context, name string) (Asset, error)
}

// ThemeCandidates lists where a theme loop may live, in probing order.
func ThemeCandidates(theme model.AudioTheme) []string {
	name := string(theme)
	title := strings.ToUpper(name[:1]) + name[1:]
	return []string{
		"/public/audio/" + name + ".mp3",
		"/audio/" + name + ".mp3",
		"/public/audio/" + title + ".mp3",
		"/audio/" + title + ".mp3",
	}
}

// BellCandidates lists where the completion bell may live.
func BellCandidates() []string {
	return []string{
		"/public/audio/bell.mp3",
		"/audio/bell.mp3",
		"/public/audio/Bell.mp3",
		"/audio/Bell.mp3",
	}
}

// Resolve walks candidates in order and returns the first one that is not
// an HTML page and that decode accepts.
func Resolve[T any](ctx context.Context, fetcher Fetcher, candidates []string, decode func(Asset) (T, error)) (T, string, error) {
	var zero T
	var failures []error
	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return zero, "", err
		}
		asset, err := fetcher.Fetch(ctx, candidate)
		if err != nil {
			failures = append(failures, err)
			continue
		}
		if isHTML(asset.ContentType) {
			failures = append(failures, fmt.Errorf("%s: served as %s", candidate, asset.ContentType))
			continue
		}
		value, err := decode(asset)
		if err != nil {
			failures = append(failures, fmt.Errorf("%s: %w", candidate, err))
			continue
		}
		return value, candidate, nil
	}
	if len(failures) == 0 {
		return zero, "", ErrUnavailable
	}
	return zero, "", fmt.Errorf("%w: %w", ErrUnavailable, errors.Join(failures...))
}

func isHTML(contentType string) bool {
	media, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.Contains(strings.ToLower(contentType), "text/html")
	}
	return media == "text/html"
}

// DirFetcher serves candidates from a local directory.
type DirFetcher struct {
	Root string
}

// Fetch reads the file and sniffs its content type.
func (fetcher DirFetcher) Fetch(_ context.Context, name string) (Asset, error) {
	full := filepath.Join(fetcher.Root, filepath.FromSlash(path.Clean("/"+name)))
	data, err := os.ReadFile(full)
	if err != nil {
		return Asset{}, fmt.Errorf("read %s: %w", name, err)
	}
	contentType := http.DetectContentType(data)
	if !isHTML(contentType) {
		if byExtension := mime.TypeByExtension(filepath.Ext(full)); byExtension != "" {
			contentType = byExtension
		}
	}
	return Asset{Path: name, Data: data, ContentType: contentType}, nil
}

// HTTPFetcher serves candidates from a static web server.
type HTTPFetcher struct {
	BaseURL string
	Client  *http.Client
}

// Fetch downloads the candidate and reports the server's content type.
func (fetcher HTTPFetcher) Fetch(ctx context.Context, name string) (Asset, error) {
	target, err := url.JoinPath(fetcher.BaseURL, name)
	if err != nil {
		return Asset{}, fmt.Errorf("build url for %s: %w", name, err)
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Asset{}, fmt.Errorf("build request for %s: %w", name, err)
	}
	client := fetcher.Client
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	response, err := client.Do(request)
	if err != nil {
		return Asset{}, fmt.Errorf("fetch %s: %w", name, err)
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		return Asset{}, fmt.Errorf("fetch %s: status %s", name, response.Status)
	}
	data, err := io.ReadAll(io.LimitReader(response.Body, maxAssetSize))
	if err != nil {
		return Asset{}, fmt.Errorf("read %s: %w", name, err)
	}
	contentType := response.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return Asset{Path: name, Data: data, ContentType: contentType}, nil
}

// CachedFetcher memoizes successful fetches.
type CachedFetcher struct {
	Fetcher Fetcher
	cache   sync.Map
}

// NewCachedFetcher wraps fetcher with a cache.
func NewCachedFetcher(fetcher Fetcher) *CachedFetcher {
	return &CachedFetcher{Fetcher: fetcher}
}

func (fetcher *CachedFetcher) Fetch(ctx context.Context, name string) (Asset, error) {
	if cached, ok := fetcher.cache.Load(name); ok {
		return cached.(Asset), nil
	}
	asset, err := fetcher.Fetcher.Fetch(ctx, name)
	if err != nil {
		return Asset{}, err
	}
	fetcher.cache.Store(name, asset)
	return asset, nil
}

// Fetchers tries each fetcher in order for every candidate.
type Fetchers []Fetcher

func (fetchers Fetchers) Fetch(ctx context.Context, name string) (Asset, error) {
	var failures []error
	for _, fetcher := range fetchers {
		asset, err := fetcher.Fetch(ctx, name)
		if err == nil {
			return asset, nil
		}
		failures = append(failures, err)
	}
	if len(failures) == 0 {
		return Asset{}, fmt.Errorf("fetch %s: no sources configured", name)
	}
	return Asset{}, errors.Join(failures...)
}
