package mdv

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	// DefaultImageTimeout bounds a single remote image fetch.
	DefaultImageTimeout = 10 * time.Second
	// MaxImageBytes caps the size of a fetched image.
	MaxImageBytes = 32 << 20

	imageCacheSize = 64
)

var (
	// ErrImageNotFound reports a local image target that is not a regular file.
	ErrImageNotFound = errors.New("image not found")
	// ErrImageTooLarge reports an image over MaxImageBytes.
	ErrImageTooLarge = errors.New("image too large")
)

// FetchOption configures a Fetcher.
type FetchOption func(*Fetcher)

// WithHTTPClient sets the client used for remote images.
func WithHTTPClient(client *http.Client) FetchOption {
	return func(f *Fetcher) {
		f.client = client
	}
}

// WithFetchTimeout overrides DefaultImageTimeout.
func WithFetchTimeout(d time.Duration) FetchOption {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header for remote images.
func WithUserAgent(ua string) FetchOption {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// Fetcher loads image bytes from disk or over HTTP(S). Each target is tried
// once; successful results are remembered for the life of the Fetcher.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
	cache     *lru.Cache[string, []byte]
}

// NewFetcher returns a Fetcher with default timeout and user agent.
func NewFetcher(opts ...FetchOption) *Fetcher {
	f := &Fetcher{
		timeout:   DefaultImageTimeout,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	if cache, err := lru.New[string, []byte](imageCacheSize); err == nil {
		f.cache = cache
	}
	return f
}

// ResolveTarget turns an image target into a URL or a filesystem path.
func ResolveTarget(target string, base BaseContext) (location string, remote bool) {
	target = strings.TrimSpace(target)
	if isHTTPURL(target) {
		return target, true
	}
	if base.IsRemote() {
		return base.URL + target, true
	}
	path := strings.TrimPrefix(target, "file://")
	if !filepath.IsAbs(path) {
		path = filepath.Join(base.Dir, path)
	}
	return filepath.Clean(path), false
}

// Fetch returns the bytes of target resolved against base.
func (f *Fetcher) Fetch(ctx context.Context, target string, base BaseContext) ([]byte, error) {
	location, remote := ResolveTarget(target, base)
	if f.cache != nil {
		if data, ok := f.cache.Get(location); ok {
			return data, nil
		}
	}
	var (
		data []byte
		err  error
	)
	if remote {
		data, err = f.fetchRemote(ctx, location)
	} else {
		data, err = readRegularFile(location)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch image %s: %w", location, err)
	}
	if f.cache != nil {
		f.cache.Add(location, data)
	}
	return data, nil
}

func (f *Fetcher) fetchRemote(ctx context.Context, location string) ([]byte, error) {
	data, err := httpGet(ctx, getRequest{
		URL:       location,
		Client:    f.client,
		Timeout:   f.timeout,
		UserAgent: f.userAgent,
		Limit:     MaxImageBytes,
	})
	if errors.Is(err, ErrBodyTooLarge) {
		return nil, ErrImageTooLarge
	}
	return data, err
}

func readRegularFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return nil, ErrImageNotFound
	}
	if info.Size() > MaxImageBytes {
		return nil, ErrImageTooLarge
	}
	return os.ReadFile(path)
}

func isHTTPURL(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
