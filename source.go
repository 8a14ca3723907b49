package mdv

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// DefaultDocumentTimeout bounds the fetch of a remote document.
	DefaultDocumentTimeout = 15 * time.Second
	// MaxDocumentBytes caps the size of a remote document.
	MaxDocumentBytes = 16 << 20
	// DefaultUserAgent identifies mdv in HTTP requests.
	DefaultUserAgent = "mdv"
)

// ErrNoSuchFile reports a local document that does not exist.
var ErrNoSuchFile = errors.New("no such file")

// LoadError is returned when a document cannot be obtained at all.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return e.Source + ": " + e.Err.Error()
}

func (e *LoadError) Unwrap() error { return e.Err }

// SourceKind tells local and remote documents apart.
type SourceKind uint8

const (
	// SourceLocal is a filesystem path.
	SourceLocal SourceKind = iota
	// SourceRemote is an http or https URL.
	SourceRemote
)

// DocumentSource identifies the document to render.
type DocumentSource struct {
	Kind SourceKind
	// Raw is the argument as given, used in messages.
	Raw  string
	Path string
	URL  string
}

// BaseContext resolves relative image targets: Dir for local documents,
// URL (ending in "/") for remote ones.
type BaseContext struct {
	Dir string
	URL string
}

// IsRemote reports whether the base is a URL prefix.
func (b BaseContext) IsRemote() bool { return b.URL != "" }

// Document is a loaded Markdown document.
type Document struct {
	Source DocumentSource
	Text   string
	Base   BaseContext
}

// ParseSource classifies raw as a remote URL or a local path. file:// URLs
// and ~ prefixes become absolute local paths.
func ParseSource(raw string) (DocumentSource, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return DocumentSource{}, fmt.Errorf("empty input argument")
	}
	if u, err := url.Parse(trimmed); err == nil && u.Scheme != "" {
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return DocumentSource{Kind: SourceRemote, Raw: raw, URL: trimmed}, nil
		case "file":
			path := u.Path
			if path == "" {
				path = u.Host
			}
			if unescaped, err := url.PathUnescape(path); err == nil {
				path = unescaped
			}
			return DocumentSource{Kind: SourceLocal, Raw: raw, Path: normalizePath(path)}, nil
		}
	}
	return DocumentSource{Kind: SourceLocal, Raw: raw, Path: normalizePath(trimmed)}, nil
}

// Loader reads documents from disk or over HTTP(S).
type Loader struct {
	Client    *http.Client
	Timeout   time.Duration
	UserAgent string
}

// Load returns the document text and its base context. Every failure is a
// *LoadError.
func (l *Loader) Load(ctx context.Context, src DocumentSource) (Document, error) {
	var (
		doc Document
		err error
	)
	switch src.Kind {
	case SourceRemote:
		doc, err = l.loadRemote(ctx, src)
	default:
		doc, err = loadLocal(src)
	}
	if err != nil {
		name := src.Raw
		if name == "" {
			name = src.Path + src.URL
		}
		return Document{}, &LoadError{Source: name, Err: err}
	}
	return doc, nil
}

func (l *Loader) loadRemote(ctx context.Context, src DocumentSource) (Document, error) {
	timeout := l.Timeout
	if timeout <= 0 {
		timeout = DefaultDocumentTimeout
	}
	ua := l.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	data, err := httpGet(ctx, getRequest{
		URL:       src.URL,
		Client:    l.Client,
		Timeout:   timeout,
		UserAgent: ua,
		Limit:     MaxDocumentBytes,
	})
	if err != nil {
		return Document{}, err
	}
	text, err := decodeDocument(data)
	if err != nil {
		return Document{}, err
	}
	return Document{Source: src, Text: text, Base: BaseContext{URL: baseURL(src.URL)}}, nil
}

func loadLocal(src DocumentSource) (Document, error) {
	info, err := os.Stat(src.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Document{}, ErrNoSuchFile
		}
		return Document{}, err
	}
	if !info.Mode().IsRegular() {
		return Document{}, ErrNoSuchFile
	}
	data, err := os.ReadFile(src.Path)
	if err != nil {
		return Document{}, err
	}
	text, err := decodeDocument(data)
	if err != nil {
		return Document{}, err
	}
	return Document{Source: src, Text: text, Base: BaseContext{Dir: filepath.Dir(src.Path)}}, nil
}

// baseURL trims a document URL to its last "/". Query and fragment are
// dropped first; a URL without a path gets the root "/".
func baseURL(raw string) string {
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}
	if u, err := url.Parse(raw); err == nil && u.Host != "" && u.Path == "" {
		return raw + "/"
	}
	return raw[:strings.LastIndex(raw, "/")+1]
}

func normalizePath(path string) string {
	if strings.HasPrefix(path, "~/") || path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			if path == "~" {
				path = home
			} else {
				path = filepath.Join(home, path[2:])
			}
		}
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		return abs
	}
	return path
}
