// Package loader reads chart scripts and WASM guests from strings, byte slices or disk.
package loader

import (
	"fmt"
	"io"
	"net/url"

	"github.com/robbyt/go-chartbridge/internal/helpers"
)

// Loader is used by the engines to load scripts or binaries.
type Loader interface {
	GetReader() (io.ReadCloser, error)
	GetSourceURL() *url.URL
}

// Source is loaded script content.
type Source struct {
	Body     []byte
	URL      *url.URL
	Checksum string
}

// Name returns a short label for logs and guest stack traces.
func (s *Source) Name() string {
	if s.URL == nil {
		return "script"
	}
	return s.URL.String()
}

// Load reads everything from l.
func Load(l Loader) (*Source, error) {
	if l == nil {
		return nil, fmt.Errorf("%w: loader is nil", ErrScriptNotAvailable)
	}
	r, err := l.GetReader()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScriptNotAvailable, err)
	}
	defer func() { _ = r.Close() }()

	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScriptNotAvailable, err)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: content is empty", ErrScriptNotAvailable)
	}
	return &Source{
		Body:     body,
		URL:      l.GetSourceURL(),
		Checksum: helpers.Checksum(body),
	}, nil
}
