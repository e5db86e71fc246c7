package loader

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/robbyt/go-chartbridge/internal/helpers"
)

// FromReader loads a script or WASM module from an io.Reader such as stdin. The reader is
// drained once, when the loader is created, so GetReader can be called repeatedly.
type FromReader struct {
	content   []byte
	name      string
	sourceURL *url.URL
}

// NewFromReader reads r to the end. name identifies the source in URLs and logs; an empty
// name is replaced by a short content hash.
func NewFromReader(r io.Reader, name string) (*FromReader, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: reader is nil", ErrScriptNotAvailable)
	}
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScriptNotAvailable, err)
	}
	if len(content) == 0 {
		return nil, fmt.Errorf("%w: content is empty", ErrScriptNotAvailable)
	}
	if !isBinary(content) && len(bytes.TrimSpace(content)) == 0 {
		return nil, fmt.Errorf("%w: content contains only whitespace", ErrScriptNotAvailable)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = helpers.ShortChecksum(helpers.Checksum(content))
	}
	return &FromReader{
		content:   content,
		name:      name,
		sourceURL: &url.URL{Scheme: "reader", Host: "inline", Path: "/" + name},
	}, nil
}

func (l *FromReader) String() string {
	return fmt.Sprintf("loader.FromReader{Name: %s, Bytes: %d}", l.name, len(l.content))
}

func (l *FromReader) GetReader() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(l.content)), nil
}

func (l *FromReader) GetSourceURL() *url.URL {
	return l.sourceURL
}
