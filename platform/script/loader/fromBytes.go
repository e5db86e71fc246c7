package loader

import (
	"bytes"
	"fmt"
	"io"
	"net/url"

	"github.com/robbyt/go-chartbridge/internal/helpers"
)

// FromBytes loads a script or WASM module held in memory.
type FromBytes struct {
	content   []byte
	sourceURL *url.URL
}

// NewFromBytes creates a loader from a byte slice. Text content made only of whitespace is
// rejected; binary content is taken as-is.
func NewFromBytes(content []byte) (*FromBytes, error) {
	if len(content) == 0 {
		return nil, fmt.Errorf("%w: content is empty", ErrScriptNotAvailable)
	}
	if !isBinary(content) && len(bytes.TrimSpace(content)) == 0 {
		return nil, fmt.Errorf("%w: content contains only whitespace", ErrScriptNotAvailable)
	}

	u, err := url.Parse("bytes://inline/" + helpers.ShortChecksum(helpers.Checksum(content)))
	if err != nil {
		return nil, fmt.Errorf("failed to create source URL: %w", err)
	}
	return &FromBytes{content: content, sourceURL: u}, nil
}

func (l *FromBytes) String() string {
	return fmt.Sprintf("loader.FromBytes{Bytes: %d}", len(l.content))
}

func (l *FromBytes) GetReader() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(l.content)), nil
}

func (l *FromBytes) GetSourceURL() *url.URL {
	return l.sourceURL
}

func isBinary(data []byte) bool {
	for _, b := range data {
		if b == 0 || (b < 32 && b != '\n' && b != '\r' && b != '\t') {
			return true
		}
	}
	return false
}
