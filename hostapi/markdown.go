package hostapi

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Renderer turns markdown into HTML.
type Renderer func(markdown string) (string, error)

// MarkdownCache renders side markdown through a Renderer and keeps the most recent results.
// It is safe for concurrent use and may be shared by many ChartEditors.
type MarkdownCache struct {
	render Renderer
	cache  *lru.Cache[string, string]
}

// DefaultMarkdownCacheSize is used when NewMarkdownCache gets a size below one.
const DefaultMarkdownCacheSize = 256

// NewMarkdownCache creates a cache. A nil renderer falls back to HTMLRenderer.
func NewMarkdownCache(size int, render Renderer) (*MarkdownCache, error) {
	if size < 1 {
		size = DefaultMarkdownCacheSize
	}
	if render == nil {
		render = HTMLRenderer
	}
	c, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("creating markdown cache: %w", err)
	}
	return &MarkdownCache{render: render, cache: c}, nil
}

// Render returns the HTML for markdown, rendering it on a miss.
func (m *MarkdownCache) Render(markdown string) (string, error) {
	if out, ok := m.cache.Get(markdown); ok {
		return out, nil
	}
	out, err := m.render(markdown)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRender, err)
	}
	m.cache.Add(markdown, out)
	return out, nil
}

// Len returns the number of cached renderings.
func (m *MarkdownCache) Len() int {
	return m.cache.Len()
}

const (
	markdownExtensions = parser.CommonExtensions | parser.AutoHeadingIDs
	markdownFlags      = mdhtml.CommonFlags | mdhtml.SkipHTML | mdhtml.Safelink
)

// HTMLRenderer renders CommonMark-style markdown to HTML. Raw HTML in the input is dropped
// and links are limited to safe protocols; scripts that need markup use setSideHtml.
func HTMLRenderer(md string) (string, error) {
	// parsers keep state between calls, so each rendering gets its own
	p := parser.NewWithExtensions(markdownExtensions)
	r := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: markdownFlags})
	return strings.TrimSpace(string(markdown.ToHTML([]byte(md), p, r))), nil
}
