package hostapi

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"time"

	"dario.cat/mergo"
	"github.com/gosimple/slug"
	"github.com/robbyt/go-chartbridge/bridge"
	"github.com/robbyt/go-chartbridge/internal/helpers"
)

// ChartEditor records what a chart script did. It implements bridge.HostAPI,
// bridge.DataAccessor, bridge.ConfigMutator and the widget config and action params
// providers. Secrets are opt-in, see WithSecrets.
type ChartEditor struct {
	lang         string
	login        string
	translations Translations
	now          func() time.Time
	markdown     *MarkdownCache

	sharedData      map[string]any
	loadedData      any
	loadedDataStats any
	widgetConfig    any

	mu             sync.Mutex
	actionParams   map[string]any
	errors         []any
	insights       []any
	handlers       []map[string]any
	formatters     []map[string]any
	dataSources    map[string]any
	config         map[string]any
	highcharts     map[string]any
	sideHTML       string
	sideMarkdown   string
	extras         map[string]any
	exportFilename string

	logHandler slog.Handler
	logger     *slog.Logger
}

var (
	_ bridge.HostAPI              = (*ChartEditor)(nil)
	_ bridge.DataAccessor         = (*ChartEditor)(nil)
	_ bridge.ConfigMutator        = (*ChartEditor)(nil)
	_ bridge.WidgetConfigProvider = (*ChartEditor)(nil)
	_ bridge.ActionParamsProvider = (*ChartEditor)(nil)
)

// New creates a ChartEditor with English as the user language.
func New(opts ...Option) (*ChartEditor, error) {
	e := &ChartEditor{
		lang:        fallbackLang,
		now:         time.Now,
		dataSources: make(map[string]any),
		config:      make(map[string]any),
		highcharts:  make(map[string]any),
		extras:      make(map[string]any),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, fmt.Errorf("error applying option: %w", err)
		}
	}
	if e.markdown == nil {
		cache, err := NewMarkdownCache(DefaultMarkdownCacheSize, nil)
		if err != nil {
			return nil, err
		}
		e.markdown = cache
	}
	e.logHandler, e.logger = helpers.SetupLogger(e.logHandler, "hostapi", "ChartEditor")
	return e, nil
}

func (e *ChartEditor) String() string {
	return fmt.Sprintf("hostapi.ChartEditor{Lang: %s, Login: %s}", e.lang, e.login)
}

func (e *ChartEditor) GetTranslation(
	_ context.Context,
	keyset, key string,
	params map[string]any,
) (string, error) {
	text, ok := e.translations.lookup(keyset, e.lang, key)
	if !ok {
		e.logger.Debug("missing translation", "keyset", keyset, "key", key, "lang", e.lang)
		return key, nil
	}
	return interpolate(text, params), nil
}

func (e *ChartEditor) GetSharedData(_ context.Context) (map[string]any, error) {
	if e.sharedData == nil {
		return map[string]any{}, nil
	}
	return maps.Clone(e.sharedData), nil
}

func (e *ChartEditor) GetLang() string {
	return e.lang
}

func (e *ChartEditor) GetLogin() string {
	return e.login
}

// AttachHandler registers a client-side handler and returns its config with an assigned id.
func (e *ChartEditor) AttachHandler(
	_ context.Context,
	config map[string]any,
) (map[string]any, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := withID(config, fmt.Sprintf("handler-%d", len(e.handlers)+1))
	e.handlers = append(e.handlers, out)
	return out, nil
}

// AttachFormatter registers a client-side formatter and returns its config with an assigned
// id.
func (e *ChartEditor) AttachFormatter(
	_ context.Context,
	config map[string]any,
) (map[string]any, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := withID(config, fmt.Sprintf("formatter-%d", len(e.formatters)+1))
	e.formatters = append(e.formatters, out)
	return out, nil
}

func withID(config map[string]any, id string) map[string]any {
	out := make(map[string]any, len(config)+1)
	maps.Copy(out, config)
	out["id"] = id
	return out
}

func (e *ChartEditor) ResolveRelative(
	_ context.Context,
	relative string,
	part bridge.IntervalPart,
) (*string, error) {
	t, ok := resolveDate(e.now().UTC(), relative)
	if !ok {
		return nil, nil
	}
	return formatDate(truncate(t, part)), nil
}

func (e *ChartEditor) ResolveInterval(_ context.Context, interval string) (*bridge.Interval, error) {
	iv, ok := resolveInterval(e.now().UTC(), interval)
	if !ok {
		return nil, nil
	}
	return iv, nil
}

func (e *ChartEditor) ResolveOperation(_ context.Context, operation string) (*string, error) {
	out, ok := resolveOperation(operation)
	if !ok {
		return nil, nil
	}
	return &out, nil
}

func (e *ChartEditor) SetError(_ context.Context, value any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.errors = append(e.errors, value)
	return nil
}

func (e *ChartEditor) SetChartsInsights(_ context.Context, insights any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.insights = append(e.insights, insights)
	return nil
}

func (e *ChartEditor) GetWidgetConfig(_ context.Context) (any, error) {
	return e.widgetConfig, nil
}

func (e *ChartEditor) GetActionParams(_ context.Context) (any, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.actionParams == nil {
		return nil, nil
	}
	return maps.Clone(e.actionParams), nil
}

// UpdateActionParams merges params into the current action params.
func (e *ChartEditor) UpdateActionParams(_ context.Context, params map[string]any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.actionParams == nil {
		e.actionParams = make(map[string]any, len(params))
	}
	return mergeInto(e.actionParams, params)
}

func (e *ChartEditor) GetLoadedData(_ context.Context) (any, error) {
	return e.loadedData, nil
}

func (e *ChartEditor) GetLoadedDataStats(_ context.Context) (any, error) {
	return e.loadedDataStats, nil
}

func (e *ChartEditor) SetDataSourceInfo(_ context.Context, dataSourceKey string, info any) error {
	if dataSourceKey == "" {
		return ErrInvalidKey
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dataSources[dataSourceKey] = info
	return nil
}

// UpdateConfig deep-merges fragment into the chart config; fragment values win.
func (e *ChartEditor) UpdateConfig(_ context.Context, fragment map[string]any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return mergeInto(e.config, fragment)
}

// UpdateHighchartsConfig deep-merges fragment into the Highcharts config.
func (e *ChartEditor) UpdateHighchartsConfig(_ context.Context, fragment map[string]any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return mergeInto(e.highcharts, fragment)
}

func (e *ChartEditor) SetSideHTML(_ context.Context, html string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sideHTML = html
	return nil
}

// SetSideMarkdown stores the markdown and its rendering, which replaces the side HTML.
func (e *ChartEditor) SetSideMarkdown(_ context.Context, markdown string) error {
	rendered, err := e.markdown.Render(markdown)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sideMarkdown = markdown
	e.sideHTML = rendered
	return nil
}

func (e *ChartEditor) SetExtra(_ context.Context, key string, value any, present bool) error {
	if key == "" {
		return ErrInvalidKey
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !present {
		delete(e.extras, key)
		return nil
	}
	e.extras[key] = value
	return nil
}

// SetExportFilename stores the filename as a lowercase slug.
func (e *ChartEditor) SetExportFilename(_ context.Context, filename string) error {
	s := slug.Make(filename)
	if s == "" {
		return ErrInvalidFilename
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.exportFilename = s
	return nil
}

func mergeInto(dst, src map[string]any) error {
	if len(src) == 0 {
		return nil
	}
	if err := mergo.Merge(&dst, src, mergo.WithOverride); err != nil {
		return fmt.Errorf("merging config: %w", err)
	}
	return nil
}
