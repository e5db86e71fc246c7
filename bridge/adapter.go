package bridge

import "context"

// IntervalPart selects which end of an interval a relative date expression resolves to.
type IntervalPart string

const (
	IntervalPartNone  IntervalPart = ""
	IntervalPartStart IntervalPart = "start"
	IntervalPartEnd   IntervalPart = "end"
)

// Interval is a resolved date range.
type Interval struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// HostAPI is the trusted object a guest context calls into. Every role requires it.
//
// Methods returning a pointer return nil to mean "could not resolve"; the guest receives
// null. A returned error is a host failure and surfaces in the guest as a failed call.
type HostAPI interface {
	GetTranslation(ctx context.Context, keyset, key string, params map[string]any) (string, error)
	GetSharedData(ctx context.Context) (map[string]any, error)

	// GetLang and GetLogin are read once when the bridge is built.
	GetLang() string
	GetLogin() string

	AttachHandler(ctx context.Context, config map[string]any) (map[string]any, error)
	AttachFormatter(ctx context.Context, config map[string]any) (map[string]any, error)

	ResolveRelative(ctx context.Context, relative string, part IntervalPart) (*string, error)
	ResolveInterval(ctx context.Context, interval string) (*Interval, error)
	ResolveOperation(ctx context.Context, operation string) (*string, error)

	SetError(ctx context.Context, value any) error
	SetChartsInsights(ctx context.Context, insights any) error
}

// SecretsProvider is optional. Without it the guest has no getSecrets function at all.
type SecretsProvider interface {
	GetSecrets(ctx context.Context) (map[string]string, error)
}

// WidgetConfigProvider is optional.
type WidgetConfigProvider interface {
	GetWidgetConfig(ctx context.Context) (any, error)
}

// ActionParamsProvider is optional.
type ActionParamsProvider interface {
	GetActionParams(ctx context.Context) (any, error)
}

// DataAccessor is required by roles granted the data tier.
type DataAccessor interface {
	UpdateActionParams(ctx context.Context, params map[string]any) error
	GetLoadedData(ctx context.Context) (any, error)
	GetLoadedDataStats(ctx context.Context) (any, error)
	SetDataSourceInfo(ctx context.Context, dataSourceKey string, info any) error
}

// ConfigMutator is required by roles granted the config tier.
type ConfigMutator interface {
	UpdateConfig(ctx context.Context, fragment map[string]any) error
	UpdateHighchartsConfig(ctx context.Context, fragment map[string]any) error
	SetSideHTML(ctx context.Context, html string) error
	SetSideMarkdown(ctx context.Context, markdown string) error

	// SetExtra stores value under key. present is false when the guest passed no value at
	// all, which deletes the key; a JSON null arrives as (nil, true).
	SetExtra(ctx context.Context, key string, value any, present bool) error
	SetExportFilename(ctx context.Context, filename string) error
}
