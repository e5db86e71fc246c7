package hostapi

import (
	"fmt"
	"log/slog"
	"maps"
	"time"
)

// Option configures a ChartEditor.
type Option func(*ChartEditor) error

// WithLang sets the user language. Any BCP 47 tag is accepted; scripts see the base
// language.
func WithLang(lang string) Option {
	return func(e *ChartEditor) error {
		e.lang = normalizeLang(lang)
		return nil
	}
}

// WithLogin sets the user login.
func WithLogin(login string) Option {
	return func(e *ChartEditor) error {
		e.login = login
		return nil
	}
}

// WithTranslations sets the translation tables.
func WithTranslations(t Translations) Option {
	return func(e *ChartEditor) error {
		e.translations = t
		return nil
	}
}

// WithSharedData sets what getSharedData returns.
func WithSharedData(d map[string]any) Option {
	return func(e *ChartEditor) error {
		e.sharedData = d
		return nil
	}
}

// WithLoadedData sets the data getLoadedData returns, and the stats getLoadedDataStats
// returns.
func WithLoadedData(loaded, stats any) Option {
	return func(e *ChartEditor) error {
		e.loadedData = loaded
		e.loadedDataStats = stats
		return nil
	}
}

// WithWidgetConfig sets what getWidgetConfig returns.
func WithWidgetConfig(cfg any) Option {
	return func(e *ChartEditor) error {
		e.widgetConfig = cfg
		return nil
	}
}

// WithActionParams sets the initial action params.
func WithActionParams(params map[string]any) Option {
	return func(e *ChartEditor) error {
		e.actionParams = maps.Clone(params)
		return nil
	}
}

// WithClock replaces time.Now for date resolution.
func WithClock(now func() time.Time) Option {
	return func(e *ChartEditor) error {
		if now == nil {
			return fmt.Errorf("clock cannot be nil")
		}
		e.now = now
		return nil
	}
}

// WithMarkdown sets the renderer and cache used by setSideMarkdown.
func WithMarkdown(cache *MarkdownCache) Option {
	return func(e *ChartEditor) error {
		if cache == nil {
			return fmt.Errorf("markdown cache cannot be nil")
		}
		e.markdown = cache
		return nil
	}
}

// WithLogHandler sets the log handler.
func WithLogHandler(handler slog.Handler) Option {
	return func(e *ChartEditor) error {
		if handler == nil {
			return fmt.Errorf("log handler cannot be nil")
		}
		e.logHandler = handler
		return nil
	}
}
