package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/robbyt/go-chartbridge/bridge"
	"github.com/robbyt/go-chartbridge/hostapi"
)

// Fixture describes the chart a script runs against: the user, translations, loaded data
// and the script's ctx input.
type Fixture struct {
	Lang         string               `yaml:"lang"`
	Login        string               `yaml:"login"`
	Now          time.Time            `yaml:"now"`
	Translations hostapi.Translations `yaml:"translations"`
	SharedData   map[string]any       `yaml:"sharedData"`
	LoadedData   any                  `yaml:"loadedData"`
	LoadedStats  any                  `yaml:"loadedDataStats"`
	WidgetConfig any                  `yaml:"widgetConfig"`
	ActionParams map[string]any       `yaml:"actionParams"`
	Secrets      map[string]string    `yaml:"secrets"`
	Ctx          map[string]any       `yaml:"ctx"`
}

// loadFixture reads a YAML fixture. An empty path yields the zero fixture.
func loadFixture(path string) (*Fixture, error) {
	f := &Fixture{}
	if path == "" {
		return f, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	if err := yaml.Unmarshal(raw, f); err != nil {
		return nil, fmt.Errorf("parsing fixture %s: %w", path, err)
	}
	return f, nil
}

// editor builds the Host Api Adapter for one evaluation. The returned ChartEditor is the
// same adapter, for reading the snapshot afterwards.
func (f *Fixture) editor(
	handler slog.Handler,
	markdown *hostapi.MarkdownCache,
) (bridge.HostAPI, *hostapi.ChartEditor, error) {
	opts := []hostapi.Option{
		hostapi.WithLogHandler(handler),
		hostapi.WithMarkdown(markdown),
		hostapi.WithLogin(f.Login),
		hostapi.WithTranslations(f.Translations),
		hostapi.WithSharedData(f.SharedData),
		hostapi.WithLoadedData(f.LoadedData, f.LoadedStats),
		hostapi.WithWidgetConfig(f.WidgetConfig),
		hostapi.WithActionParams(f.ActionParams),
	}
	if f.Lang != "" {
		opts = append(opts, hostapi.WithLang(f.Lang))
	}
	if !f.Now.IsZero() {
		now := f.Now
		opts = append(opts, hostapi.WithClock(func() time.Time { return now }))
	}
	e, err := hostapi.New(opts...)
	if err != nil {
		return nil, nil, err
	}
	if f.Secrets != nil {
		return hostapi.WithSecrets(e, f.Secrets), e, nil
	}
	return e, e, nil
}
