package hostapi

import "maps"

// Snapshot is everything a script changed, in a form that serialises cleanly.
type Snapshot struct {
	Errors           []any            `json:"errors,omitempty"           yaml:"errors,omitempty"`
	Insights         []any            `json:"insights,omitempty"         yaml:"insights,omitempty"`
	Handlers         []map[string]any `json:"handlers,omitempty"         yaml:"handlers,omitempty"`
	Formatters       []map[string]any `json:"formatters,omitempty"       yaml:"formatters,omitempty"`
	ActionParams     map[string]any   `json:"actionParams,omitempty"     yaml:"actionParams,omitempty"`
	DataSources      map[string]any   `json:"dataSources,omitempty"      yaml:"dataSources,omitempty"`
	Config           map[string]any   `json:"config,omitempty"           yaml:"config,omitempty"`
	HighchartsConfig map[string]any   `json:"highchartsConfig,omitempty" yaml:"highchartsConfig,omitempty"`
	SideHTML         string           `json:"sideHtml,omitempty"         yaml:"sideHtml,omitempty"`
	SideMarkdown     string           `json:"sideMarkdown,omitempty"     yaml:"sideMarkdown,omitempty"`
	Extras           map[string]any   `json:"extras,omitempty"           yaml:"extras,omitempty"`
	ExportFilename   string           `json:"exportFilename,omitempty"   yaml:"exportFilename,omitempty"`
}

// Snapshot copies the recorded effects. Nested values are shared with the editor.
func (e *ChartEditor) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{
		Errors:           append([]any(nil), e.errors...),
		Insights:         append([]any(nil), e.insights...),
		Handlers:         append([]map[string]any(nil), e.handlers...),
		Formatters:       append([]map[string]any(nil), e.formatters...),
		ActionParams:     maps.Clone(e.actionParams),
		DataSources:      nonEmpty(e.dataSources),
		Config:           nonEmpty(e.config),
		HighchartsConfig: nonEmpty(e.highcharts),
		SideHTML:         e.sideHTML,
		SideMarkdown:     e.sideMarkdown,
		Extras:           nonEmpty(e.extras),
		ExportFilename:   e.exportFilename,
	}
}

func nonEmpty(m map[string]any) map[string]any {
	if len(m) == 0 {
		return nil
	}
	return maps.Clone(m)
}
