package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robbyt/go-chartbridge"
	"github.com/robbyt/go-chartbridge/bridge/marshal"
	"github.com/robbyt/go-chartbridge/hostapi"
	"github.com/robbyt/go-chartbridge/internal/metrics"
	"github.com/robbyt/go-chartbridge/platform"
	"github.com/robbyt/go-chartbridge/platform/script/loader"
	"github.com/spf13/cobra"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

type runOutput struct {
	Kind     string           `json:"kind"     yaml:"kind"`
	Result   any              `json:"result"   yaml:"result"`
	Effects  hostapi.Snapshot `json:"effects"  yaml:"effects"`
	ExeID    string           `json:"exeId"    yaml:"exeId"`
	ExecTime string           `json:"execTime" yaml:"execTime"`
}

type runFlags struct {
	engine      string
	role        string
	fixturePath string
	format      string
	metrics     bool
}

func newRunCommand(a *app) *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run SCRIPT",
		Short: "Run one chart script and print its result and effects",
		Long:  "Run one chart script and print its result and effects. A SCRIPT of - reads the script from stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("engine") {
				a.cfg.Engine = f.engine
			}
			if cmd.Flags().Changed("role") {
				a.cfg.Role = f.role
			}
			if cmd.Flags().Changed("metrics") {
				a.cfg.Metrics.Enabled = f.metrics
			}
			return a.run(cmd, args[0], f)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&f.engine, "engine", "e", "", "engine: starlark, risor or extism")
	flags.StringVarP(&f.role, "role", "r", "", "role: Params, JavaScript, UI or Urls")
	flags.StringVarP(&f.fixturePath, "fixture", "f", "", "YAML fixture with user, translations, data and ctx")
	flags.StringVarP(&f.format, "output", "o", formatJSON, "output format: json or yaml")
	flags.BoolVar(&f.metrics, "metrics", false, "print bridge call metrics to stderr")
	return cmd
}

// scriptLoader reads "-" from stdin and anything else from disk.
func scriptLoader(cmd *cobra.Command, scriptPath string) (loader.Loader, error) {
	if scriptPath == "-" {
		return loader.NewFromReader(cmd.InOrStdin(), "stdin")
	}
	return loader.NewFromDisk(scriptPath)
}

func (a *app) run(cmd *cobra.Command, scriptPath string, f *runFlags) error {
	if f.format != formatJSON && f.format != formatYAML {
		return fmt.Errorf("unknown output format %q", f.format)
	}
	fixture, err := loadFixture(f.fixturePath)
	if err != nil {
		return err
	}
	ldr, err := scriptLoader(cmd, scriptPath)
	if err != nil {
		return err
	}

	opts := []chartbridge.Option{
		chartbridge.WithLogHandler(a.logHandler),
		chartbridge.WithStaticData(fixture.Ctx),
	}
	reg := prometheus.NewRegistry()
	if a.cfg.Metrics.Enabled {
		collector, err := metrics.New(reg)
		if err != nil {
			return err
		}
		opts = append(opts, chartbridge.WithObserver(collector))
	}

	evaluator, err := chartbridge.New(a.cfg, ldr, opts...)
	if err != nil {
		return err
	}
	if closer, ok := evaluator.(interface{ Close(context.Context) error }); ok {
		defer func() {
			if err := closer.Close(context.WithoutCancel(cmd.Context())); err != nil {
				slog.New(a.logHandler).Warn("failed to close evaluator", "error", err)
			}
		}()
	}

	markdown, err := hostapi.NewMarkdownCache(a.cfg.Markdown.CacheSize, nil)
	if err != nil {
		return err
	}
	api, editor, err := fixture.editor(a.logHandler, markdown)
	if err != nil {
		return err
	}

	resp, err := evaluator.Eval(cmd.Context(), api)
	if err != nil {
		return err
	}
	if a.cfg.Metrics.Enabled {
		if err := writeMetrics(a.stderr, reg); err != nil {
			return err
		}
	}
	return writeOutput(cmd.OutOrStdout(), f.format, newRunOutput(resp, editor.Snapshot()))
}

func newRunOutput(resp platform.EvaluatorResponse, snapshot hostapi.Snapshot) runOutput {
	out := runOutput{
		Effects:  snapshot,
		ExeID:    resp.GetScriptExeID(),
		ExecTime: resp.GetExecTime(),
	}
	tagged := resp.Tagged()
	out.Kind = tagged.Kind.String()
	switch tagged.Kind {
	case marshal.KindFunction:
		out.Result = map[string]any{
			"fn":   tagged.Function.Source,
			"args": tagged.Function.Args,
			"libs": tagged.Function.Libs,
		}
	case marshal.KindHTML:
		out.Result = tagged.HTML
	default:
		out.Result = tagged.Value
	}
	return out
}

func writeOutput(w io.Writer, format string, out runOutput) error {
	if format == formatYAML {
		b, err := yaml.Marshal(out)
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// writeMetrics prints one line per series: name{labels} value. Histograms print their
// sample count.
func writeMetrics(w io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	var lines []string
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", l.GetName(), l.GetValue()))
			}
			value := m.GetCounter().GetValue()
			if h := m.GetHistogram(); h != nil {
				value = float64(h.GetSampleCount())
			}
			lines = append(lines, fmt.Sprintf("%s{%s} %g", mf.GetName(), strings.Join(labels, ","), value))
		}
	}
	sort.Strings(lines)
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
