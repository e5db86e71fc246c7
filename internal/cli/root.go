// Package cli implements the chartbridge command line.
package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/robbyt/go-chartbridge/config"
	"github.com/spf13/cobra"
)

// app is the state shared by every command of one invocation.
type app struct {
	stdout  io.Writer
	stderr  io.Writer
	environ func() []string

	configPath string
	logLevel   string
	logJSON    bool

	cfg        *config.Config
	logHandler slog.Handler
}

// NewRootCommand builds the command tree. environ replaces os.Environ when not nil.
func NewRootCommand(stdout, stderr io.Writer, environ func() []string) *cobra.Command {
	if environ == nil {
		environ = os.Environ
	}
	a := &app{stdout: stdout, stderr: stderr, environ: environ}

	root := &cobra.Command{
		Use:           "chartbridge",
		Short:         "Run chart scripts against a sandboxed ChartEditor",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "YAML configuration file")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.BoolVar(&a.logJSON, "log-json", false, "log as JSON")

	root.AddCommand(newRunCommand(a), newCapabilitiesCommand(a))
	return root
}

// setup loads the configuration, lets flags override it and builds the log handler.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(config.WithFile(a.configPath), config.WithEnviron(a.environ))
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if cmd.Flags().Changed("log-json") {
		cfg.Log.JSON = a.logJSON
	}

	handler, err := newLogHandler(a.stderr, cfg.Log.Level, cfg.Log.JSON)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logHandler = handler
	return nil
}

// Execute runs the command line with the process arguments and streams.
func Execute() error {
	return NewRootCommand(os.Stdout, os.Stderr, nil).Execute()
}
