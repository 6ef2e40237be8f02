package main

import (
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-press"
)

type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
	stdin      io.Reader
	stdout     io.Writer
}

func newRootCmd(stdin io.Reader, stdout io.Writer) *cobra.Command {
	opts := &rootOptions{stdin: stdin, stdout: stdout}
	cmd := &cobra.Command{
		Use:           "press",
		Short:         "Static site generator with an update history",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "YAML config file (defaults apply when omitted)")
	flags.StringVar(&opts.logLevel, "log-level", "", "override logging.level")
	flags.StringVar(&opts.logFormat, "log-format", "", "override logging.format (gologger provider)")

	cmd.AddCommand(buildCmd(opts))
	cmd.AddCommand(devCmd(opts))
	cmd.AddCommand(historyCmd(opts))
	cmd.AddCommand(playlistCmd(opts))
	return cmd
}

func (o *rootOptions) config() (press.Config, error) {
	cfg := press.DefaultConfig()
	if path := strings.TrimSpace(o.configPath); path != "" {
		loaded, err := press.LoadConfig(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Logging.Format = o.logFormat
	}
	return cfg, nil
}

// module builds the runtime and subscribes its handlers to the command
// dispatcher for the lifetime of the command. Callers must run stop.
func (o *rootOptions) module(cmd *cobra.Command) (module *press.Module, stop func(), err error) {
	cfg, err := o.config()
	if err != nil {
		return nil, nil, err
	}
	module, err = press.New(cfg, press.WithStdin(o.stdin), press.WithLogWriter(cmd.ErrOrStderr()))
	if err != nil {
		return nil, nil, err
	}
	if stop, err = module.Listen(); err != nil {
		return nil, nil, err
	}
	return module, stop, nil
}
