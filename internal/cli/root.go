// Package cli implements the chatfeed command line.
package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tOgg1/chatfeed/internal/config"
	"github.com/tOgg1/chatfeed/internal/logging"
)

// Execute runs the root command until it returns or the process is
// interrupted.
func Execute(version string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return newRootCmd(version).ExecuteContext(ctx)
}

// rootOptions carries what the persistent flags resolve to.
type rootOptions struct {
	configFile string
	envFile    string

	loader *config.Loader
	cfg    *config.Config
}

func newRootCmd(version string) *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "chatfeed",
		Short: "Terminal client for a shared chat channel",
		Long: "chatfeed polls a chat channel, shows the latest messages and lets you post to it.\n" +
			"Run without a subcommand to open the interactive view.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUI(cmd, opts)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "config file (default $XDG_CONFIG_HOME/chatfeed/config.yaml)")
	flags.StringVar(&opts.envFile, "env-file", config.DefaultEnvFile, "dotenv file loaded when present")
	flags.String("base-url", "", "channel service base URL")
	flags.String("auth-key", "", "Authorization header value sent with messages")
	flags.Duration("poll-interval", 0, "feed refresh interval")
	flags.Duration("timeout", 0, "per-request timeout (0 disables)")
	flags.String("db", "", "session database path")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (console, json)")
	flags.String("log-file", "", "log file path")
	flags.String("theme", "", "color theme (default, high-contrast)")
	flags.String("metrics-addr", "", "serve Prometheus metrics on this address")

	cmd.AddCommand(
		newUICmd(opts),
		newTailCmd(opts),
		newSendCmd(opts),
		newConfigCmd(opts),
		newVersionCmd(version),
	)

	return cmd
}

// load resolves configuration for the command being run.
func (o *rootOptions) load(cmd *cobra.Command) error {
	loader := config.NewLoader()
	if o.configFile != "" {
		loader.SetConfigFile(o.configFile)
	}
	loader.SetEnvFile(o.envFile)
	loader.BindFlags(cmd.Flags())

	cfg, err := loader.Load()
	if err != nil {
		return Exitf(ExitCodeFailure, "%w", err)
	}
	o.loader = loader
	o.cfg = cfg
	return nil
}

// initLogging points the global logger at the configured file. Commands that
// own the terminal always log to a file; the others fall back to stderr.
func (o *rootOptions) initLogging(cmd *cobra.Command, ownsTerminal bool) (func(), error) {
	cfg := o.cfg
	var out io.Writer = cmd.ErrOrStderr()
	closeFn := func() {}

	if cfg.Logging.File != "" || ownsTerminal {
		f, err := logging.OpenFile(cfg.LogFilePath())
		if err != nil {
			return nil, Exitf(ExitCodeFailure, "%w", err)
		}
		out = f
		closeFn = func() { _ = f.Close() }
	}

	logging.Init(logging.Config{
		Level:        cfg.Logging.Level,
		Format:       cfg.Logging.Format,
		Output:       out,
		EnableCaller: cfg.Logging.EnableCaller,
	})
	return closeFn, nil
}

func newVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the chatfeed version",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := io.WriteString(cmd.OutOrStdout(), "chatfeed "+version+"\n")
			return err
		},
	}
}
