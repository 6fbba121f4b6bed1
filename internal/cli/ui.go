package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tOgg1/chatfeed/internal/chattui"
	"github.com/tOgg1/chatfeed/internal/feedsync"
)

// isInteractive is swapped in tests.
var isInteractive = hasTTY

func newUICmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Open the interactive chat view",
		Long:  "Open the chat view: set a username, search the feed and post messages.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUI(cmd, opts)
		},
	}
}

func runUI(cmd *cobra.Command, opts *rootOptions) error {
	if !isInteractive() {
		return Exitf(ExitCodeFailure, "the chat view needs an interactive terminal; use `chatfeed tail` or `chatfeed send` instead")
	}

	closeLog, err := opts.initLogging(cmd, true)
	if err != nil {
		return err
	}
	defer closeLog()

	a, err := newApp(opts.cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	sess, closeSession, err := a.openSession(ctx)
	if err != nil {
		return err
	}
	defer closeSession()

	events := chattui.NewEvents()
	if err := a.store.Subscribe("chattui", events.Updated); err != nil {
		return err
	}
	scheduler := a.scheduler(
		feedsync.WithWarningHandler(events.Warning),
		feedsync.WithSyncHandler(events.Synced),
	)

	metricsCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	a.serveMetrics(metricsCtx)

	if err := scheduler.Start(ctx); err != nil {
		return err
	}
	// Requests still in flight finish on their own; exit does not wait.
	defer func() { _ = scheduler.Stop() }()

	a.logger.Info().Str("base_url", a.client.BaseURL()).Msg("chat view starting")
	return chattui.Run(ctx, chattui.Config{
		Theme:          opts.cfg.TUI.Theme,
		ShowTimestamps: opts.cfg.TUI.ShowTimestamps,
		BaseURL:        a.client.BaseURL(),
	}, chattui.Deps{
		Store:   a.store,
		Sender:  a.pipeline(scheduler),
		Session: sess,
		Events:  events,
	})
}

func hasTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}
