package cli

import (
	"bytes"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/tOgg1/chatfeed/internal/feed"
	"github.com/tOgg1/chatfeed/internal/feedsync"
	"github.com/tOgg1/chatfeed/internal/markup"
	"github.com/tOgg1/chatfeed/internal/search"
)

// warningEvery limits how often a failing feed is reported on stderr.
const warningEvery = 30 * time.Second

type tailOptions struct {
	once   bool
	raw    bool
	query  string
	stamps bool
}

func newTailCmd(opts *rootOptions) *cobra.Command {
	tail := &tailOptions{}
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Print the feed and reprint it whenever it changes",
		Long: "Poll the channel like the chat view does and print the feed to stdout each time\n" +
			"a fetched snapshot differs from the previous one.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTail(cmd, opts, tail)
		},
	}
	cmd.Flags().BoolVar(&tail.once, "once", false, "print the current feed once and exit")
	cmd.Flags().BoolVar(&tail.raw, "raw", false, "print content as stored, markup delimiters included")
	cmd.Flags().StringVar(&tail.query, "search", "", "only print messages containing this text")
	cmd.Flags().BoolVar(&tail.stamps, "timestamps", false, "prefix each message with its timestamp")
	return cmd
}

func runTail(cmd *cobra.Command, opts *rootOptions, tail *tailOptions) error {
	closeLog, err := opts.initLogging(cmd, !tail.once)
	if err != nil {
		return err
	}
	defer closeLog()

	a, err := newApp(opts.cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if tail.once {
		snapshot, err := a.client.ListMessages(ctx)
		if err != nil {
			return Exitf(ExitCodeFailure, "%w", err)
		}
		a.store.Reconcile(snapshot)
		return tail.print(out, a.store.Snapshot())
	}

	changed := make(chan struct{}, 1)
	if err := a.store.Subscribe("tail", func(feedsync.Update) {
		select {
		case changed <- struct{}{}:
		default:
		}
	}); err != nil {
		return err
	}

	limiter := rate.NewLimiter(rate.Every(warningEvery), 1)
	var errMu sync.Mutex
	warn := func(err error) {
		if !limiter.Allow() {
			return
		}
		errMu.Lock()
		defer errMu.Unlock()
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
	}

	scheduler := a.scheduler(feedsync.WithWarningHandler(warn))
	if err := scheduler.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = scheduler.Stop() }()

	var last []feed.Message
	printed := false
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changed:
			snapshot := a.store.Snapshot()
			if printed && sameFeed(last, snapshot) {
				continue
			}
			if printed {
				fmt.Fprintln(out, "---")
			}
			if err := tail.print(out, snapshot); err != nil {
				return err
			}
			last = snapshot
			printed = true
		}
	}
}

func (t *tailOptions) print(w io.Writer, messages []feed.Message) error {
	visible := search.Filter(messages, t.query)
	if len(visible) == 0 {
		_, err := fmt.Fprintln(w, "(no messages)")
		return err
	}
	for _, msg := range visible {
		content := msg.Content
		if !t.raw {
			content = markup.Text(markup.Parse(content))
		}
		line := msg.Sender + ": " + content
		if t.stamps {
			if ts := msg.Time(); !ts.IsZero() {
				line = ts.Local().Format(time.DateTime) + " " + line
			}
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func sameFeed(a, b []feed.Message) bool {
	return slices.EqualFunc(a, b, func(x, y feed.Message) bool {
		return x.Sender == y.Sender &&
			x.Content == y.Content &&
			x.Timestamp == y.Timestamp &&
			bytes.Equal(x.Extra, y.Extra)
	})
}
