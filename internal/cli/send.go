package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newSendCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send <message>",
		Short: "Post one message to the channel",
		Long: "Post one message and exit. The sender is --as, or the name saved by the chat view.\n" +
			"Use **word** for bold and *word* for italics.",
		Example: `  chatfeed send --as bob "hi **team**"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSend(cmd, opts, strings.Join(args, " "))
		},
	}
	cmd.Flags().String("as", "", "send under this name instead of the saved one")
	return cmd
}

func runSend(cmd *cobra.Command, opts *rootOptions, text string) error {
	closeLog, err := opts.initLogging(cmd, false)
	if err != nil {
		return err
	}
	defer closeLog()

	a, err := newApp(opts.cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	username, _ := cmd.Flags().GetString("as")
	if !cmd.Flags().Changed("as") {
		sess, closeSession, err := a.openSession(ctx)
		if err != nil {
			return err
		}
		username = sess.Username()
		closeSession()
	}

	msg, err := a.pipeline(nil).Send(ctx, text, username)
	if err != nil {
		return sendFailure(err)
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "sent as %s at %s\n", msg.Sender, msg.Timestamp)
	return err
}
