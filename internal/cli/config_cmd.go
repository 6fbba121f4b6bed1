package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tOgg1/chatfeed/internal/config"
)

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the config file",
	}
	cmd.AddCommand(newConfigInitCmd(opts), newConfigShowCmd(opts))
	return cmd
}

func newConfigInitCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Args:  cobra.NoArgs,
		// The file being created may not exist or validate yet.
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			force, _ := cmd.Flags().GetBool("force")
			path := opts.configFile
			if path == "" {
				path = config.DefaultConfigPath()
			}
			if err := config.WriteFile(path, config.DefaultConfig(), force); err != nil {
				return Exitf(ExitCodeFailure, "%w", err)
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return err
		},
	}
	cmd.Flags().Bool("force", false, "overwrite an existing file")
	return cmd
}

func newConfigShowCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reveal, _ := cmd.Flags().GetBool("show-secrets")
			file, _ := cmd.Flags().GetString("file")

			cfg, used := opts.cfg, opts.loader.ConfigFileUsed()
			if file != "" {
				fromFile, err := config.ReadFile(file)
				if err != nil {
					return Exitf(ExitCodeFailure, "%w", err)
				}
				cfg, used = fromFile, file
			}

			data, err := config.Marshal(cfg, !reveal)
			if err != nil {
				return Exitf(ExitCodeFailure, "%w", err)
			}
			out := cmd.OutOrStdout()
			if used != "" {
				fmt.Fprintf(out, "# loaded from %s\n", used)
			}
			_, err = out.Write(data)
			return err
		},
	}
	cmd.Flags().Bool("show-secrets", false, "print the auth key instead of masking it")
	cmd.Flags().String("file", "", "show only what this file sets, over the defaults, ignoring env and flags")
	return cmd
}
