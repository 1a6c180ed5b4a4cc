package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sidirok-cf-server/internal/setup"
)

func newSetupCmd() *cobra.Command {
	var clientConfig string

	resolvePath := func() (string, error) {
		if clientConfig != "" {
			return clientConfig, nil
		}
		return setup.DefaultConfigPath()
	}

	setupCmd := &cobra.Command{
		Use:   "setup",
		Short: "Register the lite MCP server with a desktop MCP client",
	}
	setupCmd.PersistentFlags().StringVar(&clientConfig, "client-config", "", "client config file (default: platform location)")

	var opts setup.Options
	registerCmd := &cobra.Command{
		Use:   "register",
		Short: "Add or replace the server entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolvePath()
			if err != nil {
				return err
			}
			entry, err := setup.Register(path, opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Registered %q in %s\n", setup.ServerKey, path)
			fmt.Fprintf(out, "  command: %s\n", entry.Command)
			if dir := entry.Env[setup.DataDirEnv]; dir != "" {
				fmt.Fprintf(out, "  data dir: %s\n", dir)
			}
			fmt.Fprintln(out, "Restart the client to pick up the change.")
			return nil
		},
	}
	registerCmd.Flags().StringVar(&opts.BinaryPath, "binary", "", "path to "+setup.BinaryName+" (default: search PATH)")
	registerCmd.Flags().StringVar(&opts.DataDir, "data-dir", "", "history and export directory passed to the server")

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show the current registration",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolvePath()
			if err != nil {
				return err
			}
			status, err := setup.GetStatus(path)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config:     %s\n", status.ConfigPath)
			fmt.Fprintf(out, "Registered: %t\n", status.Registered)
			if status.Registered {
				fmt.Fprintf(out, "Binary:     %s (found: %t)\n", status.BinaryPath, status.BinaryExists)
			}
			fmt.Fprintf(out, "Data dir:   %s (history: %t)\n", status.DataDir, status.HistoryDB)
			for _, issue := range status.Issues {
				fmt.Fprintf(out, "  ! %s\n", issue)
			}
			return nil
		},
	}

	unregisterCmd := &cobra.Command{
		Use:   "unregister",
		Short: "Remove the server entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolvePath()
			if err != nil {
				return err
			}
			removed, err := setup.Unregister(path)
			if err != nil {
				return err
			}
			if removed {
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %q from %s\n", setup.ServerKey, path)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%q was not registered in %s\n", setup.ServerKey, path)
			}
			return nil
		},
	}

	setupCmd.AddCommand(registerCmd, statusCmd, unregisterCmd)
	return setupCmd
}
