// Package cli defines the lazya2l command tree.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/marjoballabani/lazya2l/pkg/app"
	"github.com/marjoballabani/lazya2l/pkg/config"
)

// New returns the root command. Without a subcommand it runs the TUI.
func New(ctx context.Context, info *app.BuildInfo) *cobra.Command {
	var remote string

	cmd := &cobra.Command{
		Use:           "lazya2l [FILE]",
		Short:         "Browse and edit A2L calibration files in the terminal.",
		Version:       info.Version,
		SilenceErrors: true,
		Args:          cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			a, err := app.NewApp(ctx, info)
			if err != nil {
				return err
			}
			defer a.Close()

			opts := app.Options{Remote: remote}
			if len(args) == 1 {
				opts.File = args[0]
			}
			return a.Run(opts)
		},
	}
	cmd.Flags().StringVar(&remote, "remote", "", "ws:// URL of a running `lazya2l serve` backend")

	AddCommands(ctx, info, cmd)
	return cmd
}

// AddCommands adds the subcommands to topLevel.
func AddCommands(ctx context.Context, info *app.BuildInfo, topLevel *cobra.Command) {
	addServe(ctx, info, topLevel)
	addTree(ctx, topLevel)
	addRecent(topLevel)
	addSymbols(topLevel)
}

func addServe(ctx context.Context, info *app.BuildInfo, topLevel *cobra.Command) {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the calibration store as a websocket backend.",
		Example: `
lazya2l serve --addr 127.0.0.1:7171
lazya2l --remote ws://127.0.0.1:7171/ws cal.a2l
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			a, err := app.NewApp(ctx, info)
			if err != nil {
				return err
			}
			defer a.Close()
			if addr == "" {
				addr = a.Config().Server.Addr
			}
			cmd.PrintErrf("serving on %s (ws path /ws, metrics /metrics)\n", addr)
			return a.Serve(addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config server.addr)")

	topLevel.AddCommand(cmd)
}

// loadConfig is replaced in tests.
var loadConfig = config.LoadConfig
