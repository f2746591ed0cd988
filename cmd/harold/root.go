package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"harold/internal/version"
	"harold/pkg/settings"
	"harold/pkg/telemetry"
)

// newRootCmd creates the harold command. With no flags it runs the daemon;
// --diagnostics exercises the notification paths and exits.
func newRootCmd() *cobra.Command {
	var (
		diagnostics bool
		delay       int
	)

	cmd := &cobra.Command{
		Use:   "harold",
		Short: "Agent notification and reply routing daemon",
		Long: `harold couples AI coding agents in tmux panes to iMessage:
it notifies you when an agent turn completes and routes your replies back
to the right agent session.

Environment:
  HAROLD_CONFIG_DIR   Path to config directory (default: config/ next to the binary)
  HAROLD_ENV          Config environment overlay (default: local)
  HAROLD__*           Override any config key, e.g. HAROLD__GRPC__PORT=50061`,
		Version:       fmt.Sprintf("harold %s", version.String()),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := settings.Load()
			if err != nil {
				return &exitError{code: 1, err: err}
			}
			telemetry.Init(cfg.Log.Level)

			if errs := cfg.Validate(); len(errs) > 0 {
				for _, e := range errs {
					slog.Error(e.Error())
				}
				return &exitError{code: 1, err: errors.New("invalid configuration")}
			}

			if diagnostics {
				return runDiagnostics(cmd.Context(), cfg, delay)
			}
			return runDaemon(cfg)
		},
	}

	cmd.SetVersionTemplate("{{.Version}}\n")
	cmd.Flags().BoolVar(&diagnostics, "diagnostics", false, "print config and exercise notification paths, then exit")
	cmd.Flags().IntVar(&delay, "delay", 0, "seconds to sleep before diagnostics (--delay=N), to allow locking the screen")
	cmd.Flags().Lookup("delay").NoOptDefVal = "10"

	return cmd
}
