package main

import (
	"fmt"

	"github.com/nvandessel/structsim/internal/logging"
	"github.com/nvandessel/structsim/internal/mcp"
	"github.com/spf13/cobra"
)

func newMCPServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp-server",
		Short: "Serve the experiments as MCP tools over stdio",
		Long: `Start a Model Context Protocol server on stdin/stdout.

Tools:
  structsim_performance  S1/S2/V7 comparison
  structsim_stress       adversarial stress suite and erosion sweep
  structsim_statespace   five-axis state sampling
  structsim_judgment     judgment versus execution experiment
  structsim_history      recorded runs

Logs go to stderr so they never mix with protocol traffic.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}

			server, err := mcp.NewServer(&mcp.Config{
				Name:     "structsim",
				Version:  version,
				Settings: settings,
				Logger:   logging.NewLogger(settings.Logging.Level, cmd.ErrOrStderr()),
			})
			if err != nil {
				return fmt.Errorf("failed to create mcp server: %w", err)
			}

			return server.Run(cmd.Context())
		},
	}
}
