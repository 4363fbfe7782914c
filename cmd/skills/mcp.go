package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wilhg/actionskills/pkg/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol server over stdio",
	Long: `Exposes every skill as an MCP tool. Logs go to stderr; stdout carries the protocol.
Amadeus credentials come from configuration (SKILLS_AMADEUS_CLIENT_ID / _SECRET).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer func() { _ = a.close(context.Background()) }()

		group, _ := cmd.Flags().GetString("action-group")
		srv, err := mcpserver.New(a.dispatcher,
			mcpserver.WithImplementation("actionskills", version),
			mcpserver.WithActionGroup(group))
		if err != nil {
			return err
		}
		a.log.Info("mcp server running on stdio")
		return srv.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("action-group", "mcp", "action group recorded for MCP invocations")
}
