package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/kamiazya/scopes/internal/cli"
	"github.com/kamiazya/scopes/pkg/adapters/mcp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts the gateway as an MCP Server.
This allows AI agents (like Claude Desktop) to call the scopes tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("transport") {
			cfg.MCP.Transport, _ = cmd.Flags().GetString("transport")
		}
		if cmd.Flags().Changed("port") {
			cfg.MCP.Port, _ = cmd.Flags().GetInt("port")
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rt, err := cli.NewRuntime(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer rt.Close()

		srv := mcp.NewServer(rt.Gateway, mcp.WithLogger(logger))

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error { return rt.RunSweeper(ctx) })

		switch cfg.MCP.Transport {
		case "stdio":
			logger.Info("Starting MCP Server (Stdio)")
			// ServeStdio listens for signals itself and returns when stdin closes.
			g.Go(func() error {
				defer stop()
				return srv.ServeStdio()
			})
		case "sse":
			logger.Info("Starting MCP Server (SSE)", "port", cfg.MCP.Port)
			g.Go(func() error {
				defer stop()
				if err := srv.ServeSSE(ctx, cfg.MCP.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", cfg.MCP.Transport)
		}

		if err := g.Wait(); err != nil {
			return fmt.Errorf("MCP Server execution failed: %w", err)
		}
		logger.Info("MCP Server stopped gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8081, "Port to listen on (only for SSE)")
}
