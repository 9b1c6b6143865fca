// -- cmd/serve.go --
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/pagehound/internal/browser"
	"github.com/xkilldash9x/pagehound/internal/llmclient"
	"github.com/xkilldash9x/pagehound/internal/observability"
	"github.com/xkilldash9x/pagehound/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the automation API, extraction tool server, and metrics endpoint.",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := observability.GetLogger()
		metrics := observability.NewMetrics()

		// The driver outlives individual requests; its lifecycle is bound to
		// the process, not to the command context.
		startupCtx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
		defer cancel()

		driver, err := browser.NewDriver(startupCtx, logger, cfg.Browser, cfg.Network)
		if err != nil {
			return fmt.Errorf("failed to launch browser: %w", err)
		}

		registry := browser.NewRegistry(driver, logger, metrics)

		generator, err := llmclient.NewGenerator(cfg.LLM, logger, metrics)
		if err != nil {
			return fmt.Errorf("failed to initialize LLM backend: %w", err)
		}
		planner := llmclient.NewPlanner(generator, logger)

		chat := llmclient.NewChatClient(cfg.LLM, logger, metrics)
		extractor := llmclient.NewExtractor(chat, cfg.MCP.Endpoint, cfg.Automation.MaxLLMTurns, logger, metrics)

		logger.Info("Service wired",
			zap.String("listen", cfg.Server.Addr()),
			zap.String("llm_provider", cfg.LLM.Provider),
			zap.String("mcp_endpoint", cfg.MCP.Endpoint),
		)

		srv := server.New(cfg, logger, metrics, driver, registry, planner, extractor)
		return srv.Run()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
