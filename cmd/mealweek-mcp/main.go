package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	mcpadapter "mealweek/internal/adapters/mcp"
	"mealweek/internal/config"
	"mealweek/internal/core"
)

const version = "0.1.0"

func main() {
	configFlag := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("mealweek-mcp: %v", err)
	}
	level, _ := cfg.SlogLevel()
	// stdout carries the MCP protocol; logs go to stderr.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx := context.Background()
	store, err := core.OpenPersistentStore(ctx, cfg.Storage, core.NewDefaultRulesEngine())
	if err != nil {
		log.Fatalf("mealweek-mcp: open %s store: %v", cfg.Storage.Driver, err)
	}
	defer func() { _ = core.CloseStore(store) }()
	svc := core.NewService(store, core.WithLogger(logger))

	mcpServer := server.NewMCPServer(
		"mealweek-mcp",
		version,
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(
		mcp.NewTool("ping",
			mcp.WithDescription("Health check, returns pong"),
		),
		func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("pong"), nil
		},
	)

	mcpadapter.RegisterReadTools(mcpServer, svc)
	mcpadapter.RegisterWriteTools(mcpServer, svc)

	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Error("mcp server stopped", "error", err)
		os.Exit(1)
	}
}
