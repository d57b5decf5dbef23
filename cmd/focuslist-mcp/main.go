package main

import (
	"context"
	"flag"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	mcpadapter "focuslist/internal/adapters/mcp"
	"focuslist/internal/app"
	"focuslist/internal/config"
)

func main() {
	config.LoadEnv()
	vaultFlag := flag.String("vault", config.VaultPath(), "path to the vault")
	flag.Parse()

	a, err := app.Open(config.ExpandHome(*vaultFlag), nil)
	if err != nil {
		log.Fatalf("focuslist-mcp: %v", err)
	}
	defer a.Close()

	// Writes from an assistant should reach other devices too
	if err := a.StartSync(context.Background()); err != nil {
		log.Printf("focuslist-mcp: sync unavailable: %v", err)
	}

	mcpServer := server.NewMCPServer(
		"focuslist-mcp",
		"0.1.0",
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

	mcpadapter.RegisterReadTools(mcpServer, a.Repo)
	mcpadapter.RegisterWriteTools(mcpServer, a.Repo, a.Settings, a.Scanner.ReflectCompletion)

	if err := server.ServeStdio(mcpServer); err != nil {
		log.Fatalf("focuslist-mcp: %v", err)
	}
}
