package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/adpilothq/adpilot-cli/internal/api"
	"github.com/adpilothq/adpilot-cli/internal/auth"
	"github.com/adpilothq/adpilot-cli/internal/mcp"
	"github.com/adpilothq/adpilot-cli/internal/workingctx"
)

func NewMcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "MCP (Model Context Protocol) server management",
		Subcommands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Start MCP server (stdio)",
				Action: func(c *cli.Context) error {
					if !auth.HasToken() {
						return fmt.Errorf("no API token configured - run 'adpilot setup token' first")
					}
					store, err := workingctx.NewFileStore()
					if err != nil {
						return err
					}
					return mcp.ServeStdio(api.NewClient(), store)
				},
			},
			{
				Name:  "config",
				Usage: "Print MCP config examples for clients",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "client",
						Aliases: []string{"c"},
						Usage:   "target client (generic|codex)",
						Value:   "generic",
					},
				},
				Action: func(c *cli.Context) error {
					switch strings.ToLower(c.String("client")) {
					case "codex":
						printCodexConfig()
					default:
						printGenericConfig()
					}
					return nil
				},
			},
			{
				Name:  "tools",
				Usage: "List available MCP tools",
				Action: func(c *cli.Context) error {
					b, _ := json.MarshalIndent(mcp.ToolDefinitions(), "", "  ")
					os.Stdout.Write(b)
					os.Stdout.Write([]byte("\n"))
					return nil
				},
			},
		},
	}
}

func printGenericConfig() {
	cfg := map[string]interface{}{
		"mcpServers": map[string]interface{}{
			"adpilot": map[string]interface{}{
				"command": "adpilot",
				"args":    []string{"mcp", "serve"},
			},
		},
	}
	b, _ := json.MarshalIndent(cfg, "", "  ")
	fmt.Println(string(b))
}

func printCodexConfig() {
	fmt.Println("# Add the following to ~/.codex/config.toml (merge with existing settings)")
	fmt.Println("[mcp_servers.adpilot]")
	fmt.Println("command = \"adpilot\"")
	fmt.Println("args = [\"mcp\", \"serve\"]")
	fmt.Println("enabled = true")
}
