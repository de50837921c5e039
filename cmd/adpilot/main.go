package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/adpilothq/adpilot-cli/internal/cli/commands"
)

// Version will be set during build with ldflags
var Version = "1.4.0"

func main() {
	app := &cli.App{
		Name:    "adpilot",
		Usage:   "Amazon Advertising data CLI and MCP server",
		Version: Version,
		Commands: []*cli.Command{
			commands.NewSetupCommand(),
			commands.NewProfileCommand(),
			commands.NewCampaignCommand(),
			commands.NewReportCommand(),
			commands.NewMcpCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
