package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/adpilothq/adpilot-cli/internal/mockads"
)

var (
	flagAddr           string
	flagToken          string
	flagImportDuration time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "adsmockd",
	Short: "Local stand-in for the AdPilot backend",
	Long: `adsmockd serves the AdPilot backend API from memory with seeded demo
profiles. Activated profiles walk through the real import lifecycle
(pending, retrieving, importing, ready) on a configurable clock, so the
adpilot CLI and MCP server can be exercised without a live account.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := mockads.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if cmd.Flags().Changed("addr") {
			cfg.Addr = flagAddr
		}
		if cmd.Flags().Changed("token") {
			cfg.Token = flagToken
		}
		if cmd.Flags().Changed("import-duration") {
			cfg.ImportDuration = flagImportDuration
		}

		srv := mockads.New(cfg)
		log.Printf("adsmockd listening on %s (import duration %s)", cfg.Addr, cfg.ImportDuration)
		return srv.Router().Run(cfg.Addr)
	},
}

func init() {
	rootCmd.Flags().StringVar(&flagAddr, "addr", ":8480", "listen address")
	rootCmd.Flags().StringVar(&flagToken, "token", "", "require this bearer token (blank disables auth)")
	rootCmd.Flags().DurationVar(&flagImportDuration, "import-duration", 3*time.Minute, "how long a profile import takes end to end")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
