package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"github.com/adpilothq/adpilot-cli/internal/api"
	"github.com/adpilothq/adpilot-cli/internal/auth"
	"github.com/adpilothq/adpilot-cli/internal/config"
)

func NewSetupCommand() *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Configure the CLI with backend authentication",
		Subcommands: []*cli.Command{
			{
				Name:  "token",
				Usage: "Store the AdPilot API token (prompted without echo)",
				Action: func(c *cli.Context) error {
					return handleSetToken()
				},
			},
			{
				Name:  "show",
				Usage: "Show current configuration and token storage mode",
				Action: func(c *cli.Context) error {
					return handleShowSetup()
				},
			},
			{
				Name:  "clear-token",
				Usage: "Remove the stored API token",
				Action: func(c *cli.Context) error {
					if err := auth.DeleteToken(); err != nil {
						return err
					}
					fmt.Println("✅ Token removed.")
					return nil
				},
			},
		},
		Action: func(c *cli.Context) error {
			return cli.ShowCommandHelp(c, "setup")
		},
	}
}

func handleSetToken() error {
	fmt.Print("Paste your AdPilot API token: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("could not read token: %w", err)
	}

	token := strings.TrimSpace(string(raw))
	if token == "" {
		return fmt.Errorf("no token entered")
	}

	if err := auth.SaveToken(token); err != nil {
		return fmt.Errorf("could not store token: %w", err)
	}
	fmt.Printf("✅ Token stored (%s).\n", auth.StorageMode())

	// Verify the token by listing profiles once.
	client := api.NewClient()
	list, err := client.ListProfiles()
	if err != nil {
		fmt.Printf("⚠️ Token stored but verification failed: %v\n", err)
		return nil
	}
	fmt.Printf("✅ Verified: %d profile(s) visible. Run 'adpilot profile list' to see them.\n", list.Count)
	return nil
}

func handleShowSetup() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("could not load config: %w", err)
	}

	baseURL := os.Getenv("ADPILOT_API_URL")
	if baseURL == "" {
		baseURL = cfg.BaseURL
	}
	if baseURL == "" {
		baseURL = "https://api.adpilot.io/v1 (default)"
	}

	fmt.Printf("Base URL:       %s\n", baseURL)
	if auth.HasToken() {
		fmt.Printf("Token:          configured (%s)\n", auth.StorageMode())
	} else {
		fmt.Println("Token:          not configured - run 'adpilot setup token'")
	}

	path, err := config.GetConfigPath()
	if err == nil {
		fmt.Printf("Config file:    %s\n", path)
	}
	return nil
}
