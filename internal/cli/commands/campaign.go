package commands

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/adpilothq/adpilot-cli/internal/api"
	"github.com/adpilothq/adpilot-cli/internal/profiles"
	"github.com/adpilothq/adpilot-cli/internal/workingctx"
)

// NewCampaignCommand creates all subcommands for the 'campaign' command group.
func NewCampaignCommand() *cli.Command {
	return &cli.Command{
		Name:    "campaign",
		Aliases: []string{"c"},
		Usage:   "Inspect and mutate campaigns",
		Subcommands: []*cli.Command{
			campaignListCmd(),
			campaignKeywordsCmd(),
			campaignStateCmd(),
			keywordBidCmd(),
		},
	}
}

// resolveProfileFlag turns the --profile flag (or the working context) into
// a canonical profile identifier.
func resolveProfileFlag(c *cli.Context, client *api.Client) (string, error) {
	if ref := c.String("profile"); ref != "" {
		resolver := profiles.NewResolver(client)
		id, ok := resolver.Resolve(ref)
		if !ok {
			return "", fmt.Errorf("no profile matches %q - run 'adpilot profile list'", ref)
		}
		return id.ID, nil
	}

	store, err := workingctx.NewFileStore()
	if err != nil {
		return "", err
	}
	wc, ok := store.Read()
	if !ok {
		return "", fmt.Errorf("no --profile given and no current profile set - run 'adpilot profile use <number>'")
	}
	return wc.ProfileID, nil
}

func profileFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "profile",
		Aliases: []string{"p"},
		Usage:   "Profile number (e.g. \"#2\") or id; defaults to the current working profile",
	}
}

// printNotReady prints the try-later message for a not-ready backend
// response and reports whether err was that shape.
func printNotReady(err error) bool {
	var notReady *api.NotReadyError
	if errors.As(err, &notReady) {
		fmt.Println(notReady.Hint())
		return true
	}
	return false
}

func campaignListCmd() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List campaigns for a profile",
		Flags: []cli.Flag{
			profileFlag(),
			&cli.StringFlag{
				Name:  "state",
				Usage: "Filter by state (enabled, paused, archived)",
			},
		},
		Action: func(c *cli.Context) error {
			client := api.NewClient()
			profileID, err := resolveProfileFlag(c, client)
			if err != nil {
				return err
			}

			campaigns, err := client.ListCampaigns(profileID, c.String("state"))
			if err != nil {
				if printNotReady(err) {
					return nil
				}
				fmt.Printf("Error listing campaigns: %v\n", err)
				return err
			}

			if len(campaigns) == 0 {
				fmt.Println("No campaigns found.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSTATE\tBUDGET/DAY")
			fmt.Fprintln(w, "--\t----\t-----\t----------")
			for _, cm := range campaigns {
				fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\n",
					cm.ID, truncateString(cm.Name, 40), cm.State, cm.DailyBudget)
			}
			w.Flush()
			return nil
		},
	}
}

func campaignKeywordsCmd() *cli.Command {
	return &cli.Command{
		Name:      "keywords",
		Usage:     "List the keywords of a campaign",
		ArgsUsage: "[campaign-id]",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("campaign id is required")
			}

			client := api.NewClient()
			keywords, err := client.ListKeywords(c.Args().First())
			if err != nil {
				if printNotReady(err) {
					return nil
				}
				fmt.Printf("Error listing keywords: %v\n", err)
				return err
			}

			if len(keywords) == 0 {
				fmt.Println("No keywords found.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tKEYWORD\tMATCH\tSTATE\tBID")
			fmt.Fprintln(w, "--\t-------\t-----\t-----\t---")
			for _, k := range keywords {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2f\n",
					k.ID, truncateString(k.Text, 40), k.MatchType, k.State, k.Bid)
			}
			w.Flush()
			return nil
		},
	}
}

func campaignStateCmd() *cli.Command {
	return &cli.Command{
		Name:      "state",
		Usage:     "Change a campaign's state (enabled, paused, archived)",
		ArgsUsage: "[campaign-id] [state]",
		Action: func(c *cli.Context) error {
			if c.NArg() < 2 {
				return fmt.Errorf("campaign id and state are required")
			}

			client := api.NewClient()
			campaign, err := client.UpdateCampaignState(c.Args().Get(0), c.Args().Get(1))
			if err != nil {
				fmt.Printf("Error updating campaign: %v\n", err)
				return err
			}
			fmt.Printf("✅ Campaign %s (%s) is now %s.\n", campaign.Name, campaign.ID, campaign.State)
			return nil
		},
	}
}

func keywordBidCmd() *cli.Command {
	return &cli.Command{
		Name:      "bid",
		Usage:     "Change a keyword's bid",
		ArgsUsage: "[keyword-id] [bid]",
		Action: func(c *cli.Context) error {
			if c.NArg() < 2 {
				return fmt.Errorf("keyword id and bid are required")
			}
			bid, err := strconv.ParseFloat(c.Args().Get(1), 64)
			if err != nil || bid <= 0 {
				return fmt.Errorf("bid must be a positive amount")
			}

			client := api.NewClient()
			keyword, err := client.UpdateKeywordBid(c.Args().Get(0), bid)
			if err != nil {
				fmt.Printf("Error updating keyword: %v\n", err)
				return err
			}
			fmt.Printf("✅ Keyword %q (%s) bid is now %.2f.\n", keyword.Text, keyword.ID, keyword.Bid)
			return nil
		},
	}
}
