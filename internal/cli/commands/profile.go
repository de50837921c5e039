package commands

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/adpilothq/adpilot-cli/internal/api"
	"github.com/adpilothq/adpilot-cli/internal/models"
	"github.com/adpilothq/adpilot-cli/internal/profiles"
	"github.com/adpilothq/adpilot-cli/internal/workingctx"
)

// NewProfileCommand creates all subcommands for the 'profile' command group.
func NewProfileCommand() *cli.Command {
	return &cli.Command{
		Name:    "profile",
		Aliases: []string{"p"},
		Usage:   "Manage Amazon Advertising profiles",
		Subcommands: []*cli.Command{
			profileListCmd(),
			profileUseCmd(),
			profileCurrentCmd(),
			profileClearCmd(),
			profileActivateCmd(),
			profileStatusCmd(),
			profileDeactivateCmd(),
		},
	}
}

func profileListCmd() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List profiles with their listing numbers and import status",
		Action: func(c *cli.Context) error {
			client := api.NewClient()
			list, err := client.ListProfiles()
			if err != nil {
				fmt.Printf("Error listing profiles: %v\n", err)
				return err
			}

			if len(list.Profiles) == 0 {
				fmt.Println("No profiles found for this account.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "#\tNAME\tREGION\tID\tSTATUS")
			fmt.Fprintln(w, "-\t----\t------\t--\t------")
			for _, p := range list.Profiles {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
					p.Number, truncateString(p.Name, 30), p.Region, p.ID, profileStatusText(p))
			}
			w.Flush()
			return nil
		},
	}
}

func profileStatusText(p models.Profile) string {
	if !p.MCPActivated {
		return "not activated"
	}
	if p.MCPDataStatus == models.StatusReady {
		return "ready"
	}
	if p.EstimatedMinutes != nil {
		return fmt.Sprintf("%s (~%dm)", p.MCPDataStatus, *p.EstimatedMinutes)
	}
	return string(p.MCPDataStatus)
}

func profileUseCmd() *cli.Command {
	return &cli.Command{
		Name:      "use",
		Usage:     "Set the current working profile",
		ArgsUsage: "[number or id]",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("profile number or id is required")
			}
			ref := c.Args().First()

			client := api.NewClient()
			resolver := profiles.NewResolver(client)
			p, ok := resolver.Lookup(ref)
			if !ok {
				return fmt.Errorf("no profile matches %q - run 'adpilot profile list' and pick a current number or id", ref)
			}
			if !p.MCPActivated {
				return fmt.Errorf("profile #%d %s is not activated - run 'adpilot profile activate %d' first", p.Number, p.Name, p.Number)
			}

			store, err := workingctx.NewFileStore()
			if err != nil {
				return err
			}
			wc := &models.WorkingContext{
				ProfileID:     p.ID,
				ProfileNumber: p.Number,
				ProfileName:   p.Name,
				Region:        p.Region,
				SetAt:         time.Now().UTC(),
			}
			if err := store.Write(wc); err != nil {
				return fmt.Errorf("could not persist selection: %w", err)
			}

			if p.MCPDataStatus != models.StatusReady {
				fmt.Printf("⚠️ Current profile set to #%d %s (%s), but its import is not finished (%s).\n",
					p.Number, p.Name, p.Region, p.MCPDataStatus)
				return nil
			}
			fmt.Printf("✅ Current profile set to #%d %s (%s).\n", p.Number, p.Name, p.Region)
			return nil
		},
	}
}

func profileCurrentCmd() *cli.Command {
	return &cli.Command{
		Name:  "current",
		Usage: "Show the current working profile",
		Action: func(c *cli.Context) error {
			store, err := workingctx.NewFileStore()
			if err != nil {
				return err
			}
			wc, ok := store.Read()
			if !ok {
				fmt.Println("No current profile is set. Run 'adpilot profile use <number>'.")
				return nil
			}
			fmt.Printf("#%d %s (%s)\nid: %s\nselected: %s\n",
				wc.ProfileNumber, wc.ProfileName, wc.Region, wc.ProfileID, wc.SetAt.Format(time.RFC3339))
			return nil
		},
	}
}

func profileClearCmd() *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: "Forget the current working profile",
		Action: func(c *cli.Context) error {
			store, err := workingctx.NewFileStore()
			if err != nil {
				return err
			}
			if err := store.Clear(); err != nil {
				return err
			}
			fmt.Println("✅ Working profile cleared.")
			return nil
		},
	}
}

func profileActivateCmd() *cli.Command {
	return &cli.Command{
		Name:      "activate",
		Usage:     "Request data import (MCP activation) for a profile",
		ArgsUsage: "[number or id]",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("profile number or id is required")
			}
			ref := c.Args().First()

			client := api.NewClient()
			resolver := profiles.NewResolver(client)
			id, ok := resolver.Resolve(ref)
			if !ok {
				return fmt.Errorf("no profile matches %q - run 'adpilot profile list' and pick a current number or id", ref)
			}

			res, err := client.ActivateProfile(id.ID)
			if err != nil {
				fmt.Printf("Error activating profile: %v\n", err)
				return err
			}

			fmt.Printf("✅ Activation requested for %s. Status: %s.\n", id.Label(), res.Status)
			if res.EstimatedMinutes != nil {
				fmt.Printf("Estimated import time: ~%d minutes.\n", *res.EstimatedMinutes)
			}
			fmt.Println("Run 'adpilot profile status' to follow progress.")
			return nil
		},
	}
}

func profileStatusCmd() *cli.Command {
	return &cli.Command{
		Name:      "status",
		Usage:     "Check import status (defaults to the current working profile)",
		ArgsUsage: "[number or id]",
		Action: func(c *cli.Context) error {
			client := api.NewClient()

			var profileID, label string
			if c.NArg() > 0 {
				resolver := profiles.NewResolver(client)
				id, ok := resolver.Resolve(c.Args().First())
				if !ok {
					return fmt.Errorf("no profile matches %q - run 'adpilot profile list'", c.Args().First())
				}
				profileID, label = id.ID, id.Label()
			} else {
				store, err := workingctx.NewFileStore()
				if err != nil {
					return err
				}
				wc, ok := store.Read()
				if !ok {
					return fmt.Errorf("no profile given and no current profile set - run 'adpilot profile use <number>'")
				}
				profileID = wc.ProfileID
				label = fmt.Sprintf("%s (%s)", wc.ProfileName, wc.Region)
			}

			status, err := client.ProfileStatus(profileID)
			if err != nil {
				fmt.Printf("Error fetching status: %v\n", err)
				return err
			}

			fmt.Printf("Profile %s\n", label)
			if status.Available {
				fmt.Println("Status: ready")
				return nil
			}
			fmt.Printf("Status: %s\n", status.Reason)
			if status.Message != "" {
				fmt.Println(status.Message)
			}
			if status.EstimatedMinutes != nil {
				fmt.Printf("Estimated: ~%d minutes remaining\n", *status.EstimatedMinutes)
			}
			if ip := status.ImportProgress; ip != nil {
				fmt.Printf("Progress: %d of %d days (%.0f%%)\n", ip.UniqueDates, ip.ExpectedDays, ip.ProgressPercent)
			}
			return nil
		},
	}
}

func profileDeactivateCmd() *cli.Command {
	return &cli.Command{
		Name:      "deactivate",
		Usage:     "Remove a profile from MCP querying",
		ArgsUsage: "[number or id]",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("profile number or id is required")
			}
			ref := c.Args().First()

			client := api.NewClient()
			resolver := profiles.NewResolver(client)
			id, ok := resolver.Resolve(ref)
			if !ok {
				return fmt.Errorf("no profile matches %q - run 'adpilot profile list'", ref)
			}

			res, err := client.DeactivateProfile(id.ID)
			if err != nil {
				fmt.Printf("Error deactivating profile: %v\n", err)
				return err
			}
			if res.Message != "" {
				fmt.Println(res.Message)
			} else {
				fmt.Printf("✅ Profile %s removed from MCP querying.\n", id.Label())
			}
			return nil
		},
	}
}
