package commands

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/adpilothq/adpilot-cli/internal/api"
)

// NewReportCommand creates the 'report' command group.
func NewReportCommand() *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Performance reports",
		Subcommands: []*cli.Command{
			reportPerformanceCmd(),
		},
	}
}

func reportPerformanceCmd() *cli.Command {
	return &cli.Command{
		Name:  "performance",
		Usage: "Daily performance metrics for a profile",
		Flags: []cli.Flag{
			profileFlag(),
			&cli.StringFlag{
				Name:  "start",
				Usage: "Start date (YYYY-MM-DD); defaults to 14 days ago",
			},
			&cli.StringFlag{
				Name:  "end",
				Usage: "End date (YYYY-MM-DD); defaults to today",
			},
		},
		Action: func(c *cli.Context) error {
			client := api.NewClient()
			profileID, err := resolveProfileFlag(c, client)
			if err != nil {
				return err
			}

			end := c.String("end")
			if end == "" {
				end = time.Now().Format("2006-01-02")
			}
			start := c.String("start")
			if start == "" {
				start = time.Now().AddDate(0, 0, -14).Format("2006-01-02")
			}
			for _, d := range []string{start, end} {
				if _, err := time.Parse("2006-01-02", d); err != nil {
					return fmt.Errorf("dates must be formatted YYYY-MM-DD, got %q", d)
				}
			}

			report, err := client.GetPerformance(profileID, start, end)
			if err != nil {
				if printNotReady(err) {
					return nil
				}
				fmt.Printf("Error fetching performance: %v\n", err)
				return err
			}

			if len(report.Rows) == 0 {
				fmt.Printf("No performance data between %s and %s.\n", start, end)
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tIMPRESSIONS\tCLICKS\tSPEND\tSALES\tORDERS\tACOS")
			var impressions, clicks, orders int64
			var spend, sales float64
			for _, row := range report.Rows {
				fmt.Fprintf(w, "%s\t%d\t%d\t%.2f\t%.2f\t%d\t%.1f%%\n",
					row.Date, row.Impressions, row.Clicks, row.Spend, row.Sales, row.Orders, row.ACOS)
				impressions += row.Impressions
				clicks += row.Clicks
				orders += row.Orders
				spend += row.Spend
				sales += row.Sales
			}
			fmt.Fprintf(w, "TOTAL\t%d\t%d\t%.2f\t%.2f\t%d\t\n", impressions, clicks, spend, sales, orders)
			w.Flush()
			return nil
		},
	}
}
