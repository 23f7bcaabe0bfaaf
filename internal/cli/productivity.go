package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trafficlens/trafficlens/internal/analytics"
	"github.com/trafficlens/trafficlens/internal/report"
)

var prodUser string
var prodFrom string
var prodTo string

var productivityCmd = &cobra.Command{
	Use:   "productivity",
	Short: "Analyze productive versus non-productive usage",
	Long: `Splits logged time into productive (Business, Development) and
non-productive (Social.Media, Game, Adult) categories and prices the
non-productive share against the configured hourly rate.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		rep, err := analytics.New(store).ProductivityPatterns(analytics.Options{
			User:     prodUser,
			DateFrom: prodFrom,
			DateTo:   prodTo,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Productive time:     %s\n", report.FormatDuration(rep.ProductiveMs))
		fmt.Fprintf(out, "Non-productive time: %s\n", report.FormatDuration(rep.UnproductiveMs))
		fmt.Fprintf(out, "Productivity ratio:  %.0f%%\n", rep.ProductivityRatio*100)
		fmt.Fprintf(out, "Users seen:          %d\n", rep.TotalUsers)
		if rep.TopUnproductiveCat != "" {
			fmt.Fprintf(out, "Top distraction:     %s\n", rep.TopUnproductiveCat)
		}
		if len(rep.WorstHours) > 0 {
			fmt.Fprintln(out, "\nWorst hours of the day:")
			for _, h := range rep.WorstHours {
				fmt.Fprintf(out, "  %02d:00  %s\n", h.Hour, report.FormatDuration(h.DurationMs))
			}
		}
		if rep.UnproductiveMs > 0 {
			fmt.Fprintln(out)
			fmt.Fprint(out, report.Cost(rep.UnproductiveMs, cfg.Rates).Render())
		}
		return nil
	},
}

func init() {
	productivityCmd.Flags().StringVar(&prodUser, "user", "", "filter by user name substring")
	productivityCmd.Flags().StringVar(&prodFrom, "from", "", "start date (YYYY-MM-DD)")
	productivityCmd.Flags().StringVar(&prodTo, "to", "", "end date (YYYY-MM-DD)")
}
