package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trafficlens/trafficlens/internal/analytics"
)

var userCmd = &cobra.Command{
	Use:   "user [name|ip|mac]",
	Short: "Summarize one user's activity",
	Long: `Looks up a user by device name, source IP or MAC address and prints their
top applications by time spent.`,
	Args: cobra.ExactArgs(1),
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

		summary, err := analytics.New(store).UserSummary(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), summary)
		return nil
	},
}
