package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/trafficlens/trafficlens/internal/report"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show dataset statistics",
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

		st, err := store.DatasetStats()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Database: %s\n", store.Path())
		fmt.Fprintf(out, "Records:  %s\n", report.FormatCount(float64(st.TotalRecords)))
		fmt.Fprintf(out, "Users:    %d\n", st.UniqueUsers)
		fmt.Fprintf(out, "Apps:     %d\n", st.UniqueApps)
		if st.DateStart != "" {
			fmt.Fprintf(out, "Range:    %s to %s\n", st.DateStart, st.DateEnd)
		}
		if len(st.Categories) == 0 {
			return nil
		}

		fmt.Fprintln(out)
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CATEGORY\tRECORDS")
		for cat, n := range st.Categories {
			if cat == "" {
				cat = "(none)"
			}
			fmt.Fprintf(w, "%s\t%s\n", cat, report.FormatCount(float64(n)))
		}
		return w.Flush()
	},
}
