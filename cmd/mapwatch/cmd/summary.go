package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// newSummaryCommand prints store and check aggregates.
func newSummaryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show store totals and check results",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			m, err := newInstance(cfg)
			if err != nil {
				return err
			}
			defer m.Close()

			s, err := m.Summary(cmd.Context())
			if err != nil {
				return err
			}

			if cfg.JSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(s)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Records: %d\n", s.TotalRecords)
			for _, bc := range s.ByBrand {
				fmt.Fprintf(out, "  %-12s %d\n", bc.Brand, bc.Count)
			}

			if !s.Checked {
				fmt.Fprintln(out, "No check results. Run: mapwatch check <file>")
				return nil
			}

			fmt.Fprintf(out, "Checked rows: %d\n", s.CheckedRows)
			fmt.Fprintf(out, "Violations: %d (savings at risk: %s)\n",
				s.Violations, s.SavingsAtRisk.StringFixed(2))
			for _, bc := range s.ViolationsByBrand {
				fmt.Fprintf(out, "  %-12s %d\n", bc.Brand, bc.Count)
			}
			return nil
		},
	}
}
