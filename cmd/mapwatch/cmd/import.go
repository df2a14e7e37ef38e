package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// newImportCommand runs a full feed import.
func newImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Import all enabled vendor feeds into the store",
		Long: `Import clears the product store and refreshes it from every enabled
source profile. A failing source is reported and skipped; the remaining
sources still import.`,
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

			rr, err := m.RunImport(cmd.Context())
			if err != nil {
				return err
			}

			if cfg.JSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rr)
			}

			for _, r := range rr.Results {
				fmt.Fprintln(cmd.OutOrStdout(), r.Summary())
			}
			fmt.Fprintln(cmd.OutOrStdout(), rr.Summary())

			if failed := rr.Failed(); len(failed) > 0 {
				return fmt.Errorf("%d source(s) failed", len(failed))
			}
			return nil
		},
	}
}
