package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// newSourcesCommand lists the configured feed source profiles.
func newSourcesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List configured feed sources",
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

			list := m.Profiles()
			if cfg.JSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(list)
			}

			for _, p := range list {
				state := "enabled"
				if !p.Runnable() {
					state = "disabled"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s %-20s %-8s tolerance=%s  %s\n",
					p.ID, p.Name, state, p.Tolerance.String(), p.URL)
			}
			return nil
		},
	}
}
