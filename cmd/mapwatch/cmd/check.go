package cmd

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mapwatch/mapwatch"
	"github.com/mapwatch/mapwatch/pkg/products"
	"github.com/mapwatch/mapwatch/pkg/reconcile"
)

// newCheckCommand reconciles an uploaded price file against the store.
func newCheckCommand() *cobra.Command {
	var (
		clearFlag  bool
		outputPath string
	)

	cmd := &cobra.Command{
		Use:   "check [file]",
		Short: "Check a price file against stored MAP data",
		Long: `Check parses a CSV, TSV, or XLSX price file, matches each row's SKU
against the product store, and flags rows priced below the brand's
tolerance-adjusted MAP floor. Results replace any previous check.

Rows whose SKU is not in the store are dropped silently; they are
outside the vendor catalog.`,
		Example: `  mapwatch check prices.csv
  mapwatch check prices.xlsx --output violations.csv
  mapwatch check --clear`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			m, err := newInstance(cfg)
			if err != nil {
				return err
			}
			defer m.Close()

			if clearFlag {
				if len(args) > 0 {
					return fmt.Errorf("--clear takes no file argument")
				}
				return m.ClearCheck(cmd.Context())
			}
			if len(args) == 0 {
				return fmt.Errorf("a price file is required (or --clear)")
			}

			result, err := checkFile(cmd, m, args[0])
			if err != nil {
				return err
			}

			if outputPath != "" {
				if err := exportViolations(cmd.Context(), m, outputPath); err != nil {
					return err
				}
			}

			if cfg.JSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}

			if err := printViolations(cmd, m); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Summary())
			return nil
		},
	}

	cmd.Flags().BoolVar(&clearFlag, "clear", false, "drop the current check results")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "write violations to a CSV file")
	return cmd
}

// checkFile dispatches on the file extension: XLSX workbooks stream through
// the workbook parser, everything else is treated as delimited text.
func checkFile(cmd *cobra.Command, m mapwatch.Mapwatch, path string) (*reconcile.Result, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return m.CheckXLSX(cmd.Context(), f)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return m.CheckCSV(cmd.Context(), string(raw))
}

// violationRows joins the annotation overlay back onto its records, keeping
// violations only.
func violationRows(records []products.Record, annotations []products.Annotation) [][]string {
	byID := make(map[string]*products.Record, len(records))
	for i := range records {
		byID[records[i].ID] = &records[i]
	}

	rows := [][]string{{"brand", "sku", "productName", "mapPrice", "priceUsed", "difference"}}
	for _, a := range annotations {
		if !a.IsViolation {
			continue
		}
		r, ok := byID[a.RecordID]
		if !ok {
			continue
		}
		rows = append(rows, []string{
			r.Brand, r.SKU, r.Name,
			a.MAPPrice.StringFixed(2),
			a.PriceUsed.StringFixed(2),
			a.Difference.StringFixed(2),
		})
	}
	return rows
}

func printViolations(cmd *cobra.Command, m mapwatch.Mapwatch) error {
	records, err := m.Store().All(cmd.Context())
	if err != nil {
		return err
	}
	annotations, err := m.Store().Annotations(cmd.Context())
	if err != nil {
		return err
	}

	rows := violationRows(records, annotations)
	for _, row := range rows[1:] {
		fmt.Fprintf(cmd.OutOrStdout(), "%-10s %-16s %-30s MAP %8s  used %8s  %s\n",
			row[0], row[1], row[2], row[3], row[4], row[5])
	}
	return nil
}

// exportViolations writes the current violation set as CSV.
func exportViolations(ctx context.Context, m mapwatch.Mapwatch, path string) error {
	records, err := m.Store().All(ctx)
	if err != nil {
		return err
	}
	annotations, err := m.Store().Annotations(ctx)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if err := w.WriteAll(violationRows(records, annotations)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
