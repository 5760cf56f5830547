package main

import (
	"fmt"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/mpoirier/tagflow/internal/cli"
	"github.com/mpoirier/tagflow/internal/ingest"
)

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import a bank export into the raw directory",
		Long: `Import normalizes a CSV or OFX bank export, keeps the expense rows and
writes them into the raw directory where the tag command picks them up.
Locale header variants are accepted; the stored copy always carries the
canonical column set.`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, err := openStore()
	if err != nil {
		return err
	}

	path, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	name := filepath.Base(path)

	rows, err := loadRawRows(ctx, path, name)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println(cli.FormatWarning(fmt.Sprintf("No expenses found in %s, nothing imported", name)))
		return nil
	}

	stored, err := store.WriteRawCSV(name, rows)
	if err != nil {
		return fmt.Errorf("failed to store raw export: %w", err)
	}

	eng, err := loadEngine(ctx, store)
	if err != nil {
		return err
	}
	vendors := eng.UntaggedVendors(rows)
	known := 0
	for _, v := range vendors {
		if v.Known {
			known++
		}
	}

	bar := progressbar.Default(int64(len(rows)), "analyzing expenses")
	total := decimal.Zero
	largest, smallest := rows[0], rows[0]
	for _, row := range rows {
		total = total.Add(row.AmountAbs)
		if row.AmountAbs.GreaterThan(largest.AmountAbs) {
			largest = row
		}
		if row.AmountAbs.LessThan(smallest.AmountAbs) {
			smallest = row
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	month := ingest.MonthFromFilename(name)
	if month == "" {
		month = rows[0].Month
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Imported %d expenses into %s", len(rows), stored)))
	fmt.Printf("  Month:    %s\n", month)
	fmt.Printf("  Total:    %s €\n", total.StringFixed(2))
	fmt.Printf("  Largest:  %s € (%s)\n", largest.AmountAbs.StringFixed(2), largest.Vendor)
	fmt.Printf("  Smallest: %s € (%s)\n", smallest.AmountAbs.StringFixed(2), smallest.Vendor)
	fmt.Printf("  Vendors:  %d (%d already known)\n", len(vendors), known)
	fmt.Printf("  Period:   %s to %s\n",
		rows[0].Date.Format("2006-01-02"),
		rows[len(rows)-1].Date.Format("2006-01-02"))
	fmt.Println()
	fmt.Println(cli.SubtleStyle.Render(fmt.Sprintf("Run 'tagflow tag %s' to start tagging.", stored)))
	return nil
}
