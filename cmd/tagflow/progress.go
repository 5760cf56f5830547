package main

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/mpoirier/tagflow/internal/cli"
)

func progressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "progress <file>",
		Short: "Show tagging progress of a raw export",
		Long: `Progress reports how much of a raw export is tagged. The percentage is
weighted by amount, not by row count, so a single large untagged expense
keeps the month from looking done.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := openStore()
			if err != nil {
				return err
			}
			path, name, err := resolveRawFile(store, args[0])
			if err != nil {
				return err
			}
			rows, err := loadRawRows(ctx, path, name)
			if err != nil {
				return err
			}
			eng, err := loadEngine(ctx, store)
			if err != nil {
				return err
			}

			p := eng.ComputeProgress(rows)

			fmt.Println(cli.FormatTitle("Tagging progress for " + name))
			bar := progressbar.NewOptions(100,
				progressbar.OptionSetDescription(fmt.Sprintf("%.1f%% of spend tagged", p.Percent)),
				progressbar.OptionSetWidth(30),
				progressbar.OptionShowCount(),
			)
			_ = bar.Set(int(p.Percent))
			fmt.Println()
			fmt.Printf("  Tagged:   %d rows, %s €\n", p.TaggedCount, p.TaggedAmount.StringFixed(2))
			fmt.Printf("  Untagged: %d rows, %s €\n", p.UntaggedCount, p.UntaggedAmount.StringFixed(2))
			fmt.Printf("  Total:    %d rows, %s €\n", p.TotalCount, p.TotalAmount.StringFixed(2))
			return nil
		},
	}
}
