package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mpoirier/tagflow/internal/cli"
	"github.com/mpoirier/tagflow/internal/model"
	"github.com/mpoirier/tagflow/internal/report"
)

const chartWidth = 40

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Spending reports over the tagged history",
	}
	cmd.AddCommand(breakdownCmd())
	cmd.AddCommand(trendCmd())
	cmd.AddCommand(timeseriesCmd())
	return cmd
}

func breakdownCmd() *cobra.Command {
	var (
		month    string
		category string
	)

	cmd := &cobra.Command{
		Use:   "breakdown",
		Short: "Spending by main category, or by subtag within one category",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			reporter, rows, err := openReporter(ctx)
			if err != nil {
				return err
			}

			if category != "" {
				entries := reporter.SubtagBreakdown(rows, month, category)
				if entries == nil {
					return fmt.Errorf("no subtag breakdown for category %q", category)
				}
				title := "Subtags of " + category
				if month != "" {
					title += " in " + month
				}
				fmt.Println(report.Chart{Title: title, Data: entries}.Render(chartWidth))
				return nil
			}

			entries := reporter.CategoryBreakdown(rows, month)
			title := "Spending by category"
			if month != "" {
				title += " in " + month
			}
			fmt.Println(report.Chart{Title: title, Data: entries}.Render(chartWidth))
			return nil
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "restrict to one month (YYYY-MM)")
	cmd.Flags().StringVar(&category, "category", "", "break one main category down by subtag")
	return cmd
}

func trendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trend <category>",
		Short: "Monthly spending trend for one main category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			reporter, rows, err := openReporter(ctx)
			if err != nil {
				return err
			}
			entries := reporter.MonthlyTrend(rows, args[0])
			if len(entries) == 0 {
				fmt.Println(cli.SubtleStyle.Render("No tagged spending found for " + args[0]))
				return nil
			}
			fmt.Println(report.Chart{Title: "Monthly trend for " + args[0], Data: entries}.Render(chartWidth))
			return nil
		},
	}
}

func timeseriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "timeseries",
		Short: "Monthly totals split into regular and exceptional spending",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			reporter, rows, err := openReporter(ctx)
			if err != nil {
				return err
			}
			splits := reporter.Timeseries(rows)
			if len(splits) == 0 {
				fmt.Println(cli.SubtleStyle.Render("No tagged history yet. Finish a month first."))
				return nil
			}

			fmt.Println(cli.FormatTitle("Monthly spending"))
			for _, s := range splits {
				fmt.Printf("%s  regular %10s €  exceptional %10s €  total %10s €\n",
					s.Month,
					s.Regular.StringFixed(2),
					s.Exceptional.StringFixed(2),
					s.Total.StringFixed(2))
			}
			return nil
		},
	}
}

func openReporter(ctx context.Context) (*report.Reporter, []model.Transaction, error) {
	store, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	rows, err := store.LoadStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	mainCategories, err := store.LoadMainCategories(ctx)
	if err != nil {
		return nil, nil, err
	}
	return report.NewReporter(mainCategories), rows, nil
}
