package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mpoirier/tagflow/internal/cli"
)

func monthsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "months",
		Short: "Completed-month bookkeeping",
	}
	cmd.AddCommand(monthsListCmd())
	return cmd
}

func monthsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List completed months",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := openStore()
			if err != nil {
				return err
			}
			completed, err := store.LoadCompletedMonths(ctx)
			if err != nil {
				return err
			}
			if len(completed.Completed) == 0 {
				fmt.Println(cli.SubtleStyle.Render("No completed months yet."))
				return nil
			}

			fmt.Println(cli.FormatTitle("Completed months"))
			for _, m := range completed.Completed {
				marker := "  "
				if m == completed.LastCompleted {
					marker = cli.SuccessIcon + " "
				}
				fmt.Printf("%s%s\n", marker, m)
			}
			return nil
		},
	}
}
