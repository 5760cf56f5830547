package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mpoirier/tagflow/internal/cli"
	"github.com/mpoirier/tagflow/internal/ingest"
	"github.com/mpoirier/tagflow/internal/tui"
)

func tagCmd() *cobra.Command {
	var (
		browse bool
		month  string
	)

	cmd := &cobra.Command{
		Use:   "tag <file>",
		Short: "Tag the expenses of a raw export interactively",
		Long: `Tag starts an interactive session over one raw export. Vendors are
listed largest spend first; pick vendors to tag them wholesale or drill
into individual transactions. Progress can be saved at any point, and
finishing the month moves every row into the unified store.

With --browse the vendors are shown in a read-only full-screen browser
instead.`,
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
			if len(rows) == 0 {
				fmt.Println(cli.FormatWarning("No expenses to tag in " + name))
				return nil
			}

			eng, err := loadEngine(ctx, store)
			if err != nil {
				return err
			}

			if browse {
				return tui.Run(ctx, eng, rows)
			}

			if month == "" {
				month = ingest.MonthFromFilename(name)
			}
			if month == "" {
				month = rows[0].Month
			}

			session := cli.NewSession(eng, store, rows, name, month, os.Stdin, os.Stdout)
			return session.Run(ctx)
		},
	}

	cmd.Flags().BoolVar(&browse, "browse", false, "browse vendors read-only instead of tagging")
	cmd.Flags().StringVar(&month, "month", "", "month being tagged (default: derived from the file name)")
	return cmd
}
