package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mpoirier/tagflow/internal/cli"
)

func vendorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vendors <file>",
		Short: "List untagged vendors of a raw export by spend",
		Args:  cobra.ExactArgs(1),
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

			vendors := eng.UntaggedVendors(rows)
			if len(vendors) == 0 {
				fmt.Println(cli.FormatSuccess("All expenses in " + name + " are tagged."))
				return nil
			}

			fmt.Println(cli.FormatTitle("Untagged vendors of " + name))
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "\tVENDOR\tAMOUNT\tROWS")
			for _, v := range vendors {
				marker := " "
				if v.Known {
					marker = cli.KnownIcon
				}
				fmt.Fprintf(w, "%s\t%s\t%s €\t%d\n", marker, v.Name, v.Amount.StringFixed(2), v.Count)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Println()
			fmt.Println(cli.SubtleStyle.Render(fmt.Sprintf("%s marks vendors with known tag associations.", cli.KnownIcon)))
			return nil
		},
	}
}
