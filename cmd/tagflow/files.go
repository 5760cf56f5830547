package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mpoirier/tagflow/internal/cli"
)

func filesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "files",
		Short: "List raw exports awaiting tagging",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			files, err := store.ListRawFiles()
			if err != nil {
				return err
			}
			if len(files) == 0 {
				fmt.Println(cli.SubtleStyle.Render("No raw exports found. Import one with 'tagflow import <file>'."))
				return nil
			}

			fmt.Println(cli.FormatTitle("Raw exports"))
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tROWS\tSIZE\tMODIFIED")
			for _, f := range files {
				fmt.Fprintf(w, "%s\t%d\t%d B\t%s\n", f.Name, f.Rows, f.Size, f.Modified.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}
}
