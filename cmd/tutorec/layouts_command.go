package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tutorec/internal/media"
)

func newLayoutsCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "layouts",
		Short:       "List the compositing layouts export accepts",
		Annotations: map[string]string{standaloneAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([][]string, 0, len(media.AllLayouts()))
			for _, layout := range media.AllLayouts() {
				canvas := "1920x1080"
				if layout.Portrait() {
					canvas = "1080x1920"
				}
				rows = append(rows, []string{string(layout), layout.Slug(), canvas})
			}
			table := renderTable(
				[]string{"Layout", "Slug", "Canvas"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			)
			fmt.Fprintln(cmd.OutOrStdout(), table)
			return nil
		},
	}
}
