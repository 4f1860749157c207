package commands

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(capabilitiesCmd)
}

var capabilitiesCmd = &cobra.Command{
	Use:   "capabilities",
	Short: "Describes the available search types and configuration.",
	Run: func(cmd *cobra.Command, args []string) {
		res := service.GetSearchCapabilities()
		if *jsonOutput {
			printJson(res)
			return
		}

		t := newTable()
		t.AppendHeader(table.Row{"Type", "Description", "Parameters", "Cached"})
		for _, st := range res.SearchTypes {
			t.AppendRow(table.Row{st.Type, st.Description, strings.Join(st.Parameters, ", "), st.Cached})
		}
		t.Render()
	},
}
