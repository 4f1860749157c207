package commands

import (
	"fmt"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(detailsCmd)
}

var detailsCmd = &cobra.Command{
	Use:   "details <parcel id>",
	Short: "Gets detailed information for a single parcel.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		res := service.GetPropertyDetails(cmd.Context(), args[0])
		if *jsonOutput {
			printJson(res)
			return
		}
		if !res.Success {
			fail(fmt.Sprintf("details lookup failed (%s): %s", res.ErrorType, res.Error))
		}

		t := newTable()
		t.AppendHeader(table.Row{"Field", "Value"})
		if res.BasicInfo != nil {
			t.AppendRow(table.Row{"parcel_id", res.BasicInfo.ParcelID})
			t.AppendRow(table.Row{"owner_name", res.BasicInfo.OwnerName})
			t.AppendRow(table.Row{"property_address", res.BasicInfo.PropertyAddress})
			t.AppendRow(table.Row{"tax_value", res.BasicInfo.TaxValue})
			t.AppendSeparator()
		}

		keys := make([]string, 0, len(res.DetailedInfo))
		for key := range res.DetailedInfo {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			t.AppendRow(table.Row{key, res.DetailedInfo[key]})
		}
		t.Render()
	},
}
