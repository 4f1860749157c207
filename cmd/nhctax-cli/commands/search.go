package commands

import (
	"fmt"

	"nhctax-backend/services/propertytax"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(searchOwnerCmd)
	rootCmd.AddCommand(searchAddressCmd)
	rootCmd.AddCommand(searchParcelCmd)
}

var searchOwnerCmd = &cobra.Command{
	Use:   "search-owner <owner name>",
	Short: "Searches properties by owner name.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		renderSearch(service.SearchPropertyByOwner(cmd.Context(), args[0]))
	},
}

var searchAddressCmd = &cobra.Command{
	Use:   "search-address <address>",
	Short: "Searches properties by street address.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		renderSearch(service.SearchPropertyByAddress(cmd.Context(), args[0]))
	},
}

var searchParcelCmd = &cobra.Command{
	Use:   "search-parcel <parcel id>",
	Short: "Searches properties by parcel id.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		renderSearch(service.SearchPropertyByParcelID(cmd.Context(), args[0]))
	},
}

func renderSearch(res propertytax.SearchResponse) {
	if *jsonOutput {
		printJson(res)
		return
	}
	if !res.Success {
		fail(fmt.Sprintf("search failed (%s): %s", res.ErrorType, res.Error))
	}

	t := newTable()
	t.AppendHeader(table.Row{"Parcel ID", "Owner", "Address", "Tax Value"})
	for _, p := range res.Properties {
		t.AppendRow(table.Row{p.ParcelID, p.OwnerName, p.PropertyAddress, p.TaxValue})
	}
	t.Render()

	if res.Truncated {
		fmt.Printf("%d results (truncated)\n", res.ResultsCount)
	} else {
		fmt.Printf("%d results\n", res.ResultsCount)
	}
}
