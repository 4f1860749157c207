package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Checks whether the county tax portal is reachable.",
	Run: func(cmd *cobra.Command, args []string) {
		res := service.CheckSystemStatus(cmd.Context())
		if *jsonOutput {
			printJson(res)
			return
		}

		t := newTable()
		t.AppendRow(table.Row{"available", res.SystemAvailable})
		t.AppendRow(table.Row{"status code", res.StatusCode})
		t.AppendRow(table.Row{"maintenance mode", res.MaintenanceMode})
		t.AppendRow(table.Row{"expected content", res.HasExpectedContent})
		t.AppendRow(table.Row{"response time", fmt.Sprintf("%.1fms", res.ResponseTimeMS)})
		if res.Error != "" {
			t.AppendRow(table.Row{"error", res.Error})
		}
		t.Render()
	},
}
