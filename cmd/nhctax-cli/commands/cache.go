package commands

import (
	"fmt"
	"strings"

	"nhctax-backend/services/propertytax"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(clearCacheCmd)
}

var clearCacheCmd = &cobra.Command{
	Use:   "clear-cache [all|owner|address|parcel|detail]",
	Short: "Clears cached search responses.",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cacheType := propertytax.CacheAll
		if len(args) == 1 {
			cacheType = args[0]
		}

		res := service.ClearCache(cmd.Context(), cacheType)
		if *jsonOutput {
			printJson(res)
			return
		}
		if !res.Success {
			fail(res.Error)
		}
		fmt.Printf("cleared: %s\n", strings.Join(res.ClearedCaches, ", "))
	},
}
