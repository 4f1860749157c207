package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"nhctax-backend/lib/restyutil"
	"nhctax-backend/lib/scrapers/nhctax"
	"nhctax-backend/lib/telemetry"
	"nhctax-backend/services/propertytax"

	"github.com/spf13/cobra"
)

var jsonOutput *bool
var verbose *bool

var service propertytax.Service

var rootCmd = &cobra.Command{
	Use:   "nhctax-cli",
	Short: "nhctax-cli queries New Hanover County property tax records.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(*verbose)

		settings := propertytax.LoadSettings()
		if *verbose {
			nhctax.SetRestyInstrumentOutput(
				restyutil.NewFilesystemOutput(filepath.Join(settings.DataDir, "resty")),
			)
		}
		service = propertytax.NewService(settings)
	},
}

func init() {
	jsonOutput = rootCmd.PersistentFlags().Bool("json", false, "Print the raw response envelope as JSON.")
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging and request transcripts.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
