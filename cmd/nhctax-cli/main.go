package main

import (
	"context"
	"os/signal"
	"syscall"

	"nhctax-backend/cmd/nhctax-cli/commands"
	"nhctax-backend/lib/telemetry"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// telemetry.json5 is optional for CLI usage
	if err := telemetry.SetupFromEnv(ctx, "nhctax-cli"); err == nil {
		telemetry.InstrumentPerfStats(ctx)
		defer telemetry.Shutdown(context.Background())
	}
	telemetry.InitSlog(false)

	commands.ExecuteContext(ctx)
}
