package testutil

import (
	"testing"

	"nhctax-backend/lib/telemetry"
)

// SetupService initializes logging and telemetry for a package's tests.
// A telemetry config is optional; without one the noop providers stay
// in place.
func SetupService(t testing.TB, name string) func() {
	t.Helper()
	return telemetry.SetupForTesting("test:" + name)
}
