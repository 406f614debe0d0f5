package testsupport

import (
	"os"
	"testing"

	"ethogram/internal/config"
	"ethogram/internal/ledger"
)

// MustOpenLedger opens the session ledger for tests and registers cleanup.
func MustOpenLedger(t testing.TB, cfg *config.Config) *ledger.Store {
	t.Helper()

	if err := os.MkdirAll(cfg.Paths.ReportDir, 0o755); err != nil {
		t.Fatalf("mkdir report dir: %v", err)
	}
	store, err := ledger.Open(cfg.Paths.ReportDir)
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
