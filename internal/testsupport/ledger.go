package testsupport

import (
	"testing"

	"decant/internal/config"
	"decant/internal/ledger"
)

// MustOpenLedger opens the ledger of the named service and registers cleanup.
func MustOpenLedger(t testing.TB, cfg *config.Config, service string) *ledger.Store {
	t.Helper()

	store, err := ledger.OpenService(cfg, service)
	if err != nil {
		t.Fatalf("ledger.OpenService: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
