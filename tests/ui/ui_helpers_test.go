package tests

import (
	"context"
	"testing"

	commontest "github.com/bobmcallan/filings-portal/tests/common"
)

// newDashboard starts a portal against a fake backend, opens a headless
// browser and loads the dashboard. Skips when Chrome is not installed.
func newDashboard(t *testing.T) (context.Context, *commontest.FakeBackend, *commontest.JSErrorCollector) {
	t.Helper()

	if testing.Short() {
		t.Skip("browser tests skipped in -short mode")
	}
	if !commontest.ChromeAvailable() {
		t.Skip("chrome not available")
	}

	backend := commontest.NewFakeBackend(t)
	url := commontest.StartPortal(t, backend)

	ctx, cancel := commontest.NewBrowserContext(nil)
	t.Cleanup(cancel)

	errs := commontest.NewJSErrorCollector(ctx)
	if err := commontest.NavigateAndWait(ctx, url+"/", 0); err != nil {
		t.Fatalf("navigate failed: %v", err)
	}
	return ctx, backend, errs
}

func contains(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}
