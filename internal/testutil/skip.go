package testutil

import (
	"os"
	"testing"
)

// SkipIfNoNetwork skips the test if CHATFEED_TEST_SKIP_NETWORK is set.
// Use this for tests that bind loopback listeners, which are not always
// available in sandboxed environments.
func SkipIfNoNetwork(t *testing.T) {
	t.Helper()
	if os.Getenv("CHATFEED_TEST_SKIP_NETWORK") != "" {
		t.Skip("skipping network test: CHATFEED_TEST_SKIP_NETWORK is set")
	}
}
