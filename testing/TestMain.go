// Package testing flips the process into test mode when imported for side
// effects from _test files.
package testing

import (
	"os"
	"sync"
	stdtesting "testing"
)

var once sync.Once

func ensureTestMode() {
	once.Do(func() {
		_ = os.Setenv("CREATORLINK_TEST_MODE", "1")
		if os.Getenv("SESSION_SECRET") == "" {
			_ = os.Setenv("SESSION_SECRET", "test-session-secret")
		}
		if os.Getenv("SESSION_STORE") == "" {
			_ = os.Setenv("SESSION_STORE", "memory")
		}
	})
}

func init() {
	ensureTestMode()
}

// TestMain is reused by packages that need the environment prepared before
// any test runs.
func TestMain(m *stdtesting.M) {
	ensureTestMode()
	os.Exit(m.Run())
}
