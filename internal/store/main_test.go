//go:build !integration

package store

import (
	"testing"

	"go.uber.org/goleak"
)

// Every Store opened by a test is closed in t.Cleanup; a leaked connection
// opener goroutine means one was not.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
