package utils

import "testing"

func TestAttemptScriptCompiles(t *testing.T) {
	// Compile-time smoke test: the script should be initialized.
	if attemptCountScript == nil {
		t.Fatalf("expected script to be initialized")
	}
}
