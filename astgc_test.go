// ABOUTME: Tests for the main astgc package, verifying project structure and imports
// ABOUTME: Checks that the version constant follows semantic versioning

package astgc_test

import (
	"strings"
	"testing"

	"github.com/prateek/astgc"
)

func TestVersion(t *testing.T) {
	if astgc.Version == "" {
		t.Error("Version constant should not be empty")
	}
	if !strings.HasPrefix(astgc.Version, "0.") {
		t.Errorf("Version should start with %q, got %q", "0.", astgc.Version)
	}
}
