package version

import (
	"strings"
	"testing"
)

func TestVersionString(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	s := String()
	if !strings.HasPrefix(s, "sitebase ") {
		t.Errorf("unexpected version line %q", s)
	}
	if !strings.Contains(s, GitCommit) {
		t.Errorf("version line %q missing commit %q", s, GitCommit)
	}
}
