package manifest

import (
	"os"
	"path/filepath"
	"runtime/debug"
	"testing"
)

// writeFakeGit writes a small executable "git" script into dir.
func writeFakeGit(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "git"), []byte(content), 0o755); err != nil {
		t.Fatalf("writeFakeGit: %v", err)
	}
}

func withVersion(t *testing.T, version, commit string) {
	t.Helper()
	origVersion, origCommit, origRead := Version, Commit, readBuildInfo
	t.Cleanup(func() { Version, Commit, readBuildInfo = origVersion, origCommit, origRead })
	Version, Commit = version, commit
	readBuildInfo = func() (*debug.BuildInfo, bool) { return nil, false }
}

func TestGetVersion(t *testing.T) {
	tests := []struct {
		name    string
		version string
		commit  string
		want    string
	}{
		{name: "ldflags priority", version: "1.2.3", want: "1.2.3"},
		{name: "commit fallback", commit: "deadbeef", want: "commit-deadbeef"},
		{name: "devel fallback", want: "devel"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withVersion(t, tt.version, tt.commit)
			t.Setenv("PATH", t.TempDir()) // no git

			if got := GetVersion(); got != tt.want {
				t.Errorf("GetVersion() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetVersion_ReadBuildInfo(t *testing.T) {
	withVersion(t, "dev", "")
	readBuildInfo = func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{Main: debug.Module{Version: "v9.9.0"}}, true
	}
	if got := GetVersion(); got != "v9.9.0" {
		t.Errorf("GetVersion() = %v, want v9.9.0", got)
	}
}

func TestGetVersion_GitDescribe(t *testing.T) {
	withVersion(t, "dev", "")
	dir := t.TempDir()
	writeFakeGit(t, dir, "#!/bin/sh\nif [ \"$1\" = \"describe\" ]; then echo v1.0.0-3-gabc; exit 0; fi\nexit 1\n")
	t.Setenv("PATH", dir)

	if got := GetVersion(); got != "v1.0.0-3-gabc" {
		t.Errorf("GetVersion() = %v, want v1.0.0-3-gabc", got)
	}
}

func TestGitDescribe_FallsBackToRevParse(t *testing.T) {
	dir := t.TempDir()
	writeFakeGit(t, dir, "#!/bin/sh\nif [ \"$1\" = \"rev-parse\" ]; then echo abc123; exit 0; fi\nexit 1\n")
	t.Setenv("PATH", dir)

	if got := gitDescribe(); got != "abc123" {
		t.Errorf("gitDescribe() = %q, want abc123", got)
	}
}
