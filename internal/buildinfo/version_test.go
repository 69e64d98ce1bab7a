package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestVcsState(t *testing.T) {
	tests := []struct {
		name     string
		settings []debug.BuildSetting
		revision string
		dirty    bool
	}{
		{name: "no settings"},
		{
			name:     "revision only",
			settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "abc123def456789"}},
			revision: "abc123def456789",
		},
		{
			name: "revision and dirty",
			settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "abc123"},
				{Key: "vcs.modified", Value: "true"},
			},
			revision: "abc123",
			dirty:    true,
		},
		{
			name: "clean flag and unrelated settings ignored",
			settings: []debug.BuildSetting{
				{Key: "vcs", Value: "git"},
				{Key: "vcs.time", Value: "2026-01-15T12:00:00Z"},
				{Key: "vcs.revision", Value: "abc123"},
				{Key: "vcs.modified", Value: "false"},
			},
			revision: "abc123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			revision, dirty := vcsState(&debug.BuildInfo{Settings: tt.settings})
			if revision != tt.revision || dirty != tt.dirty {
				t.Errorf("vcsState() = (%q, %v), want (%q, %v)", revision, dirty, tt.revision, tt.dirty)
			}
		})
	}
}

// The shape of Version's output depends on how the test binary was
// built, so only the envelope is asserted: non-empty, and one of the
// documented forms.
func TestVersionEnvelope(t *testing.T) {
	v := Version()
	if v == "" {
		t.Fatal("Version() returned an empty string")
	}
	if !strings.HasPrefix(v, "v") && !strings.HasPrefix(v, "dev") && v != "unknown" {
		t.Errorf("Version() = %q, want a tagged version, a dev pseudo-version, or unknown", v)
	}
}
