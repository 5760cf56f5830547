package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewLayout(t *testing.T) {
	l := NewLayout("/data/tagflow")

	if l.RawDir != "/data/tagflow/raw" {
		t.Errorf("RawDir = %q", l.RawDir)
	}
	if l.StoreFile != "/data/tagflow/store.csv" {
		t.Errorf("StoreFile = %q", l.StoreFile)
	}
	if got := l.ConfigFile(TagsFile); got != "/data/tagflow/config/tags.json" {
		t.Errorf("ConfigFile(TagsFile) = %q", got)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "empty path", path: "", want: ""},
		{name: "tilde prefix", path: "~/data", want: filepath.Join(home, "data")},
		{name: "bare tilde", path: "~", want: home},
		{name: "absolute path untouched", path: "/var/lib/tagflow", want: "/var/lib/tagflow"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpandPath(tt.path); got != tt.want {
				t.Errorf("ExpandPath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestExpandPathEnvVar(t *testing.T) {
	t.Setenv("TAGFLOW_TEST_DIR", "/srv/data")
	if got := ExpandPath("$TAGFLOW_TEST_DIR/raw"); got != "/srv/data/raw" {
		t.Errorf("ExpandPath() = %q", got)
	}
}
