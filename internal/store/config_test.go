package store

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigDir_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HDNOTES_CONFIG_DIR", dir)

	got, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir: %v", err)
	}
	if got != dir {
		t.Fatalf("expected %q; got %q", dir, got)
	}
}

func TestLoadConfig_MissingFileIsEmptyConfig(t *testing.T) {
	t.Setenv("HDNOTES_CONFIG_DIR", t.TempDir())

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.APIURL != "" || cfg.APIKey != "" {
		t.Fatalf("expected an empty config; got %#v", cfg)
	}
}

func TestSaveLoadConfig_RoundTrip(t *testing.T) {
	t.Setenv("HDNOTES_CONFIG_DIR", t.TempDir())

	want := &Config{APIURL: "https://api.example.com", APIKey: "anon-key"}
	if err := SaveConfig(want); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	got, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if *got != *want {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestSaveConfig_ModeAndNoTempLeftovers(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HDNOTES_CONFIG_DIR", dir)

	if err := SaveConfig(&Config{APIURL: "u", APIKey: "k"}); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	fi, err := os.Stat(filepath.Join(dir, "config.json"))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := fi.Mode().Perm(); perm != 0o600 {
		t.Fatalf("the key is a secret; expected 0600, got %o", perm)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("temp files left behind: %v", matches)
	}
}
