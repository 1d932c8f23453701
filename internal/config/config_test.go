package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func setup(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	viper.Reset()
	t.Cleanup(viper.Reset)
	Load()
	return home
}

func TestDefaults(t *testing.T) {
	setup(t)
	if got := Get(KeyPython); got != "python3" {
		t.Errorf("python = %q, want python3", got)
	}
	if got := Get(KeyLogLevel); got != "info" {
		t.Errorf("log_level = %q, want info", got)
	}
	if got := Get(KeyBaseDir); got != "" {
		t.Errorf("base_dir = %q, want empty", got)
	}
}

func TestSet_Persists(t *testing.T) {
	home := setup(t)

	if err := Set(KeyBaseDir, "/srv/rdmo"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(home, ".rdmoctl", "config.yaml")); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	viper.Reset()
	Load()
	if got := Get(KeyBaseDir); got != "/srv/rdmo" {
		t.Errorf("base_dir after reload = %q, want /srv/rdmo", got)
	}
}

func TestSet_UnknownKey(t *testing.T) {
	setup(t)
	if err := Set("catalog_url", "x"); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("RDMOCTL_PYTHON", "/opt/rdmo/env/bin/python")
	setup(t)
	if got := Get(KeyPython); got != "/opt/rdmo/env/bin/python" {
		t.Errorf("python = %q, want env override", got)
	}
}
