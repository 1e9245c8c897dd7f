package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNew_AppliesDefaults(t *testing.T) {
	c := New()
	if c.LogLevel != "info" {
		t.Errorf("log_level default = %q, want info", c.LogLevel)
	}
	if c.HealthPort != "8090" {
		t.Errorf("health_port default = %q, want 8090", c.HealthPort)
	}
	if c.Browser.Stealth != "headless" {
		t.Errorf("browser.stealth default = %q, want headless", c.Browser.Stealth)
	}
	if len(c.Browser.ResourceBlocking) == 0 {
		t.Error("expected a non-empty default resource_blocking list")
	}
}

func TestLoadFile_ParsesYAMLAndFillsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "athena.yaml")
	yamlContent := []byte("log_level: debug\nbrowser:\n  remote_url: ws://localhost:9222\n  stealth: headful\n")
	if err := os.WriteFile(path, yamlContent, 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.LogLevel != "debug" {
		t.Errorf("log_level = %q, want debug", c.LogLevel)
	}
	if c.Browser.RemoteURL != "ws://localhost:9222" {
		t.Errorf("browser.remote_url = %q", c.Browser.RemoteURL)
	}
	if c.Browser.Stealth != "headful" {
		t.Errorf("browser.stealth = %q, want headful", c.Browser.Stealth)
	}
	// health_port was absent from the file, so the default still applies.
	if c.HealthPort != "8090" {
		t.Errorf("health_port = %q, want default 8090", c.HealthPort)
	}
}

func TestLoadFile_MissingFile(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
