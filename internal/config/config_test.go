package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromMissingFileIsNotAnError(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom missing file returned error: %v", err)
	}
	if cfg.MaxBufferBytes != 0 {
		t.Fatalf("zero-value Config.MaxBufferBytes = %d, want 0", cfg.MaxBufferBytes)
	}
}

func TestLoadFromParsesFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "socketPath: /tmp/foo.sock\nmaxBufferBytes: 1024\ndefaultCols: 200\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom error: %v", err)
	}
	if cfg.SocketPath != "/tmp/foo.sock" {
		t.Errorf("SocketPath = %q, want %q", cfg.SocketPath, "/tmp/foo.sock")
	}
	if cfg.MaxBufferBytes != 1024 {
		t.Errorf("MaxBufferBytes = %d, want 1024", cfg.MaxBufferBytes)
	}
	if cfg.DefaultCols != 200 {
		t.Errorf("DefaultCols = %d, want 200", cfg.DefaultCols)
	}
	if cfg.DefaultRows != 0 {
		t.Errorf("DefaultRows = %d, want 0 (unset)", cfg.DefaultRows)
	}
}

func TestWithDefaultsFillsOnlyUnsetFields(t *testing.T) {
	cfg := Config{DefaultCols: 100}.WithDefaults()

	if cfg.DefaultCols != 100 {
		t.Errorf("DefaultCols = %d, want 100 (explicit value preserved)", cfg.DefaultCols)
	}
	if cfg.DefaultRows != 40 {
		t.Errorf("DefaultRows = %d, want default 40", cfg.DefaultRows)
	}
	if cfg.MaxBufferBytes != 512*1024 {
		t.Errorf("MaxBufferBytes = %d, want default 512KiB", cfg.MaxBufferBytes)
	}
	if cfg.DefaultShell != "/bin/bash" {
		t.Errorf("DefaultShell = %q, want /bin/bash", cfg.DefaultShell)
	}
}

func TestLoadFromInvalidYAMLErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("not: [valid yaml"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Fatalf("expected error for invalid YAML")
	}
}
