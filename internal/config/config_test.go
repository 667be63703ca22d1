package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// chdir changes to dir for the duration of the test; t.Chdir needs Go 1.24+.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoad_FlagWinsOverEnv(t *testing.T) {
	t.Setenv(EnvAPIKey, "env-key")

	cfg, err := Load("flag-key")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIKey != "flag-key" {
		t.Fatalf("APIKey = %q, want flag-key", cfg.APIKey)
	}
}

func TestLoad_EnvWinsOverDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(EnvAPIKey+"=file-key\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	chdir(t, dir)
	t.Setenv(EnvAPIKey, "env-key")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIKey != "env-key" {
		t.Fatalf("APIKey = %q, want env-key", cfg.APIKey)
	}
}

func TestLoad_DotEnvInCwd(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(EnvAPIKey+"=file-key\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	chdir(t, dir)
	t.Setenv(EnvAPIKey, "")
	os.Unsetenv(EnvAPIKey)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIKey != "file-key" {
		t.Fatalf("APIKey = %q, want file-key", cfg.APIKey)
	}
}

func TestLoad_MissingKeyFails(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv(EnvAPIKey, "")
	os.Unsetenv(EnvAPIKey)
	t.Setenv("HOME", t.TempDir())

	_, err := Load("")
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestLoad_JournalPathOverride(t *testing.T) {
	t.Setenv(EnvAPIKey, "k")
	t.Setenv(EnvJournalPath, "/tmp/custom.db")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.JournalPath != "/tmp/custom.db" {
		t.Fatalf("JournalPath = %q, want /tmp/custom.db", cfg.JournalPath)
	}
}
