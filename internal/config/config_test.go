package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/folio-cli/internal/config"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	// Keep any developer .env out of the test.
	if err := os.Chdir(home); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return home
}

func TestLoadDefaults(t *testing.T) {
	home := isolate(t)
	c, err := config.Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.StorageBackend != config.BackendFile || c.GitHubBranch != "main" || c.HTTPTimeoutSec != 30 {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if want := filepath.Join(home, ".folio", "projects.json"); c.StorePath != want {
		t.Fatalf("store path %s, want %s", c.StorePath, want)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	home := isolate(t)
	cfgPath := filepath.Join(home, "cfg.yaml")
	if err := config.Save(&config.Global{StorageBackend: "file", GitHubOwner: "fromfile", GitHubRepo: "site", HTTPTimeoutSec: 5}, cfgPath); err != nil {
		t.Fatalf("save: %v", err)
	}
	t.Setenv("FOLIO_GITHUB_OWNER", "fromenv")
	c, err := config.Load(cfgPath)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.GitHubOwner != "fromenv" || c.GitHubRepo != "site" || c.HTTPTimeoutSec != 5 {
		t.Fatalf("unexpected precedence: %+v", c)
	}
}

func TestDotEnvApplied(t *testing.T) {
	home := isolate(t)
	if err := os.WriteFile(filepath.Join(home, ".env"), []byte("FOLIO_GITHUB_REPO=dotenv-site\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("FOLIO_GITHUB_REPO") })
	c, err := config.Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.GitHubRepo != "dotenv-site" {
		t.Fatalf(".env not applied: %+v", c)
	}
}

func TestInvalidBackendRejected(t *testing.T) {
	isolate(t)
	t.Setenv("FOLIO_STORAGE_BACKEND", "sqlite")
	if _, err := config.Load(""); err == nil {
		t.Fatalf("expected invalid backend error")
	}
}

func TestStorePathExpandsHome(t *testing.T) {
	home := isolate(t)
	t.Setenv("FOLIO_STORE_PATH", "~/data/p.json")
	c, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	if c.StorePath != filepath.Join(home, "data", "p.json") {
		t.Fatalf("unexpected store path %s", c.StorePath)
	}
}
