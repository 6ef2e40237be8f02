package runtimeconfig_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goliatone/go-press/internal/runtimeconfig"
)

func TestDefaultConfigValidates(t *testing.T) {
	if err := runtimeconfig.DefaultConfig().Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestDefaultConfigLocationIsChicago(t *testing.T) {
	loc, err := runtimeconfig.DefaultConfig().Location()
	if err != nil {
		t.Fatalf("Location() error: %v", err)
	}
	if loc.String() != "America/Chicago" {
		t.Fatalf("expected America/Chicago, got %s", loc)
	}
}

func TestBlankTimezoneUsesDefaultZone(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.History.Timezone = "  "

	loc, err := cfg.Location()
	if err != nil {
		t.Fatalf("Location() error: %v", err)
	}
	if loc.String() != "America/Chicago" {
		t.Fatalf("expected America/Chicago for blank timezone, got %s", loc)
	}
}

func TestConfigValidate_RejectsUnknownTimezone(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.History.Timezone = "Mars/Olympus"

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrHistoryTimezoneInvalid) {
		t.Fatalf("expected ErrHistoryTimezoneInvalid, got %v", err)
	}
}

func TestConfigValidate_RequiresOutputDir(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Site.OutputDir = " "

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrOutputDirRequired) {
		t.Fatalf("expected ErrOutputDirRequired, got %v", err)
	}
}

func TestConfigValidate_RequiresHistoryFile(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.History.File = ""

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrHistoryFileRequired) {
		t.Fatalf("expected ErrHistoryFileRequired, got %v", err)
	}
}

func TestConfigValidate_RejectsNegativeWorkers(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Site.Workers = -1

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrWorkersInvalid) {
		t.Fatalf("expected ErrWorkersInvalid, got %v", err)
	}
}

func TestConfigValidate_RejectsZeroDebounce(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Dev.Debounce = 0

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrDebounceInvalid) {
		t.Fatalf("expected ErrDebounceInvalid, got %v", err)
	}
}

func TestConfigValidate_RejectsUnknownLoggingProvider(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Logging.Provider = "syslog"

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingProviderUnknown) {
		t.Fatalf("expected ErrLoggingProviderUnknown, got %v", err)
	}
}

func TestConfigValidate_RejectsInvalidLoggingFormat(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Logging.Provider = "gologger"
	cfg.Logging.Format = "xml"

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingFormatInvalid) {
		t.Fatalf("expected ErrLoggingFormatInvalid, got %v", err)
	}
}

func TestLoadFileOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "press.yaml")
	doc := `
content:
  dir: posts
history:
  timezone: UTC
dev:
  debounce: 500ms
logging:
  provider: gologger
  format: pretty
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := runtimeconfig.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if cfg.Content.Dir != "posts" {
		t.Fatalf("expected content dir override, got %q", cfg.Content.Dir)
	}
	if cfg.Content.DefsFile != "defs.md" {
		t.Fatalf("expected defs file default to survive, got %q", cfg.Content.DefsFile)
	}
	if cfg.Dev.Debounce != 500*time.Millisecond {
		t.Fatalf("expected 500ms debounce, got %s", cfg.Dev.Debounce)
	}
	if cfg.Site.OutputDir != "docs" {
		t.Fatalf("expected default output dir, got %q", cfg.Site.OutputDir)
	}
	if cfg.Logging.Format != "pretty" {
		t.Fatalf("expected pretty format, got %q", cfg.Logging.Format)
	}
}

func TestLoadFileValidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "press.yaml")
	if err := os.WriteFile(path, []byte("site:\n  workers: -3\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := runtimeconfig.LoadFile(path); !errors.Is(err, runtimeconfig.ErrWorkersInvalid) {
		t.Fatalf("expected ErrWorkersInvalid, got %v", err)
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := runtimeconfig.LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestWatchDirsDefaults(t *testing.T) {
	dirs := runtimeconfig.DefaultConfig().WatchDirs()
	want := []string{"md", "gen/template", "gen/static"}
	if len(dirs) != len(want) {
		t.Fatalf("expected %v, got %v", want, dirs)
	}
	for i := range want {
		if dirs[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, dirs)
		}
	}
}
