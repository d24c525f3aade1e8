package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/organforge/pipework/config"
	"github.com/organforge/pipework/importer"
)

func TestDefaults(t *testing.T) {
	cfg := config.Load(filepath.Join(t.TempDir(), "missing.env"))
	if cfg.LogLevel != "info" || cfg.ReleasePrefix != "rel" || cfg.TremulantPrefix != "trem" {
		t.Fatalf("defaults, got %+v", cfg)
	}
	if !cfg.LoadRelease || !cfg.ExtractKeyPressTime || cfg.Matcher != "midi" {
		t.Fatalf("import defaults, got %+v", cfg)
	}
	opts, err := cfg.ImportOptions()
	if err != nil {
		t.Fatalf("ImportOptions failed: %v", err)
	}
	if opts.Matcher.Name() != "midi" || len(opts.Extensions) != 2 {
		t.Fatalf("options, got %+v", opts)
	}
}

func TestEnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), "test.env")
	contents := "PIPEWORK_RELEASE_PREFIX=release\n" +
		"PIPEWORK_LOAD_RELEASE=false\n" +
		"PIPEWORK_MATCHER=ordinal\n" +
		"PIPEWORK_EXTENSIONS=.wav, .aif\n" +
		"PIPEWORK_LOG_MAX_SIZE=50\n" +
		"PIPEWORK_LOG_LEVEL=debug\n"
	if err := os.WriteFile(envFile, []byte(contents), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	// variables already set win over the file
	t.Setenv("PIPEWORK_LOG_LEVEL", "warn")
	for _, k := range []string{"PIPEWORK_RELEASE_PREFIX", "PIPEWORK_LOAD_RELEASE", "PIPEWORK_MATCHER", "PIPEWORK_EXTENSIONS", "PIPEWORK_LOG_MAX_SIZE"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg := config.Load(envFile)
	if cfg.ReleasePrefix != "release" || cfg.LoadRelease || cfg.LogMaxSize != 50 || cfg.LogLevel != "warn" {
		t.Fatalf("got %+v", cfg)
	}
	if len(cfg.Extensions) != 2 || cfg.Extensions[1] != ".aif" {
		t.Fatalf("extensions, got %v", cfg.Extensions)
	}
	opts, err := cfg.ImportOptions()
	if err != nil {
		t.Fatalf("ImportOptions failed: %v", err)
	}
	if _, ok := opts.Matcher.(importer.PipeOrdinalMatcher); !ok {
		t.Fatalf("matcher, got %T", opts.Matcher)
	}
}

func TestConvention(t *testing.T) {
	cfg := config.Load(filepath.Join(t.TempDir(), "missing.env"))
	cfg.Convention = "layered"
	opts, err := cfg.ImportOptions()
	if err != nil {
		t.Fatalf("ImportOptions failed: %v", err)
	}
	if opts.AttackPrefix != "attack" {
		t.Fatalf("attack prefix, got %q, expected attack", opts.AttackPrefix)
	}
	cfg.Convention = "nonexistent"
	if _, err := cfg.ImportOptions(); err == nil {
		t.Fatalf("expected an error for an unknown convention")
	}
}
