package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"shortfactory/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantArtifacts := filepath.Join(tempHome, ".local", "share", "shortfactory", "artifacts")
	if cfg.Paths.ArtifactRoot != wantArtifacts {
		t.Fatalf("unexpected artifact root: got %q want %q", cfg.Paths.ArtifactRoot, wantArtifacts)
	}
	if cfg.TrendIngest.Enabled {
		t.Fatal("expected trend ingest disabled by default")
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("unexpected default log format: %q", cfg.Logging.Format)
	}
	if cfg.StagePool.QueueCapacity != config.Default().StagePool.QueueCapacity {
		t.Fatalf("unexpected queue capacity: %d", cfg.StagePool.QueueCapacity)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.ArtifactRoot, cfg.Paths.StateDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "shortfactory.toml")

	type payload struct {
		TextGen struct {
			APIKey string `toml:"api_key"`
			Model  string `toml:"model"`
		} `toml:"textgen"`
		Workflow struct {
			DiscoveryIntervalSeconds int `toml:"discovery_interval_seconds"`
		} `toml:"workflow"`
	}
	custom := payload{}
	custom.TextGen.APIKey = "abc123"
	custom.TextGen.Model = "test/model"
	custom.Workflow.DiscoveryIntervalSeconds = 20

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.TextGen.APIKey != "abc123" {
		t.Fatalf("expected api key from file, got %q", cfg.TextGen.APIKey)
	}
	if cfg.TextGen.Model != "test/model" {
		t.Fatalf("expected model override, got %q", cfg.TextGen.Model)
	}
	if cfg.Workflow.DiscoveryIntervalSeconds != 20 {
		t.Fatalf("expected discovery interval 20, got %d", cfg.Workflow.DiscoveryIntervalSeconds)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "shortfactory") {
		t.Fatalf("sample config missing expected content: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.TextGen.BaseURL == "" {
		t.Fatal("expected sample to set a textgen base url")
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Format = "bogus"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid log format")
	}

	cfg = config.Default()
	cfg.Publishing.Privacy = "sorta"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid privacy value")
	}

	cfg = config.Default()
	cfg.Workflow.DiscoveryIntervalSeconds = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-positive discovery interval")
	}

	cfg = config.Default()
	cfg.StagePool.Scripting = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-positive stage pool size")
	}

	cfg = config.Default()
	cfg.Resilience.FailureThreshold = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-positive failure threshold")
	}

	cfg = config.Default()
	cfg.TrendIngest.Enabled = true
	cfg.TrendIngest.APIKey = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected trend ingest without key to degrade gracefully, got %v", err)
	}
}
