package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration for local state and artifacts.
type Paths struct {
	ArtifactRoot string `toml:"artifact_root"`
	StateDir     string `toml:"state_dir"`
	LogDir       string `toml:"log_dir"`
	CredentialDir string `toml:"credential_dir"`
}

// Dashboard contains connection settings for the external row store.
type Dashboard struct {
	Endpoint          string `toml:"endpoint"`
	CredentialsPath   string `toml:"credentials_path"`
	RequestTimeoutSec int    `toml:"request_timeout_seconds"`
}

// TextGen contains shared LLM connection settings for ideation, scripting,
// and metadata synthesis.
type TextGen struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	Referer        string `toml:"referer"`
	Title          string `toml:"title"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// TTS contains text-to-speech provider settings.
type TTS struct {
	Provider       string `toml:"provider"`
	APIKey         string `toml:"api_key"`
	Voice          string `toml:"voice"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// TrendIngest contains optional trend-source settings. The trend source
// runs only when Enabled is true and Subreddit names at least one
// subreddit; the trend client reads Reddit's public listing API and does
// not use APIKey or APISecret.
type TrendIngest struct {
	Enabled        bool   `toml:"enabled"`
	Subreddit      string `toml:"subreddit"`
	APIKey         string `toml:"api_key"`
	APISecret      string `toml:"api_secret"`
	MinUpvotes     int    `toml:"min_upvotes"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// StockSearch contains stock-footage provider settings.
type StockSearch struct {
	Provider       string `toml:"provider"`
	APIKey         string `toml:"api_key"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Publishing contains upload credentials and per-video publish defaults.
// MadeForKids and CategoryID are configuration (not constants) per the
// system's Open Question resolution.
type Publishing struct {
	CredentialsPath string `toml:"credentials_path"`
	MadeForKids     bool   `toml:"made_for_kids"`
	CategoryID      string `toml:"category_id"`
	Privacy         string `toml:"privacy"`
	TimeoutSeconds  int    `toml:"timeout_seconds"`
}

// Workflow contains supervisor timing configuration.
type Workflow struct {
	DiscoveryIntervalSeconds int `toml:"discovery_interval_seconds"`
	ErrorRetryIntervalSeconds int `toml:"error_retry_interval_seconds"`
	DrainDeadlineSeconds     int `toml:"drain_deadline_seconds"`
	DailyRunHour             int `toml:"daily_run_hour"`
}

// StagePool configures one stage's worker-pool size.
type StagePool struct {
	Scripting      int `toml:"scripting"`
	Narrating      int `toml:"narrating"`
	SourcingClips  int `toml:"sourcing_clips"`
	Assembling     int `toml:"assembling"`
	Captioning     int `toml:"captioning"`
	Metadata       int `toml:"metadata"`
	Publishing     int `toml:"publishing"`
	QueueCapacity  int `toml:"queue_capacity"`
}

// Resilience contains circuit-breaker and bulkhead defaults.
type Resilience struct {
	FailureThreshold   int `toml:"failure_threshold"`
	WindowSeconds      int `toml:"window_seconds"`
	CoolDownSeconds    int `toml:"cool_down_seconds"`
	BulkheadMaxInFlight int `toml:"bulkhead_max_in_flight"`
	BulkheadQueueDepth  int `toml:"bulkhead_queue_depth"`
	BulkheadQueueTimeoutSeconds int `toml:"bulkhead_queue_timeout_seconds"`
}

// Logging contains log output configuration.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Retention contains artifact garbage-collection configuration.
type Retention struct {
	GraceDays int `toml:"grace_days"`
}

// Notifications contains ntfy push-notification settings. An empty Topic
// disables notifications; the service degrades to a no-op rather than
// failing the pipeline.
type Notifications struct {
	Topic          string `toml:"topic"`
	RequestTimeout int    `toml:"request_timeout_seconds"`
}

// Config encapsulates all configuration values for shortfactory.
type Config struct {
	Paths         Paths         `toml:"paths"`
	Dashboard     Dashboard     `toml:"dashboard"`
	TextGen       TextGen       `toml:"textgen"`
	TTS           TTS           `toml:"tts"`
	TrendIngest   TrendIngest   `toml:"trend_ingest"`
	StockSearch   StockSearch   `toml:"stock_search"`
	Publishing    Publishing    `toml:"publishing"`
	Workflow      Workflow      `toml:"workflow"`
	StagePool     StagePool     `toml:"stage_pool"`
	Resilience    Resilience    `toml:"resilience"`
	Logging       Logging       `toml:"logging"`
	Retention     Retention     `toml:"retention"`
	Notifications Notifications `toml:"notifications"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/shortfactory/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/shortfactory/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("shortfactory.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.ArtifactRoot, c.Paths.StateDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.CredentialDir) != "" {
		if err := os.MkdirAll(c.Paths.CredentialDir, 0o700); err != nil {
			return fmt.Errorf("create credential directory %q: %w", c.Paths.CredentialDir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// GetLLM returns the shared LLM connection settings used by the llm.Client.
func (c *Config) GetLLM() (apiKey, baseURL, model, referer, title string, timeoutSeconds int) {
	return strings.TrimSpace(c.TextGen.APIKey),
		strings.TrimSpace(c.TextGen.BaseURL),
		strings.TrimSpace(c.TextGen.Model),
		strings.TrimSpace(c.TextGen.Referer),
		strings.TrimSpace(c.TextGen.Title),
		c.TextGen.TimeoutSeconds
}
