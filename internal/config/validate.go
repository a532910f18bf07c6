package config

import (
	"fmt"
	"shortfactory/internal/services"
)

var (
	validLogFormats  = map[string]bool{"console": true, "json": true}
	validLogLevels   = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	validPrivacy     = map[string]bool{"public": true, "unlisted": true, "private": true}
)

// Validate checks that the configuration is internally consistent and
// reports a services.ErrConfiguration wrapping the first problem found.
func (c *Config) Validate() error {
	if c.Paths.ArtifactRoot == "" {
		return configErr("paths.artifact_root must not be empty")
	}
	if c.Paths.StateDir == "" {
		return configErr("paths.state_dir must not be empty")
	}
	if c.Paths.LogDir == "" {
		return configErr("paths.log_dir must not be empty")
	}

	if !validLogFormats[c.Logging.Format] {
		return configErr(fmt.Sprintf("logging.format %q is not one of console, json", c.Logging.Format))
	}
	if !validLogLevels[c.Logging.Level] {
		return configErr(fmt.Sprintf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}
	if c.Logging.RetentionDays < 0 {
		return configErr("logging.retention_days must not be negative")
	}

	if !validPrivacy[c.Publishing.Privacy] {
		return configErr(fmt.Sprintf("publishing.privacy %q is not one of public, unlisted, private", c.Publishing.Privacy))
	}

	if c.Retention.GraceDays < 0 {
		return configErr("retention.grace_days must not be negative")
	}

	if c.Workflow.DiscoveryIntervalSeconds <= 0 {
		return configErr("workflow.discovery_interval_seconds must be positive")
	}
	if c.Workflow.ErrorRetryIntervalSeconds <= 0 {
		return configErr("workflow.error_retry_interval_seconds must be positive")
	}
	if c.Workflow.DrainDeadlineSeconds <= 0 {
		return configErr("workflow.drain_deadline_seconds must be positive")
	}

	if err := c.StagePool.validate(); err != nil {
		return err
	}

	if c.Resilience.FailureThreshold <= 0 {
		return configErr("resilience.failure_threshold must be positive")
	}
	if c.Resilience.WindowSeconds <= 0 {
		return configErr("resilience.window_seconds must be positive")
	}
	if c.Resilience.CoolDownSeconds <= 0 {
		return configErr("resilience.cool_down_seconds must be positive")
	}
	if c.Resilience.BulkheadMaxInFlight <= 0 {
		return configErr("resilience.bulkhead_max_in_flight must be positive")
	}
	if c.Resilience.BulkheadQueueDepth < 0 {
		return configErr("resilience.bulkhead_queue_depth must not be negative")
	}

	if c.TrendIngest.Enabled && c.TrendIngest.APIKey == "" {
		// Not a hard failure: the trend client does not use these
		// credentials. See DESIGN.md Open Question 1.
		return nil
	}

	return nil
}

func (p StagePool) validate() error {
	for name, size := range map[string]int{
		"scripting":      p.Scripting,
		"narrating":      p.Narrating,
		"sourcing_clips": p.SourcingClips,
		"assembling":     p.Assembling,
		"captioning":     p.Captioning,
		"metadata":       p.Metadata,
		"publishing":     p.Publishing,
	} {
		if size <= 0 {
			return configErr(fmt.Sprintf("stage_pool.%s must be positive", name))
		}
	}
	if p.QueueCapacity <= 0 {
		return configErr("stage_pool.queue_capacity must be positive")
	}
	return nil
}

func configErr(message string) error {
	return services.Wrap(services.ErrConfiguration, "config", "validate", message, nil)
}
