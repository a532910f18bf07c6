// Package config loads and validates shortfactory's TOML configuration.
//
// Configuration sections by subsystem:
//   - Paths: artifact root, state directory, log directory
//   - Dashboard: external row-store connection
//   - TextGen: LLM connection settings shared by ideation/scripting/metadata
//   - TTS: text-to-speech provider settings
//   - TrendIngest: optional Reddit-like trend source
//   - StockSearch: stock-footage provider settings
//   - Publishing: upload credentials and per-video publish defaults
//   - Workflow: discovery interval, retry interval, drain deadline
//   - Resilience: circuit breaker thresholds and bulkhead limits
//   - Logging: log format, level, retention
//   - Retention: artifact garbage-collection grace period
package config
