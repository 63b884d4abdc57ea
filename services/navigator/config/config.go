// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads the Navigator service configuration from embedded
// YAML defaults with environment variable overrides.
package config

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed navigator.yaml
var defaultConfigYAML []byte

// MaxYAMLFileSize caps config files to prevent pathological input.
const MaxYAMLFileSize = 1 << 20 // 1 MiB

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Port is the HTTP listen port.
	Port int `yaml:"port"`

	// ReadTimeoutSeconds bounds request reads.
	ReadTimeoutSeconds int `yaml:"read_timeout_seconds"`

	// WriteTimeoutSeconds bounds response writes. Analysis responses can
	// be large, so this is generous.
	WriteTimeoutSeconds int `yaml:"write_timeout_seconds"`
}

// AnalysisConfig holds analysis pipeline settings.
type AnalysisConfig struct {
	// Workers is the ingestion worker pool size.
	Workers int `yaml:"workers"`

	// MaxFileSizeBytes is the per-file size ceiling; larger files degrade
	// to a childless file node.
	MaxFileSizeBytes int `yaml:"max_file_size_bytes"`

	// MaxFiles caps discovery per repository.
	MaxFiles int `yaml:"max_files"`

	// Extensions are the source file extensions discovery accepts.
	Extensions []string `yaml:"extensions"`
}

// CacheConfig holds cache sizing.
type CacheConfig struct {
	// ExtractionSize is the LRU entry count for the extraction cache.
	ExtractionSize int `yaml:"extraction_size"`
}

// LimitsConfig holds rate limits.
type LimitsConfig struct {
	// AnalyzeRatePerMinute bounds how often a new analysis may start.
	AnalyzeRatePerMinute int `yaml:"analyze_rate_per_minute"`
}

// Config is the complete Navigator service configuration.
//
// Thread Safety: Immutable after loading; safe for concurrent use.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Cache    CacheConfig    `yaml:"cache"`
	Limits   LimitsConfig   `yaml:"limits"`
}

// Load returns the configuration: embedded defaults, optionally overlaid
// with the YAML file at path (empty path skips the overlay), then
// NAVIGATOR_* environment overrides, then validation.
//
// Inputs:
//
//	path - Optional YAML config file. Empty means defaults only.
//
// Outputs:
//
//	*Config - The validated configuration. Never nil on success.
//	error - Non-nil if parsing or validation fails.
func Load(path string) (*Config, error) {
	cfg, err := parse(defaultConfigYAML)
	if err != nil {
		return nil, fmt.Errorf("config: embedded defaults: %w", err)
	}

	if path != "" {
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, readErr)
		}
		overlay, parseErr := parse(data)
		if parseErr != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", path, parseErr)
		}
		cfg = overlay
		slog.Info("config file loaded", slog.String("path", path))
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation: %w", err)
	}
	return cfg, nil
}

// parse unmarshals one YAML document into a Config.
func parse(data []byte) (*Config, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty YAML data")
	}
	if len(data) > MaxYAMLFileSize {
		return nil, fmt.Errorf("YAML data exceeds maximum size (%d > %d)", len(data), MaxYAMLFileSize)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	return &cfg, nil
}

// applyEnvOverrides overlays NAVIGATOR_* environment variables.
func applyEnvOverrides(cfg *Config) {
	overrideInt("NAVIGATOR_PORT", &cfg.Server.Port)
	overrideInt("NAVIGATOR_WORKERS", &cfg.Analysis.Workers)
	overrideInt("NAVIGATOR_MAX_FILE_SIZE", &cfg.Analysis.MaxFileSizeBytes)
	overrideInt("NAVIGATOR_MAX_FILES", &cfg.Analysis.MaxFiles)
	overrideInt("NAVIGATOR_CACHE_SIZE", &cfg.Cache.ExtractionSize)
	overrideInt("NAVIGATOR_ANALYZE_RATE", &cfg.Limits.AnalyzeRatePerMinute)

	if v := os.Getenv("NAVIGATOR_EXTENSIONS"); v != "" {
		var exts []string
		for _, ext := range strings.Split(v, ",") {
			ext = strings.TrimSpace(ext)
			if ext == "" {
				continue
			}
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			exts = append(exts, ext)
		}
		if len(exts) > 0 {
			cfg.Analysis.Extensions = exts
		}
	}
}

// overrideInt parses an env var as an int into dst, logging and skipping
// unparseable values.
func overrideInt(key string, dst *int) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("ignoring unparseable env override",
			slog.String("key", key),
			slog.String("value", v))
		return
	}
	*dst = n
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in (0, 65535], got %d", c.Server.Port)
	}
	if c.Analysis.Workers <= 0 {
		return fmt.Errorf("analysis.workers must be positive, got %d", c.Analysis.Workers)
	}
	if c.Analysis.MaxFileSizeBytes <= 0 {
		return fmt.Errorf("analysis.max_file_size_bytes must be positive, got %d", c.Analysis.MaxFileSizeBytes)
	}
	if c.Analysis.MaxFiles <= 0 {
		return fmt.Errorf("analysis.max_files must be positive, got %d", c.Analysis.MaxFiles)
	}
	if len(c.Analysis.Extensions) == 0 {
		return fmt.Errorf("analysis.extensions must not be empty")
	}
	for i, ext := range c.Analysis.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("analysis.extensions[%d] must start with a dot, got %q", i, ext)
		}
	}
	if c.Cache.ExtractionSize <= 0 {
		return fmt.Errorf("cache.extraction_size must be positive, got %d", c.Cache.ExtractionSize)
	}
	if c.Limits.AnalyzeRatePerMinute <= 0 {
		return fmt.Errorf("limits.analyze_rate_per_minute must be positive, got %d", c.Limits.AnalyzeRatePerMinute)
	}
	return nil
}
