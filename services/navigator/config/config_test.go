// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EmbeddedDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8090, cfg.Server.Port)
	assert.Equal(t, 4, cfg.Analysis.Workers)
	assert.Equal(t, 10*1024*1024, cfg.Analysis.MaxFileSizeBytes)
	assert.Len(t, cfg.Analysis.Extensions, 7)
	assert.Equal(t, 4096, cfg.Cache.ExtractionSize)
	assert.Equal(t, 6, cfg.Limits.AnalyzeRatePerMinute)
}

func TestLoad_FileOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "navigator.yaml")
	yaml := `
server:
  port: 9100
  read_timeout_seconds: 10
  write_timeout_seconds: 60
analysis:
  workers: 2
  max_file_size_bytes: 1024
  max_files: 100
  extensions: [".py"]
cache:
  extraction_size: 16
limits:
  analyze_rate_per_minute: 1
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, 2, cfg.Analysis.Workers)
	assert.Equal(t, []string{".py"}, cfg.Analysis.Extensions)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("NAVIGATOR_PORT", "9999")
	t.Setenv("NAVIGATOR_WORKERS", "16")
	t.Setenv("NAVIGATOR_EXTENSIONS", "py, go,rs")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, 16, cfg.Analysis.Workers)
	assert.Equal(t, []string{".py", ".go", ".rs"}, cfg.Analysis.Extensions)
}

func TestLoad_UnparseableEnvIgnored(t *testing.T) {
	t.Setenv("NAVIGATOR_PORT", "not-a-number")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8090, cfg.Server.Port, "unparseable override must keep the default")
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero port", func(c *Config) { c.Server.Port = 0 }},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }},
		{"zero workers", func(c *Config) { c.Analysis.Workers = 0 }},
		{"zero file size", func(c *Config) { c.Analysis.MaxFileSizeBytes = 0 }},
		{"zero max files", func(c *Config) { c.Analysis.MaxFiles = 0 }},
		{"no extensions", func(c *Config) { c.Analysis.Extensions = nil }},
		{"dotless extension", func(c *Config) { c.Analysis.Extensions = []string{"py"} }},
		{"zero cache", func(c *Config) { c.Cache.ExtractionSize = 0 }},
		{"zero rate", func(c *Config) { c.Limits.AnalyzeRatePerMinute = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
