// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package impact

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianImpact/services/impact/blast"
	"github.com/AleutianAI/AleutianImpact/services/impact/graphstore"
)

// clearEnv pins every recognized variable to unset for the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"NEO4J_URI", "NEO4J_USER", "NEO4J_PASSWORD", "NEO4J_DATABASE",
		"IMPACT_QUERY_TIMEOUT", "IMPACT_HOP_LIMIT", "IMPACT_CONCURRENCY",
	} {
		t.Setenv(key, "")
	}
}

func TestConfigFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "bolt://localhost:7687", cfg.Graph.URI)
	assert.Equal(t, "neo4j", cfg.Graph.Username)
	assert.Equal(t, "neo4j", cfg.Graph.Database)
	assert.Equal(t, graphstore.DefaultQueryTimeout, cfg.Graph.QueryTimeout)
	assert.Equal(t, blast.DefaultHopLimit, cfg.HopLimit)
	assert.Equal(t, blast.DefaultConcurrency, cfg.Concurrency)
}

func TestConfigFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("NEO4J_URI", "neo4j://graph:7687")
	t.Setenv("NEO4J_USER", "impact")
	t.Setenv("NEO4J_PASSWORD", "secret")
	t.Setenv("NEO4J_DATABASE", "topology")
	t.Setenv("IMPACT_QUERY_TIMEOUT", "45s")
	t.Setenv("IMPACT_HOP_LIMIT", "5")
	t.Setenv("IMPACT_CONCURRENCY", "8")

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "neo4j://graph:7687", cfg.Graph.URI)
	assert.Equal(t, "impact", cfg.Graph.Username)
	assert.Equal(t, "secret", cfg.Graph.Password)
	assert.Equal(t, "topology", cfg.Graph.Database)
	assert.Equal(t, 45*time.Second, cfg.Graph.QueryTimeout)
	assert.Equal(t, 5, cfg.HopLimit)
	assert.Equal(t, 8, cfg.Concurrency)
	assert.NoError(t, cfg.Validate())
}

func TestConfigFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad timeout", "IMPACT_QUERY_TIMEOUT", "soon"},
		{"bad hop limit", "IMPACT_HOP_LIMIT", "three"},
		{"zero hop limit", "IMPACT_HOP_LIMIT", "0"},
		{"negative concurrency", "IMPACT_CONCURRENCY", "-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := ConfigFromEnv()
			assert.ErrorIs(t, err, graphstore.ErrInvalidConfig)
		})
	}
}

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "impact.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0600))
	return path
}

func TestLoadConfigFile(t *testing.T) {
	clearEnv(t)
	path := writeConfigFile(t, `
graph:
  uri: neo4j://graph:7687
  username: impact
  password: secret
  queryTimeout: 45s
hopLimit: 5
`)

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, "neo4j://graph:7687", cfg.Graph.URI)
	assert.Equal(t, "impact", cfg.Graph.Username)
	assert.Equal(t, "secret", cfg.Graph.Password)
	assert.Equal(t, 45*time.Second, cfg.Graph.QueryTimeout)
	assert.Equal(t, 5, cfg.HopLimit)

	// Fields the file omits keep their defaults.
	assert.Equal(t, "neo4j", cfg.Graph.Database)
	assert.Equal(t, blast.DefaultConcurrency, cfg.Concurrency)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigFile_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfigFile(t, `
graph:
  uri: neo4j://file:7687
  password: from-file
hopLimit: 2
`)
	t.Setenv("NEO4J_URI", "neo4j://env:7687")
	t.Setenv("IMPACT_HOP_LIMIT", "6")

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, "neo4j://env:7687", cfg.Graph.URI)
	assert.Equal(t, 6, cfg.HopLimit)
	assert.Equal(t, "from-file", cfg.Graph.Password)
}

func TestLoadConfigFile_Errors(t *testing.T) {
	clearEnv(t)

	_, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, graphstore.ErrInvalidConfig)

	_, err = LoadConfigFile(writeConfigFile(t, "graph: [not a mapping"))
	assert.ErrorIs(t, err, graphstore.ErrInvalidConfig)

	_, err = LoadConfigFile(writeConfigFile(t, "graph:\n  queryTimeout: soon\n"))
	assert.ErrorIs(t, err, graphstore.ErrInvalidConfig)
}

func TestConfig_Validate(t *testing.T) {
	valid := DefaultConfig()
	valid.Graph.Password = "secret"
	assert.NoError(t, valid.Validate())

	// The default carries no credentials and must not validate.
	assert.ErrorIs(t, DefaultConfig().Validate(), graphstore.ErrInvalidConfig)

	badHops := valid
	badHops.HopLimit = 0
	assert.ErrorIs(t, badHops.Validate(), graphstore.ErrInvalidConfig)

	badWorkers := valid
	badWorkers.Concurrency = 0
	assert.ErrorIs(t, badWorkers.Validate(), graphstore.ErrInvalidConfig)
}
