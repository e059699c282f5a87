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
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/AleutianImpact/services/impact/blast"
	"github.com/AleutianAI/AleutianImpact/services/impact/graphstore"
	"github.com/AleutianAI/AleutianImpact/services/impact/risk"
)

// Config holds the full analyzer configuration.
type Config struct {
	// Graph is the connection configuration for the graph store.
	Graph graphstore.Neo4jConfig

	// HopLimit bounds blast-radius traversal depth.
	// Default: blast.DefaultHopLimit
	HopLimit int

	// Concurrency bounds simultaneous per-seed traversals.
	// Default: blast.DefaultConcurrency
	Concurrency int

	// FanOutSaturation is the reachable-node count at which the fanOut
	// risk factor saturates.
	// Default: risk.DefaultFanOutSaturation
	FanOutSaturation int
}

// DefaultConfig returns sensible defaults with no graph credentials.
func DefaultConfig() Config {
	return Config{
		Graph: graphstore.Neo4jConfig{
			URI:          "bolt://localhost:7687",
			Username:     "neo4j",
			Database:     "neo4j",
			QueryTimeout: graphstore.DefaultQueryTimeout,
		},
		HopLimit:         blast.DefaultHopLimit,
		Concurrency:      blast.DefaultConcurrency,
		FanOutSaturation: risk.DefaultFanOutSaturation,
	}
}

// fileConfig is the YAML shape of a config file.
type fileConfig struct {
	Graph struct {
		URI          string `yaml:"uri"`
		Username     string `yaml:"username"`
		Password     string `yaml:"password"`
		Database     string `yaml:"database"`
		QueryTimeout string `yaml:"queryTimeout"`
	} `yaml:"graph"`
	HopLimit         int `yaml:"hopLimit"`
	Concurrency      int `yaml:"concurrency"`
	FanOutSaturation int `yaml:"fanOutSaturation"`
}

// LoadConfigFile builds a Config by layering a YAML file over the
// defaults and the environment over the file, so credentials can stay
// out of checked-in config.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("%w: reading config file: %v", graphstore.ErrInvalidConfig, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return cfg, fmt.Errorf("%w: parsing config file: %v", graphstore.ErrInvalidConfig, err)
	}

	if fc.Graph.URI != "" {
		cfg.Graph.URI = fc.Graph.URI
	}
	if fc.Graph.Username != "" {
		cfg.Graph.Username = fc.Graph.Username
	}
	if fc.Graph.Password != "" {
		cfg.Graph.Password = fc.Graph.Password
	}
	if fc.Graph.Database != "" {
		cfg.Graph.Database = fc.Graph.Database
	}
	if fc.Graph.QueryTimeout != "" {
		d, err := time.ParseDuration(fc.Graph.QueryTimeout)
		if err != nil {
			return cfg, fmt.Errorf("%w: graph.queryTimeout: %v", graphstore.ErrInvalidConfig, err)
		}
		cfg.Graph.QueryTimeout = d
	}
	if fc.HopLimit > 0 {
		cfg.HopLimit = fc.HopLimit
	}
	if fc.Concurrency > 0 {
		cfg.Concurrency = fc.Concurrency
	}
	if fc.FanOutSaturation > 0 {
		cfg.FanOutSaturation = fc.FanOutSaturation
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ConfigFromEnv builds a Config from environment variables, starting from
// the defaults.
//
// Recognized variables: NEO4J_URI, NEO4J_USER, NEO4J_PASSWORD,
// NEO4J_DATABASE, IMPACT_QUERY_TIMEOUT (Go duration), IMPACT_HOP_LIMIT,
// IMPACT_CONCURRENCY.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv overlays environment variables onto cfg.
func applyEnv(cfg *Config) error {
	if v := os.Getenv("NEO4J_URI"); v != "" {
		cfg.Graph.URI = v
	}
	if v := os.Getenv("NEO4J_USER"); v != "" {
		cfg.Graph.Username = v
	}
	if v := os.Getenv("NEO4J_PASSWORD"); v != "" {
		cfg.Graph.Password = v
	}
	if v := os.Getenv("NEO4J_DATABASE"); v != "" {
		cfg.Graph.Database = v
	}
	if v := os.Getenv("IMPACT_QUERY_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: IMPACT_QUERY_TIMEOUT: %v", graphstore.ErrInvalidConfig, err)
		}
		cfg.Graph.QueryTimeout = d
	}
	if v := os.Getenv("IMPACT_HOP_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return fmt.Errorf("%w: IMPACT_HOP_LIMIT: %q", graphstore.ErrInvalidConfig, v)
		}
		cfg.HopLimit = n
	}
	if v := os.Getenv("IMPACT_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return fmt.Errorf("%w: IMPACT_CONCURRENCY: %q", graphstore.ErrInvalidConfig, v)
		}
		cfg.Concurrency = n
	}

	return nil
}

// Validate checks that the configuration can reach a graph store.
//
// Configuration errors are fatal before any traversal begins, on a
// distinct exit path from the risk-based exit codes.
func (c Config) Validate() error {
	if err := c.Graph.Validate(); err != nil {
		return err
	}
	if c.HopLimit < 1 {
		return fmt.Errorf("%w: hop limit must be >= 1", graphstore.ErrInvalidConfig)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("%w: concurrency must be >= 1", graphstore.ErrInvalidConfig)
	}
	return nil
}
