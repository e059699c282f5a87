// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package graphstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNeo4jConfig_Validate(t *testing.T) {
	valid := Neo4jConfig{
		URI:      "bolt://localhost:7687",
		Username: "neo4j",
		Password: "secret",
	}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Neo4jConfig)
	}{
		{"missing URI", func(c *Neo4jConfig) { c.URI = "" }},
		{"missing username", func(c *Neo4jConfig) { c.Username = "" }},
		{"missing password", func(c *Neo4jConfig) { c.Password = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestStoredLabels_RoundTrip(t *testing.T) {
	// Every engine label except Unknown has a stored form, and the
	// reverse mapping recovers it.
	for label := LabelService; label < NumNodeLabels; label++ {
		stored, ok := storedLabels[label]
		if !ok {
			t.Fatalf("label %v has no stored form", label)
		}
		back, ok := engineLabels[stored]
		if !ok || back != label {
			t.Errorf("stored label %q maps back to %v, want %v", stored, back, label)
		}
	}
}
