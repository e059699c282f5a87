// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package change

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sourceArtifact(hunks ...DiffHunk) ChangedArtifact {
	return ChangedArtifact{
		Kind:  KindSourceFile,
		Path:  "services/users/handler.go",
		Hunks: hunks,
	}
}

func templateArtifact(template TemplateKind, hunks ...DiffHunk) ChangedArtifact {
	return ChangedArtifact{
		Kind:      KindChartTemplate,
		Template:  template,
		Path:      "charts/users/templates/x.yaml",
		ChartName: "user-service",
		Hunks:     hunks,
	}
}

func TestSourceHeuristic_RemovedRoute(t *testing.T) {
	h := &sourceHeuristic{}

	flags := h.Detect(sourceArtifact(DiffHunk{
		Removed: []string{`	r.GET("/api/users/:id", getUser)`},
	}))

	require.Len(t, flags, 1)
	assert.Equal(t, CategoryRemovedEndpoint, flags[0].Category)
	assert.Equal(t, SeverityHigh, flags[0].Severity)
}

func TestSourceHeuristic_MovedRouteNotFlagged(t *testing.T) {
	h := &sourceHeuristic{}

	// Same route reappears with different indentation: moved, not removed.
	flags := h.Detect(sourceArtifact(DiffHunk{
		Removed: []string{`	r.GET("/api/users/:id", getUser)`},
		Added:   []string{`		r.GET("/api/users/:id", getUser)`},
	}))
	assert.Empty(t, flags)
}

func TestSourceHeuristic_RemovedSignature(t *testing.T) {
	h := &sourceHeuristic{}

	flags := h.Detect(sourceArtifact(DiffHunk{
		Removed: []string{`func GetUser(ctx context.Context, id string) (*User, error) {`},
	}))

	require.Len(t, flags, 1)
	assert.Equal(t, CategoryChangedSignature, flags[0].Category)
	assert.Equal(t, SeverityHigh, flags[0].Severity)
}

func TestSourceHeuristic_UnexportedSignatureNotFlagged(t *testing.T) {
	h := &sourceHeuristic{}

	flags := h.Detect(sourceArtifact(DiffHunk{
		Removed: []string{`func getUser(id string) {`},
	}))
	assert.Empty(t, flags)
}

func TestSourceHeuristic_RemovedEnvRead(t *testing.T) {
	h := &sourceHeuristic{}

	flags := h.Detect(sourceArtifact(DiffHunk{
		Removed: []string{`	dsn := os.Getenv("DATABASE_URL")`},
	}))

	require.Len(t, flags, 1)
	assert.Equal(t, CategoryRemovedEnvVar, flags[0].Category)
	assert.Equal(t, SeverityMedium, flags[0].Severity)
	assert.Contains(t, flags[0].Detail, "DATABASE_URL")

	// Renamed read keeps the variable: not flagged.
	kept := h.Detect(sourceArtifact(DiffHunk{
		Removed: []string{`	dsn := os.Getenv("DATABASE_URL")`},
		Added:   []string{`	cfg.DSN = os.Getenv("DATABASE_URL")`},
	}))
	assert.Empty(t, kept)
}

func TestSourceHeuristic_CommentRemovalNotFlagged(t *testing.T) {
	h := &sourceHeuristic{}

	flags := h.Detect(sourceArtifact(DiffHunk{
		Removed: []string{`	// r.GET("/api/users/:id", getUser)`, `# def handler():`},
	}))
	assert.Empty(t, flags)
}

func TestSourceHeuristic_NoHunksNoFlags(t *testing.T) {
	h := &sourceHeuristic{}
	assert.Empty(t, h.Detect(sourceArtifact()))
}

func TestDeploymentHeuristic(t *testing.T) {
	h := &deploymentHeuristic{}

	flags := h.Detect(templateArtifact(TemplateDeployment, DiffHunk{
		Removed: []string{"  replicas: 2"},
		Added:   []string{"  replicas: 3"},
	}))
	require.Len(t, flags, 1)
	assert.Equal(t, CategoryDeploymentSpecChange, flags[0].Category)
	assert.Equal(t, SeverityCritical, flags[0].Severity)

	// File-list-only mode raises nothing.
	assert.Empty(t, h.Detect(templateArtifact(TemplateDeployment)))
	// Other template kinds are ignored.
	assert.Empty(t, h.Detect(templateArtifact(TemplateIngress, DiffHunk{Added: []string{"x"}})))
}

func TestIngressHeuristic(t *testing.T) {
	h := &ingressHeuristic{}

	flags := h.Detect(templateArtifact(TemplateIngress, DiffHunk{
		Removed: []string{"  - path: /api/users"},
	}))
	require.Len(t, flags, 1)
	assert.Equal(t, CategoryIngressRouteChange, flags[0].Category)
	assert.Equal(t, SeverityHigh, flags[0].Severity)
}

func TestConfigSecretHeuristic(t *testing.T) {
	h := &configSecretHeuristic{}

	// Removed data key escalates to CRITICAL.
	removed := h.Detect(templateArtifact(TemplateConfigSecret, DiffHunk{
		Removed: []string{"  DATABASE_URL: postgres://db:5432"},
	}))
	require.Len(t, removed, 1)
	assert.Equal(t, CategoryRemovedEnvVar, removed[0].Category)
	assert.Equal(t, SeverityCritical, removed[0].Severity)

	// Key kept with a new value stays MEDIUM.
	changed := h.Detect(templateArtifact(TemplateConfigSecret, DiffHunk{
		Removed: []string{"  LOG_LEVEL: info"},
		Added:   []string{"  LOG_LEVEL: debug"},
	}))
	require.Len(t, changed, 1)
	assert.Equal(t, SeverityMedium, changed[0].Severity)
}

func TestNetworkPolicyHeuristic(t *testing.T) {
	h := &networkPolicyHeuristic{}

	plain := h.Detect(templateArtifact(TemplateNetworkPolicy, DiffHunk{
		Added: []string{"  # tightened"},
	}))
	require.Len(t, plain, 1)
	assert.Equal(t, SeverityMedium, plain[0].Severity)

	rules := h.Detect(templateArtifact(TemplateNetworkPolicy, DiffHunk{
		Removed: []string{"        cidr: 10.0.0.0/8"},
	}))
	require.Len(t, rules, 1)
	assert.Equal(t, SeverityHigh, rules[0].Severity)
	assert.Equal(t, CategoryNetworkPolicyChange, rules[0].Category)
}

func TestNormalizeLine(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  r.GET(\"/x\")  ", `r.GET("/x")`},
		{"\tfoo   bar", "foo bar"},
		{"// comment", ""},
		{"# comment", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeLine(tt.in), "normalizeLine(%q)", tt.in)
	}
}
