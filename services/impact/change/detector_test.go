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
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetector_RouteRemoval(t *testing.T) {
	d := NewDetector(WithChartLocator(userChartLocator()))

	result, err := d.Detect(context.Background(), []RawChange{
		{Path: "services/users/handler.go", Patch: routeRemovalDiff},
	})
	require.NoError(t, err)

	require.Len(t, result.Artifacts, 1)
	assert.Equal(t, KindSourceFile, result.Artifacts[0].Kind)
	require.Len(t, result.Artifacts[0].Hunks, 1)

	require.Len(t, result.Flags, 1)
	assert.Equal(t, CategoryRemovedEndpoint, result.Flags[0].Category)
	assert.Equal(t, SeverityHigh, result.Flags[0].Severity)
	assert.Empty(t, result.Warnings)
}

func TestDetector_FileListOnlyMode(t *testing.T) {
	d := NewDetector(WithChartLocator(userChartLocator()))

	// No patches at all: classification happens, zero flags.
	result, err := d.Detect(context.Background(), []RawChange{
		{Path: "services/users/handler.go"},
		{Path: "charts/users/templates/deployment.yaml"},
	})
	require.NoError(t, err)

	require.Len(t, result.Artifacts, 2)
	assert.Equal(t, KindSourceFile, result.Artifacts[0].Kind)
	assert.Equal(t, KindChartTemplate, result.Artifacts[1].Kind)
	assert.Equal(t, TemplateDeployment, result.Artifacts[1].Template)
	assert.Empty(t, result.Flags)
}

func TestDetector_MalformedPatchDegrades(t *testing.T) {
	d := NewDetector(WithChartLocator(userChartLocator()))

	result, err := d.Detect(context.Background(), []RawChange{
		{Path: "services/users/handler.go", Patch: "garbage that is not a diff"},
	})
	require.NoError(t, err)

	// The artifact survives without hunks, a warning explains why.
	require.Len(t, result.Artifacts, 1)
	assert.Empty(t, result.Artifacts[0].Hunks)
	assert.Empty(t, result.Flags)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "services/users/handler.go")
}

func TestDetector_EmptyPathRejected(t *testing.T) {
	d := NewDetector()

	result, err := d.Detect(context.Background(), []RawChange{
		{Path: ""},
		{Path: "main.go"},
	})
	require.NoError(t, err)

	assert.Len(t, result.Artifacts, 1)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "empty path")
}

func TestDetector_ContextCancelled(t *testing.T) {
	d := NewDetector()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Detect(ctx, []RawChange{{Path: "main.go"}})
	assert.Error(t, err)
}

func TestDetector_CustomHeuristics(t *testing.T) {
	d := NewDetector(WithHeuristics(nil))

	result, err := d.Detect(context.Background(), []RawChange{
		{Path: "services/users/handler.go", Patch: routeRemovalDiff},
	})
	require.NoError(t, err)
	assert.Empty(t, result.Flags)
}
