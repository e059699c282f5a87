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

const routeRemovalDiff = `--- a/services/users/handler.go
+++ b/services/users/handler.go
@@ -10,3 +10,2 @@
 func register(r *gin.Engine) {
-	r.GET("/api/users/:id", getUser)
 }
`

const twoFileDiff = `--- a/services/users/handler.go
+++ b/services/users/handler.go
@@ -10,3 +10,2 @@
 func register(r *gin.Engine) {
-	r.GET("/api/users/:id", getUser)
 }
--- a/charts/users/values.yaml
+++ b/charts/users/values.yaml
@@ -1,2 +1,2 @@
 replicas: 2
-tag: v1.4.0
+tag: v1.5.0
`

func TestParseHunks(t *testing.T) {
	hunks, err := parseHunks("services/users/handler.go", routeRemovalDiff)
	require.NoError(t, err)
	require.Len(t, hunks, 1)

	assert.Equal(t, []string{"\tr.GET(\"/api/users/:id\", getUser)"}, hunks[0].Removed)
	assert.Empty(t, hunks[0].Added)
}

func TestParseHunks_FiltersOtherFiles(t *testing.T) {
	hunks, err := parseHunks("charts/users/values.yaml", twoFileDiff)
	require.NoError(t, err)
	require.Len(t, hunks, 1)

	assert.Equal(t, []string{"tag: v1.4.0"}, hunks[0].Removed)
	assert.Equal(t, []string{"tag: v1.5.0"}, hunks[0].Added)

	// A path the patch never names yields no hunks and no error.
	none, err := parseHunks("README.md", twoFileDiff)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestParseHunks_Malformed(t *testing.T) {
	_, err := parseHunks("x.go", "this is not a diff @@ nonsense")
	assert.ErrorIs(t, err, ErrMalformedDiff)
}

func TestPathsInDiff(t *testing.T) {
	paths, err := PathsInDiff(twoFileDiff)
	require.NoError(t, err)
	assert.Equal(t, []string{"services/users/handler.go", "charts/users/values.yaml"}, paths)
}

func TestPathsInDiff_Deletion(t *testing.T) {
	deletionDiff := `--- a/services/users/legacy.go
+++ /dev/null
@@ -1,2 +0,0 @@
-package users
-func old() {}
`
	paths, err := PathsInDiff(deletionDiff)
	require.NoError(t, err)
	assert.Equal(t, []string{"services/users/legacy.go"}, paths)
}
