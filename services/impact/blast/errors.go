// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package blast

import "errors"

// Sentinel errors for blast-radius traversal.
var (
	// ErrNilStore indicates the engine was constructed without a store.
	ErrNilStore = errors.New("graph store is nil")

	// ErrNoArtifacts indicates an empty change set.
	ErrNoArtifacts = errors.New("no artifacts to analyze")
)
