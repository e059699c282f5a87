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

import "errors"

// Sentinel errors for change detection.
var (
	// ErrEmptyPath indicates a raw change without a path.
	ErrEmptyPath = errors.New("raw change has empty path")

	// ErrMalformedDiff indicates a patch that could not be parsed as a
	// unified diff. The artifact is kept with no hunks.
	ErrMalformedDiff = errors.New("malformed unified diff")
)
