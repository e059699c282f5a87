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

import "errors"

// Sentinel errors for the graph store boundary.
var (
	// ErrUnknownLabel indicates a node label outside the closed label set.
	ErrUnknownLabel = errors.New("unknown node label")

	// ErrUnknownEdgeType indicates a relationship type outside the closed set.
	ErrUnknownEdgeType = errors.New("unknown edge type")

	// ErrInvalidConfig indicates missing or malformed store connection info.
	ErrInvalidConfig = errors.New("invalid graph store configuration")

	// ErrStoreUnavailable indicates the backing store cannot be reached at all.
	ErrStoreUnavailable = errors.New("graph store unavailable")

	// ErrQueryTimeout indicates a single query exceeded its deadline.
	ErrQueryTimeout = errors.New("graph store query timed out")
)
