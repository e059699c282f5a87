// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package graphstore defines the typed boundary between the impact engine
// and the infrastructure dependency graph.
//
// The engine never talks to a graph database directly. It consumes the
// Store interface, which exposes pattern-match queries ("nodes connected
// to N via edge type E in direction D") over a previously-populated graph.
// Two implementations are provided: Neo4jStore for production graphs
// populated by the extraction pipeline, and MemoryStore for tests and
// fixtures.
//
// All values returned by a Store are validated members of the closed
// NodeLabel and EdgeType sets. Results are finite and deterministically
// ordered, which the traversal engine relies on for reproducible output.
package graphstore

import "context"

// Store is the query capability consumed by the impact engine.
//
// Implementations must return deterministically ordered result sets and
// must never be mutated by engine calls. All methods honor context
// cancellation and deadlines.
type Store interface {
	// Neighbors returns the nodes connected to n via edges of type et,
	// following the edge in direction d.
	//
	// DirectionOutgoing returns targets of edges whose source is n;
	// DirectionIncoming returns sources of edges whose target is n.
	// A node with no matching edges yields an empty slice, not an error.
	Neighbors(ctx context.Context, n Node, et EdgeType, d Direction) ([]Node, error)

	// FindCodeModules returns CodeModule nodes whose path matches the
	// repository-relative path. Matching is suffix-based so callers can
	// pass paths relative to a repository root that the extraction
	// pipeline stored with an absolute prefix.
	FindCodeModules(ctx context.Context, path string) ([]Node, error)

	// ChartMembers returns every node linked to the named Helm chart via
	// BELONGS_TO_CHART edges.
	ChartMembers(ctx context.Context, chartName string) ([]Node, error)

	// Close releases the store's resources.
	Close(ctx context.Context) error
}
