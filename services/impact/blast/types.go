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

import (
	"github.com/AleutianAI/AleutianImpact/services/impact/change"
	"github.com/AleutianAI/AleutianImpact/services/impact/graphstore"
)

// DefaultHopLimit bounds traversal depth on dense graphs.
const DefaultHopLimit = 3

// DefaultConcurrency bounds simultaneous per-seed traversals.
const DefaultConcurrency = 4

// Entry is one node reached from a seed artifact.
type Entry struct {
	// Node is the affected graph node.
	Node graphstore.Node

	// HopDistance is the minimum number of edges from any seed node of
	// this artifact. Zero marks a seed node itself.
	HopDistance int

	// ViaEdgeType is the edge type over which the node was first reached.
	// EdgeTypeUnknown for seed nodes.
	ViaEdgeType graphstore.EdgeType

	// PathFromSeed lists node IDs from the seed to this node, inclusive.
	PathFromSeed []string
}

// SeedResult is the per-artifact traversal outcome.
type SeedResult struct {
	// Artifact is the changed artifact that produced the seeds.
	Artifact change.ChangedArtifact

	// Seeds are the graph nodes the artifact resolved to. May be empty
	// when nothing in the graph matches the artifact.
	Seeds []graphstore.Node

	// Reachable holds every node reached within the hop limit, in BFS
	// discovery order (hop distance ascending, store enumeration order
	// within a hop). Seed nodes appear at hop distance zero.
	Reachable []Entry

	// Err annotates a partial failure: a graph query for this seed
	// failed or timed out. The reachable set is empty in that case and
	// the rest of the analysis continues. Empty string means complete.
	Err string
}

// UnionEntry is one node of the deduplicated global union.
//
// A node reachable from several seeds keeps the smallest hop distance
// (ties broken by first seed index); every distinct path is retained for
// report detail.
type UnionEntry struct {
	// Node is the affected graph node.
	Node graphstore.Node

	// HopDistance is the global minimum hop distance across all seeds.
	HopDistance int

	// ViaEdgeType is the edge the minimum-distance discovery used.
	ViaEdgeType graphstore.EdgeType

	// Paths lists every path that reached the node, minimum-distance
	// path first, then in seed order.
	Paths [][]string
}

// Result is the full blast-radius computation for one change set.
type Result struct {
	// Seeds holds one entry per input artifact, in input order.
	Seeds []SeedResult

	// Union is the deduplicated set of all reachable nodes, ordered by
	// hop distance then first-discovery (seed index, BFS order).
	Union []UnionEntry

	// HopLimit records the bound the traversal ran with.
	HopLimit int
}

// ChartSpread returns the set of distinct Helm charts the union touches.
func (r *Result) ChartSpread() map[string]bool {
	charts := make(map[string]bool)
	for _, e := range r.Union {
		if e.Node.Label == graphstore.LabelHelmChart {
			charts[e.Node.Key] = true
		} else if e.Node.Chart != "" {
			charts[e.Node.Chart] = true
		}
	}
	return charts
}

// HasLabel reports whether any union node carries the given label.
func (r *Result) HasLabel(label graphstore.NodeLabel) bool {
	for _, e := range r.Union {
		if e.Node.Label == label {
			return true
		}
	}
	return false
}
