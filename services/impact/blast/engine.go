// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package blast computes the blast radius of a change set: the set of
// graph nodes directly or transitively affected, annotated with hop
// distance and the path that reached them.
//
// Each changed artifact resolves to zero or more seed nodes, then a
// bounded breadth-first traversal expands outward in the "impact
// propagates toward dependents" direction: from a Service along reverse
// CALLS_SERVICE and reverse CONNECTS_TO to find callers, and forward
// along TARGETS, USES_IMAGE and EXPOSED_VIA to find what the changed
// node serves or exposes. Per-seed traversals are independent and
// run concurrently; their results merge into a deterministic global union
// where the smallest hop distance wins and ties go to the first seed.
package blast

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/AleutianImpact/services/impact/change"
	"github.com/AleutianAI/AleutianImpact/services/impact/graphstore"
)

// expansion is one edge-type/direction pair a node label expands over.
type expansion struct {
	et  graphstore.EdgeType
	dir graphstore.Direction
}

// expansions maps each node label to its dependent-direction edges.
//
// Labels absent from the map are terminal: Image, NetworkPolicy,
// ServiceAccount and Cluster have no dependents of their own within the
// modeled edge set. CodeModule has an additional composite rule handled
// in expand (owning services via chart membership).
var expansions = map[graphstore.NodeLabel][]expansion{
	graphstore.LabelCodeModule: {
		{graphstore.EdgeTypeBelongsToChart, graphstore.DirectionOutgoing},
	},
	graphstore.LabelHelmChart: {
		{graphstore.EdgeTypeBelongsToChart, graphstore.DirectionIncoming},
	},
	graphstore.LabelService: {
		{graphstore.EdgeTypeCallsService, graphstore.DirectionIncoming},
		{graphstore.EdgeTypeConnectsTo, graphstore.DirectionIncoming},
		{graphstore.EdgeTypeTargets, graphstore.DirectionOutgoing},
		{graphstore.EdgeTypeExposedVia, graphstore.DirectionOutgoing},
	},
	graphstore.LabelPod: {
		{graphstore.EdgeTypeTargets, graphstore.DirectionIncoming},
		{graphstore.EdgeTypeUsesImage, graphstore.DirectionOutgoing},
		{graphstore.EdgeTypeUsesServiceAccount, graphstore.DirectionOutgoing},
	},
}

// Engine performs blast-radius traversal over a graph store.
//
// Thread Safety: safe for concurrent use. The engine holds no mutable
// state; per-analysis state lives on the stack of Analyze.
type Engine struct {
	store       graphstore.Store
	hopLimit    int
	concurrency int
	logger      *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithHopLimit bounds traversal depth. Values below 1 keep the default.
func WithHopLimit(n int) EngineOption {
	return func(e *Engine) {
		if n >= 1 {
			e.hopLimit = n
		}
	}
}

// WithConcurrency bounds simultaneous per-seed traversals.
func WithConcurrency(n int) EngineOption {
	return func(e *Engine) {
		if n >= 1 {
			e.concurrency = n
		}
	}
}

// WithEngineLogger sets the structured logger.
func WithEngineLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) { e.logger = logger }
}

// NewEngine creates a blast-radius engine over the given store.
func NewEngine(store graphstore.Store, opts ...EngineOption) (*Engine, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	e := &Engine{
		store:       store,
		hopLimit:    DefaultHopLimit,
		concurrency: DefaultConcurrency,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Analyze computes the blast radius for a classified change set.
//
// Description:
//
//	Resolves each artifact to seed nodes, traverses each seed set
//	concurrently with an isolated accumulator, then merges the per-seed
//	results into the global union in one deterministic step. A graph
//	query failure or timeout for one artifact is recorded as a partial
//	result on that artifact; the other artifacts still complete.
//	Cancellation of ctx aborts the whole analysis between iterations.
//
// Inputs:
//
//	ctx - Context for cancellation, honored between seed iterations and
//	      between BFS hops (coarse-grained, not mid-query).
//	artifacts - Classified artifacts in input order.
//
// Outputs:
//
//	*Result - Per-seed results in input order plus the global union.
//	error - ErrNoArtifacts for an empty change set, or the context error.
func (e *Engine) Analyze(ctx context.Context, artifacts []change.ChangedArtifact) (*Result, error) {
	if len(artifacts) == 0 {
		return nil, ErrNoArtifacts
	}

	ctx, span := startTraversalSpan(ctx, len(artifacts))
	defer span.End()
	start := time.Now()

	results := make([]SeedResult, len(artifacts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, artifact := range artifacts {
		i, artifact := i, artifact
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = e.analyzeArtifact(gctx, artifact)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{
		Seeds:    results,
		Union:    e.merge(results),
		HopLimit: e.hopLimit,
	}

	partial := 0
	for _, sr := range results {
		if sr.Err != "" {
			partial++
		}
	}
	e.logger.Info("blast radius computed",
		"artifacts", len(artifacts),
		"union_nodes", len(result.Union),
		"partial_failures", partial,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	setTraversalSpanResult(span, len(result.Union), partial)
	recordTraversalMetrics(ctx, time.Since(start), len(result.Union), partial)

	return result, nil
}

// analyzeArtifact resolves seeds and traverses for one artifact,
// absorbing query failures into the result annotation.
func (e *Engine) analyzeArtifact(ctx context.Context, artifact change.ChangedArtifact) SeedResult {
	sr := SeedResult{Artifact: artifact}

	seeds, err := e.resolveSeeds(ctx, artifact)
	if err != nil {
		if ctx.Err() != nil {
			sr.Err = ctx.Err().Error()
			return sr
		}
		e.logger.Warn("seed resolution failed",
			"path", artifact.Path,
			"error", err,
		)
		sr.Err = err.Error()
		return sr
	}
	sr.Seeds = seeds
	if len(seeds) == 0 {
		return sr
	}

	reachable, err := e.traverse(ctx, seeds)
	if err != nil {
		e.logger.Warn("traversal failed",
			"path", artifact.Path,
			"error", err,
		)
		// Partial failure: annotate and drop the incomplete set so the
		// report never presents a truncated radius as complete.
		sr.Err = err.Error()
		sr.Reachable = nil
		return sr
	}
	sr.Reachable = reachable
	return sr
}

// traverse runs bounded BFS from the seed nodes.
//
// The visited set records each node's minimum hop distance; a node seen
// at a smaller or equal distance is never re-expanded, which terminates
// cyclic service-to-service graphs. Results follow store enumeration
// order within a hop, so traversal is deterministic for a deterministic
// store.
func (e *Engine) traverse(ctx context.Context, seeds []graphstore.Node) ([]Entry, error) {
	type item struct {
		node graphstore.Node
		hop  int
		path []string
	}

	visited := make(map[string]int, len(seeds))
	entryIndex := make(map[string]int, len(seeds))
	var entries []Entry
	var queue []item

	for _, s := range seeds {
		if _, ok := visited[s.ID()]; ok {
			continue
		}
		visited[s.ID()] = 0
		path := []string{s.ID()}
		entryIndex[s.ID()] = len(entries)
		entries = append(entries, Entry{
			Node:         s,
			HopDistance:  0,
			ViaEdgeType:  graphstore.EdgeTypeUnknown,
			PathFromSeed: path,
		})
		queue = append(queue, item{node: s, hop: 0, path: path})
	}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		it := queue[0]
		queue = queue[1:]

		if it.hop >= e.hopLimit {
			continue
		}

		neighbors, err := e.expand(ctx, it.node)
		if err != nil {
			return nil, err
		}

		for _, nb := range neighbors {
			id := nb.node.ID()
			if prev, ok := visited[id]; ok {
				if it.hop+1 < prev {
					// BFS cannot discover a visited node at a smaller
					// distance; treat as a defect and keep the smaller
					// value rather than abort.
					e.logger.Error("visited node rediscovered at smaller distance",
						"node", id,
						"recorded", prev,
						"new", it.hop+1,
					)
					visited[id] = it.hop + 1
					if idx, ok := entryIndex[id]; ok {
						entries[idx].HopDistance = it.hop + 1
					}
				}
				continue
			}

			visited[id] = it.hop + 1
			path := make([]string, len(it.path), len(it.path)+1)
			copy(path, it.path)
			path = append(path, id)

			entryIndex[id] = len(entries)
			entries = append(entries, Entry{
				Node:         nb.node,
				HopDistance:  it.hop + 1,
				ViaEdgeType:  nb.via,
				PathFromSeed: path,
			})
			queue = append(queue, item{node: nb.node, hop: it.hop + 1, path: path})
		}
	}

	return entries, nil
}

// neighbor pairs a discovered node with the edge type that reached it.
type neighbor struct {
	node graphstore.Node
	via  graphstore.EdgeType
}

// expand returns the dependent-direction neighbors of a node.
//
// CodeModule gets a composite rule: besides its owning charts, the
// Services deployed from those charts count as direct (hop-1) dependents,
// matching how a module change ships: the chart's services pick up the
// new code on the next deploy.
func (e *Engine) expand(ctx context.Context, n graphstore.Node) ([]neighbor, error) {
	var result []neighbor

	for _, ex := range expansions[n.Label] {
		nodes, err := e.store.Neighbors(ctx, n, ex.et, ex.dir)
		if err != nil {
			return nil, err
		}
		for _, node := range nodes {
			result = append(result, neighbor{node: node, via: ex.et})
		}
	}

	if n.Label == graphstore.LabelCodeModule {
		owned, err := e.owningServices(ctx, n)
		if err != nil {
			return nil, err
		}
		result = append(result, owned...)
	}

	return result, nil
}

// owningServices finds the Services deployed from the charts a code
// module belongs to.
func (e *Engine) owningServices(ctx context.Context, module graphstore.Node) ([]neighbor, error) {
	charts, err := e.store.Neighbors(ctx, module, graphstore.EdgeTypeBelongsToChart, graphstore.DirectionOutgoing)
	if err != nil {
		return nil, err
	}

	var result []neighbor
	for _, chart := range charts {
		members, err := e.store.ChartMembers(ctx, chart.Key)
		if err != nil {
			return nil, err
		}
		for _, m := range members {
			if m.Label == graphstore.LabelService {
				result = append(result, neighbor{node: m, via: graphstore.EdgeTypeBelongsToChart})
			}
		}
	}
	return result, nil
}

// merge folds the per-seed accumulators into the global union.
//
// This is the single serialization point of the analysis: it runs after
// all traversals complete, iterates seeds in input order, keeps the
// smallest hop distance per node (ties go to the first seed index), and
// retains every path for report detail with the minimum-distance path
// first. The result is sorted by hop distance with discovery order
// preserved within a hop.
func (e *Engine) merge(seedResults []SeedResult) []UnionEntry {
	index := make(map[string]int)
	var union []UnionEntry

	for _, sr := range seedResults {
		for _, en := range sr.Reachable {
			id := en.Node.ID()
			if i, ok := index[id]; ok {
				u := &union[i]
				if en.HopDistance < u.HopDistance {
					u.HopDistance = en.HopDistance
					u.ViaEdgeType = en.ViaEdgeType
					u.Paths = append([][]string{en.PathFromSeed}, u.Paths...)
				} else {
					u.Paths = append(u.Paths, en.PathFromSeed)
				}
				continue
			}
			index[id] = len(union)
			union = append(union, UnionEntry{
				Node:        en.Node,
				HopDistance: en.HopDistance,
				ViaEdgeType: en.ViaEdgeType,
				Paths:       [][]string{en.PathFromSeed},
			})
		}
	}

	sort.SliceStable(union, func(i, j int) bool {
		return union[i].HopDistance < union[j].HopDistance
	})
	return union
}
