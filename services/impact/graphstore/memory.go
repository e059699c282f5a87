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
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryStore is an in-memory Store implementation.
//
// It is used by tests and by offline fixture analysis. Build it with
// AddNode and AddEdge, then hand it to the engine. Enumeration order is
// deterministic: results are sorted by (Label, Key).
//
// Thread Safety:
//
//	Safe for concurrent reads after building. AddNode/AddEdge must not
//	race with queries.
type MemoryStore struct {
	mu    sync.RWMutex
	nodes map[string]Node

	// outgoing and incoming index edges by node ID and edge type.
	outgoing map[string][]Edge
	incoming map[string][]Edge

	// neighborErrs injects per-node query failures for tests.
	neighborErrs map[string]error

	// lookupErrs injects per-path seed lookup failures for tests.
	lookupErrs map[string]error
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nodes:        make(map[string]Node),
		outgoing:     make(map[string][]Edge),
		incoming:     make(map[string][]Edge),
		neighborErrs: make(map[string]error),
		lookupErrs:   make(map[string]error),
	}
}

// AddNode registers a node. Re-adding a node with the same identity
// replaces its metadata.
func (s *MemoryStore) AddNode(n Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes[n.ID()] = n
}

// AddEdge registers a directed edge between two previously added nodes.
// Unknown endpoints are registered implicitly.
func (s *MemoryStore) AddEdge(from, to Node, et EdgeType) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nodes[from.ID()]; !ok {
		s.nodes[from.ID()] = from
	}
	if _, ok := s.nodes[to.ID()]; !ok {
		s.nodes[to.ID()] = to
	}

	edge := Edge{From: from, To: to, Type: et}
	s.outgoing[from.ID()] = append(s.outgoing[from.ID()], edge)
	s.incoming[to.ID()] = append(s.incoming[to.ID()], edge)
}

// FailNeighbors makes every Neighbors call for the given node return err.
func (s *MemoryStore) FailNeighbors(nodeID string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.neighborErrs[nodeID] = err
}

// FailLookup makes FindCodeModules and ChartMembers for the given path or
// chart name return err.
func (s *MemoryStore) FailLookup(pathOrChart string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookupErrs[pathOrChart] = err
}

// Neighbors implements Store.
func (s *MemoryStore) Neighbors(ctx context.Context, n Node, et EdgeType, d Direction) ([]Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if err, ok := s.neighborErrs[n.ID()]; ok {
		return nil, err
	}

	var result []Node
	switch d {
	case DirectionOutgoing:
		for _, e := range s.outgoing[n.ID()] {
			if e.Type == et {
				result = append(result, s.nodes[e.To.ID()])
			}
		}
	case DirectionIncoming:
		for _, e := range s.incoming[n.ID()] {
			if e.Type == et {
				result = append(result, s.nodes[e.From.ID()])
			}
		}
	}

	sortNodes(result)
	return result, nil
}

// FindCodeModules implements Store. Matching is by exact key or suffix.
func (s *MemoryStore) FindCodeModules(ctx context.Context, path string) ([]Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if err, ok := s.lookupErrs[path]; ok {
		return nil, err
	}

	var result []Node
	for _, n := range s.nodes {
		if n.Label != LabelCodeModule {
			continue
		}
		if n.Key == path || strings.HasSuffix(n.Key, "/"+path) {
			result = append(result, n)
		}
	}

	sortNodes(result)
	return result, nil
}

// ChartMembers implements Store.
func (s *MemoryStore) ChartMembers(ctx context.Context, chartName string) ([]Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if err, ok := s.lookupErrs[chartName]; ok {
		return nil, err
	}

	chart := Node{Label: LabelHelmChart, Key: chartName}
	var result []Node
	for _, e := range s.incoming[chart.ID()] {
		if e.Type == EdgeTypeBelongsToChart {
			result = append(result, s.nodes[e.From.ID()])
		}
	}

	sortNodes(result)
	return result, nil
}

// Close implements Store. No resources to release.
func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}

// sortNodes orders nodes by (Label, Key) for deterministic enumeration.
func sortNodes(nodes []Node) {
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Label != nodes[j].Label {
			return nodes[i].Label < nodes[j].Label
		}
		return nodes[i].Key < nodes[j].Key
	})
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
