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
	"errors"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// DefaultQueryTimeout bounds a single graph query.
const DefaultQueryTimeout = 10 * time.Second

// Neo4jConfig holds connection settings for a Neo4j-backed graph.
type Neo4jConfig struct {
	// URI is the bolt/neo4j connection URI.
	URI string

	// Username and Password authenticate against the database.
	Username string
	Password string

	// Database is the target database name. Empty selects the default.
	Database string

	// QueryTimeout bounds each query. Zero uses DefaultQueryTimeout.
	QueryTimeout time.Duration
}

// Validate checks that the configuration is usable.
//
// A config error is fatal for the whole run and is reported before any
// traversal begins, distinct from per-seed query failures.
func (c Neo4jConfig) Validate() error {
	if c.URI == "" {
		return fmt.Errorf("%w: missing URI", ErrInvalidConfig)
	}
	if c.Username == "" {
		return fmt.Errorf("%w: missing username", ErrInvalidConfig)
	}
	if c.Password == "" {
		return fmt.Errorf("%w: missing password", ErrInvalidConfig)
	}
	return nil
}

// storedLabels maps engine labels to the labels written by the extraction
// pipeline. Kubernetes resources carry a Kubernetes* prefix in the store.
var storedLabels = map[NodeLabel]string{
	LabelService:        "KubernetesService",
	LabelCodeModule:     "CodeModule",
	LabelPod:            "KubernetesPod",
	LabelIngress:        "KubernetesIngress",
	LabelImage:          "ContainerImage",
	LabelHelmChart:      "HelmChart",
	LabelNetworkPolicy:  "KubernetesNetworkPolicy",
	LabelServiceAccount: "KubernetesServiceAccount",
	LabelCluster:        "KubernetesCluster",
}

// engineLabels is the reverse of storedLabels.
var engineLabels = func() map[string]NodeLabel {
	m := make(map[string]NodeLabel, len(storedLabels))
	for k, v := range storedLabels {
		m[v] = k
	}
	return m
}()

// Neo4jStore is a Store backed by a Neo4j database.
//
// The store is read-only: every query runs in a read transaction and the
// engine never writes. Each query carries its own timeout; a timeout is
// surfaced as ErrQueryTimeout so the traversal engine can record it as a
// per-seed partial failure instead of aborting the run.
//
// Thread Safety: safe for concurrent use; the underlying driver pools
// connections.
type Neo4jStore struct {
	driver  neo4j.DriverWithContext
	config  Neo4jConfig
	timeout time.Duration
}

// NewNeo4jStore connects to Neo4j and verifies connectivity.
//
// Inputs:
//
//	ctx - Context for the connectivity check.
//	config - Connection settings. Validated before dialing.
//
// Outputs:
//
//	*Neo4jStore - Connected store.
//	error - ErrInvalidConfig for bad settings, ErrStoreUnavailable when
//	        the database cannot be reached.
func NewNeo4jStore(ctx context.Context, config Neo4jConfig) (*Neo4jStore, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	driver, err := neo4j.NewDriverWithContext(
		config.URI,
		neo4j.BasicAuth(config.Username, config.Password, ""),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	timeout := config.QueryTimeout
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}

	return &Neo4jStore{driver: driver, config: config, timeout: timeout}, nil
}

// Neighbors implements Store.
func (s *Neo4jStore) Neighbors(ctx context.Context, n Node, et EdgeType, d Direction) ([]Node, error) {
	label, ok := storedLabels[n.Label]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownLabel, n.Label)
	}
	rel, ok := edgeTypeNames[et]
	if !ok || et == EdgeTypeUnknown {
		return nil, fmt.Errorf("%w: %v", ErrUnknownEdgeType, et)
	}

	// Label and relationship names come from closed maps, never from
	// caller input, so string interpolation into Cypher is safe here.
	var cypher string
	switch d {
	case DirectionOutgoing:
		cypher = fmt.Sprintf(`
			MATCH (n:%s {key: $key})-[:%s]->(m)
			RETURN labels(m) AS labels, m.key AS key, m.name AS name,
			       m.namespace AS namespace, m.chart_name AS chart
			ORDER BY key`, label, rel)
	case DirectionIncoming:
		cypher = fmt.Sprintf(`
			MATCH (n:%s {key: $key})<-[:%s]-(m)
			RETURN labels(m) AS labels, m.key AS key, m.name AS name,
			       m.namespace AS namespace, m.chart_name AS chart
			ORDER BY key`, label, rel)
	default:
		return nil, fmt.Errorf("unsupported direction: %v", d)
	}

	return s.queryNodes(ctx, cypher, map[string]any{"key": n.Key})
}

// FindCodeModules implements Store.
//
// Matching mirrors the extraction pipeline: stored paths may carry an
// absolute prefix, so the repo-relative path is matched by suffix or
// containment.
func (s *Neo4jStore) FindCodeModules(ctx context.Context, path string) ([]Node, error) {
	cypher := `
		MATCH (m:CodeModule)
		WHERE m.path ENDS WITH $path OR m.path CONTAINS $path
		RETURN labels(m) AS labels, coalesce(m.key, m.path) AS key,
		       m.name AS name, m.namespace AS namespace,
		       m.chart_name AS chart
		ORDER BY key`
	return s.queryNodes(ctx, cypher, map[string]any{"path": path})
}

// ChartMembers implements Store.
func (s *Neo4jStore) ChartMembers(ctx context.Context, chartName string) ([]Node, error) {
	cypher := `
		MATCH (m)-[:BELONGS_TO_CHART]->(hc:HelmChart {name: $chart})
		RETURN labels(m) AS labels, m.key AS key, m.name AS name,
		       m.namespace AS namespace, m.chart_name AS chart
		ORDER BY key`
	return s.queryNodes(ctx, cypher, map[string]any{"chart": chartName})
}

// Close implements Store.
func (s *Neo4jStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

// queryNodes runs a read query and converts records into validated Nodes.
func (s *Neo4jStore) queryNodes(ctx context.Context, cypher string, params map[string]any) ([]Node, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: s.config.Database,
	})
	defer func() { _ = session.Close(ctx) }()

	records, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", ErrQueryTimeout, err)
		}
		return nil, err
	}

	recs, ok := records.([]*neo4j.Record)
	if !ok {
		return nil, fmt.Errorf("unexpected result type %T", records)
	}

	nodes := make([]Node, 0, len(recs))
	for _, rec := range recs {
		node, err := recordToNode(rec)
		if err != nil {
			// Nodes outside the closed label set never cross the
			// boundary. Skip them rather than failing the query.
			continue
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// recordToNode validates a raw record into a typed Node.
func recordToNode(rec *neo4j.Record) (Node, error) {
	rawLabels, _ := rec.Get("labels")
	labelList, _ := rawLabels.([]any)

	label := LabelUnknown
	for _, raw := range labelList {
		name, _ := raw.(string)
		if l, ok := engineLabels[name]; ok {
			label = l
			break
		}
	}
	if label == LabelUnknown {
		return Node{}, fmt.Errorf("%w: %v", ErrUnknownLabel, rawLabels)
	}

	return Node{
		Label:     label,
		Key:       stringField(rec, "key"),
		Name:      stringField(rec, "name"),
		Namespace: stringField(rec, "namespace"),
		Chart:     stringField(rec, "chart"),
	}, nil
}

// stringField extracts an optional string column from a record.
func stringField(rec *neo4j.Record, name string) string {
	raw, ok := rec.Get(name)
	if !ok || raw == nil {
		return ""
	}
	s, _ := raw.(string)
	return s
}

// Ensure Neo4jStore implements Store.
var _ Store = (*Neo4jStore)(nil)
