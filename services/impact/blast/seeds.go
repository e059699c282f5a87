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
	"context"
	"strings"

	"github.com/AleutianAI/AleutianImpact/services/impact/change"
	"github.com/AleutianAI/AleutianImpact/services/impact/graphstore"
)

// servicePathRoots are directory prefixes whose second element names a
// service, used as a fallback when a source file has no CodeModule node.
var servicePathRoots = map[string]bool{
	"services":      true,
	"apps":          true,
	"microservices": true,
}

// resolveSeeds maps one artifact to its seed nodes.
//
// Kind-specific lookups:
//
//   - SourceFile: the CodeModule node matching the path. When the graph
//     has none, the path pattern services/<name>/... (or apps/,
//     microservices/) falls back to the members of the chart named after
//     the service, restricted to Service nodes.
//   - ChartMetadata, ChartValues: every node belonging to the chart.
//   - ChartTemplate: chart members filtered by the template subkind, so a
//     Deployment template change seeds only the chart's Pods (Services
//     selecting those Pods are found by traversal, not seeding).
func (e *Engine) resolveSeeds(ctx context.Context, a change.ChangedArtifact) ([]graphstore.Node, error) {
	switch a.Kind {
	case change.KindSourceFile:
		seeds, err := e.store.FindCodeModules(ctx, a.Path)
		if err != nil {
			return nil, err
		}
		if len(seeds) > 0 {
			return seeds, nil
		}
		return e.resolveServiceByPath(ctx, a.Path)

	case change.KindChartMetadata, change.KindChartValues:
		return e.store.ChartMembers(ctx, a.ChartName)

	case change.KindChartTemplate:
		members, err := e.store.ChartMembers(ctx, a.ChartName)
		if err != nil {
			return nil, err
		}
		return filterSeeds(members, a.Template), nil

	default:
		return nil, nil
	}
}

// resolveServiceByPath is the path-pattern fallback for source files whose
// module was never ingested. Charts are conventionally named after the
// service they deploy, so the chart membership lookup doubles as a
// service-by-name lookup.
func (e *Engine) resolveServiceByPath(ctx context.Context, path string) ([]graphstore.Node, error) {
	parts := strings.Split(path, "/")
	if len(parts) < 2 || !servicePathRoots[parts[0]] {
		return nil, nil
	}

	members, err := e.store.ChartMembers(ctx, parts[1])
	if err != nil {
		return nil, err
	}

	var seeds []graphstore.Node
	for _, n := range members {
		if n.Label == graphstore.LabelService {
			seeds = append(seeds, n)
		}
	}
	return seeds, nil
}

// filterSeeds restricts chart members to the labels a template subkind
// can actually affect.
func filterSeeds(members []graphstore.Node, t change.TemplateKind) []graphstore.Node {
	var want map[graphstore.NodeLabel]bool
	switch t {
	case change.TemplateDeployment:
		want = map[graphstore.NodeLabel]bool{graphstore.LabelPod: true}
	case change.TemplateService:
		want = map[graphstore.NodeLabel]bool{graphstore.LabelService: true}
	case change.TemplateIngress:
		want = map[graphstore.NodeLabel]bool{graphstore.LabelIngress: true}
	case change.TemplateNetworkPolicy:
		want = map[graphstore.NodeLabel]bool{graphstore.LabelNetworkPolicy: true}
	case change.TemplateConfigSecret:
		// Config and secret changes hit the pods that mount them.
		want = map[graphstore.NodeLabel]bool{graphstore.LabelPod: true}
	default:
		return members
	}

	var seeds []graphstore.Node
	for _, n := range members {
		if want[n.Label] {
			seeds = append(seeds, n)
		}
	}
	return seeds
}
