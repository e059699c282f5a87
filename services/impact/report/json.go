// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package report

import (
	"encoding/json"
	"time"

	"github.com/AleutianAI/AleutianImpact/services/impact/change"
	"github.com/AleutianAI/AleutianImpact/services/impact/risk"
)

// reportVersion identifies the JSON document schema.
const reportVersion = "1.0.0"

// jsonReport pins the machine-readable field layout independently of the
// in-memory Report shape.
type jsonReport struct {
	RunID       string         `json:"runId"`
	Version     string         `json:"version"`
	GeneratedAt time.Time      `json:"generatedAt"`
	HopLimit    int            `json:"hopLimit"`
	Summary     jsonSummary    `json:"summary"`
	Artifacts   []jsonArtifact `json:"artifacts"`
	Union       []jsonNode     `json:"affectedNodes"`
	Flags       []jsonFlag     `json:"breakingChanges"`
	Assessment  jsonAssessment `json:"riskAssessment"`
	Warnings    []string       `json:"warnings"`
}

type jsonSummary struct {
	ChangedArtifacts int    `json:"changedArtifacts"`
	AffectedNodes    int    `json:"affectedNodes"`
	BreakingChanges  int    `json:"breakingChanges"`
	RiskLevel        string `json:"riskLevel"`
	ExitSignal       string `json:"exitSignal"`
	ExitCode         int    `json:"exitCode"`
}

type jsonArtifact struct {
	Path      string     `json:"path"`
	Kind      string     `json:"kind"`
	Template  string     `json:"template,omitempty"`
	ChartName string     `json:"chartName,omitempty"`
	SeedIDs   []string   `json:"seedIds"`
	Reachable []jsonNode `json:"reachable"`
	Error     string     `json:"error,omitempty"`
}

type jsonNode struct {
	NodeID      string     `json:"nodeId"`
	Label       string     `json:"label"`
	HopDistance int        `json:"hopDistance"`
	ViaEdgeType string     `json:"viaEdgeType"`
	Paths       [][]string `json:"paths"`
}

type jsonFlag struct {
	ArtifactPath string `json:"artifactPath"`
	Category     string `json:"category"`
	Severity     string `json:"severity"`
	Detail       string `json:"detail"`
}

type jsonAssessment struct {
	Score           float64       `json:"score"`
	Level           string        `json:"level"`
	Factors         []risk.Factor `json:"contributingFactors"`
	Recommendation  string        `json:"recommendation"`
	TestingPriority string        `json:"testingPriority"`
}

// RenderJSON renders the report as an indented JSON document with a
// stable field order.
func RenderJSON(r *Report) ([]byte, error) {
	doc := jsonReport{
		RunID:       r.RunID,
		Version:     reportVersion,
		GeneratedAt: r.GeneratedAt,
		HopLimit:    r.HopLimit,
		Summary: jsonSummary{
			ChangedArtifacts: r.Summary.ChangedArtifacts,
			AffectedNodes:    r.Summary.AffectedNodes,
			BreakingChanges:  r.Summary.BreakingChanges,
			RiskLevel:        r.Summary.RiskLevel,
			ExitSignal:       r.Summary.ExitSignal.String(),
			ExitCode:         r.Summary.ExitSignal.ExitCode(),
		},
		Artifacts: make([]jsonArtifact, 0, len(r.Artifacts)),
		Union:     toJSONNodes(r.Union),
		Flags:     toJSONFlags(r.Flags),
		Assessment: jsonAssessment{
			Score:           r.Assessment.Score,
			Level:           r.Assessment.Level.String(),
			Factors:         r.Assessment.ContributingFactors,
			Recommendation:  r.Assessment.Recommendation,
			TestingPriority: r.Assessment.TestingPriority,
		},
		Warnings: r.Warnings,
	}

	for _, a := range r.Artifacts {
		ja := jsonArtifact{
			Path:      a.Artifact.Path,
			Kind:      a.Artifact.Kind.String(),
			ChartName: a.Artifact.ChartName,
			SeedIDs:   a.SeedIDs,
			Reachable: toJSONNodes(a.Reachable),
			Error:     a.Err,
		}
		if a.Artifact.Template != change.TemplateNone {
			ja.Template = a.Artifact.Template.String()
		}
		doc.Artifacts = append(doc.Artifacts, ja)
	}

	return json.MarshalIndent(doc, "", "  ")
}

func toJSONNodes(nodes []NodeDetail) []jsonNode {
	out := make([]jsonNode, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, jsonNode{
			NodeID:      n.NodeID,
			Label:       n.Label,
			HopDistance: n.HopDistance,
			ViaEdgeType: n.ViaEdgeType,
			Paths:       n.Paths,
		})
	}
	return out
}

func toJSONFlags(flags []change.BreakingChangeFlag) []jsonFlag {
	out := make([]jsonFlag, 0, len(flags))
	for _, f := range flags {
		out = append(out, jsonFlag{
			ArtifactPath: f.ArtifactPath,
			Category:     f.Category.String(),
			Severity:     f.Severity.String(),
			Detail:       f.Detail,
		})
	}
	return out
}
