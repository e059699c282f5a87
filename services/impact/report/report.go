// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package report projects an impact analysis into serialized documents.
//
// The report is a pure projection: assembly copies data, derives the exit
// signal from the assessment level plus flag severities, and renders it as
// markdown or JSON. No decision logic lives here beyond the exit-signal
// lookup, and the report always explains why a section is empty or partial
// rather than omitting it.
package report

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/AleutianAI/AleutianImpact/services/impact/blast"
	"github.com/AleutianAI/AleutianImpact/services/impact/change"
	"github.com/AleutianAI/AleutianImpact/services/impact/risk"
)

// ExitSignal is the tri-state outcome handed back to the calling process.
type ExitSignal int

const (
	// SignalClear means no breaking changes and risk below critical.
	SignalClear ExitSignal = iota

	// SignalBreakingChanges means at least one HIGH or CRITICAL flag.
	SignalBreakingChanges

	// SignalCriticalRisk means the assessment level is CRITICAL.
	SignalCriticalRisk
)

// String returns the canonical name of the signal.
func (s ExitSignal) String() string {
	switch s {
	case SignalClear:
		return "CLEAR"
	case SignalBreakingChanges:
		return "BREAKING_CHANGES_DETECTED"
	case SignalCriticalRisk:
		return "CRITICAL_RISK"
	default:
		return "UNKNOWN"
	}
}

// ExitCode maps the signal to a process exit code.
func (s ExitSignal) ExitCode() int {
	return int(s)
}

// Summary holds the headline counts of a report.
type Summary struct {
	ChangedArtifacts int
	AffectedNodes    int
	BreakingChanges  int
	RiskLevel        string
	ExitSignal       ExitSignal
}

// NodeDetail is one reachable node with its traversal annotations.
type NodeDetail struct {
	NodeID      string
	Label       string
	HopDistance int
	ViaEdgeType string
	Paths       [][]string
}

// ArtifactDetail groups one artifact with its seeds and reachable set.
type ArtifactDetail struct {
	Artifact  change.ChangedArtifact
	SeedIDs   []string
	Reachable []NodeDetail

	// Err explains a partial traversal for this artifact, empty when the
	// traversal completed.
	Err string
}

// Report is the immutable analysis document.
type Report struct {
	RunID       string
	GeneratedAt time.Time
	HopLimit    int

	Summary    Summary
	Artifacts  []ArtifactDetail
	Union      []NodeDetail
	Flags      []change.BreakingChangeFlag
	Assessment risk.Assessment
	Warnings   []string
}

// Generator assembles reports.
type Generator struct {
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithGeneratorLogger sets the structured logger.
func WithGeneratorLogger(logger *slog.Logger) GeneratorOption {
	return func(g *Generator) { g.logger = logger }
}

// WithNowFunc overrides the timestamp source, for tests.
func WithNowFunc(now func() time.Time) GeneratorOption {
	return func(g *Generator) { g.now = now }
}

// WithIDFunc overrides the run-ID source, for tests.
func WithIDFunc(newID func() string) GeneratorOption {
	return func(g *Generator) { g.newID = newID }
}

// NewGenerator creates a report generator.
func NewGenerator(opts ...GeneratorOption) *Generator {
	g := &Generator{
		logger: slog.Default(),
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate assembles the report for one completed analysis.
//
// Description:
//
//	Copies detection output, per-artifact traversal results and the risk
//	assessment into a single immutable document, preserving artifact
//	input order, hop distances and full paths. The exit signal derives
//	solely from the assessment level and flag severities: CRITICAL level
//	wins, otherwise any HIGH or CRITICAL flag, otherwise clear.
//
// Inputs:
//
//	detection - Classified artifacts, flags and degradation warnings.
//	radius - Blast-radius result; nil is treated as an empty radius.
//	assessment - Risk assessment for the change set.
//
// Outputs:
//
//	*Report - The assembled document.
func (g *Generator) Generate(detection *change.Detection, radius *blast.Result, assessment risk.Assessment) *Report {
	r := &Report{
		RunID:       g.newID(),
		GeneratedAt: g.now().UTC(),
		Assessment:  assessment,
	}
	if detection != nil {
		r.Flags = detection.Flags
		r.Warnings = append(r.Warnings, detection.Warnings...)
	}

	if radius != nil {
		r.HopLimit = radius.HopLimit
		for _, sr := range radius.Seeds {
			detail := ArtifactDetail{
				Artifact: sr.Artifact,
				Err:      sr.Err,
			}
			for _, seed := range sr.Seeds {
				detail.SeedIDs = append(detail.SeedIDs, seed.ID())
			}
			for _, en := range sr.Reachable {
				detail.Reachable = append(detail.Reachable, NodeDetail{
					NodeID:      en.Node.ID(),
					Label:       en.Node.Label.String(),
					HopDistance: en.HopDistance,
					ViaEdgeType: en.ViaEdgeType.String(),
					Paths:       [][]string{en.PathFromSeed},
				})
			}
			if sr.Err != "" {
				r.Warnings = append(r.Warnings,
					sr.Artifact.Path+": blast radius incomplete: "+sr.Err)
			}
			r.Artifacts = append(r.Artifacts, detail)
		}
		for _, u := range radius.Union {
			r.Union = append(r.Union, NodeDetail{
				NodeID:      u.Node.ID(),
				Label:       u.Node.Label.String(),
				HopDistance: u.HopDistance,
				ViaEdgeType: u.ViaEdgeType.String(),
				Paths:       u.Paths,
			})
		}
	}

	r.Summary = Summary{
		ChangedArtifacts: len(r.Artifacts),
		AffectedNodes:    len(r.Union),
		BreakingChanges:  len(r.Flags),
		RiskLevel:        assessment.Level.String(),
		ExitSignal:       deriveSignal(assessment.Level, r.Flags),
	}

	g.logger.Info("report generated",
		"run_id", r.RunID,
		"artifacts", r.Summary.ChangedArtifacts,
		"affected_nodes", r.Summary.AffectedNodes,
		"risk_level", r.Summary.RiskLevel,
		"exit_signal", r.Summary.ExitSignal.String(),
	)
	return r
}

// deriveSignal is the only coupling point back toward the caller: the
// assessment level and flag severities alone decide the signal.
func deriveSignal(level risk.Level, flags []change.BreakingChangeFlag) ExitSignal {
	if level == risk.LevelCritical {
		return SignalCriticalRisk
	}
	for _, f := range flags {
		if f.Severity >= change.SeverityHigh {
			return SignalBreakingChanges
		}
	}
	return SignalClear
}
