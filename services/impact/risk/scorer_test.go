// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianImpact/services/impact/blast"
	"github.com/AleutianAI/AleutianImpact/services/impact/change"
	"github.com/AleutianAI/AleutianImpact/services/impact/graphstore"
)

// radius builds a blast result with the given union nodes.
func radius(nodes ...graphstore.Node) *blast.Result {
	r := &blast.Result{HopLimit: blast.DefaultHopLimit}
	for _, n := range nodes {
		r.Union = append(r.Union, blast.UnionEntry{Node: n})
	}
	return r
}

func svc(key, chart string) graphstore.Node {
	return graphstore.Node{Label: graphstore.LabelService, Key: key, Chart: chart}
}

func flag(severity change.Severity) change.BreakingChangeFlag {
	return change.BreakingChangeFlag{Severity: severity}
}

func TestLevelForScore(t *testing.T) {
	tests := []struct {
		score float64
		want  Level
	}{
		{0, LevelLow},
		{0.24, LevelLow},
		{0.25, LevelMedium},
		{0.49, LevelMedium},
		{0.5, LevelHigh},
		{0.74, LevelHigh},
		{0.75, LevelCritical},
		{1, LevelCritical},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LevelForScore(tt.score), "score %v", tt.score)
	}
}

func TestLevel_String(t *testing.T) {
	assert.Equal(t, "LOW", LevelLow.String())
	assert.Equal(t, "MEDIUM", LevelMedium.String())
	assert.Equal(t, "HIGH", LevelHigh.String())
	assert.Equal(t, "CRITICAL", LevelCritical.String())
	assert.Equal(t, "UNKNOWN", Level(42).String())
}

func TestScorer_EmptyRadius(t *testing.T) {
	s := NewScorer()

	a := s.Score(nil, nil)
	assert.Zero(t, a.Score)
	assert.Equal(t, LevelLow, a.Level)
	assert.Empty(t, a.ContributingFactors)
	assert.Equal(t, "standard deployment, monitor dependents", a.Recommendation)
	assert.Equal(t, "LOW - unit tests sufficient", a.TestingPriority)

	// An empty (non-nil) radius scores the same.
	b := s.Score(radius(), nil)
	assert.Equal(t, a, b)
}

func TestScorer_FanOutSaturation(t *testing.T) {
	s := NewScorer(WithFanOutSaturation(4))

	// Two of four nodes: fanOut 0.5, contribution 0.15.
	two := s.Score(radius(svc("a", "x"), svc("b", "x")), nil)
	assert.InDelta(t, 0.15, two.Score, 1e-9)

	// Six of four saturates at 1.0, contribution 0.30.
	nodes := []graphstore.Node{
		svc("a", "x"), svc("b", "x"), svc("c", "x"),
		svc("d", "x"), svc("e", "x"), svc("f", "x"),
	}
	six := s.Score(radius(nodes...), nil)
	assert.InDelta(t, 0.30, six.Score, 1e-9)
}

func TestScorer_Weights(t *testing.T) {
	s := NewScorer(WithFanOutSaturation(1))

	// One node, one chart, no ingress, no flags: fanOut only.
	one := s.Score(radius(svc("a", "x")), nil)
	assert.InDelta(t, 0.30, one.Score, 1e-9)
	require.Len(t, one.ContributingFactors, 1)
	assert.Equal(t, FactorFanOut, one.ContributingFactors[0].Name)
	assert.InDelta(t, 1.0, one.ContributingFactors[0].Value, 1e-9)
	assert.InDelta(t, 0.30, one.ContributingFactors[0].Contribution, 1e-9)

	// Add a second chart: crossChartSpread adds 0.15.
	spread := s.Score(radius(svc("a", "x"), svc("b", "y")), nil)
	assert.InDelta(t, 0.45, spread.Score, 1e-9)

	// Add an ingress: publicExposure adds 0.25.
	ing := graphstore.Node{Label: graphstore.LabelIngress, Key: "edge", Chart: "x"}
	exposed := s.Score(radius(svc("a", "x"), svc("b", "y"), ing), nil)
	assert.InDelta(t, 0.70, exposed.Score, 1e-9)

	// Add a CRITICAL flag: breakingSeverity adds 0.30, total 1.0.
	full := s.Score(radius(svc("a", "x"), svc("b", "y"), ing), []change.BreakingChangeFlag{flag(change.SeverityCritical)})
	assert.InDelta(t, 1.0, full.Score, 1e-9)
	assert.Equal(t, LevelCritical, full.Level)
	assert.Len(t, full.ContributingFactors, 4)
}

func TestScorer_BreakingSeverityUsesWorstFlag(t *testing.T) {
	s := NewScorer()

	flags := []change.BreakingChangeFlag{
		flag(change.SeverityLow),
		flag(change.SeverityHigh),
		flag(change.SeverityMedium),
	}
	a := s.Score(nil, flags)

	// HIGH scales to 0.75; weighted by 0.30 gives 0.225.
	assert.InDelta(t, 0.225, a.Score, 1e-9)
	require.Len(t, a.ContributingFactors, 1)
	assert.Equal(t, FactorBreakingSeverity, a.ContributingFactors[0].Name)
	assert.InDelta(t, 0.75, a.ContributingFactors[0].Value, 1e-9)
}

func TestScorer_MonotonicInFlags(t *testing.T) {
	s := NewScorer()
	r := radius(svc("a", "x"), svc("b", "x"))

	base := s.Score(r, nil)
	severities := []change.Severity{
		change.SeverityLow, change.SeverityMedium,
		change.SeverityHigh, change.SeverityCritical,
	}

	prev := base.Score
	for _, sev := range severities {
		got := s.Score(r, []change.BreakingChangeFlag{flag(sev)})
		assert.GreaterOrEqual(t, got.Score, prev, "adding a %s flag lowered the score", sev)
		prev = got.Score
	}
}

func TestScorer_FactorsSortedByContribution(t *testing.T) {
	s := NewScorer(WithFanOutSaturation(10))
	ing := graphstore.Node{Label: graphstore.LabelIngress, Key: "edge", Chart: "x"}

	// fanOut 0.1 (contribution 0.03), exposure 1 (0.25), severity CRITICAL
	// (0.30): expect breakingSeverity, publicExposure, fanOut.
	a := s.Score(radius(ing), []change.BreakingChangeFlag{flag(change.SeverityCritical)})

	require.Len(t, a.ContributingFactors, 3)
	assert.Equal(t, FactorBreakingSeverity, a.ContributingFactors[0].Name)
	assert.Equal(t, FactorPublicExposure, a.ContributingFactors[1].Name)
	assert.Equal(t, FactorFanOut, a.ContributingFactors[2].Name)
	for i := 1; i < len(a.ContributingFactors); i++ {
		assert.GreaterOrEqual(t,
			a.ContributingFactors[i-1].Contribution,
			a.ContributingFactors[i].Contribution,
		)
	}
}

func TestScorer_Recommendation(t *testing.T) {
	s := NewScorer(WithFanOutSaturation(2))
	ing := graphstore.Node{Label: graphstore.LabelIngress, Key: "edge", Chart: "x"}

	// Exposed with fanOut above 0.5: canary even below CRITICAL.
	exposed := s.Score(radius(svc("a", "x"), svc("b", "x"), ing), nil)
	assert.NotEqual(t, LevelCritical, exposed.Level)
	assert.Equal(t, "canary deployment, staged rollout", exposed.Recommendation)

	// HIGH severity without exposure: contract tests.
	high := s.Score(nil, []change.BreakingChangeFlag{flag(change.SeverityHigh)})
	assert.Equal(t, "contract tests required before merge", high.Recommendation)

	// Quiet change: standard deployment.
	quiet := s.Score(radius(svc("a", "x")), nil)
	assert.Equal(t, "standard deployment, monitor dependents", quiet.Recommendation)
}

func TestScorer_TestingPriority(t *testing.T) {
	s := NewScorer()
	ing := graphstore.Node{Label: graphstore.LabelIngress, Key: "edge", Chart: "x"}

	assert.Equal(t, "HIGH - integration tests required",
		s.Score(radius(ing), nil).TestingPriority)
	assert.Equal(t, "MEDIUM - contract tests recommended",
		s.Score(radius(svc("a", "x")), nil).TestingPriority)
	assert.Equal(t, "LOW - unit tests sufficient",
		s.Score(nil, []change.BreakingChangeFlag{flag(change.SeverityHigh)}).TestingPriority)
}

func TestScorer_CustomWeights(t *testing.T) {
	s := NewScorer(
		WithWeights(Weights{FanOut: 1}),
		WithFanOutSaturation(1),
	)
	ing := graphstore.Node{Label: graphstore.LabelIngress, Key: "edge", Chart: "x"}

	a := s.Score(radius(ing), []change.BreakingChangeFlag{flag(change.SeverityCritical)})
	assert.InDelta(t, 1.0, a.Score, 1e-9)
}
