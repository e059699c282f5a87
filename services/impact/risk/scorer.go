// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package risk scores a blast-radius result plus breaking-change flags
// into a weighted risk assessment with deterministic recommendations.
//
// Scoring is a total function: any well-formed input produces an
// assessment, an empty blast radius scores LOW with an empty factor list,
// and no error path exists.
package risk

import (
	"log/slog"
	"sort"

	"github.com/AleutianAI/AleutianImpact/services/impact/blast"
	"github.com/AleutianAI/AleutianImpact/services/impact/change"
	"github.com/AleutianAI/AleutianImpact/services/impact/graphstore"
)

// Scorer computes risk assessments.
//
// Thread Safety: safe for concurrent use; the scorer is immutable after
// construction.
type Scorer struct {
	weights    Weights
	saturation float64
	logger     *slog.Logger
}

// ScorerOption configures a Scorer.
type ScorerOption func(*Scorer)

// WithWeights overrides the default factor weights.
func WithWeights(w Weights) ScorerOption {
	return func(s *Scorer) { s.weights = w }
}

// WithFanOutSaturation sets the reachable-node count at which fanOut
// saturates. Values below 1 keep the default.
func WithFanOutSaturation(n int) ScorerOption {
	return func(s *Scorer) {
		if n >= 1 {
			s.saturation = float64(n)
		}
	}
}

// WithScorerLogger sets the structured logger.
func WithScorerLogger(logger *slog.Logger) ScorerOption {
	return func(s *Scorer) { s.logger = logger }
}

// NewScorer creates a Scorer with the default weights and saturation.
func NewScorer(opts ...ScorerOption) *Scorer {
	s := &Scorer{
		weights:    DefaultWeights(),
		saturation: DefaultFanOutSaturation,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score computes the weighted risk assessment.
//
// Description:
//
//	Four factors, each normalized to [0,1] before weighting:
//	fanOut saturates at the configured reachable-node count,
//	publicExposure is 1 when the radius touches an Ingress,
//	breakingSeverity maps the worst flag severity onto a 0.25 scale,
//	crossChartSpread is 1 when the radius spans more than one chart.
//	The assessment lists each non-zero factor sorted by contribution
//	descending, ties kept in the fixed factor order above.
//
// Inputs:
//
//	result - Blast-radius result; nil is treated as an empty radius.
//	flags - Breaking-change flags from detection.
//
// Outputs:
//
//	Assessment - Score, level, factor breakdown, recommendations.
func (s *Scorer) Score(result *blast.Result, flags []change.BreakingChangeFlag) Assessment {
	var (
		fanOut   float64
		exposure float64
		spread   float64
	)
	if result != nil {
		fanOut = float64(len(result.Union)) / s.saturation
		if fanOut > 1 {
			fanOut = 1
		}
		if result.HasLabel(graphstore.LabelIngress) {
			exposure = 1
		}
		if len(result.ChartSpread()) > 1 {
			spread = 1
		}
	}

	severity := maxSeverityScale(flags)

	factors := []Factor{
		{Name: FactorFanOut, Value: fanOut, Weight: s.weights.FanOut},
		{Name: FactorPublicExposure, Value: exposure, Weight: s.weights.PublicExposure},
		{Name: FactorBreakingSeverity, Value: severity, Weight: s.weights.BreakingSeverity},
		{Name: FactorCrossChartSpread, Value: spread, Weight: s.weights.CrossChartSpread},
	}

	score := 0.0
	contributing := make([]Factor, 0, len(factors))
	for i := range factors {
		factors[i].Contribution = factors[i].Value * factors[i].Weight
		score += factors[i].Contribution
		if factors[i].Value > 0 {
			contributing = append(contributing, factors[i])
		}
	}
	sort.SliceStable(contributing, func(i, j int) bool {
		return contributing[i].Contribution > contributing[j].Contribution
	})

	level := LevelForScore(score)
	assessment := Assessment{
		Score:               score,
		Level:               level,
		ContributingFactors: contributing,
		Recommendation:      recommend(level, exposure, fanOut, severity),
		TestingPriority:     testingPriority(exposure, fanOut),
	}

	s.logger.Debug("risk scored",
		"score", score,
		"level", level.String(),
		"factors", len(contributing),
	)
	return assessment
}

// maxSeverityScale maps the worst flag severity to [0,1], zero when no
// flags exist.
func maxSeverityScale(flags []change.BreakingChangeFlag) float64 {
	worst := 0.0
	for _, f := range flags {
		if s := f.Severity.Scale(); s > worst {
			worst = s
		}
	}
	return worst
}

// recommend is the deterministic deployment-strategy lookup; it is a
// policy table, not a scored output.
func recommend(level Level, exposure, fanOut, severity float64) string {
	switch {
	case level == LevelCritical || (exposure == 1 && fanOut > 0.5):
		return "canary deployment, staged rollout"
	case severity >= 0.75:
		return "contract tests required before merge"
	default:
		return "standard deployment, monitor dependents"
	}
}

// testingPriority maps exposure and fan-out onto pre-merge test guidance.
func testingPriority(exposure, fanOut float64) string {
	switch {
	case exposure == 1:
		return "HIGH - integration tests required"
	case fanOut > 0:
		return "MEDIUM - contract tests recommended"
	default:
		return "LOW - unit tests sufficient"
	}
}
