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

// Level is the discrete risk bucket derived from the weighted score.
type Level int

const (
	LevelLow Level = iota
	LevelMedium
	LevelHigh
	LevelCritical
)

// String returns the canonical upper-case name of the level.
func (l Level) String() string {
	switch l {
	case LevelLow:
		return "LOW"
	case LevelMedium:
		return "MEDIUM"
	case LevelHigh:
		return "HIGH"
	case LevelCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// LevelForScore buckets a score in [0,1] into a discrete level.
func LevelForScore(score float64) Level {
	switch {
	case score < 0.25:
		return LevelLow
	case score < 0.5:
		return LevelMedium
	case score < 0.75:
		return LevelHigh
	default:
		return LevelCritical
	}
}

// Factor names used in assessments.
const (
	FactorFanOut           = "fanOut"
	FactorPublicExposure   = "publicExposure"
	FactorBreakingSeverity = "breakingSeverity"
	FactorCrossChartSpread = "crossChartSpread"
)

// Factor is one scoring input with its weighted contribution.
type Factor struct {
	// Name identifies the factor (FactorFanOut etc.).
	Name string `json:"name"`

	// Value is the normalized factor value in [0,1].
	Value float64 `json:"value"`

	// Weight is the factor's share of the total score.
	Weight float64 `json:"weight"`

	// Contribution is Value * Weight.
	Contribution float64 `json:"contribution"`
}

// Weights holds the per-factor weights of the scoring model. The four
// weights sum to 1 in the default configuration; callers overriding them
// are responsible for keeping the score in [0,1].
type Weights struct {
	FanOut           float64
	PublicExposure   float64
	BreakingSeverity float64
	CrossChartSpread float64
}

// DefaultWeights returns the standard scoring weights.
func DefaultWeights() Weights {
	return Weights{
		FanOut:           0.30,
		PublicExposure:   0.25,
		BreakingSeverity: 0.30,
		CrossChartSpread: 0.15,
	}
}

// DefaultFanOutSaturation is the reachable-node count at which the fanOut
// factor saturates to 1.
const DefaultFanOutSaturation = 20

// Assessment is the risk verdict for one change set.
type Assessment struct {
	// Score is the weighted sum of normalized factors, in [0,1].
	Score float64 `json:"score"`

	// Level is the discrete bucket for Score.
	Level Level `json:"-"`

	// ContributingFactors lists each non-zero factor with its weighted
	// contribution, sorted descending for explainability.
	ContributingFactors []Factor `json:"contributingFactors"`

	// Recommendation is the deployment-strategy guidance.
	Recommendation string `json:"recommendation"`

	// TestingPriority is the pre-merge testing guidance.
	TestingPriority string `json:"testingPriority"`
}
