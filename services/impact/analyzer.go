// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package impact wires change detection, blast-radius traversal, risk
// scoring and report generation into one analyzer, and exposes it over
// HTTP.
//
// The pipeline is strictly one-directional: raw changes become classified
// artifacts, artifacts seed the graph traversal, the traversal result and
// the breaking-change flags feed the scorer, and the report is a pure
// projection of everything upstream. Nothing mutates the graph store.
package impact

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/AleutianAI/AleutianImpact/services/impact/blast"
	"github.com/AleutianAI/AleutianImpact/services/impact/change"
	"github.com/AleutianAI/AleutianImpact/services/impact/graphstore"
	"github.com/AleutianAI/AleutianImpact/services/impact/report"
	"github.com/AleutianAI/AleutianImpact/services/impact/risk"
)

// Format selects a report rendering.
type Format string

const (
	// FormatMarkdown renders a PR-comment style document.
	FormatMarkdown Format = "markdown"

	// FormatJSON renders a machine-readable document.
	FormatJSON Format = "json"
)

// Analyzer runs the full impact pipeline for one change set at a time.
//
// Thread Safety: safe for concurrent use; each Analyze call keeps its
// state on the stack.
type Analyzer struct {
	detector  *change.Detector
	engine    *blast.Engine
	scorer    *risk.Scorer
	generator *report.Generator
	logger    *slog.Logger
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*analyzerConfig)

type analyzerConfig struct {
	locator          change.ChartLocator
	hopLimit         int
	concurrency      int
	fanOutSaturation int
	logger           *slog.Logger
}

// WithAnalyzerChartLocator sets the chart descriptor lookup used during
// classification.
func WithAnalyzerChartLocator(l change.ChartLocator) AnalyzerOption {
	return func(c *analyzerConfig) { c.locator = l }
}

// WithAnalyzerHopLimit bounds traversal depth.
func WithAnalyzerHopLimit(n int) AnalyzerOption {
	return func(c *analyzerConfig) { c.hopLimit = n }
}

// WithAnalyzerConcurrency bounds simultaneous per-seed traversals.
func WithAnalyzerConcurrency(n int) AnalyzerOption {
	return func(c *analyzerConfig) { c.concurrency = n }
}

// WithAnalyzerFanOutSaturation sets the fanOut saturation constant.
func WithAnalyzerFanOutSaturation(n int) AnalyzerOption {
	return func(c *analyzerConfig) { c.fanOutSaturation = n }
}

// WithAnalyzerLogger sets the structured logger for the whole pipeline.
func WithAnalyzerLogger(logger *slog.Logger) AnalyzerOption {
	return func(c *analyzerConfig) { c.logger = logger }
}

// NewAnalyzer assembles the pipeline over the given graph store.
func NewAnalyzer(store graphstore.Store, opts ...AnalyzerOption) (*Analyzer, error) {
	if store == nil {
		return nil, ErrNilStore
	}

	cfg := analyzerConfig{
		hopLimit:         blast.DefaultHopLimit,
		concurrency:      blast.DefaultConcurrency,
		fanOutSaturation: risk.DefaultFanOutSaturation,
		logger:           slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	detectorOpts := []change.DetectorOption{change.WithLogger(cfg.logger)}
	if cfg.locator != nil {
		detectorOpts = append(detectorOpts, change.WithChartLocator(cfg.locator))
	}

	engine, err := blast.NewEngine(store,
		blast.WithHopLimit(cfg.hopLimit),
		blast.WithConcurrency(cfg.concurrency),
		blast.WithEngineLogger(cfg.logger),
	)
	if err != nil {
		return nil, err
	}

	return &Analyzer{
		detector: change.NewDetector(detectorOpts...),
		engine:   engine,
		scorer: risk.NewScorer(
			risk.WithFanOutSaturation(cfg.fanOutSaturation),
			risk.WithScorerLogger(cfg.logger),
		),
		generator: report.NewGenerator(report.WithGeneratorLogger(cfg.logger)),
		logger:    cfg.logger,
	}, nil
}

// Analyze runs the full pipeline for one change set.
//
// Description:
//
//	Detection never aborts the run: rejected inputs and unparseable
//	diffs become report warnings. A change set where no artifact
//	resolves to graph nodes still produces a report (empty radius, LOW
//	risk unless flags raise it). Only an empty input set or caller
//	cancellation returns an error.
//
// Inputs:
//
//	ctx - Context for cancellation, honored between pipeline stages and
//	      between traversal hops.
//	changes - Ordered raw change set.
//
// Outputs:
//
//	*report.Report - The assembled analysis document.
//	error - ErrNoChanges, or a context/cancellation error.
func (a *Analyzer) Analyze(ctx context.Context, changes []change.RawChange) (*report.Report, error) {
	if len(changes) == 0 {
		return nil, ErrNoChanges
	}

	ctx, span := startAnalysisSpan(ctx, len(changes))
	defer span.End()
	start := time.Now()

	detection, err := a.detector.Detect(ctx, changes)
	if err != nil {
		return nil, err
	}

	var radius *blast.Result
	if len(detection.Artifacts) > 0 {
		radius, err = a.engine.Analyze(ctx, detection.Artifacts)
		if err != nil {
			return nil, err
		}
	}

	assessment := a.scorer.Score(radius, detection.Flags)
	rep := a.generator.Generate(detection, radius, assessment)

	a.logger.Info("impact analysis complete",
		"run_id", rep.RunID,
		"changes", len(changes),
		"affected_nodes", rep.Summary.AffectedNodes,
		"risk_level", rep.Summary.RiskLevel,
		"exit_signal", rep.Summary.ExitSignal.String(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	setAnalysisSpanResult(span, rep.Summary.RiskLevel, assessment.Score, rep.Summary.AffectedNodes)
	recordAnalysisMetrics(ctx, time.Since(start), rep.Summary.RiskLevel, assessment.Score, rep.Summary.AffectedNodes)

	return rep, nil
}

// Render serializes a report in the requested format.
func (a *Analyzer) Render(r *report.Report, format Format) ([]byte, error) {
	switch format {
	case FormatMarkdown, "":
		return []byte(report.RenderMarkdown(r)), nil
	case FormatJSON:
		return report.RenderJSON(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
