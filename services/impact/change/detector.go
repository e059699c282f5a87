// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package change classifies a raw change set into typed artifacts and
// flags syntactic breaking-change candidates.
//
// Classification is path-based: a file is chart-related iff an ancestor
// directory carries a Chart.yaml descriptor, otherwise it is a source
// file. Breaking-change detection is a pluggable set of line-level
// heuristics over unified-diff hunks; with no diff available the detector
// degrades to classification only and emits no flags.
//
// Detection is a pure function of its input: no filesystem access beyond
// the optional chart locator, no network, no mutation of shared state.
package change

import (
	"context"
	"fmt"
	"log/slog"
)

// Detector turns raw changes into classified artifacts plus flags.
//
// Thread Safety: safe for concurrent use when the configured ChartLocator
// is (the static locator is; the filesystem locator caches without locking
// and should not be shared across concurrent Detect calls).
type Detector struct {
	locator    ChartLocator
	heuristics []Heuristic
	logger     *slog.Logger
}

// DetectorOption configures a Detector.
type DetectorOption func(*Detector)

// WithChartLocator sets the chart descriptor lookup.
func WithChartLocator(l ChartLocator) DetectorOption {
	return func(d *Detector) { d.locator = l }
}

// WithHeuristics replaces the built-in heuristic set.
func WithHeuristics(hs []Heuristic) DetectorOption {
	return func(d *Detector) { d.heuristics = hs }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) DetectorOption {
	return func(d *Detector) { d.logger = logger }
}

// NewDetector creates a Detector with the default heuristic set and an
// empty static chart locator (no chart classification) unless configured
// otherwise.
func NewDetector(opts ...DetectorOption) *Detector {
	d := &Detector{
		locator:    &StaticChartLocator{},
		heuristics: DefaultHeuristics(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect classifies the change set and runs the breaking-change heuristics.
//
// Description:
//
//	Each raw change is classified once; kind and subkind never change
//	afterwards. Changes with a parseable patch get diff hunks attached;
//	a malformed patch degrades that artifact to file-list-only handling
//	with a warning instead of aborting the run. Changes with an empty
//	path are rejected with a warning and the rest continue.
//
// Inputs:
//
//	ctx - Context for cancellation, checked between changes.
//	changes - Ordered raw change set (paths with optional unified diffs).
//
// Outputs:
//
//	*Detection - Artifacts in input order, flags, and degradation warnings.
//	error - Non-nil only when the context is cancelled.
func (d *Detector) Detect(ctx context.Context, changes []RawChange) (*Detection, error) {
	result := &Detection{
		Artifacts: make([]ChangedArtifact, 0, len(changes)),
	}

	for _, raw := range changes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if raw.Path == "" {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("rejected change with empty path: %v", ErrEmptyPath))
			continue
		}

		kind, template, chartName := Classify(raw.Path, d.locator)
		artifact := ChangedArtifact{
			Kind:      kind,
			Template:  template,
			Path:      raw.Path,
			ChartName: chartName,
		}

		if raw.Patch != "" {
			hunks, err := parseHunks(raw.Path, raw.Patch)
			if err != nil {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("%s: %v; heuristics skipped", raw.Path, err))
				d.logger.Warn("diff parse failed",
					"path", raw.Path,
					"error", err,
				)
			} else {
				artifact.Hunks = hunks
			}
		}

		result.Artifacts = append(result.Artifacts, artifact)

		for _, h := range d.heuristics {
			flags := h.Detect(artifact)
			if len(flags) > 0 {
				d.logger.Debug("heuristic raised flags",
					"heuristic", h.Name(),
					"artifact", describeArtifact(artifact),
					"flags", len(flags),
				)
			}
			result.Flags = append(result.Flags, flags...)
		}
	}

	return result, nil
}
