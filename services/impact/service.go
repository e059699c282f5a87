// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package impact

import (
	"time"

	"github.com/AleutianAI/AleutianImpact/services/impact/change"
	"github.com/AleutianAI/AleutianImpact/services/impact/graphstore"
)

// ServiceConfig configures the impact HTTP service.
type ServiceConfig struct {
	// RequestTimeout caps the wall time of one analysis request.
	// Default: 60s
	RequestTimeout time.Duration

	// MaxChanges is the maximum number of changes per request.
	// Default: 500
	MaxChanges int

	// MaxPatchBytes is the maximum size of a single patch.
	// Default: 1MB
	MaxPatchBytes int
}

// DefaultServiceConfig returns sensible defaults.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		RequestTimeout: 60 * time.Second,
		MaxChanges:     500,
		MaxPatchBytes:  1024 * 1024,
	}
}

// ChangeInput is one entry of an analysis request.
type ChangeInput struct {
	// Path is the repository-relative file path.
	Path string `json:"path" binding:"required"`

	// Patch is the optional unified diff text for the path.
	Patch string `json:"patch,omitempty"`
}

// AnalyzeRequest is the body of POST /v1/impact/analyze.
type AnalyzeRequest struct {
	// Changes is the ordered change set.
	Changes []ChangeInput `json:"changes" binding:"required"`

	// Format selects the rendering: "markdown" or "json" (default).
	Format string `json:"format,omitempty"`

	// HopLimit optionally overrides the traversal bound for this request.
	HopLimit int `json:"hopLimit,omitempty"`

	// Charts optionally maps chart root directories (repo-relative) to
	// chart names, for callers that know the repository layout.
	Charts map[string]string `json:"charts,omitempty"`
}

// AnalyzeSummary is the headline section of an analysis response.
type AnalyzeSummary struct {
	ChangedArtifacts int    `json:"changedArtifacts"`
	AffectedNodes    int    `json:"affectedNodes"`
	BreakingChanges  int    `json:"breakingChanges"`
	RiskLevel        string `json:"riskLevel"`
	ExitSignal       string `json:"exitSignal"`
	ExitCode         int    `json:"exitCode"`
}

// AnalyzeResponse is the body of a successful analysis.
type AnalyzeResponse struct {
	RunID    string         `json:"runId"`
	Summary  AnalyzeSummary `json:"summary"`
	Format   string         `json:"format"`
	Document string         `json:"document"`
	Warnings []string       `json:"warnings,omitempty"`
}

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Service is the impact HTTP service.
//
// Thread Safety: safe for concurrent use; analyzers are stateless per
// call and the configuration is immutable after construction.
type Service struct {
	store    graphstore.Store
	config   ServiceConfig
	opts     []AnalyzerOption
	analyzer *Analyzer
}

// NewService creates the impact service over a graph store. The given
// analyzer options become the defaults for every request; requests may
// override the hop limit and chart layout per call.
func NewService(store graphstore.Store, config ServiceConfig, opts ...AnalyzerOption) (*Service, error) {
	analyzer, err := NewAnalyzer(store, opts...)
	if err != nil {
		return nil, err
	}
	return &Service{
		store:    store,
		config:   config,
		opts:     opts,
		analyzer: analyzer,
	}, nil
}

// analyzerFor returns the default pipeline, or a per-request one when the
// request carries overrides.
func (s *Service) analyzerFor(req *AnalyzeRequest) (*Analyzer, error) {
	if req.HopLimit == 0 && len(req.Charts) == 0 {
		return s.analyzer, nil
	}

	opts := append([]AnalyzerOption{}, s.opts...)
	if req.HopLimit > 0 {
		opts = append(opts, WithAnalyzerHopLimit(req.HopLimit))
	}
	if len(req.Charts) > 0 {
		opts = append(opts, WithAnalyzerChartLocator(&change.StaticChartLocator{Charts: req.Charts}))
	}
	return NewAnalyzer(s.store, opts...)
}
