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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AleutianAI/AleutianImpact/services/impact/change"
)

// Handlers contains the HTTP handlers for the impact service.
//
// Thread Safety: Handlers is safe for concurrent use.
type Handlers struct {
	svc *Service
}

// NewHandlers creates handlers for the impact service.
func NewHandlers(svc *Service) *Handlers {
	return &Handlers{svc: svc}
}

// getOrCreateRequestID returns the X-Request-ID header or a fresh UUID.
func getOrCreateRequestID(c *gin.Context) string {
	if id := c.GetHeader("X-Request-ID"); id != "" {
		return id
	}
	return uuid.NewString()
}

// HandleAnalyze handles POST /v1/impact/analyze.
//
// Description:
//
//	Runs the full impact pipeline for the submitted change set and
//	returns the rendered report plus the headline summary. The exit
//	signal in the summary is the same tri-state the CLI maps to process
//	exit codes.
//
// Response:
//
//	200 OK: AnalyzeResponse
//	400 Bad Request: Validation error
//	500 Internal Server Error: Pipeline error
//	504 Gateway Timeout: Analysis exceeded the request timeout
//
// Thread Safety: This method is safe for concurrent use.
func (h *Handlers) HandleAnalyze(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleAnalyze")

	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	if len(req.Changes) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "At least one change is required",
			Code:  "EMPTY_CHANGE_SET",
		})
		return
	}
	if len(req.Changes) > h.svc.config.MaxChanges {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: fmt.Sprintf("Change set exceeds the limit of %d entries", h.svc.config.MaxChanges),
			Code:  "CHANGE_SET_TOO_LARGE",
		})
		return
	}

	changes := make([]change.RawChange, 0, len(req.Changes))
	for _, in := range req.Changes {
		if len(in.Patch) > h.svc.config.MaxPatchBytes {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error: fmt.Sprintf("Patch for %q exceeds %d bytes", in.Path, h.svc.config.MaxPatchBytes),
				Code:  "PATCH_TOO_LARGE",
			})
			return
		}
		changes = append(changes, change.RawChange{Path: in.Path, Patch: in.Patch})
	}

	analyzer, err := h.svc.analyzerFor(&req)
	if err != nil {
		logger.Warn("Invalid analysis overrides", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "INVALID_OVERRIDES",
		})
		return
	}

	format := Format(req.Format)
	if format == "" {
		format = FormatJSON
	}
	if format != FormatJSON && format != FormatMarkdown {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: fmt.Sprintf("Unknown format %q", req.Format),
			Code:  "UNKNOWN_FORMAT",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.svc.config.RequestTimeout)
	defer cancel()

	logger.Info("Starting impact analysis", "changes", len(changes))

	rep, err := analyzer.Analyze(ctx, changes)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			logger.Error("Analysis timed out", "error", err)
			c.JSON(http.StatusGatewayTimeout, ErrorResponse{
				Error: "Analysis exceeded the request timeout",
				Code:  "ANALYSIS_TIMEOUT",
			})
			return
		}
		logger.Error("Analysis failed", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: err.Error(),
			Code:  "ANALYSIS_FAILED",
		})
		return
	}

	doc, err := analyzer.Render(rep, format)
	if err != nil {
		logger.Error("Report rendering failed", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: err.Error(),
			Code:  "RENDER_FAILED",
		})
		return
	}

	logger.Info("Analysis complete",
		"run_id", rep.RunID,
		"risk_level", rep.Summary.RiskLevel,
		"exit_signal", rep.Summary.ExitSignal.String())

	c.JSON(http.StatusOK, AnalyzeResponse{
		RunID: rep.RunID,
		Summary: AnalyzeSummary{
			ChangedArtifacts: rep.Summary.ChangedArtifacts,
			AffectedNodes:    rep.Summary.AffectedNodes,
			BreakingChanges:  rep.Summary.BreakingChanges,
			RiskLevel:        rep.Summary.RiskLevel,
			ExitSignal:       rep.Summary.ExitSignal.String(),
			ExitCode:         rep.Summary.ExitSignal.ExitCode(),
		},
		Format:   string(format),
		Document: string(doc),
		Warnings: rep.Warnings,
	})
}

// HandleHealth handles GET /v1/impact/health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
