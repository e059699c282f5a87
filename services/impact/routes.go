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
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all impact routes with the router.
//
// Description:
//
//	Registers the /v1/impact/* endpoints with the given Gin router
//	group. The router group should already have any required middleware
//	applied.
//
// Inputs:
//
//	rg - Gin router group (typically /v1)
//	handlers - The handlers instance
//
// Endpoints:
//
//	POST /v1/impact/analyze - Analyze a change set
//	GET  /v1/impact/health - Service health
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	impact := rg.Group("/impact")
	{
		impact.POST("/analyze", handlers.HandleAnalyze)
		impact.GET("/health", handlers.HandleHealth)
	}
}
