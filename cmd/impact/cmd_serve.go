// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianImpact/pkg/logging"
	"github.com/AleutianAI/AleutianImpact/services/impact"
	"github.com/AleutianAI/AleutianImpact/services/impact/graphstore"
)

var (
	servePort    int
	serveRelease bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the impact analysis HTTP API",
	Long: `Serve starts the impact analysis API on the given port.

Endpoints:
  POST /v1/impact/analyze - Analyze a change set
  GET  /v1/impact/health - Service health

Graph connection settings come from the environment (NEO4J_URI,
NEO4J_USER, NEO4J_PASSWORD, NEO4J_DATABASE) or a --config YAML file;
environment variables override the file.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	serveCmd.Flags().BoolVar(&serveRelease, "release", false,
		"Run Gin in release mode")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logging.New(logging.Config{Level: logging.LevelInfo, Service: "impact-api", JSON: true})
	defer logger.Close()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitConfigError)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitConfigError)
	}

	store, err := graphstore.NewNeo4jStore(ctx, cfg.Graph)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot reach graph store: %v\n", err)
		os.Exit(exitConfigError)
	}
	defer store.Close(context.Background())

	svc, err := impact.NewService(store, impact.DefaultServiceConfig(),
		impact.WithAnalyzerHopLimit(cfg.HopLimit),
		impact.WithAnalyzerConcurrency(cfg.Concurrency),
		impact.WithAnalyzerFanOutSaturation(cfg.FanOutSaturation),
		impact.WithAnalyzerLogger(logger.Slog()),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitConfigError)
	}

	if serveRelease {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	v1 := router.Group("/v1")
	impact.RegisterRoutes(v1, impact.NewHandlers(svc))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", servePort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("impact API listening", "port", servePort)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(exitConfigError)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}

	return nil
}
