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
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianImpact/pkg/logging"
	"github.com/AleutianAI/AleutianImpact/services/impact"
	"github.com/AleutianAI/AleutianImpact/services/impact/change"
	"github.com/AleutianAI/AleutianImpact/services/impact/graphstore"
)

var (
	analyzeDiffFile string
	analyzeFiles    []string
	analyzeFormat   string
	analyzeOutput   string
	analyzeHopLimit int
	analyzeRepoRoot string
	analyzeCharts   map[string]string
	analyzeVerbose  bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [files...]",
	Short: "Analyze the blast radius and risk of a change set",
	Long: `Analyze classifies the changed files, maps them onto the deployment
graph, walks the graph toward dependents and scores the risk.

The change set comes from a unified diff (--diff-file, use - for stdin),
an explicit file list ([files...] or --files), or both. With a diff the
textual breaking-change heuristics run; with a bare file list the
analysis degrades to classification and traversal only.

Examples:
  git diff origin/main | impact analyze --diff-file -
  impact analyze --diff-file changes.patch --format markdown
  impact analyze services/users/handler.go --hop-limit 2
  impact analyze --files charts/users/values.yaml --chart charts/users=user-service`,
	Args: cobra.ArbitraryArgs,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeDiffFile, "diff-file", "",
		"Unified diff to analyze; - reads from stdin")
	analyzeCmd.Flags().StringSliceVar(&analyzeFiles, "files", nil,
		"Changed file paths (alternative to positional args)")
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "markdown",
		"Report format: markdown, json")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "",
		"Write the report to a file instead of stdout")
	analyzeCmd.Flags().IntVar(&analyzeHopLimit, "hop-limit", 0,
		"Maximum traversal depth (0 = default 3)")
	analyzeCmd.Flags().StringVar(&analyzeRepoRoot, "repo", "",
		"Repository checkout root, enables Chart.yaml discovery")
	analyzeCmd.Flags().StringToStringVar(&analyzeCharts, "chart", nil,
		"Chart root to chart name mapping, e.g. charts/users=user-service")
	analyzeCmd.Flags().BoolVarP(&analyzeVerbose, "verbose", "v", false,
		"Enable debug logging")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	level := logging.LevelInfo
	if analyzeVerbose {
		level = logging.LevelDebug
	}
	logger := logging.New(logging.Config{Level: level, Service: "impact"})
	defer logger.Close()

	changes, err := collectChanges(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitConfigError)
	}
	if len(changes) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no changed files; pass a diff or a file list")
		os.Exit(exitConfigError)
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitConfigError)
	}
	if analyzeHopLimit > 0 {
		cfg.HopLimit = analyzeHopLimit
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

	opts := []impact.AnalyzerOption{
		impact.WithAnalyzerHopLimit(cfg.HopLimit),
		impact.WithAnalyzerConcurrency(cfg.Concurrency),
		impact.WithAnalyzerFanOutSaturation(cfg.FanOutSaturation),
		impact.WithAnalyzerLogger(logger.Slog()),
	}
	switch {
	case len(analyzeCharts) > 0:
		opts = append(opts, impact.WithAnalyzerChartLocator(&change.StaticChartLocator{Charts: analyzeCharts}))
	case analyzeRepoRoot != "":
		opts = append(opts, impact.WithAnalyzerChartLocator(change.NewFSChartLocator(analyzeRepoRoot)))
	}

	analyzer, err := impact.NewAnalyzer(store, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitConfigError)
	}

	rep, err := analyzer.Analyze(ctx, changes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: analysis failed: %v\n", err)
		os.Exit(exitConfigError)
	}

	doc, err := analyzer.Render(rep, impact.Format(analyzeFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitConfigError)
	}

	if analyzeOutput != "" {
		if err := os.WriteFile(analyzeOutput, doc, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error: writing report: %v\n", err)
			os.Exit(exitConfigError)
		}
	} else {
		os.Stdout.Write(doc)
	}

	os.Exit(rep.Summary.ExitSignal.ExitCode())
	return nil
}

// collectChanges merges the diff (if any) with the explicit file list.
// Files named only in the diff are included automatically; explicit paths
// share the full diff text, which the detector filters per path.
func collectChanges(args []string) ([]change.RawChange, error) {
	patch, err := readDiff()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var paths []string
	for _, p := range append(append([]string{}, args...), analyzeFiles...) {
		if p != "" && !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}

	if patch != "" {
		diffPaths, err := change.PathsInDiff(patch)
		if err != nil {
			return nil, err
		}
		for _, p := range diffPaths {
			if !seen[p] {
				seen[p] = true
				paths = append(paths, p)
			}
		}
	}

	changes := make([]change.RawChange, 0, len(paths))
	for _, p := range paths {
		changes = append(changes, change.RawChange{Path: p, Patch: patch})
	}
	return changes, nil
}

func readDiff() (string, error) {
	switch analyzeDiffFile {
	case "":
		return "", nil
	case "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading diff from stdin: %w", err)
		}
		return string(data), nil
	default:
		data, err := os.ReadFile(analyzeDiffFile)
		if err != nil {
			return "", fmt.Errorf("reading diff file: %w", err)
		}
		return string(data), nil
	}
}
