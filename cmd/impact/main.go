// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command impact analyzes the blast radius of a change set against a
// deployment graph.
//
// Usage:
//
//	# Analyze a diff piped from git
//	git diff origin/main | impact analyze --diff-file -
//
//	# Analyze an explicit file list (no diff, degraded heuristics)
//	impact analyze services/users/handler.go charts/users/values.yaml
//
//	# Serve the analysis API
//	impact serve --port 8080
//
// Graph connection settings come from the environment: NEO4J_URI,
// NEO4J_USER, NEO4J_PASSWORD, NEO4J_DATABASE.
//
// Exit codes:
//
//	0 - CLEAR: no breaking changes, risk below critical
//	1 - BREAKING_CHANGES_DETECTED
//	2 - CRITICAL_RISK
//	3 - configuration or input error (before any traversal)
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianImpact/services/impact"
)

// exitConfigError is the exit code for configuration and input failures,
// kept distinct from the risk-based codes 0-2.
const exitConfigError = 3

// version is overridden at build time via -ldflags.
var version = "dev"

// configFile is the optional YAML config file shared by all commands.
var configFile string

// loadConfig layers defaults, the config file (if given) and environment
// variables, in that order.
func loadConfig() (impact.Config, error) {
	if configFile != "" {
		return impact.LoadConfigFile(configFile)
	}
	return impact.ConfigFromEnv()
}

var rootCmd = &cobra.Command{
	Use:   "impact",
	Short: "Deployment blast-radius analysis for code and chart changes",
	Long: `Impact maps changed files and Helm chart fragments onto a deployment
graph, walks the graph toward dependents to find every affected service,
ingress and workload, and scores the deployment risk of the change set.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the impact version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version)
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"YAML config file; environment variables still take precedence")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitConfigError)
	}
}
