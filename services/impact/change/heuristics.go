// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package change

import (
	"fmt"
	"regexp"
	"strings"
)

// Heuristic inspects one classified artifact and returns zero or more
// breaking-change flags.
//
// Heuristics are line-level and approximate: they look for structural
// removals in diff hunks, not for semantic changes. Each heuristic is
// independent; the detector runs all of them and concatenates the flags.
// Heuristics that need diff content must return nothing when the artifact
// has no hunks (file-list-only mode degrades to classification only).
type Heuristic interface {
	// Name identifies the heuristic in logs and warnings.
	Name() string

	// Detect returns the flags this heuristic raises for the artifact.
	Detect(a ChangedArtifact) []BreakingChangeFlag
}

// DefaultHeuristics returns the built-in heuristic set, one per artifact
// family: source files, deployment templates, service templates, ingress
// templates, config/secret templates, and network policies.
func DefaultHeuristics() []Heuristic {
	return []Heuristic{
		&sourceHeuristic{},
		&deploymentHeuristic{},
		&serviceTemplateHeuristic{},
		&ingressHeuristic{},
		&configSecretHeuristic{},
		&networkPolicyHeuristic{},
	}
}

// Route declarations, exported signatures, outbound call sites, and env
// var reads across the languages the extraction pipeline ingests.
var (
	routePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:app|router|fastify|mux|r|e|g)\.(?:get|post|put|delete|patch|handle|handlefunc)\s*\(\s*["'` + "`" + `]([^"'` + "`" + `]+)`),
		regexp.MustCompile(`\.(GET|POST|PUT|DELETE|PATCH)\s*\(\s*"([^"]+)"`),
		regexp.MustCompile(`@(?:app|router)\.(?:route|get|post|put|delete|patch)\s*\(\s*['"]([^'"]+)`),
		regexp.MustCompile(`http\.HandleFunc\s*\(\s*"([^"]+)"`),
	}

	signaturePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^func\s+(?:\([^)]*\)\s*)?[A-Z]\w*\s*\(`),
		regexp.MustCompile(`^export\s+(?:default\s+)?(?:async\s+)?function\s+\w+\s*\(`),
		regexp.MustCompile(`^def\s+\w+\s*\(`),
	}

	outboundPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:http\.(?:Get|Post|Head|Do)|fetch|axios\.\w+|requests\.\w+)\s*\(`),
	}

	envReadPattern = regexp.MustCompile(`(?:os\.Getenv|os\.environ(?:\.get)?|process\.env)[(\[.]\s*["']?([A-Z][A-Z0-9_]*)`)

	// yamlKeyPattern matches a top-level data key in a config template.
	yamlKeyPattern = regexp.MustCompile(`^\s{2,}([A-Za-z0-9_.-]+)\s*:`)

	// policyRulePattern matches selector and CIDR rules in network policies.
	policyRulePattern = regexp.MustCompile(`(?i)(cidr|ipBlock|podSelector|namespaceSelector|matchLabels|ingress:|egress:)`)
)

// sourceHeuristic scans SourceFile diffs for structural removals: a route,
// exported signature, or outbound call that disappears without a
// normalized-text match among the added lines.
type sourceHeuristic struct{}

func (h *sourceHeuristic) Name() string { return "source-structural-removal" }

func (h *sourceHeuristic) Detect(a ChangedArtifact) []BreakingChangeFlag {
	if a.Kind != KindSourceFile || len(a.Hunks) == 0 {
		return nil
	}

	var flags []BreakingChangeFlag
	for _, hunk := range a.Hunks {
		added := normalizedSet(hunk.Added)
		for _, raw := range hunk.Removed {
			line := normalizeLine(raw)
			if line == "" {
				continue // whitespace or comment only, never flagged
			}
			if added[line] {
				continue // moved, not removed
			}

			switch {
			case matchesAny(raw, routePatterns):
				flags = append(flags, BreakingChangeFlag{
					ArtifactPath: a.Path,
					Category:     CategoryRemovedEndpoint,
					Severity:     SeverityHigh,
					Detail:       fmt.Sprintf("route declaration removed: %s", strings.TrimSpace(raw)),
				})
			case matchesAny(strings.TrimSpace(raw), signaturePatterns):
				flags = append(flags, BreakingChangeFlag{
					ArtifactPath: a.Path,
					Category:     CategoryChangedSignature,
					Severity:     SeverityHigh,
					Detail:       fmt.Sprintf("exported signature removed or changed: %s", strings.TrimSpace(raw)),
				})
			case matchesAny(raw, outboundPatterns):
				flags = append(flags, BreakingChangeFlag{
					ArtifactPath: a.Path,
					Category:     CategoryChangedSignature,
					Severity:     SeverityHigh,
					Detail:       fmt.Sprintf("outbound call target removed: %s", strings.TrimSpace(raw)),
				})
			case envReadPattern.MatchString(raw):
				name := envReadPattern.FindStringSubmatch(raw)[1]
				if !anyLineContains(hunk.Added, name) {
					flags = append(flags, BreakingChangeFlag{
						ArtifactPath: a.Path,
						Category:     CategoryRemovedEnvVar,
						Severity:     SeverityMedium,
						Detail:       fmt.Sprintf("environment variable read removed: %s", name),
					})
				}
			}
		}
	}
	return flags
}

// deploymentHeuristic flags any diffed Deployment template as CRITICAL:
// the rendered pod spec may change, which restarts workloads.
type deploymentHeuristic struct{}

func (h *deploymentHeuristic) Name() string { return "deployment-spec-change" }

func (h *deploymentHeuristic) Detect(a ChangedArtifact) []BreakingChangeFlag {
	if a.Kind != KindChartTemplate || a.Template != TemplateDeployment || len(a.Hunks) == 0 {
		return nil
	}
	return []BreakingChangeFlag{{
		ArtifactPath: a.Path,
		Category:     CategoryDeploymentSpecChange,
		Severity:     SeverityCritical,
		Detail:       fmt.Sprintf("deployment template changed for chart %s", a.ChartName),
	}}
}

// serviceTemplateHeuristic flags Service template diffs HIGH: selector or
// port changes can silently detach traffic.
type serviceTemplateHeuristic struct{}

func (h *serviceTemplateHeuristic) Name() string { return "service-template-change" }

func (h *serviceTemplateHeuristic) Detect(a ChangedArtifact) []BreakingChangeFlag {
	if a.Kind != KindChartTemplate || a.Template != TemplateService || len(a.Hunks) == 0 {
		return nil
	}
	return []BreakingChangeFlag{{
		ArtifactPath: a.Path,
		Category:     CategoryDeploymentSpecChange,
		Severity:     SeverityHigh,
		Detail:       fmt.Sprintf("service template changed for chart %s", a.ChartName),
	}}
}

// ingressHeuristic flags Ingress template diffs HIGH: external routes may
// move or disappear.
type ingressHeuristic struct{}

func (h *ingressHeuristic) Name() string { return "ingress-route-change" }

func (h *ingressHeuristic) Detect(a ChangedArtifact) []BreakingChangeFlag {
	if a.Kind != KindChartTemplate || a.Template != TemplateIngress || len(a.Hunks) == 0 {
		return nil
	}
	return []BreakingChangeFlag{{
		ArtifactPath: a.Path,
		Category:     CategoryIngressRouteChange,
		Severity:     SeverityHigh,
		Detail:       fmt.Sprintf("ingress template changed for chart %s", a.ChartName),
	}}
}

// configSecretHeuristic grades ConfigMap/Secret diffs MEDIUM, escalating
// to CRITICAL when a data key is removed without reappearing: pods that
// reference the key will fail to start.
type configSecretHeuristic struct{}

func (h *configSecretHeuristic) Name() string { return "config-secret-change" }

func (h *configSecretHeuristic) Detect(a ChangedArtifact) []BreakingChangeFlag {
	if a.Kind != KindChartTemplate || a.Template != TemplateConfigSecret || len(a.Hunks) == 0 {
		return nil
	}

	for _, hunk := range a.Hunks {
		added := normalizedSet(hunk.Added)
		for _, raw := range hunk.Removed {
			m := yamlKeyPattern.FindStringSubmatch(raw)
			if m == nil {
				continue
			}
			if added[normalizeLine(raw)] || anyLineContains(hunk.Added, m[1]+":") {
				continue
			}
			return []BreakingChangeFlag{{
				ArtifactPath: a.Path,
				Category:     CategoryRemovedEnvVar,
				Severity:     SeverityCritical,
				Detail:       fmt.Sprintf("config key removed: %s", m[1]),
			}}
		}
	}

	return []BreakingChangeFlag{{
		ArtifactPath: a.Path,
		Category:     CategoryDeploymentSpecChange,
		Severity:     SeverityMedium,
		Detail:       fmt.Sprintf("config/secret template changed for chart %s", a.ChartName),
	}}
}

// networkPolicyHeuristic grades NetworkPolicy diffs MEDIUM, or HIGH when
// CIDR or selector rules change.
type networkPolicyHeuristic struct{}

func (h *networkPolicyHeuristic) Name() string { return "network-policy-change" }

func (h *networkPolicyHeuristic) Detect(a ChangedArtifact) []BreakingChangeFlag {
	if a.Kind != KindChartTemplate || a.Template != TemplateNetworkPolicy || len(a.Hunks) == 0 {
		return nil
	}

	severity := SeverityMedium
	detail := fmt.Sprintf("network policy changed for chart %s", a.ChartName)
	for _, hunk := range a.Hunks {
		for _, line := range append(append([]string{}, hunk.Removed...), hunk.Added...) {
			if policyRulePattern.MatchString(line) {
				severity = SeverityHigh
				detail = fmt.Sprintf("network policy selector or CIDR rules changed for chart %s", a.ChartName)
				break
			}
		}
	}

	return []BreakingChangeFlag{{
		ArtifactPath: a.Path,
		Category:     CategoryNetworkPolicyChange,
		Severity:     severity,
		Detail:       detail,
	}}
}

// normalizeLine collapses whitespace and drops comment-only lines so that
// moved code and formatting churn never produce flags.
func normalizeLine(line string) string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return ""
	}
	for _, prefix := range []string{"//", "#", "*", "/*", "--"} {
		if strings.HasPrefix(trimmed, prefix) {
			return ""
		}
	}
	return strings.Join(strings.Fields(trimmed), " ")
}

// normalizedSet builds a lookup of normalized lines.
func normalizedSet(lines []string) map[string]bool {
	set := make(map[string]bool, len(lines))
	for _, line := range lines {
		if n := normalizeLine(line); n != "" {
			set[n] = true
		}
	}
	return set
}

// matchesAny reports whether any pattern matches the line.
func matchesAny(line string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}

// anyLineContains reports whether any line contains the substring.
func anyLineContains(lines []string, sub string) bool {
	for _, line := range lines {
		if strings.Contains(line, sub) {
			return true
		}
	}
	return false
}
