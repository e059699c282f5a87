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
	"os"
	"path"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ChartLocator resolves the Helm chart owning a repository path.
//
// A path belongs to a chart when some ancestor directory contains a chart
// descriptor (Chart.yaml). Locate returns the chart name, the chart root
// directory (repo-relative), and whether a chart was found.
type ChartLocator interface {
	Locate(repoPath string) (chartName, chartRoot string, ok bool)
}

// chartDescriptor is the subset of Chart.yaml the locator reads.
type chartDescriptor struct {
	Name string `yaml:"name"`
}

// FSChartLocator locates charts by walking the repository on disk.
//
// It reads each candidate Chart.yaml once and caches the result, so
// classifying many files from the same chart costs one descriptor read.
type FSChartLocator struct {
	// Root is the absolute path of the repository checkout.
	Root string

	// cache maps chart root (repo-relative) to chart name.
	// An empty string records a directory known to hold no descriptor.
	cache map[string]string
}

// NewFSChartLocator creates a locator rooted at the given checkout.
func NewFSChartLocator(root string) *FSChartLocator {
	return &FSChartLocator{
		Root:  root,
		cache: make(map[string]string),
	}
}

// Locate implements ChartLocator by walking ancestors of repoPath looking
// for the nearest Chart.yaml. The repository root itself counts as an
// ancestor, so a checkout that is a single chart still resolves.
func (l *FSChartLocator) Locate(repoPath string) (string, string, bool) {
	dir := path.Dir(repoPath)
	for {
		if name, ok := l.chartNameAt(dir); ok {
			return name, dir, true
		}
		if dir == "." || dir == "/" || dir == "" {
			return "", "", false
		}
		dir = path.Dir(dir)
	}
}

// chartNameAt reports the chart name if dir contains a chart descriptor.
func (l *FSChartLocator) chartNameAt(dir string) (string, bool) {
	if cached, ok := l.cache[dir]; ok {
		return cached, cached != ""
	}

	data, err := os.ReadFile(filepath.Join(l.Root, filepath.FromSlash(dir), "Chart.yaml"))
	if err != nil {
		l.cache[dir] = ""
		return "", false
	}

	var desc chartDescriptor
	if err := yaml.Unmarshal(data, &desc); err != nil || desc.Name == "" {
		// Descriptor exists but is unreadable. Fall back to the
		// directory name so chart files still classify correctly.
		desc.Name = path.Base(dir)
	}

	l.cache[dir] = desc.Name
	return desc.Name, true
}

// StaticChartLocator resolves charts from a fixed root->name mapping.
// Used in tests and when no checkout is available.
type StaticChartLocator struct {
	// Charts maps chart root directory (repo-relative) to chart name.
	Charts map[string]string
}

// Locate implements ChartLocator. A "." entry maps the repository root.
func (l *StaticChartLocator) Locate(repoPath string) (string, string, bool) {
	dir := path.Dir(repoPath)
	for {
		if name, ok := l.Charts[dir]; ok {
			return name, dir, true
		}
		if dir == "." || dir == "/" || dir == "" {
			return "", "", false
		}
		dir = path.Dir(dir)
	}
}

// Classify determines the artifact kind for a path.
//
// Classification is a pure function of the path and the locator and is
// idempotent: the same path always yields the same kind and subkind.
//
//   - Chart.yaml under a chart root -> ChartMetadata
//   - values.yaml (or values-<env>.yaml) under a chart root -> ChartValues
//   - templates/* under a chart root -> ChartTemplate with a subkind
//     derived from the filename
//   - anything else under a chart root -> ChartTemplate(Other)
//   - everything else -> SourceFile
func Classify(repoPath string, locator ChartLocator) (ArtifactKind, TemplateKind, string) {
	clean := path.Clean(strings.ReplaceAll(repoPath, "\\", "/"))

	chartName, chartRoot, ok := locator.Locate(clean)
	if !ok {
		return KindSourceFile, TemplateNone, ""
	}

	rel := strings.TrimPrefix(clean, chartRoot+"/")
	base := path.Base(rel)

	switch {
	case rel == "Chart.yaml":
		return KindChartMetadata, TemplateNone, chartName
	case rel == "values.yaml" || (strings.HasPrefix(base, "values-") && strings.HasSuffix(base, ".yaml")):
		return KindChartValues, TemplateNone, chartName
	case strings.HasPrefix(rel, "templates/"):
		return KindChartTemplate, classifyTemplate(base), chartName
	default:
		return KindChartTemplate, TemplateOther, chartName
	}
}

// classifyTemplate maps a template filename to its resource subkind.
func classifyTemplate(base string) TemplateKind {
	name := strings.ToLower(base)
	switch {
	case strings.Contains(name, "deployment"), strings.Contains(name, "statefulset"), strings.Contains(name, "daemonset"):
		return TemplateDeployment
	case strings.Contains(name, "ingress"):
		return TemplateIngress
	case strings.Contains(name, "networkpolicy"), strings.Contains(name, "network-policy"), strings.Contains(name, "netpol"):
		return TemplateNetworkPolicy
	case strings.Contains(name, "configmap"), strings.Contains(name, "secret"):
		return TemplateConfigSecret
	case strings.Contains(name, "serviceaccount"), strings.Contains(name, "service-account"):
		// A ServiceAccount manifest is not a Service selector change.
		return TemplateOther
	case strings.Contains(name, "service"):
		return TemplateService
	default:
		return TemplateOther
	}
}

// describeArtifact renders a short identity string for warnings and logs.
func describeArtifact(a ChangedArtifact) string {
	if a.Kind == KindSourceFile {
		return fmt.Sprintf("%s (%s)", a.Path, a.Kind)
	}
	return fmt.Sprintf("%s (%s/%s, chart %s)", a.Path, a.Kind, a.Template, a.ChartName)
}
