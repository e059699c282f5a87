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

// ArtifactKind classifies a changed artifact.
//
// The kind is decided once at construction and never reclassified.
type ArtifactKind int

const (
	// KindSourceFile is any changed file outside a Helm chart root.
	KindSourceFile ArtifactKind = iota

	// KindChartMetadata is a chart descriptor (Chart.yaml).
	KindChartMetadata

	// KindChartValues is a chart values file (values.yaml).
	KindChartValues

	// KindChartTemplate is any other file under a chart root.
	KindChartTemplate
)

// String returns the string representation of the ArtifactKind.
func (k ArtifactKind) String() string {
	switch k {
	case KindSourceFile:
		return "SourceFile"
	case KindChartMetadata:
		return "ChartMetadata"
	case KindChartValues:
		return "ChartValues"
	case KindChartTemplate:
		return "ChartTemplate"
	default:
		return "Unknown"
	}
}

// TemplateKind refines KindChartTemplate by the resource the template renders.
type TemplateKind int

const (
	// TemplateNone applies to non-template artifacts.
	TemplateNone TemplateKind = iota

	// TemplateDeployment renders a Deployment (pod spec may change).
	TemplateDeployment

	// TemplateService renders a Service.
	TemplateService

	// TemplateIngress renders an Ingress.
	TemplateIngress

	// TemplateConfigSecret renders a ConfigMap or Secret.
	TemplateConfigSecret

	// TemplateNetworkPolicy renders a NetworkPolicy.
	TemplateNetworkPolicy

	// TemplateOther is a template not matching a known resource name.
	TemplateOther
)

// String returns the string representation of the TemplateKind.
func (k TemplateKind) String() string {
	switch k {
	case TemplateNone:
		return "None"
	case TemplateDeployment:
		return "Deployment"
	case TemplateService:
		return "Service"
	case TemplateIngress:
		return "Ingress"
	case TemplateConfigSecret:
		return "ConfigSecret"
	case TemplateNetworkPolicy:
		return "NetworkPolicy"
	case TemplateOther:
		return "Other"
	default:
		return "Unknown"
	}
}

// RawChange is one entry of the raw change set handed to the detector.
//
// Patch optionally carries the unified diff for the path. When empty
// (file-list-only mode) classification still happens but the textual
// breaking-change heuristics are skipped.
type RawChange struct {
	// Path is the repository-relative file path.
	Path string

	// Patch is the unified diff text for this path, or empty.
	Patch string
}

// DiffHunk is one removed/added line pair extracted from a unified diff.
type DiffHunk struct {
	// Removed contains the lines deleted by the hunk, without the leading '-'.
	Removed []string

	// Added contains the lines inserted by the hunk, without the leading '+'.
	Added []string
}

// ChangedArtifact is one classified unit of input to the impact engine.
type ChangedArtifact struct {
	// Kind is the artifact classification. Immutable after construction.
	Kind ArtifactKind

	// Template refines Kind for chart templates; TemplateNone otherwise.
	Template TemplateKind

	// Path is the repository-relative path.
	Path string

	// ChartName is the owning chart name for chart-related kinds.
	ChartName string

	// Hunks is the ordered removed/added line pairs. Empty in
	// file-list-only mode or when the diff could not be parsed.
	Hunks []DiffHunk
}

// FlagCategory classifies a breaking-change flag.
type FlagCategory int

const (
	// CategoryRemovedEndpoint indicates a route or handler was removed.
	CategoryRemovedEndpoint FlagCategory = iota

	// CategoryChangedSignature indicates an exported declaration changed shape.
	CategoryChangedSignature

	// CategoryRemovedEnvVar indicates an environment variable or config key
	// consumers may depend on was removed.
	CategoryRemovedEnvVar

	// CategoryDeploymentSpecChange indicates a workload spec changed.
	CategoryDeploymentSpecChange

	// CategoryIngressRouteChange indicates external routing changed.
	CategoryIngressRouteChange

	// CategoryNetworkPolicyChange indicates traffic rules changed.
	CategoryNetworkPolicyChange
)

// String returns the string representation of the FlagCategory.
func (c FlagCategory) String() string {
	switch c {
	case CategoryRemovedEndpoint:
		return "RemovedEndpoint"
	case CategoryChangedSignature:
		return "ChangedSignature"
	case CategoryRemovedEnvVar:
		return "RemovedEnvVar"
	case CategoryDeploymentSpecChange:
		return "DeploymentSpecChange"
	case CategoryIngressRouteChange:
		return "IngressRouteChange"
	case CategoryNetworkPolicyChange:
		return "NetworkPolicyChange"
	default:
		return "Unknown"
	}
}

// Severity grades a breaking-change flag.
type Severity int

const (
	// SeverityLow is a change unlikely to break consumers.
	SeverityLow Severity = iota

	// SeverityMedium is a change that may affect consumers.
	SeverityMedium

	// SeverityHigh is a change likely to violate an existing contract.
	SeverityHigh

	// SeverityCritical is a change that alters running workloads.
	SeverityCritical
)

// String returns the string representation of the Severity.
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Scale maps a severity to its normalized [0,1] contribution used by the
// risk scorer: LOW 0.25, MEDIUM 0.5, HIGH 0.75, CRITICAL 1.0.
func (s Severity) Scale() float64 {
	switch s {
	case SeverityLow:
		return 0.25
	case SeverityMedium:
		return 0.5
	case SeverityHigh:
		return 0.75
	case SeverityCritical:
		return 1.0
	default:
		return 0
	}
}

// BreakingChangeFlag marks one suspected contract violation.
type BreakingChangeFlag struct {
	// ArtifactPath is the path of the artifact that produced the flag.
	ArtifactPath string

	// Category classifies the suspected violation.
	Category FlagCategory

	// Severity grades the flag.
	Severity Severity

	// Detail is a short human-readable explanation, e.g. the removed line.
	Detail string
}

// Detection is the full output of the detector for one change set.
type Detection struct {
	// Artifacts are the classified changed artifacts, in input order.
	Artifacts []ChangedArtifact

	// Flags are the breaking-change candidates across all artifacts.
	Flags []BreakingChangeFlag

	// Warnings explain degraded handling (rejected inputs, unparseable
	// diffs) so the report never omits anything silently.
	Warnings []string
}
