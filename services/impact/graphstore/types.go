// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package graphstore

import "fmt"

// NodeLabel identifies the kind of a graph node.
//
// The set is closed: values arriving from a backing store are validated
// with ParseNodeLabel before they cross into the engine. An untyped or
// unrecognized label never propagates past this package.
type NodeLabel int

const (
	// LabelUnknown indicates an unrecognized node label.
	LabelUnknown NodeLabel = iota

	// LabelService is a Kubernetes Service.
	LabelService

	// LabelCodeModule is a source file or module ingested from a repository.
	LabelCodeModule

	// LabelPod is a Kubernetes Pod (or the Deployment that owns it).
	LabelPod

	// LabelIngress is a Kubernetes Ingress.
	LabelIngress

	// LabelImage is a container image.
	LabelImage

	// LabelHelmChart is a packaged set of resource templates.
	LabelHelmChart

	// LabelNetworkPolicy is a Kubernetes NetworkPolicy.
	LabelNetworkPolicy

	// LabelServiceAccount is a Kubernetes ServiceAccount.
	LabelServiceAccount

	// LabelCluster is a Kubernetes cluster.
	LabelCluster

	// NumNodeLabels is the total number of labels (for array sizing).
	NumNodeLabels
)

// nodeLabelNames maps NodeLabel values to their string representations.
var nodeLabelNames = map[NodeLabel]string{
	LabelUnknown:        "Unknown",
	LabelService:        "Service",
	LabelCodeModule:     "CodeModule",
	LabelPod:            "Pod",
	LabelIngress:        "Ingress",
	LabelImage:          "Image",
	LabelHelmChart:      "HelmChart",
	LabelNetworkPolicy:  "NetworkPolicy",
	LabelServiceAccount: "ServiceAccount",
	LabelCluster:        "Cluster",
}

// String returns the string representation of the NodeLabel.
func (l NodeLabel) String() string {
	if name, ok := nodeLabelNames[l]; ok {
		return name
	}
	return "Unknown"
}

// ParseNodeLabel converts a store-provided label string to a NodeLabel.
//
// Returns ErrUnknownLabel for labels outside the closed set.
func ParseNodeLabel(s string) (NodeLabel, error) {
	for label, name := range nodeLabelNames {
		if name == s && label != LabelUnknown {
			return label, nil
		}
	}
	return LabelUnknown, fmt.Errorf("%w: %q", ErrUnknownLabel, s)
}

// EdgeType identifies the relationship between two nodes.
type EdgeType int

const (
	// EdgeTypeUnknown indicates an unrecognized relationship type.
	EdgeTypeUnknown EdgeType = iota

	// EdgeTypeCallsService indicates a CodeModule calls a Service.
	EdgeTypeCallsService

	// EdgeTypeConnectsTo indicates a Service connects to another Service.
	EdgeTypeConnectsTo

	// EdgeTypeTargets indicates a Service targets a Pod.
	EdgeTypeTargets

	// EdgeTypeUsesImage indicates a Pod uses a container Image.
	EdgeTypeUsesImage

	// EdgeTypeBelongsToChart indicates a resource belongs to a HelmChart.
	EdgeTypeBelongsToChart

	// EdgeTypeExposedVia indicates a Service is exposed via an Ingress.
	EdgeTypeExposedVia

	// EdgeTypeUsesServiceAccount indicates a Pod uses a ServiceAccount.
	EdgeTypeUsesServiceAccount

	// NumEdgeTypes is the total number of edge types (for array sizing).
	NumEdgeTypes
)

// edgeTypeNames maps EdgeType values to their wire representations.
var edgeTypeNames = map[EdgeType]string{
	EdgeTypeUnknown:            "UNKNOWN",
	EdgeTypeCallsService:       "CALLS_SERVICE",
	EdgeTypeConnectsTo:         "CONNECTS_TO",
	EdgeTypeTargets:            "TARGETS",
	EdgeTypeUsesImage:          "USES_IMAGE",
	EdgeTypeBelongsToChart:     "BELONGS_TO_CHART",
	EdgeTypeExposedVia:         "EXPOSED_VIA",
	EdgeTypeUsesServiceAccount: "USES_SERVICE_ACCOUNT",
}

// String returns the wire representation of the EdgeType.
func (t EdgeType) String() string {
	if name, ok := edgeTypeNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseEdgeType converts a store-provided relationship type to an EdgeType.
//
// Returns ErrUnknownEdgeType for types outside the closed set.
func ParseEdgeType(s string) (EdgeType, error) {
	for et, name := range edgeTypeNames {
		if name == s && et != EdgeTypeUnknown {
			return et, nil
		}
	}
	return EdgeTypeUnknown, fmt.Errorf("%w: %q", ErrUnknownEdgeType, s)
}

// Direction selects which end of an edge a query starts from.
type Direction int

const (
	// DirectionOutgoing follows edges from source to target.
	DirectionOutgoing Direction = iota

	// DirectionIncoming follows edges from target to source.
	DirectionIncoming
)

// String returns the string representation of the Direction.
func (d Direction) String() string {
	switch d {
	case DirectionOutgoing:
		return "outgoing"
	case DirectionIncoming:
		return "incoming"
	default:
		return "unknown"
	}
}

// Node is a validated reference to a graph node.
//
// Key is unique within a label (for Kubernetes resources it is
// namespace/name). Chart carries the owning Helm chart name when the
// backing store records one; it is informational and may be empty.
type Node struct {
	// Label is the node kind. Always a member of the closed label set.
	Label NodeLabel

	// Key is the label-scoped unique identifier.
	Key string

	// Name is the display name of the node.
	Name string

	// Namespace is the Kubernetes namespace, when applicable.
	Namespace string

	// Chart is the owning Helm chart name, when known.
	Chart string
}

// ID returns the label-qualified identity of the node.
//
// Two Node values refer to the same graph node iff their IDs are equal.
func (n Node) ID() string {
	return n.Label.String() + ":" + n.Key
}

// Edge is a directed, typed relation between two nodes.
type Edge struct {
	// From is the source node.
	From Node

	// To is the target node.
	To Node

	// Type is the relationship type.
	Type EdgeType
}
