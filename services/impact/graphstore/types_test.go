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

import (
	"errors"
	"testing"
)

func TestParseEdgeType(t *testing.T) {
	tests := []struct {
		wire string
		want EdgeType
	}{
		{"CALLS_SERVICE", EdgeTypeCallsService},
		{"CONNECTS_TO", EdgeTypeConnectsTo},
		{"TARGETS", EdgeTypeTargets},
		{"USES_IMAGE", EdgeTypeUsesImage},
		{"BELONGS_TO_CHART", EdgeTypeBelongsToChart},
		{"EXPOSED_VIA", EdgeTypeExposedVia},
		{"USES_SERVICE_ACCOUNT", EdgeTypeUsesServiceAccount},
	}

	for _, tt := range tests {
		t.Run(tt.wire, func(t *testing.T) {
			got, err := ParseEdgeType(tt.wire)
			if err != nil {
				t.Fatalf("ParseEdgeType(%q) error = %v", tt.wire, err)
			}
			if got != tt.want {
				t.Errorf("ParseEdgeType(%q) = %v, want %v", tt.wire, got, tt.want)
			}
			if got.String() != tt.wire {
				t.Errorf("round trip: %v.String() = %q, want %q", got, got.String(), tt.wire)
			}
		})
	}
}

func TestParseEdgeType_Unknown(t *testing.T) {
	_, err := ParseEdgeType("DEPENDS_ON")
	if !errors.Is(err, ErrUnknownEdgeType) {
		t.Errorf("ParseEdgeType(DEPENDS_ON) error = %v, want ErrUnknownEdgeType", err)
	}
}

func TestParseNodeLabel_Unknown(t *testing.T) {
	_, err := ParseNodeLabel("Starship")
	if !errors.Is(err, ErrUnknownLabel) {
		t.Errorf("ParseNodeLabel(Starship) error = %v, want ErrUnknownLabel", err)
	}
}

func TestNode_ID(t *testing.T) {
	n := Node{Label: LabelService, Key: "users"}
	if got := n.ID(); got != "Service:users" {
		t.Errorf("Node.ID() = %q, want %q", got, "Service:users")
	}

	// Same key under a different label is a distinct node.
	m := Node{Label: LabelPod, Key: "users"}
	if n.ID() == m.ID() {
		t.Error("nodes with different labels must have different IDs")
	}
}
