// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package report

import (
	"fmt"
	"strings"
	"time"
)

// maxPathsPerNode caps the per-node path listing in markdown output.
const maxPathsPerNode = 3

// RenderMarkdown renders the report as a PR-comment style document.
//
// Sections never disappear silently: an empty blast radius, an empty flag
// list or a partial traversal each get an explanatory line instead.
func RenderMarkdown(r *Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Impact Analysis Report\n\n")
	fmt.Fprintf(&b, "**Run:** `%s`  \n", r.RunID)
	fmt.Fprintf(&b, "**Generated:** %s\n\n", r.GeneratedAt.Format(time.RFC3339))

	fmt.Fprintf(&b, "## Summary\n\n")
	fmt.Fprintf(&b, "- **Changed Artifacts:** %d\n", r.Summary.ChangedArtifacts)
	fmt.Fprintf(&b, "- **Affected Nodes:** %d (hop limit %d)\n", r.Summary.AffectedNodes, r.HopLimit)
	fmt.Fprintf(&b, "- **Breaking Changes:** %d\n", r.Summary.BreakingChanges)
	fmt.Fprintf(&b, "- **Risk Level:** %s\n", r.Summary.RiskLevel)
	fmt.Fprintf(&b, "- **Exit Signal:** %s\n\n", r.Summary.ExitSignal.String())

	fmt.Fprintf(&b, "## Blast Radius\n\n")
	if len(r.Artifacts) == 0 {
		b.WriteString("No artifacts resolved to graph nodes; nothing to traverse.\n\n")
	}
	for _, a := range r.Artifacts {
		fmt.Fprintf(&b, "### `%s` (%s", a.Artifact.Path, a.Artifact.Kind.String())
		if a.Artifact.ChartName != "" {
			fmt.Fprintf(&b, ", chart `%s`", a.Artifact.ChartName)
		}
		b.WriteString(")\n\n")

		if a.Err != "" {
			fmt.Fprintf(&b, "Incomplete: %s\n\n", a.Err)
			continue
		}
		if len(a.SeedIDs) == 0 {
			b.WriteString("No matching graph nodes for this artifact.\n\n")
			continue
		}

		fmt.Fprintf(&b, "- **Seeds:** %s\n", codeList(a.SeedIDs))
		for _, n := range a.Reachable {
			if n.HopDistance == 0 {
				continue
			}
			fmt.Fprintf(&b, "- `%s` — hop %d via %s\n", n.NodeID, n.HopDistance, n.ViaEdgeType)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "## Breaking Changes\n\n")
	if len(r.Flags) == 0 {
		b.WriteString("None detected.\n\n")
	}
	for _, f := range r.Flags {
		fmt.Fprintf(&b, "- **%s** [%s] `%s`: %s\n",
			f.Severity.String(), f.Category.String(), f.ArtifactPath, f.Detail)
	}
	if len(r.Flags) > 0 {
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "## Risk Assessment\n\n")
	fmt.Fprintf(&b, "**Score:** %.2f (%s)\n\n", r.Assessment.Score, r.Assessment.Level.String())
	if len(r.Assessment.ContributingFactors) == 0 {
		b.WriteString("No contributing factors; the blast radius is empty.\n\n")
	}
	for _, f := range r.Assessment.ContributingFactors {
		fmt.Fprintf(&b, "- `%s` = %.2f × %.2f → %.3f\n", f.Name, f.Value, f.Weight, f.Contribution)
	}
	if len(r.Assessment.ContributingFactors) > 0 {
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "**Recommendation:** %s  \n", r.Assessment.Recommendation)
	fmt.Fprintf(&b, "**Testing Priority:** %s\n\n", r.Assessment.TestingPriority)

	if len(r.Union) > 0 {
		fmt.Fprintf(&b, "## Affected Nodes\n\n")
		for _, n := range r.Union {
			fmt.Fprintf(&b, "- `%s` — hop %d via %s\n", n.NodeID, n.HopDistance, n.ViaEdgeType)
			for i, p := range n.Paths {
				if i == maxPathsPerNode {
					fmt.Fprintf(&b, "  - ... and %d more path(s)\n", len(n.Paths)-maxPathsPerNode)
					break
				}
				fmt.Fprintf(&b, "  - %s\n", strings.Join(p, " → "))
			}
		}
		b.WriteString("\n")
	}

	if len(r.Warnings) > 0 {
		fmt.Fprintf(&b, "## Warnings\n\n")
		for _, w := range r.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}

	return b.String()
}

func codeList(ids []string) string {
	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = "`" + id + "`"
	}
	return strings.Join(quoted, ", ")
}
