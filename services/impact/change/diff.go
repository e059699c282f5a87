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
	"strings"

	"github.com/sourcegraph/go-diff/diff"
)

// parseHunks extracts removed/added line pairs for a path from unified
// diff text.
//
// The patch may contain diffs for several files (git produces one blob per
// commit range); only hunks belonging to repoPath are returned. A patch
// that cannot be parsed at all yields ErrMalformedDiff so the caller can
// degrade to file-list-only handling for that artifact.
func parseHunks(repoPath, patch string) ([]DiffHunk, error) {
	fileDiffs, err := diff.NewMultiFileDiffReader(strings.NewReader(patch)).ReadAllFiles()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDiff, err)
	}
	if len(fileDiffs) == 0 {
		return nil, fmt.Errorf("%w: no file diffs found", ErrMalformedDiff)
	}

	var hunks []DiffHunk
	for _, fd := range fileDiffs {
		if !diffNames(fd, repoPath) {
			continue
		}
		for _, h := range fd.Hunks {
			hunks = append(hunks, splitHunk(string(h.Body)))
		}
	}

	// A parseable patch that names other files only: treat as no hunks
	// for this artifact rather than an error.
	return hunks, nil
}

// PathsInDiff lists the repository paths a unified diff touches, in diff
// order without duplicates. For deletions the original name is used. This
// lets callers analyze a raw diff without supplying a file list.
func PathsInDiff(patch string) ([]string, error) {
	fileDiffs, err := diff.NewMultiFileDiffReader(strings.NewReader(patch)).ReadAllFiles()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDiff, err)
	}
	if len(fileDiffs) == 0 {
		return nil, fmt.Errorf("%w: no file diffs found", ErrMalformedDiff)
	}

	seen := make(map[string]bool)
	var paths []string
	for _, fd := range fileDiffs {
		name := strings.TrimPrefix(fd.NewName, "b/")
		if name == "" || name == "/dev/null" {
			name = strings.TrimPrefix(fd.OrigName, "a/")
		}
		if name == "" || name == "/dev/null" || seen[name] {
			continue
		}
		seen[name] = true
		paths = append(paths, name)
	}
	return paths, nil
}

// diffNames reports whether a file diff refers to repoPath, tolerating
// the a/ and b/ prefixes git adds.
func diffNames(fd *diff.FileDiff, repoPath string) bool {
	for _, name := range []string{fd.NewName, fd.OrigName} {
		name = strings.TrimPrefix(name, "a/")
		name = strings.TrimPrefix(name, "b/")
		if name == repoPath {
			return true
		}
	}
	return false
}

// splitHunk separates a hunk body into removed and added lines.
func splitHunk(body string) DiffHunk {
	var hunk DiffHunk
	for _, line := range strings.Split(body, "\n") {
		if line == "" {
			continue
		}
		switch line[0] {
		case '-':
			hunk.Removed = append(hunk.Removed, line[1:])
		case '+':
			hunk.Added = append(hunk.Added, line[1:])
		}
	}
	return hunk
}
