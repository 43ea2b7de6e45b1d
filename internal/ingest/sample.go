package ingest

import (
	"path"
	"strings"

	"continuum/internal/client/github"
)

// Summary-file naming convention: a tracked file with one of these base
// names holds a structured incident list rather than a raw status snapshot,
// so the commit set can be sampled instead of fetched in full. Each summary
// incident carries its own timestamp, so coarser commit resolution does not
// lose incidents, only the duplication between adjacent snapshots.
var summaryFileNames = map[string]bool{
	"summary.json":   true,
	"incidents.json": true,
}

func isSummaryPath(file string) bool {
	return summaryFileNames[strings.ToLower(path.Base(file))]
}

// sampleCommits downsamples the commit set to roughly cap entries by taking
// every Nth commit, N = max(1, total/cap). Non-summary files pass through
// unchanged: each commit is one snapshot.
func sampleCommits(commits []github.Commit, summary bool, cap int) ([]github.Commit, int) {
	if !summary || cap <= 0 {
		return commits, 1
	}
	step := len(commits) / cap
	if step < 1 {
		step = 1
	}
	if step == 1 {
		return commits, 1
	}
	sampled := make([]github.Commit, 0, cap)
	for i := 0; i < len(commits); i += step {
		sampled = append(sampled, commits[i])
	}
	return sampled, step
}
