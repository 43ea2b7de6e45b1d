package ingest

import (
	"fmt"
	"testing"

	"continuum/internal/client/github"
)

func makeCommits(n int) []github.Commit {
	commits := make([]github.Commit, n)
	for i := range commits {
		commits[i].SHA = fmt.Sprintf("sha-%04d", i)
	}
	return commits
}

func TestSampleCommits_NonSummaryPassThrough(t *testing.T) {
	commits := makeCommits(1500)
	sampled, step := sampleCommits(commits, false, 500)
	if len(sampled) != 1500 || step != 1 {
		t.Fatalf("sampled=%d step=%d want full pass-through", len(sampled), step)
	}
}

func TestSampleCommits_UnderCap(t *testing.T) {
	sampled, step := sampleCommits(makeCommits(250), true, 500)
	if len(sampled) != 250 || step != 1 {
		t.Fatalf("sampled=%d step=%d want 250, 1", len(sampled), step)
	}
}

func TestSampleCommits_OverCap(t *testing.T) {
	sampled, step := sampleCommits(makeCommits(1500), true, 500)
	if step != 3 {
		t.Fatalf("step=%d want 3", step)
	}
	if len(sampled) != 500 {
		t.Fatalf("sampled=%d want 500", len(sampled))
	}
	if sampled[0].SHA != "sha-0000" || sampled[1].SHA != "sha-0003" {
		t.Fatalf("unexpected sample stride: %s, %s", sampled[0].SHA, sampled[1].SHA)
	}
}

func TestIsSummaryPath(t *testing.T) {
	cases := map[string]bool{
		"incidents/summary.json":  true,
		"Summary.json":            true,
		"data/incidents.json":     true,
		"status.json":             false,
		"history/status_old.json": false,
	}
	for path, want := range cases {
		if got := isSummaryPath(path); got != want {
			t.Errorf("isSummaryPath(%q)=%v want %v", path, got, want)
		}
	}
}
