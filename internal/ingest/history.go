package ingest

import (
	"context"
	"sync"
	"time"

	"continuum/internal/client/github"
)

// historyStrategy walks the commit history of a tracked file, fetches the
// file content at each (sampled) revision, and extracts candidates per
// commit. The commit listing is the mandatory path: any failure there is
// terminal. Individual snapshot fetches are best-effort.
type historyStrategy struct {
	client *github.Client
	gate   *persistGate
	src    sourceIdentity
	cfg    historyConfig
	since  *time.Time
	opts   Options
}

func (h *historyStrategy) run(ctx context.Context, emit func(Event)) (int, error) {
	commits, err := h.listCommits(ctx, emit)
	if err != nil {
		return 0, err
	}

	summary := isSummaryPath(h.cfg.File)
	sampled, step := sampleCommits(commits, summary, h.opts.SampleCap)
	emit(newCommitsDoneEvent(len(commits), len(sampled), step))

	snapshots := h.fetchSnapshots(ctx, sampled, emit)

	seen := make(map[string]struct{})
	created := 0
	for i, commit := range sampled {
		input := commitInput{
			SHA:        commit.SHA,
			Message:    commit.Commit.Message,
			HTMLURL:    commit.HTMLURL,
			AuthorDate: commit.Commit.Author.Date,
		}
		var summarySnap, outageSnap []byte
		if summary {
			summarySnap = snapshots[i]
		} else {
			outageSnap = snapshots[i]
		}
		candidates := extractFromCommit(h.src, input, summarySnap, outageSnap, seen)
		n, err := h.gate.persistAll(ctx, candidates, emit)
		created += n
		if err != nil {
			return created, err
		}
	}
	return created, nil
}

// listCommits resolves every page of the commit listing, emitting one
// commits_page event per page with the running total. Pagination stops on an
// empty page or when the Link header carries no rel="next".
func (h *historyStrategy) listCommits(ctx context.Context, emit func(Event)) ([]github.Commit, error) {
	pageURL := h.client.CommitsURL(h.cfg.Repo, h.cfg.File, h.cfg.Branch, h.since, h.opts.PerPage)
	var commits []github.Commit
	page := 0
	for pageURL != "" {
		result, err := h.client.ListCommitsPage(ctx, pageURL)
		if err != nil {
			return nil, err
		}
		if len(result.Commits) == 0 {
			break
		}
		commits = append(commits, result.Commits...)
		page++
		emit(newCommitsPageEvent(page, len(commits)))
		pageURL = result.NextURL
	}
	return commits, nil
}

// fetchSnapshots retrieves file content at each commit, at most
// FetchConcurrency in flight, in batches of FetchBatchSize so progress can
// be reported without emitting per item. A failed fetch leaves a nil entry;
// extraction falls back to the commit message for those. Results are indexed
// by commit so event order stays deterministic downstream.
func (h *historyStrategy) fetchSnapshots(ctx context.Context, commits []github.Commit, emit func(Event)) [][]byte {
	results := make([][]byte, len(commits))
	if len(commits) == 0 {
		return results
	}

	batchSize := h.opts.FetchBatchSize
	sem := make(chan struct{}, h.opts.FetchConcurrency)
	for start := 0; start < len(commits); start += batchSize {
		end := start + batchSize
		if end > len(commits) {
			end = len(commits)
		}
		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				sem <- struct{}{}
				defer func() { <-sem }()
				body, err := h.client.RawContent(ctx, h.cfg.Repo, commits[i].SHA, h.cfg.File)
				if err != nil {
					return
				}
				results[i] = body
			}(i)
		}
		wg.Wait()
		emit(newFetchingEvent(end, len(commits)))
	}
	return results
}
