package ingest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"continuum/internal/client/github"
	"continuum/internal/client/statuspage"
	"continuum/internal/models"
	"continuum/internal/repository"
)

// Syncer drives one full sync pass per source. A closed set of strategies
// (commit history, direct incident API, RSS feed) shares the same event
// stream and persistence gate; the strategy is selected once per run from
// the source method.
type Syncer struct {
	Repo     repository.Repository
	GitHub   *github.Client
	Status   *statuspage.Client
	FeedHTTP *http.Client
	Logger   *zap.Logger
	Options  Options
}

type Options struct {
	SampleCap        int
	FetchConcurrency int
	FetchBatchSize   int
	PerPage          int
}

func (o Options) withDefaults() Options {
	if o.SampleCap <= 0 {
		o.SampleCap = 500
	}
	if o.FetchConcurrency <= 0 {
		o.FetchConcurrency = 5
	}
	if o.FetchBatchSize <= 0 {
		o.FetchBatchSize = 25
	}
	if o.PerPage <= 0 {
		o.PerPage = 100
	}
	return o
}

type strategy interface {
	run(ctx context.Context, emit func(Event)) (int, error)
}

// Run executes a sync pass and returns its ordered event stream. The
// channel closes after exactly one terminal event; the watermark advances
// only when the run reaches done. Callers that go away should keep draining
// the channel (or abandon it in a goroutine) — the run itself has no cancel
// primitive beyond ctx.
func (s *Syncer) Run(ctx context.Context, src models.Source) <-chan Event {
	events := make(chan Event, 16)
	go func() {
		defer close(events)
		emit := func(e Event) { events <- e }

		startedAt := time.Now().UTC()
		created, err := s.runGuarded(ctx, src, emit)
		if err != nil {
			s.logResult(src, created, err)
			emit(newErrorEvent(err.Error()))
			return
		}
		if err := s.Repo.SetSourceLastSynced(ctx, src.ID, startedAt); err != nil {
			s.logResult(src, created, err)
			emit(newErrorEvent(fmt.Sprintf("failed to advance watermark: %v", err)))
			return
		}
		s.logResult(src, created, nil)
		emit(newDoneEvent(created))
	}()
	return events
}

// runGuarded keeps any panic inside the pipeline from escaping the stream:
// the connection must always end cleanly with a terminal event.
func (s *Syncer) runGuarded(ctx context.Context, src models.Source, emit func(Event)) (created int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sync panic: %v", r)
		}
	}()

	strat, err := s.strategyFor(src)
	if err != nil {
		return 0, err
	}

	emit(newStartEvent(sinceString(src.LastSyncedAt)))
	return strat.run(ctx, emit)
}

func (s *Syncer) strategyFor(src models.Source) (strategy, error) {
	identity := sourceIdentity{Slug: src.Slug, Company: src.Company}
	gate := &persistGate{repo: s.Repo}

	switch src.Method {
	case models.MethodGitHubJSON:
		cfg, err := parseHistoryConfig(src.Config)
		if err != nil {
			return nil, err
		}
		return &historyStrategy{
			client: s.GitHub,
			gate:   gate,
			src:    identity,
			cfg:    cfg,
			since:  src.LastSyncedAt,
			opts:   s.Options.withDefaults(),
		}, nil
	case models.MethodStatuspage:
		cfg, err := parseStatusConfig(src.Config)
		if err != nil {
			return nil, err
		}
		return &statusStrategy{
			client: s.Status,
			gate:   gate,
			src:    identity,
			cfg:    cfg,
			since:  src.LastSyncedAt,
		}, nil
	case models.MethodRSS:
		cfg, err := parseFeedConfig(src.Config)
		if err != nil {
			return nil, err
		}
		httpClient := s.FeedHTTP
		if httpClient == nil {
			httpClient = &http.Client{Timeout: 30 * time.Second}
		}
		return &feedStrategy{
			httpClient: httpClient,
			gate:       gate,
			src:        identity,
			cfg:        cfg,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported source method: %s", src.Method)
	}
}

func (s *Syncer) logResult(src models.Source, created int, err error) {
	if s.Logger == nil {
		return
	}
	if err != nil {
		s.Logger.Warn("source sync failed",
			zap.String("source", src.Slug),
			zap.Int("created", created),
			zap.Error(err))
		return
	}
	s.Logger.Info("source sync done",
		zap.String("source", src.Slug),
		zap.Int("created", created))
}

func sinceString(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
