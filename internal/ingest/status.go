package ingest

import (
	"context"
	"time"

	"gorm.io/datatypes"

	"continuum/internal/client/statuspage"
	"continuum/internal/models"
)

// statusStrategy polls a hosted incident API directly: the provider returns
// the full incident history on every call, so there is no commit walking.
// Entries at or before the watermark are filtered by timestamp; the id check
// in the persistence gate stays authoritative either way.
type statusStrategy struct {
	client *statuspage.Client
	gate   *persistGate
	src    sourceIdentity
	cfg    statusConfig
	since  *time.Time
}

func (s *statusStrategy) run(ctx context.Context, emit func(Event)) (int, error) {
	incidents, err := s.client.ListIncidents(ctx, s.cfg.URL)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, inc := range incidents {
		if inc.ID == "" || skippableImpact(inc.Impact) {
			continue
		}
		createdAt := parseISOTime(inc.CreatedAt)
		if s.since != nil && createdAt != nil && !createdAt.After(*s.since) {
			continue
		}
		severity := severityForImpact(inc.Impact)
		candidate := models.Postmortem{
			ID:          s.src.Slug + "-" + shortKey(inc.ID),
			Title:       inc.Name,
			URL:         inc.Shortlink,
			Company:     s.src.Company,
			PublishedAt: createdAt,
			Severity:    &severity,
			Tags:        statusTags(s.src.Slug),
			Status:      models.StatusPending,
		}
		n, err := s.gate.persistAll(ctx, []models.Postmortem{candidate}, emit)
		created += n
		if err != nil {
			return created, err
		}
	}
	return created, nil
}

func statusTags(slug string) datatypes.JSONSlice[string] {
	return datatypes.NewJSONSlice([]string{"statuspage", "outage", slug})
}
