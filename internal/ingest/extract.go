package ingest

import (
	"encoding/json"
	"strings"
	"time"

	"gorm.io/datatypes"

	"continuum/internal/models"
)

// Extraction is pure: (commit metadata, optional snapshots) in, zero or more
// candidates out. Per commit the priority order is summary snapshot, then
// outage snapshot, then commit-message fallback. A summary snapshot that
// parses fully handles its commit even when it yields nothing.

type commitInput struct {
	SHA        string
	Message    string
	HTMLURL    string
	AuthorDate time.Time
}

type sourceIdentity struct {
	Slug    string
	Company string
}

// Provider impact / indicator vocabulary mapped to the fixed severity scale.
var impactSeverity = map[string]string{
	"minor":    models.SeverityMedium,
	"major":    models.SeverityHigh,
	"critical": models.SeverityCritical,
}

func severityForImpact(impact string) string {
	if severity, ok := impactSeverity[strings.ToLower(impact)]; ok {
		return severity
	}
	return models.SeverityMedium
}

func skippableImpact(impact string) bool {
	switch strings.ToLower(impact) {
	case "none", "maintenance":
		return true
	}
	return false
}

type summaryDoc struct {
	Incidents []summaryIncident `json:"incidents"`
}

type summaryIncident struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Impact    string `json:"impact"`
	CreatedAt string `json:"created_at"`
	Shortlink string `json:"shortlink"`
}

type statusDoc struct {
	Page struct {
		Name string `json:"name"`
	} `json:"page"`
	Status struct {
		Indicator   string `json:"indicator"`
		Description string `json:"description"`
	} `json:"status"`
}

// extractFromCommit maps one commit and its snapshot(s) to candidates.
// seen is the within-run id set for summary incidents; outage and fallback
// ids are derived from the commit SHA and are unique per commit already.
func extractFromCommit(src sourceIdentity, c commitInput, summarySnap, outageSnap []byte, seen map[string]struct{}) []models.Postmortem {
	if len(summarySnap) > 0 {
		candidates, handled := extractSummary(src, summarySnap, seen)
		if handled {
			return candidates
		}
	}

	if len(outageSnap) > 0 {
		candidates, handled := extractOutage(src, c, outageSnap)
		if handled {
			return candidates
		}
	}

	return extractCommitMessage(src, c)
}

// extractSummary handles snapshots of a structured incident list. handled is
// false only when the snapshot does not parse, in which case the caller falls
// through as if no snapshot existed.
func extractSummary(src sourceIdentity, snapshot []byte, seen map[string]struct{}) ([]models.Postmortem, bool) {
	var doc summaryDoc
	if err := json.Unmarshal(snapshot, &doc); err != nil {
		return nil, false
	}

	var out []models.Postmortem
	for _, inc := range doc.Incidents {
		if inc.ID == "" || skippableImpact(inc.Impact) {
			continue
		}
		if _, dup := seen[inc.ID]; dup {
			continue
		}
		seen[inc.ID] = struct{}{}

		severity := severityForImpact(inc.Impact)
		out = append(out, models.Postmortem{
			ID:          src.Slug + "-" + shortKey(inc.ID),
			Title:       inc.Name,
			URL:         inc.Shortlink,
			Company:     src.Company,
			PublishedAt: parseISOTime(inc.CreatedAt),
			Severity:    &severity,
			Tags:        historyTags(src.Slug),
			Status:      models.StatusPending,
		})
	}
	return out, true
}

// extractOutage handles raw status-page snapshots. A document without a
// status.indicator is not a valid snapshot and is treated as absent.
func extractOutage(src sourceIdentity, c commitInput, snapshot []byte) ([]models.Postmortem, bool) {
	var doc statusDoc
	if err := json.Unmarshal(snapshot, &doc); err != nil {
		return nil, false
	}
	indicator := strings.ToLower(strings.TrimSpace(doc.Status.Indicator))
	if indicator == "" {
		return nil, false
	}
	if skippableImpact(indicator) {
		return nil, true
	}

	title := strings.TrimSpace(doc.Page.Name)
	if desc := strings.TrimSpace(doc.Status.Description); desc != "" {
		if title != "" {
			title += ": " + desc
		} else {
			title = desc
		}
	}
	publishedAt := c.AuthorDate
	severity := severityForImpact(indicator)
	return []models.Postmortem{{
		ID:          src.Slug + "-" + shortKey(c.SHA),
		Title:       title,
		URL:         c.HTMLURL,
		Company:     src.Company,
		PublishedAt: &publishedAt,
		Severity:    &severity,
		Tags:        historyTags(src.Slug),
		Status:      models.StatusPending,
	}}, true
}

// extractCommitMessage synthesizes a candidate from the commit itself when
// no snapshot was fetched or parseable. Severity stays absent.
func extractCommitMessage(src sourceIdentity, c commitInput) []models.Postmortem {
	title, _, _ := strings.Cut(c.Message, "\n")
	title = strings.TrimSpace(title)
	if title == "" {
		return nil
	}
	publishedAt := c.AuthorDate
	return []models.Postmortem{{
		ID:          src.Slug + "-" + shortKey(c.SHA),
		Title:       title,
		URL:         c.HTMLURL,
		Company:     src.Company,
		PublishedAt: &publishedAt,
		Tags:        historyTags(src.Slug),
		Status:      models.StatusPending,
	}}
}

func historyTags(slug string) datatypes.JSONSlice[string] {
	return datatypes.NewJSONSlice([]string{"github", "outage", slug})
}

// shortKey truncates an external key (commit SHA or provider incident id)
// to the 12 characters used in derived candidate ids.
func shortKey(key string) string {
	if len(key) > 12 {
		return key[:12]
	}
	return key
}

func parseISOTime(value string) *time.Time {
	if value == "" {
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil
	}
	return &parsed
}
