package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"gorm.io/datatypes"

	"continuum/internal/models"
)

// feedStrategy maps an engineering-blog RSS feed to candidates. Legal
// posture: metadata and link only, never mirrored content. A keyword
// heuristic keeps the queue to posts that look like incident writeups.
type feedStrategy struct {
	httpClient *http.Client
	gate       *persistGate
	src        sourceIdentity
	cfg        feedConfig
}

var incidentKeywords = []string{
	"incident", "outage", "postmortem", "post-mortem",
	"reliability", "downtime", "degradation", "failure",
	"root cause", "retrospective", "resilience",
}

type rssFeed struct {
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Items []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	PubDate     string   `xml:"pubDate"`
	Description string   `xml:"description"`
	Categories  []string `xml:"category"`
}

func (f *feedStrategy) run(ctx context.Context, emit func(Event)) (int, error) {
	items, err := f.fetchFeed(ctx)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, item := range items {
		if !looksLikeIncident(item) {
			continue
		}
		link := strings.TrimSpace(item.Link)
		if link == "" {
			continue
		}
		title := strings.TrimSpace(item.Title)
		if title == "" {
			title = "Untitled"
		}
		candidate := models.Postmortem{
			ID:          f.src.Slug + "-" + shortKey(hashKey(link)),
			Title:       title,
			URL:         link,
			Company:     f.src.Company,
			PublishedAt: parseFeedTime(item.PubDate),
			Tags:        feedTags(f.src.Slug, item.Categories),
			Status:      models.StatusPending,
		}
		n, err := f.gate.persistAll(ctx, []models.Postmortem{candidate}, emit)
		created += n
		if err != nil {
			return created, err
		}
	}
	return created, nil
}

func (f *feedStrategy) fetchFeed(ctx context.Context) ([]rssItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.cfg.FeedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed error (%d)", resp.StatusCode)
	}
	var feed rssFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}
	return feed.Channel.Items, nil
}

func looksLikeIncident(item rssItem) bool {
	text := strings.ToLower(item.Title + " " + item.Description + " " + strings.Join(item.Categories, " "))
	for _, keyword := range incidentKeywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

// hashKey derives a stable external key from a post URL, since feeds carry
// no usable provider id.
func hashKey(link string) string {
	sum := sha256.Sum256([]byte(link))
	return hex.EncodeToString(sum[:])
}

func parseFeedTime(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range []string{time.RFC1123Z, time.RFC1123, time.RFC3339} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return &parsed
		}
	}
	return nil
}

func feedTags(slug string, categories []string) datatypes.JSONSlice[string] {
	tags := make([]string, 0, len(categories)+1)
	for _, category := range categories {
		if c := strings.TrimSpace(category); c != "" {
			tags = append(tags, c)
		}
	}
	tags = append(tags, slug)
	return datatypes.NewJSONSlice(tags)
}
