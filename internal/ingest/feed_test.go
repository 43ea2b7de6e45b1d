package ingest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gorm.io/datatypes"

	"continuum/internal/models"
)

const testFeedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Acme Engineering</title>
    <item>
      <title>Postmortem: March 10 API outage</title>
      <link>https://eng.acme.com/postmortem-march-10</link>
      <pubDate>Tue, 10 Mar 2026 12:00:00 +0000</pubDate>
      <description>What went wrong and how we fixed it.</description>
      <category>reliability</category>
    </item>
    <item>
      <title>Introducing our new design system</title>
      <link>https://eng.acme.com/design-system</link>
      <pubDate>Wed, 11 Mar 2026 12:00:00 +0000</pubDate>
      <description>Tokens, components, tooling.</description>
    </item>
    <item>
      <title>Lessons from last quarter</title>
      <link>https://eng.acme.com/lessons</link>
      <pubDate>not a date</pubDate>
      <description>A look back at the database failure in January.</description>
    </item>
    <item>
      <title>Incident without a link</title>
      <link></link>
      <description>Outage details.</description>
    </item>
  </channel>
</rss>`

func feedSource(url string) models.Source {
	return models.Source{
		ID:      "src-feed",
		Company: "Acme",
		Slug:    "acme",
		Method:  models.MethodRSS,
		Config:  datatypes.JSONMap{"feed_url": url},
		Active:  true,
	}
}

func TestFeedSync_KeywordFilter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, testFeedXML)
	}))
	defer server.Close()

	repo := newStubRepo()
	repo.sources["src-feed"] = feedSource(server.URL)
	syncer := newTestSyncer(repo, "http://127.0.0.1:0")

	events := collectEvents(syncer.Run(context.Background(), repo.sources["src-feed"]))
	done, ok := events[len(events)-1].(DoneEvent)
	if !ok {
		t.Fatalf("terminal=%+v want done", events[len(events)-1])
	}
	// The postmortem and the "failure" retrospective match; the design-system
	// post and the item with no link do not produce rows.
	if done.Created != 2 {
		t.Fatalf("created=%d want 2", done.Created)
	}
	for id, item := range repo.postmortems {
		if item.Status != models.StatusPending {
			t.Errorf("%s status=%q want pending", id, item.Status)
		}
		if item.Company != "Acme" {
			t.Errorf("%s company=%q", id, item.Company)
		}
	}
}

func TestFeedSync_DeterministicIDFromLink(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, testFeedXML)
	}))
	defer server.Close()

	repo := newStubRepo()
	repo.sources["src-feed"] = feedSource(server.URL)
	syncer := newTestSyncer(repo, "http://127.0.0.1:0")

	collectEvents(syncer.Run(context.Background(), repo.sources["src-feed"]))
	wantID := "acme-" + shortKey(hashKey("https://eng.acme.com/postmortem-march-10"))
	item, ok := repo.postmortems[wantID]
	if !ok {
		t.Fatalf("missing id %s, have %v", wantID, repo.postmortems)
	}
	if item.PublishedAt == nil || !item.PublishedAt.Equal(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("published_at=%v", item.PublishedAt)
	}

	second := collectEvents(syncer.Run(context.Background(), repo.sources["src-feed"]))
	if done := second[len(second)-1].(DoneEvent); done.Created != 0 {
		t.Fatalf("rerun created=%d want 0", done.Created)
	}
}

func TestFeedSync_FeedErrorIsTerminal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	repo := newStubRepo()
	repo.sources["src-feed"] = feedSource(server.URL)
	syncer := newTestSyncer(repo, "http://127.0.0.1:0")

	events := collectEvents(syncer.Run(context.Background(), repo.sources["src-feed"]))
	got := eventTypes(events)
	if fmt.Sprint(got) != fmt.Sprint([]EventType{EventStart, EventError}) {
		t.Fatalf("event sequence %v want [start error]", got)
	}
}

func TestLooksLikeIncident(t *testing.T) {
	cases := []struct {
		item rssItem
		want bool
	}{
		{rssItem{Title: "Postmortem: cache stampede"}, true},
		{rssItem{Title: "Quarterly update", Description: "including the May outage"}, true},
		{rssItem{Title: "New hire welcome", Categories: []string{"reliability"}}, true},
		{rssItem{Title: "Scaling our API", Description: "horizontal scaling story"}, false},
	}
	for _, tc := range cases {
		if got := looksLikeIncident(tc.item); got != tc.want {
			t.Errorf("looksLikeIncident(%q)=%v want %v", tc.item.Title, got, tc.want)
		}
	}
}

func TestParseFeedTime(t *testing.T) {
	if got := parseFeedTime("Tue, 10 Mar 2026 12:00:00 +0000"); got == nil || got.Day() != 10 {
		t.Fatalf("RFC1123Z parse failed: %v", got)
	}
	if got := parseFeedTime("2026-03-10T12:00:00Z"); got == nil {
		t.Fatalf("RFC3339 parse failed")
	}
	if got := parseFeedTime("garbage"); got != nil {
		t.Fatalf("garbage parsed to %v", got)
	}
	if got := parseFeedTime(""); got != nil {
		t.Fatalf("empty parsed to %v", got)
	}
}
