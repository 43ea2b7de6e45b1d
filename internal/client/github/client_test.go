package github

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestCommitsURL(t *testing.T) {
	c := NewClient(http.DefaultClient, "", "", "")
	since := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	got := c.CommitsURL("acme/status", "history/summary.json", "main", &since, 100)
	if !strings.HasPrefix(got, "https://api.github.com/repos/acme/status/commits?") {
		t.Fatalf("url=%q", got)
	}
	for _, part := range []string{"path=history%2Fsummary.json", "per_page=100", "sha=main", "since=2026-03-01T00%3A00%3A00Z"} {
		if !strings.Contains(got, part) {
			t.Errorf("url %q missing %q", got, part)
		}
	}

	got = c.CommitsURL("acme/status", "status.json", "", nil, 0)
	if strings.Contains(got, "sha=") || strings.Contains(got, "since=") {
		t.Fatalf("url %q carries empty params", got)
	}
	if !strings.Contains(got, "per_page=100") {
		t.Fatalf("url %q missing default per_page", got)
	}
}

func TestListCommitsPage_Pagination(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept"); got != "application/vnd.github+json" {
			t.Errorf("Accept=%q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization=%q", got)
		}
		switch r.URL.Query().Get("page") {
		case "", "1":
			w.Header().Set("Link", fmt.Sprintf(`<%s/repos/acme/status/commits?page=2>; rel="next", <%s/repos/acme/status/commits?page=2>; rel="last"`, server.URL, server.URL))
			fmt.Fprint(w, `[{"sha":"aaa","html_url":"u","commit":{"message":"one","author":{"date":"2026-03-01T00:00:00Z"}}}]`)
		case "2":
			fmt.Fprint(w, `[{"sha":"bbb","html_url":"u","commit":{"message":"two","author":{"date":"2026-03-02T00:00:00Z"}}}]`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	c := NewClient(server.Client(), server.URL, server.URL, "tok")
	first, err := c.ListCommitsPage(context.Background(), server.URL+"/repos/acme/status/commits?page=1")
	if err != nil {
		t.Fatalf("first page: %v", err)
	}
	if len(first.Commits) != 1 || first.Commits[0].SHA != "aaa" {
		t.Fatalf("first page commits=%+v", first.Commits)
	}
	if first.NextURL == "" {
		t.Fatalf("missing next link")
	}

	second, err := c.ListCommitsPage(context.Background(), first.NextURL)
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	if len(second.Commits) != 1 || second.Commits[0].SHA != "bbb" {
		t.Fatalf("second page commits=%+v", second.Commits)
	}
	if second.NextURL != "" {
		t.Fatalf("unexpected next link %q", second.NextURL)
	}
}

func TestListCommitsPage_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, "rate limit exceeded")
	}))
	defer server.Close()

	c := NewClient(server.Client(), server.URL, server.URL, "")
	_, err := c.ListCommitsPage(context.Background(), server.URL+"/repos/acme/status/commits")
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("err=%v want *APIError", err)
	}
	if apiErr.Status != http.StatusForbidden || !strings.Contains(apiErr.Body, "rate limit") {
		t.Fatalf("apiErr=%+v", apiErr)
	}
}

func TestRawContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/acme/status/abc123/history/summary.json" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, `{"incidents":[]}`)
	}))
	defer server.Close()

	c := NewClient(server.Client(), server.URL, server.URL, "")
	body, err := c.RawContent(context.Background(), "acme/status", "abc123", "/history/summary.json")
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if string(body) != `{"incidents":[]}` {
		t.Fatalf("body=%q", body)
	}

	if _, err := c.RawContent(context.Background(), "acme/status", "missing", "history/summary.json"); err == nil {
		t.Fatalf("expected error for missing revision")
	}
}

func TestNextLink(t *testing.T) {
	cases := map[string]string{
		`<https://api.github.com/x?page=2>; rel="next", <https://api.github.com/x?page=9>; rel="last"`: "https://api.github.com/x?page=2",
		`<https://api.github.com/x?page=1>; rel="prev"`:                                                "",
		``: "",
	}
	for header, want := range cases {
		if got := nextLink(header); got != want {
			t.Errorf("nextLink(%q)=%q want %q", header, got, want)
		}
	}
}
