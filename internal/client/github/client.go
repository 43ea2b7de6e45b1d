package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

type Client struct {
	host       string
	rawHost    string
	token      string
	httpClient *http.Client
}

type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("github API error (%d): %s", e.Status, e.Body)
}

func NewClient(httpClient *http.Client, host, rawHost, token string) *Client {
	if host == "" {
		host = "https://api.github.com"
	}
	if rawHost == "" {
		rawHost = "https://raw.githubusercontent.com"
	}
	return &Client{
		host:       strings.TrimRight(host, "/"),
		rawHost:    strings.TrimRight(rawHost, "/"),
		token:      token,
		httpClient: httpClient,
	}
}

type Commit struct {
	SHA     string       `json:"sha"`
	HTMLURL string       `json:"html_url"`
	Commit  CommitDetail `json:"commit"`
}

type CommitDetail struct {
	Message string       `json:"message"`
	Author  CommitAuthor `json:"author"`
}

type CommitAuthor struct {
	Date time.Time `json:"date"`
}

// CommitPage is one page of the paginated commit listing, with the
// rel="next" URL from the Link header when further pages exist.
type CommitPage struct {
	Commits []Commit
	NextURL string
}

// CommitsURL builds the first-page listing URL for commits touching path on
// branch since the given time.
func (c *Client) CommitsURL(repo, path, branch string, since *time.Time, perPage int) string {
	if perPage <= 0 {
		perPage = 100
	}
	query := url.Values{}
	query.Set("path", path)
	query.Set("per_page", strconv.Itoa(perPage))
	if branch != "" {
		query.Set("sha", branch)
	}
	if since != nil && !since.IsZero() {
		query.Set("since", since.UTC().Format(time.RFC3339))
	}
	return fmt.Sprintf("%s/repos/%s/commits?%s", c.host, repo, query.Encode())
}

// ListCommitsPage fetches one page of the commit listing. pageURL is either
// the result of CommitsURL or a NextURL from a previous page.
func (c *Client) ListCommitsPage(ctx context.Context, pageURL string) (CommitPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return CommitPage{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return CommitPage{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return CommitPage{}, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return CommitPage{}, &APIError{Status: resp.StatusCode, Body: string(body)}
	}
	var commits []Commit
	if err := json.Unmarshal(body, &commits); err != nil {
		return CommitPage{}, fmt.Errorf("failed to decode commits: %w", err)
	}
	return CommitPage{
		Commits: commits,
		NextURL: nextLink(resp.Header.Get("Link")),
	}, nil
}

// RawContent fetches the file content at an exact revision through the raw
// content host. The paginated contents API caps response sizes; the raw host
// does not.
func (c *Client) RawContent(ctx context.Context, repo, ref, path string) ([]byte, error) {
	rawURL := fmt.Sprintf("%s/%s/%s/%s", c.rawHost, repo, ref, strings.TrimLeft(path, "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

// nextLink extracts the rel="next" target from a Link header, or "" when the
// listing is exhausted.
func nextLink(header string) string {
	for _, part := range strings.Split(header, ",") {
		section := strings.Split(part, ";")
		if len(section) < 2 {
			continue
		}
		target := strings.Trim(strings.TrimSpace(section[0]), "<>")
		for _, param := range section[1:] {
			if strings.TrimSpace(param) == `rel="next"` {
				return target
			}
		}
	}
	return ""
}
