package ingest

import (
	"fmt"
	"strings"

	"gorm.io/datatypes"
)

// Per-method source configuration, parsed out of the jsonb config column.
// Validation failures here surface as an error event before any network call.

type historyConfig struct {
	Repo   string
	File   string
	Branch string
}

type statusConfig struct {
	URL string
}

type feedConfig struct {
	FeedURL string
}

func parseHistoryConfig(cfg datatypes.JSONMap) (historyConfig, error) {
	out := historyConfig{
		Repo:   configString(cfg, "repo"),
		File:   configString(cfg, "file"),
		Branch: configString(cfg, "branch"),
	}
	if out.Repo == "" || out.File == "" {
		return historyConfig{}, fmt.Errorf("github_json source requires config.repo and config.file")
	}
	return out, nil
}

func parseStatusConfig(cfg datatypes.JSONMap) (statusConfig, error) {
	out := statusConfig{URL: configString(cfg, "url")}
	if out.URL == "" {
		return statusConfig{}, fmt.Errorf("statuspage source requires config.url")
	}
	return out, nil
}

func parseFeedConfig(cfg datatypes.JSONMap) (feedConfig, error) {
	out := feedConfig{FeedURL: configString(cfg, "feed_url")}
	if out.FeedURL == "" {
		return feedConfig{}, fmt.Errorf("rss source requires config.feed_url")
	}
	return out, nil
}

func configString(cfg datatypes.JSONMap, key string) string {
	if cfg == nil {
		return ""
	}
	value, ok := cfg[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}
