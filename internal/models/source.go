package models

import (
	"time"

	"gorm.io/datatypes"
)

// Source sync methods.
const (
	MethodGitHubJSON = "github_json"
	MethodStatuspage = "statuspage"
	MethodRSS        = "rss"
)

// Source is a configured origin to scrape for incident candidates.
// LastSyncedAt is the watermark: it only advances after a fully
// successful sync pass and bounds the next run's fetch window.
type Source struct {
	ID           string            `gorm:"primaryKey;type:text" json:"id"`
	Company      string            `gorm:"type:text;not null" json:"company"`
	Slug         string            `gorm:"type:text;uniqueIndex;not null" json:"slug"`
	Method       string            `gorm:"type:text;not null" json:"method"`
	Config       datatypes.JSONMap `gorm:"type:jsonb;not null" json:"config"`
	Active       bool              `gorm:"not null;default:true" json:"active"`
	LastSyncedAt *time.Time        `gorm:"type:timestamptz" json:"last_synced_at"`
	CreatedAt    time.Time         `gorm:"type:timestamptz" json:"created_at"`
}

func (Source) TableName() string {
	return "sources"
}
