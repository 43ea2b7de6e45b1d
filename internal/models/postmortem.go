package models

import (
	"time"

	"gorm.io/datatypes"
)

// Postmortem statuses. Sync only ever creates pending rows; publish/reject
// are admin review actions.
const (
	StatusPending   = "pending"
	StatusPublished = "published"
	StatusRejected  = "rejected"
)

// Severity scale. Provider impact vocabularies are mapped onto this set.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

type Postmortem struct {
	ID                string                      `gorm:"primaryKey;type:text" json:"id"`
	Company           string                      `gorm:"type:text;index;not null" json:"company"`
	Title             string                      `gorm:"type:text;not null" json:"title"`
	URL               string                      `gorm:"type:text;not null" json:"url"`
	PublishedAt       *time.Time                  `gorm:"type:timestamptz;index" json:"published_at"`
	Severity          *string                     `gorm:"type:text;index" json:"severity"`
	AffectedServices  datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"affected_services"`
	RootCauseCategory *string                     `gorm:"type:text" json:"root_cause_category"`
	AISummary         *string                     `gorm:"type:text" json:"ai_summary"`
	Tags              datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"tags"`
	Status            string                      `gorm:"type:text;index;not null;default:pending" json:"status"`
	CreatedAt         time.Time                   `gorm:"type:timestamptz;index" json:"created_at"`
}

func (Postmortem) TableName() string {
	return "postmortems"
}
