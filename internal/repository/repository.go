package repository

import (
	"context"
	"time"

	"continuum/internal/models"
)

// Repository is the store boundary for postmortem records and sources.
// The sync engine only needs get-by-id, insert, and the watermark update;
// the rest serves the public listing and the admin review queue.
type Repository interface {
	// Postmortems.
	GetPostmortemByID(ctx context.Context, id string) (*models.Postmortem, error)
	InsertPostmortem(ctx context.Context, item *models.Postmortem) error
	ListPostmortems(ctx context.Context, params ListPostmortemsParams) ([]models.Postmortem, error)
	CountPostmortems(ctx context.Context, params ListPostmortemsParams) (int64, error)
	UpdatePostmortemStatus(ctx context.Context, id string, status string) (int64, error)
	DeletePostmortem(ctx context.Context, id string) error

	// Sources.
	GetSourceByID(ctx context.Context, id string) (*models.Source, error)
	ListSources(ctx context.Context) ([]models.Source, error)
	ListActiveSources(ctx context.Context) ([]models.Source, error)
	InsertSource(ctx context.Context, item *models.Source) error
	UpdateSource(ctx context.Context, item *models.Source) error
	SetSourceLastSynced(ctx context.Context, id string, at time.Time) error
	DeleteSource(ctx context.Context, id string) error
}

type ListPostmortemsParams struct {
	Company  *string
	Severity *string
	Status   *string
	SortBy   string
	SortDesc bool
	Limit    int
	Offset   int
}
