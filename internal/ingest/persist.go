package ingest

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"continuum/internal/models"
	"continuum/internal/repository"
)

// persistGate is the idempotence boundary: insert-if-absent keyed on the
// deterministic candidate id, never an update. A duplicate-key insert lost
// to a concurrent run is skipped, not treated as a pipeline error.
type persistGate struct {
	repo repository.Repository
}

func (g *persistGate) persist(ctx context.Context, item models.Postmortem) (bool, error) {
	existing, err := g.repo.GetPostmortemByID(ctx, item.ID)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}
	if err := g.repo.InsertPostmortem(ctx, &item); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// persistAll runs candidates through the gate in order, emitting one
// incident event per insert, and returns the number created.
func (g *persistGate) persistAll(ctx context.Context, items []models.Postmortem, emit func(Event)) (int, error) {
	created := 0
	for _, item := range items {
		inserted, err := g.persist(ctx, item)
		if err != nil {
			return created, err
		}
		if inserted {
			created++
			emit(newIncidentEvent(item.ID, item.Title, item.Severity))
		}
	}
	return created, nil
}
