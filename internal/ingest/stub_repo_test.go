package ingest

import (
	"context"
	"sort"
	"time"

	"continuum/internal/models"
	"continuum/internal/repository"
)

// stubRepo is a test-only in-memory implementation of repository.Repository.
type stubRepo struct {
	postmortems map[string]models.Postmortem
	sources     map[string]models.Source

	insertErr error
	getErr    error
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		postmortems: map[string]models.Postmortem{},
		sources:     map[string]models.Source{},
	}
}

func (s *stubRepo) GetPostmortemByID(ctx context.Context, id string) (*models.Postmortem, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	item, ok := s.postmortems[id]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

func (s *stubRepo) InsertPostmortem(ctx context.Context, item *models.Postmortem) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.postmortems[item.ID] = *item
	return nil
}

func (s *stubRepo) ListPostmortems(ctx context.Context, params repository.ListPostmortemsParams) ([]models.Postmortem, error) {
	var items []models.Postmortem
	for _, item := range s.postmortems {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (s *stubRepo) CountPostmortems(ctx context.Context, params repository.ListPostmortemsParams) (int64, error) {
	return int64(len(s.postmortems)), nil
}

func (s *stubRepo) UpdatePostmortemStatus(ctx context.Context, id string, status string) (int64, error) {
	item, ok := s.postmortems[id]
	if !ok {
		return 0, nil
	}
	item.Status = status
	s.postmortems[id] = item
	return 1, nil
}

func (s *stubRepo) DeletePostmortem(ctx context.Context, id string) error {
	delete(s.postmortems, id)
	return nil
}

func (s *stubRepo) GetSourceByID(ctx context.Context, id string) (*models.Source, error) {
	item, ok := s.sources[id]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

func (s *stubRepo) ListSources(ctx context.Context) ([]models.Source, error) {
	var items []models.Source
	for _, item := range s.sources {
		items = append(items, item)
	}
	return items, nil
}

func (s *stubRepo) ListActiveSources(ctx context.Context) ([]models.Source, error) {
	var items []models.Source
	for _, item := range s.sources {
		if item.Active {
			items = append(items, item)
		}
	}
	return items, nil
}

func (s *stubRepo) InsertSource(ctx context.Context, item *models.Source) error {
	s.sources[item.ID] = *item
	return nil
}

func (s *stubRepo) UpdateSource(ctx context.Context, item *models.Source) error {
	s.sources[item.ID] = *item
	return nil
}

func (s *stubRepo) SetSourceLastSynced(ctx context.Context, id string, at time.Time) error {
	item, ok := s.sources[id]
	if !ok {
		return nil
	}
	item.LastSyncedAt = &at
	s.sources[id] = item
	return nil
}

func (s *stubRepo) DeleteSource(ctx context.Context, id string) error {
	delete(s.sources, id)
	return nil
}
