package gormrepository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"continuum/internal/models"
	"continuum/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// --- Postmortems ------------------------------------------------------------

func (s *Store) GetPostmortemByID(ctx context.Context, id string) (*models.Postmortem, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.Postmortem
	err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) InsertPostmortem(ctx context.Context, item *models.Postmortem) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) ListPostmortems(ctx context.Context, params repository.ListPostmortemsParams) ([]models.Postmortem, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := applyPostmortemFilters(s.db.WithContext(ctx).Model(&models.Postmortem{}), params)
	query = applyOrder(query, params.SortBy, params.SortDesc)
	limit := normalizeLimit(params.Limit, 20)
	offset := normalizeOffset(params.Offset)
	var items []models.Postmortem
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountPostmortems(ctx context.Context, params repository.ListPostmortemsParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var count int64
	query := applyPostmortemFilters(s.db.WithContext(ctx).Model(&models.Postmortem{}), params)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) UpdatePostmortemStatus(ctx context.Context, id string, status string) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	res := s.db.WithContext(ctx).
		Model(&models.Postmortem{}).
		Where("id = ?", id).
		Update("status", status)
	return res.RowsAffected, res.Error
}

func (s *Store) DeletePostmortem(ctx context.Context, id string) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).Delete(&models.Postmortem{}, "id = ?", id).Error
}

// --- Sources ----------------------------------------------------------------

func (s *Store) GetSourceByID(ctx context.Context, id string) (*models.Source, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.Source
	err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListSources(ctx context.Context) ([]models.Source, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Source
	if err := s.db.WithContext(ctx).
		Model(&models.Source{}).
		Order("created_at desc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListActiveSources(ctx context.Context) ([]models.Source, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Source
	if err := s.db.WithContext(ctx).
		Model(&models.Source{}).
		Where("active = ?", true).
		Order("created_at asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) InsertSource(ctx context.Context, item *models.Source) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) UpdateSource(ctx context.Context, item *models.Source) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).
		Model(&models.Source{}).
		Where("id = ?", item.ID).
		Updates(map[string]any{
			"company": item.Company,
			"method":  item.Method,
			"config":  item.Config,
			"active":  item.Active,
		}).Error
}

func (s *Store) SetSourceLastSynced(ctx context.Context, id string, at time.Time) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).
		Model(&models.Source{}).
		Where("id = ?", id).
		Update("last_synced_at", at).Error
}

func (s *Store) DeleteSource(ctx context.Context, id string) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).Delete(&models.Source{}, "id = ?", id).Error
}

// --- Helpers ----------------------------------------------------------------

func applyPostmortemFilters(query *gorm.DB, params repository.ListPostmortemsParams) *gorm.DB {
	if params.Company != nil && strings.TrimSpace(*params.Company) != "" {
		query = query.Where("company = ?", strings.TrimSpace(*params.Company))
	}
	if params.Severity != nil && strings.TrimSpace(*params.Severity) != "" {
		query = query.Where("severity = ?", strings.TrimSpace(*params.Severity))
	}
	if params.Status != nil && strings.TrimSpace(*params.Status) != "" {
		query = query.Where("status = ?", strings.TrimSpace(*params.Status))
	}
	return query
}

var allowedSortColumns = map[string]bool{
	"published_at": true,
	"company":      true,
	"created_at":   true,
}

func applyOrder(query *gorm.DB, sortBy string, desc bool) *gorm.DB {
	column := strings.TrimSpace(sortBy)
	if !allowedSortColumns[column] {
		column = "published_at"
	}
	direction := "asc"
	if desc {
		direction = "desc"
	}
	return query.Order(column + " " + direction)
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > 100 {
		return 100
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
