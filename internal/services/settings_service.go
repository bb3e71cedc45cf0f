package services

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/nanonroses/rpa-team-manager-sub000/internal/apperrors"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/database"
	"github.com/nanonroses/rpa-team-manager-sub000/internal/models"
)

// SettingsService reads and writes global settings. Values are cached for a
// few minutes because the ROI computation reads them on every request.
type SettingsService struct {
	db    *database.DB
	cache *cache.Cache
}

// NewSettingsService creates a new settings service
func NewSettingsService(db *database.DB) *SettingsService {
	return &SettingsService{
		db:    db,
		cache: cache.New(5*time.Minute, 10*time.Minute),
	}
}

// Get retrieves a setting by key. Missing keys return an empty string.
func (s *SettingsService) Get(ctx context.Context, key string) (string, error) {
	if v, found := s.cache.Get(key); found {
		return v.(string), nil
	}

	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM global_settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", apperrors.FromStore(err)
	}

	s.cache.Set(key, value, cache.DefaultExpiration)
	return value, nil
}

// GetFloat retrieves a numeric setting, falling back to def when the key is
// missing or malformed.
func (s *SettingsService) GetFloat(ctx context.Context, key string, def float64) (float64, error) {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def, nil
	}
	return v, nil
}

// Set upserts a setting and invalidates its cache entry
func (s *SettingsService) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO global_settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil {
		return apperrors.FromStore(err)
	}

	s.cache.Delete(key)
	return nil
}

// List returns every setting row
func (s *SettingsService) List(ctx context.Context) ([]models.GlobalSetting, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, value, COALESCE(description, '') FROM global_settings ORDER BY key")
	if err != nil {
		return nil, apperrors.FromStore(err)
	}
	defer rows.Close()

	var settings []models.GlobalSetting
	for rows.Next() {
		var gs models.GlobalSetting
		if err := rows.Scan(&gs.Key, &gs.Value, &gs.Description); err != nil {
			return nil, apperrors.FromStore(err)
		}
		settings = append(settings, gs)
	}
	return settings, rows.Err()
}
