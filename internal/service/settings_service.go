package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/uniplex/academic-api/internal/models"
	appErrors "github.com/uniplex/academic-api/pkg/errors"
)

const settingsCacheKey = "settings:current"

type settingsRepo interface {
	Get(ctx context.Context) (*models.SiteSettings, error)
	Update(ctx context.Context, settings *models.SiteSettings) error
}

type settingsCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// UpdateSettingsRequest repoints the current academic period or the default
// grade system.
type UpdateSettingsRequest struct {
	CurrentAcademicYearID *string `json:"current_academic_year_id"`
	CurrentSemesterID     *string `json:"current_semester_id"`
	DefaultGradeSystemID  *string `json:"default_grade_system_id"`
	UpdatedBy             *string `json:"updated_by"`
}

// SettingsService serves the single current-configuration pointer row.
// Reads go through Redis; the cache is dropped on every update so
// followers converge within one TTL at worst.
type SettingsService struct {
	repo    settingsRepo
	cache   settingsCache
	metrics *MetricsService
	ttl     time.Duration
	logger  *zap.Logger
}

// NewSettingsService constructs SettingsService.
func NewSettingsService(repo settingsRepo, cache settingsCache, metrics *MetricsService, ttl time.Duration, logger *zap.Logger) *SettingsService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{repo: repo, cache: cache, metrics: metrics, ttl: ttl, logger: logger}
}

// Current returns the settings row, preferring the cache.
func (s *SettingsService) Current(ctx context.Context) (*models.SiteSettings, error) {
	if s.cache != nil {
		var cached models.SiteSettings
		err := s.cache.Get(ctx, settingsCacheKey, &cached)
		if err == nil {
			s.metrics.RecordCacheOperation(true)
			return &cached, nil
		}
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("settings cache read failed", zap.Error(err))
		}
		s.metrics.RecordCacheOperation(false)
	}
	settings, err := s.repo.Get(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load settings")
	}
	if settings == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "site settings not seeded")
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, settingsCacheKey, settings, s.ttl); err != nil {
			s.logger.Warn("settings cache write failed", zap.Error(err))
		}
	}
	return settings, nil
}

// CurrentSemesterID resolves the semester new grade operations default to.
func (s *SettingsService) CurrentSemesterID(ctx context.Context) (string, error) {
	settings, err := s.Current(ctx)
	if err != nil {
		return "", err
	}
	if settings.CurrentSemesterID == nil {
		return "", appErrors.Clone(appErrors.ErrPreconditionFailed, "no current semester configured")
	}
	return *settings.CurrentSemesterID, nil
}

// Update repoints the settings row and drops the cache.
func (s *SettingsService) Update(ctx context.Context, req UpdateSettingsRequest) (*models.SiteSettings, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load settings")
	}
	if settings == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "site settings not seeded")
	}
	if req.CurrentAcademicYearID != nil {
		settings.CurrentAcademicYearID = req.CurrentAcademicYearID
	}
	if req.CurrentSemesterID != nil {
		settings.CurrentSemesterID = req.CurrentSemesterID
	}
	if req.DefaultGradeSystemID != nil {
		settings.DefaultGradeSystemID = req.DefaultGradeSystemID
	}
	settings.UpdatedBy = req.UpdatedBy
	if err := s.repo.Update(ctx, settings); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update settings")
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, settingsCacheKey); err != nil {
			s.logger.Warn("settings cache invalidation failed", zap.Error(err))
		}
	}
	s.logger.Info("site settings updated")
	return settings, nil
}
