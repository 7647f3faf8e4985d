package services

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/featherpress/featherpress/internal/auth"
	"github.com/featherpress/featherpress/internal/models"
	"github.com/featherpress/featherpress/pkg/logging"
)

// SiteStore is the persistence surface consumed by SiteService.
// *db.SiteRepository implements it.
type SiteStore interface {
	ListSettings(ctx context.Context) ([]*models.Setting, error)
	GetSetting(ctx context.Context, key string) (*models.Setting, error)
	SetSetting(ctx context.Context, key, value string) error
	ListThemes(ctx context.Context) ([]*models.Theme, error)
	GetThemeByID(ctx context.Context, id int64) (*models.Theme, error)
	GetActiveTheme(ctx context.Context) (*models.Theme, error)
	ActivateTheme(ctx context.Context, id int64) (*models.Theme, error)
	ListExtensions(ctx context.Context, activeOnly bool) ([]*models.Extension, error)
	GetExtensionBySlug(ctx context.Context, slug string) (*models.Extension, error)
	SetExtensionActive(ctx context.Context, slug string, active bool) (*models.Extension, error)
}

// Features are the fixed feature flags derived from settings
type Features struct {
	Comments     bool `json:"comments"`
	Registration bool `json:"registration"`
	Uploads      bool `json:"uploads"`
	Webmentions  bool `json:"webmentions"`
	Maintenance  bool `json:"maintenance"`
}

// SiteProfile is the caller profile embedded in the site info response
type SiteProfile struct {
	ID          string   `json:"id"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	DisplayName *string  `json:"display_name,omitempty"`
	Role        string   `json:"role,omitempty"`
	Permissions []string `json:"permissions"`
}

// SiteInfo is the aggregated site response: theme, extensions, features,
// public settings, and the caller's profile when one is present
type SiteInfo struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Theme       string            `json:"theme"`
	Extensions  []string          `json:"extensions"`
	Features    Features          `json:"features"`
	Settings    map[string]string `json:"settings"`
	User        *SiteProfile      `json:"user,omitempty"`
}

// SiteService composes site-wide state and applies settings updates behind
// the site settings permission. Everything is recomputed per call.
type SiteService struct {
	store  SiteStore
	gate   PermissionGate
	logger *zap.Logger
}

// NewSiteService creates a new site service
func NewSiteService(store SiteStore, gate PermissionGate) *SiteService {
	return &SiteService{
		store:  store,
		gate:   gate,
		logger: logging.WithComponent("site-service"),
	}
}

// Info assembles the aggregated site response
func (s *SiteService) Info(ctx context.Context, id auth.Identity) (*SiteInfo, error) {
	settings, err := s.settingsMap(ctx)
	if err != nil {
		return nil, err
	}

	info := &SiteInfo{
		Title:       settings["site_title"],
		Description: settings["site_description"],
		Features:    featuresFrom(settings),
		Settings:    settings,
		Extensions:  []string{},
	}

	theme, err := s.store.GetActiveTheme(ctx)
	if err != nil {
		return nil, err
	}
	if theme != nil {
		info.Theme = theme.Name
	}

	exts, err := s.store.ListExtensions(ctx, true)
	if err != nil {
		return nil, err
	}
	for _, ext := range exts {
		info.Extensions = append(info.Extensions, ext.Name)
	}

	if user, ok := id.User(); ok {
		perms, err := s.gate.EffectivePermissions(ctx, id)
		if err != nil {
			return nil, err
		}
		profile := &SiteProfile{
			ID:          user.ID.String(),
			Username:    user.Username,
			Email:       user.Email,
			DisplayName: fromNullString(user.DisplayName),
			Permissions: perms,
		}
		if user.Role != nil {
			profile.Role = user.Role.Name
		}
		info.User = profile
	}

	return info, nil
}

// GetFeatures returns the feature flags derived from settings
func (s *SiteService) GetFeatures(ctx context.Context) (*Features, error) {
	settings, err := s.settingsMap(ctx)
	if err != nil {
		return nil, err
	}
	f := featuresFrom(settings)
	return &f, nil
}

// FeatureEnabled reports whether one named feature flag is on
func (s *SiteService) FeatureEnabled(ctx context.Context, key string) (bool, error) {
	setting, err := s.store.GetSetting(ctx, key)
	if err != nil {
		return false, err
	}
	if setting == nil {
		return false, nil
	}
	return setting.Value.Valid && setting.Value.String == "true", nil
}

// UpdateSettings applies a partial settings update. Only keys present in the
// map are touched; every key must exist in the settings catalog, and no key
// is written until all of them check out. Requires the site settings
// permission.
func (s *SiteService) UpdateSettings(ctx context.Context, id auth.Identity, updates map[string]string) error {
	if err := s.gate.RequirePermission(ctx, id, PermUpdateSiteSettings); err != nil {
		return err
	}
	if len(updates) == 0 {
		return Validationf("no settings provided")
	}

	for key := range updates {
		setting, err := s.store.GetSetting(ctx, key)
		if err != nil {
			return err
		}
		if setting == nil {
			return Validationf("unknown setting %q", key)
		}
	}

	for key, value := range updates {
		if err := s.store.SetSetting(ctx, key, value); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return Validationf("unknown setting %q", key)
			}
			return err
		}
	}

	s.logger.Info("site settings updated", zap.Int("keys", len(updates)))
	return nil
}

// ListThemes returns every installed theme
func (s *SiteService) ListThemes(ctx context.Context) ([]*models.Theme, error) {
	return s.store.ListThemes(ctx)
}

// ActiveTheme returns the currently active theme
func (s *SiteService) ActiveTheme(ctx context.Context) (*models.Theme, error) {
	theme, err := s.store.GetActiveTheme(ctx)
	if err != nil {
		return nil, err
	}
	if theme == nil {
		return nil, NotFoundf("active theme")
	}
	return theme, nil
}

// ActivateTheme makes one theme active and deactivates the rest, in a single
// transaction. Requires the site settings permission.
func (s *SiteService) ActivateTheme(ctx context.Context, id auth.Identity, themeID int64) (*models.Theme, error) {
	if err := s.gate.RequirePermission(ctx, id, PermUpdateSiteSettings); err != nil {
		return nil, err
	}
	theme, err := s.store.ActivateTheme(ctx, themeID)
	if err != nil {
		return nil, err
	}
	if theme == nil {
		return nil, NotFoundf("theme %d", themeID)
	}

	s.logger.Info("theme activated", zap.String("theme", theme.Name))
	return theme, nil
}

// ListExtensions returns installed extensions, optionally active ones only
func (s *SiteService) ListExtensions(ctx context.Context, activeOnly bool) ([]*models.Extension, error) {
	return s.store.ListExtensions(ctx, activeOnly)
}

// SetExtensionStatus toggles an extension's active flag. Requires the site
// settings permission.
func (s *SiteService) SetExtensionStatus(ctx context.Context, id auth.Identity, slug string, active bool) (*models.Extension, error) {
	if err := s.gate.RequirePermission(ctx, id, PermUpdateSiteSettings); err != nil {
		return nil, err
	}
	ext, err := s.store.SetExtensionActive(ctx, slug, active)
	if err != nil {
		return nil, err
	}
	if ext == nil {
		return nil, NotFoundf("extension %q", slug)
	}

	s.logger.Info("extension status changed",
		zap.String("extension", slug), zap.Bool("active", active))
	return ext, nil
}

func (s *SiteService) settingsMap(ctx context.Context) (map[string]string, error) {
	rows, err := s.store.ListSettings(ctx)
	if err != nil {
		return nil, err
	}
	settings := make(map[string]string, len(rows))
	for _, row := range rows {
		if row.Value.Valid {
			settings[row.Key] = row.Value.String
		} else {
			settings[row.Key] = ""
		}
	}
	return settings, nil
}

func featuresFrom(settings map[string]string) Features {
	return Features{
		Comments:     settings["comments_enabled"] == "true",
		Registration: settings["registration_enabled"] == "true",
		Uploads:      settings["uploads_enabled"] == "true",
		Webmentions:  settings["webmentions_enabled"] == "true",
		Maintenance:  settings["maintenance_mode"] == "true",
	}
}
