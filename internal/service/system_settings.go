package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"bettracker/internal/models"
	"bettracker/internal/repository"
)

const (
	SettingBankroll = "app.bankroll"

	FeatureAIPrune  = "feature.ai_prune"
	FeatureOCRCache = "feature.ocr_cache"
)

func DefaultFeatureSwitches() map[string]bool {
	return map[string]bool{
		FeatureAIPrune:  true,
		FeatureOCRCache: true,
	}
}

// AppSettings is the user-editable settings document.
type AppSettings struct {
	Bankroll *decimal.Decimal `json:"bankroll"`
}

type SystemSettingsService struct {
	Repo repository.SettingsRepository
}

// EnsureDefaultSwitches writes missing feature switches. Existing values are
// left alone.
func (s *SystemSettingsService) EnsureDefaultSwitches(ctx context.Context) error {
	if s == nil || s.Repo == nil {
		return nil
	}
	now := time.Now().UTC()
	for key, enabled := range DefaultFeatureSwitches() {
		existing, err := s.Repo.GetSystemSettingByKey(ctx, key)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		raw, _ := json.Marshal(enabled)
		item := &models.SystemSetting{
			Key:         key,
			Value:       datatypes.JSON(raw),
			Description: "feature switch",
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.Repo.UpsertSystemSetting(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

func (s *SystemSettingsService) IsEnabled(ctx context.Context, key string, fallback bool) bool {
	if s == nil || s.Repo == nil {
		return fallback
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fallback
	}
	item, err := s.Repo.GetSystemSettingByKey(ctx, key)
	if err != nil || item == nil || len(item.Value) == 0 {
		return fallback
	}
	var enabled bool
	if err := json.Unmarshal(item.Value, &enabled); err != nil {
		return fallback
	}
	return enabled
}

func (s *SystemSettingsService) SetEnabled(ctx context.Context, key string, enabled bool) error {
	if s == nil || s.Repo == nil {
		return nil
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}
	raw, _ := json.Marshal(enabled)
	now := time.Now().UTC()
	return s.Repo.UpsertSystemSetting(ctx, &models.SystemSetting{
		Key:         key,
		Value:       datatypes.JSON(raw),
		Description: "feature switch",
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

// App reads the settings document. A missing bankroll row reads as null.
func (s *SystemSettingsService) App(ctx context.Context) (AppSettings, error) {
	var out AppSettings
	if s == nil || s.Repo == nil {
		return out, nil
	}
	item, err := s.Repo.GetSystemSettingByKey(ctx, SettingBankroll)
	if err != nil {
		return out, err
	}
	if item == nil || len(item.Value) == 0 {
		return out, nil
	}
	var bankroll *decimal.Decimal
	if err := json.Unmarshal(item.Value, &bankroll); err != nil {
		return out, fmt.Errorf("decode %s: %w", SettingBankroll, err)
	}
	out.Bankroll = bankroll
	return out, nil
}

// UpdateApp stores the bankroll. A nil bankroll clears it.
func (s *SystemSettingsService) UpdateApp(ctx context.Context, in AppSettings) (AppSettings, error) {
	if s == nil || s.Repo == nil {
		return in, nil
	}
	if in.Bankroll != nil && in.Bankroll.IsNegative() {
		return AppSettings{}, invalid("bankroll", "must not be negative")
	}
	raw, err := json.Marshal(in.Bankroll)
	if err != nil {
		return AppSettings{}, err
	}
	now := time.Now().UTC()
	if err := s.Repo.UpsertSystemSetting(ctx, &models.SystemSetting{
		Key:         SettingBankroll,
		Value:       datatypes.JSON(raw),
		Description: "starting bankroll",
		CreatedAt:   now,
		UpdatedAt:   now,
	}); err != nil {
		return AppSettings{}, err
	}
	return s.App(ctx)
}
