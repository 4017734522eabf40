package service

import (
	"context"
	"errors"
	"time"

	"github.com/Jassur2025/metallerp-sub000/internal/config"
	"github.com/Jassur2025/metallerp-sub000/internal/dto"
	"github.com/Jassur2025/metallerp-sub000/internal/infra"
	"github.com/Jassur2025/metallerp-sub000/internal/ledger"
	"github.com/Jassur2025/metallerp-sub000/internal/model"
	"github.com/Jassur2025/metallerp-sub000/internal/realtime"
	"github.com/Jassur2025/metallerp-sub000/internal/repository"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const settingsCacheKey = "settings"

type SettingsService interface {
	// PricingContext is the rate pair every ledger call runs with.
	PricingContext(ctx context.Context) (ledger.PricingContext, error)
	Get(ctx context.Context) (*dto.SettingsResponse, error)
	Update(ctx context.Context, req dto.UpdateSettingsRequest) (*dto.SettingsResponse, error)
}

type settingsService struct {
	repo   repository.SettingsRepository
	cache  *infra.Cache
	cfg    *config.Config
	engine *ledger.Engine
	hub    *realtime.Hub
}

func NewSettingsService(repo repository.SettingsRepository, cache *infra.Cache, cfg *config.Config, engine *ledger.Engine, hub *realtime.Hub) SettingsService {
	return &settingsService{repo: repo, cache: cache, cfg: cfg, engine: engine, hub: hub}
}

// cachedSettings is what lives in redis; decimals survive JSON as strings.
type cachedSettings struct {
	Settings  model.AppSettings `json:"settings"`
	Persisted bool              `json:"persisted"`
}

func (s *settingsService) load(ctx context.Context) (cachedSettings, error) {
	var cs cachedSettings
	if err := s.cache.Get(ctx, settingsCacheKey, &cs); err == nil {
		return cs, nil
	} else if !errors.Is(err, infra.ErrCacheMiss) {
		log.Warn().Err(err).Msg("settings cache read failed")
	}

	stored, err := s.repo.Get(ctx)
	switch {
	case err == nil:
		cs = cachedSettings{Settings: *stored, Persisted: true}
	case errors.Is(err, gorm.ErrRecordNotFound):
		def, derr := s.defaults()
		if derr != nil {
			return cs, derr
		}
		cs = cachedSettings{Settings: def}
	default:
		return cs, err
	}

	if err := s.cache.Set(ctx, settingsCacheKey, cs); err != nil {
		log.Warn().Err(err).Msg("settings cache write failed")
	}
	return cs, nil
}

// defaults come from DEFAULT_EXCHANGE_RATE / VAT_RATE until an admin saves settings.
func (s *settingsService) defaults() (model.AppSettings, error) {
	rate, err := ledger.FromFloat("DEFAULT_EXCHANGE_RATE", s.cfg.DefaultExchangeRate)
	if err != nil {
		return model.AppSettings{}, err
	}
	vat, err := ledger.FromFloat("VAT_RATE", s.cfg.VATRate)
	if err != nil {
		return model.AppSettings{}, err
	}
	return model.AppSettings{ID: 1, DefaultExchangeRate: rate, VATRate: vat}, nil
}

func (s *settingsService) PricingContext(ctx context.Context) (ledger.PricingContext, error) {
	cs, err := s.load(ctx)
	if err != nil {
		return ledger.PricingContext{}, err
	}
	pc := ledger.PricingContext{ExchangeRate: cs.Settings.DefaultExchangeRate, VATRate: cs.Settings.VATRate}
	if err := pc.Validate(); err != nil {
		return ledger.PricingContext{}, err
	}
	return pc, nil
}

func (s *settingsService) Get(ctx context.Context) (*dto.SettingsResponse, error) {
	cs, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return s.toResponse(cs), nil
}

func (s *settingsService) Update(ctx context.Context, req dto.UpdateSettingsRequest) (*dto.SettingsResponse, error) {
	pc := ledger.PricingContext{ExchangeRate: req.DefaultExchangeRate, VATRate: req.VATRate}
	if err := pc.Validate(); err != nil {
		var cfgErr *ledger.ConfigurationError
		if errors.As(err, &cfgErr) {
			// here the rate is user input, not deployment configuration
			return nil, &ledger.ValidationError{Fields: map[string]string{cfgErr.Setting: cfgErr.Reason}}
		}
		return nil, err
	}

	settings := &model.AppSettings{ID: 1, DefaultExchangeRate: req.DefaultExchangeRate, VATRate: req.VATRate, UpdatedAt: time.Now()}
	if err := s.repo.Save(ctx, settings); err != nil {
		return nil, err
	}
	if err := s.cache.Delete(ctx, settingsCacheKey); err != nil {
		log.Warn().Err(err).Msg("settings cache invalidation failed")
	}

	resp := s.toResponse(cachedSettings{Settings: *settings, Persisted: true})
	s.hub.Publish(realtime.EventSettingsUpdated, resp)
	return resp, nil
}

func (s *settingsService) toResponse(cs cachedSettings) *dto.SettingsResponse {
	resp := &dto.SettingsResponse{
		DefaultExchangeRate: cs.Settings.DefaultExchangeRate,
		VATRate:             cs.Settings.VATRate,
		ImportTaxPolicy:     string(s.engine.Policy),
		ToleranceUSD:        s.engine.Tolerances.USD,
		ToleranceUZS:        s.engine.Tolerances.UZS,
		Persisted:           cs.Persisted,
	}
	if !cs.Settings.UpdatedAt.IsZero() {
		resp.UpdatedAt = cs.Settings.UpdatedAt.Format(time.RFC3339)
	}
	return resp
}
