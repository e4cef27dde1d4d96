/*
settings.go - The instant-win settings singleton

One row holds every instant-win tunable. Reads go through a find-or-create
so the first request after a fresh deploy sees configured defaults instead
of a missing-row error. Writes clamp every numeric field into its legal
range before persisting; the store never sees an out-of-range value.
*/
package instantwin

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/warp/payout-engine/engine"
)

// Settings returns the singleton, creating it from configured defaults on
// first access. Insert-or-ignore makes the bootstrap race-tolerant: two
// concurrent first reads both end up with the same persisted row.
func (s *Service) Settings(ctx context.Context) (*engine.InstantWinSettings, error) {
	settings, err := s.Store.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	if settings != nil {
		return settings, nil
	}

	seed := s.Defaults.Clamp()
	seed.ID = engine.SettingsID
	seed.UpdatedAt = s.Clock().UTC()
	if err := s.Store.InitSettings(ctx, seed); err != nil {
		return nil, err
	}
	s.Log.Info("instant-win settings initialized from defaults")
	return s.Store.GetSettings(ctx)
}

// Toggle flips the master switch and returns the updated settings.
func (s *Service) Toggle(ctx context.Context, enabled bool) (*engine.InstantWinSettings, error) {
	settings, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}

	settings.Enabled = enabled
	settings.UpdatedAt = s.Clock().UTC()
	if err := s.Store.SaveSettings(ctx, *settings); err != nil {
		return nil, err
	}
	s.Log.Info("instant-win toggled", zap.Bool("enabled", enabled))
	return settings, nil
}

// SettingsPatch carries a partial settings update. Nil fields keep their
// current value.
type SettingsPatch struct {
	Enabled         *bool
	MaxPercentage   *decimal.Decimal
	BaseProbability *float64
	MinAmount       *decimal.Decimal
	MaxAmount       *decimal.Decimal
	WinMessage      *string
	NotifyEnabled   *bool
}

// UpdateSettings applies a patch, clamps the result into legal ranges and
// persists it.
func (s *Service) UpdateSettings(ctx context.Context, patch SettingsPatch) (*engine.InstantWinSettings, error) {
	settings, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}

	if patch.Enabled != nil {
		settings.Enabled = *patch.Enabled
	}
	if patch.MaxPercentage != nil {
		settings.MaxPercentage = *patch.MaxPercentage
	}
	if patch.BaseProbability != nil {
		settings.BaseProbability = *patch.BaseProbability
	}
	if patch.MinAmount != nil {
		settings.MinAmount = *patch.MinAmount
	}
	if patch.MaxAmount != nil {
		settings.MaxAmount = *patch.MaxAmount
	}
	if patch.WinMessage != nil {
		settings.WinMessage = *patch.WinMessage
	}
	if patch.NotifyEnabled != nil {
		settings.NotifyEnabled = *patch.NotifyEnabled
	}

	clamped := settings.Clamp()
	settings = &clamped
	settings.UpdatedAt = s.Clock().UTC()
	if err := s.Store.SaveSettings(ctx, *settings); err != nil {
		return nil, err
	}

	s.Log.Info("instant-win settings updated",
		zap.String("max_percentage", settings.MaxPercentage.String()),
		zap.Float64("base_probability", settings.BaseProbability))
	return settings, nil
}
