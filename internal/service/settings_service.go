package service

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"taskflow/internal/model"
)

const (
	maxWorkMinutes  = 180
	maxRelaxMinutes = 60
)

// SettingsService is the only place the settings singleton is created or
// written. Listeners are told about every successful update.
type SettingsService struct {
	store SettingsStore
	log   *zap.Logger

	mu        sync.Mutex
	listeners []func(context.Context, model.Settings)
}

func NewSettingsService(store SettingsStore, log *zap.Logger) *SettingsService {
	return &SettingsService{store: store, log: log.Named("settings")}
}

// Load returns the persisted settings, persisting the defaults on first use.
func (s *SettingsService) Load(ctx context.Context) (model.Settings, error) {
	current, err := s.store.First(ctx)
	if err == nil {
		return *current, nil
	}
	if !isNotFound(err) {
		return model.Settings{}, err
	}

	settings := model.DefaultSettings()
	if err := s.store.Create(ctx, &settings); err != nil {
		return model.Settings{}, err
	}
	s.log.Info("default settings created")
	return settings, nil
}

// Update validates and stores the new values, then notifies listeners.
func (s *SettingsService) Update(ctx context.Context, next model.Settings) (model.Settings, error) {
	if err := ValidateSettings(next); err != nil {
		return model.Settings{}, err
	}

	current, err := s.Load(ctx)
	if err != nil {
		return model.Settings{}, err
	}
	current.WorkMinutes = next.WorkMinutes
	current.RelaxMinutes = next.RelaxMinutes
	current.ReviewReminderEnabled = next.ReviewReminderEnabled
	current.ReviewReminderTime = next.ReviewReminderTime
	if err := s.store.Save(ctx, &current); err != nil {
		return model.Settings{}, err
	}

	s.mu.Lock()
	listeners := append([]func(context.Context, model.Settings){}, s.listeners...)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(ctx, current)
	}
	return current, nil
}

// OnChange registers fn to run after each successful Update.
func (s *SettingsService) OnChange(fn func(context.Context, model.Settings)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func ValidateSettings(v model.Settings) error {
	if v.WorkMinutes < 1 || v.WorkMinutes > maxWorkMinutes {
		return fmt.Errorf("%w: work minutes must be 1-%d", ErrInvalidArgs, maxWorkMinutes)
	}
	if v.RelaxMinutes < 1 || v.RelaxMinutes > maxRelaxMinutes {
		return fmt.Errorf("%w: relax minutes must be 1-%d", ErrInvalidArgs, maxRelaxMinutes)
	}
	if _, err := buildDailySpec(v.ReviewReminderTime); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}
	return nil
}
