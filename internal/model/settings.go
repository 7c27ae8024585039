package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultWorkMinutes        = 25
	DefaultRelaxMinutes       = 5
	DefaultReviewReminderTime = "18:15"
)

// Settings is the per-store singleton holding user preferences.
type Settings struct {
	ID                    uuid.UUID `gorm:"type:text;primaryKey"`
	WorkMinutes           int
	RelaxMinutes          int
	ReviewReminderEnabled bool
	ReviewReminderTime    string // HH:MM
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (s *Settings) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func DefaultSettings() Settings {
	return Settings{
		WorkMinutes:           DefaultWorkMinutes,
		RelaxMinutes:          DefaultRelaxMinutes,
		ReviewReminderEnabled: true,
		ReviewReminderTime:    DefaultReviewReminderTime,
	}
}
