package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"taskflow/internal/model"
)

// PomodoroRepository stores finished and abandoned work sessions.
type PomodoroRepository struct {
	db *gorm.DB
}

func NewPomodoroRepository(db *gorm.DB) *PomodoroRepository {
	return &PomodoroRepository{db: db}
}

func (r *PomodoroRepository) Create(ctx context.Context, session *model.PomodoroSession) error {
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return fmt.Errorf("create pomodoro: %w", err)
	}
	return nil
}

func (r *PomodoroRepository) ListAll(ctx context.Context) ([]model.PomodoroSession, error) {
	var sessions []model.PomodoroSession
	if err := r.db.WithContext(ctx).Order("start_date ASC").Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("list pomodoros: %w", err)
	}
	return sessions, nil
}
