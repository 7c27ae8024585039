package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PomodoroStatus string

const (
	PomodoroFinished  PomodoroStatus = "finished"
	PomodoroAbandoned PomodoroStatus = "abandoned"
)

// PomodoroSession is a persisted work timer run. Relax runs are never stored.
type PomodoroSession struct {
	ID               uuid.UUID  `gorm:"type:text;primaryKey"`
	TaskID           *uuid.UUID `gorm:"type:text;index"`
	StartDate        time.Time
	EndDate          *time.Time `gorm:"index"`
	Status           PomodoroStatus
	EstimatedMinutes int
	FinishedMinutes  *int
	CreatedAt        time.Time
}

func (p *PomodoroSession) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
