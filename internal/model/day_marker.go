package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DayMarker records that today's tasks were already generated.
type DayMarker struct {
	ID                  uuid.UUID `gorm:"type:text;primaryKey"`
	Date                time.Time `gorm:"index"`
	CreatedTaskForToday bool
	CreatedAt           time.Time
}

func (d *DayMarker) BeforeCreate(*gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
