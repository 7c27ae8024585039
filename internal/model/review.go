package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MinReviewScore = 0
	MaxReviewScore = 10
)

// Review is the free-text reflection written for one day.
type Review struct {
	ID        uuid.UUID `gorm:"type:text;primaryKey"`
	Date      time.Time `gorm:"index"`
	Content   string
	Score     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r *Review) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Written reports whether the review has non-blank content.
func (r Review) Written() bool {
	return strings.TrimSpace(r.Content) != ""
}
