package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Task represents a single-day item in the planner.
type Task struct {
	ID               uuid.UUID `gorm:"type:text;primaryKey"`
	Name             string    `gorm:"not null"`
	Date             time.Time `gorm:"index"`
	IsFinished       bool      `gorm:"default:false"`
	Priority         Priority  `gorm:"index"`
	IsUrgent         bool      `gorm:"default:false"`
	Tag              *string
	Note             *string
	Review           *string
	Location         *string
	NotificationTime *time.Time
	PlanID           *uuid.UUID `gorm:"type:text;index"`
	CreatedAt        time.Time
	ModifiedAt       time.Time
}

func (t *Task) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Priority == "" {
		t.Priority = PriorityNormal
	}
	return nil
}

// IsValid reports whether the task should still be shown: it has no plan,
// its plan no longer exists, or the plan is not soft-deleted.
func (t Task) IsValid(plan *Plan) bool {
	if t.PlanID == nil || plan == nil {
		return true
	}
	return !plan.IsDeleted
}

func (t *Task) ToggleFinished(now time.Time) {
	t.IsFinished = !t.IsFinished
	t.ModifiedAt = now
}

// Quadrant returns the urgency/priority bucket the task belongs to.
func (t Task) Quadrant() Quadrant {
	return QuadrantOf(t.IsUrgent, t.Priority == PriorityHigh)
}
