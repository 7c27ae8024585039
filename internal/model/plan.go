package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PlanStatus is the lifecycle state of a plan.
type PlanStatus string

const (
	PlanNotStarted PlanStatus = "not_started"
	PlanInProgress PlanStatus = "in_progress"
	PlanFinished   PlanStatus = "finished"
	PlanAbandoned  PlanStatus = "abandoned"
	PlanDelayed    PlanStatus = "delayed"
)

// Open reports whether the plan still produces daily tasks.
func (s PlanStatus) Open() bool {
	return s != PlanFinished && s != PlanAbandoned
}

func (s PlanStatus) Valid() bool {
	switch s {
	case PlanNotStarted, PlanInProgress, PlanFinished, PlanAbandoned, PlanDelayed:
		return true
	}
	return false
}

func (s PlanStatus) DisplayName() string {
	switch s {
	case PlanNotStarted:
		return "Not Started"
	case PlanInProgress:
		return "In Progress"
	case PlanFinished:
		return "Finished"
	case PlanAbandoned:
		return "Abandoned"
	case PlanDelayed:
		return "Delayed"
	}
	return string(s)
}

// Priority is shared by plans and tasks.
type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

var ErrPlanDates = errors.New("estimated end is before start")

// Plan is a multi-day goal.
type Plan struct {
	ID               uuid.UUID  `gorm:"type:text;primaryKey"`
	Name             string     `gorm:"not null"`
	Status           PlanStatus `gorm:"index"`
	Priority         *Priority
	IsUrgent         bool `gorm:"default:false"`
	StartTime        time.Time
	EstimatedEndTime *time.Time
	EndTime          *time.Time
	IsDeleted        bool `gorm:"index;default:false"`
	Note             *string
	Review           *string
	CreatedAt        time.Time
	ModifiedAt       time.Time
}

func (p *Plan) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = PlanNotStarted
	}
	return nil
}

// EffectivePriority treats a missing priority as normal.
func (p Plan) EffectivePriority() Priority {
	if p.Priority == nil {
		return PriorityNormal
	}
	return *p.Priority
}

// Validate checks the date range invariant.
func (p Plan) Validate() error {
	if p.EstimatedEndTime != nil && p.EstimatedEndTime.Before(p.StartTime) {
		return ErrPlanDates
	}
	return nil
}

// ToggleFinished flips the plan between finished and in progress.
func (p *Plan) ToggleFinished(now time.Time) {
	if p.Status == PlanFinished {
		p.Status = PlanInProgress
		p.EndTime = nil
	} else {
		p.Status = PlanFinished
		p.EndTime = &now
	}
	p.ModifiedAt = now
}

// SetStatus moves the plan to status. Entering Finished records now as the
// actual end; any other status clears it.
func (p *Plan) SetStatus(status PlanStatus, now time.Time) {
	switch {
	case status == PlanFinished && p.Status != PlanFinished:
		p.EndTime = &now
	case status != PlanFinished:
		p.EndTime = nil
	}
	p.Status = status
	p.ModifiedAt = now
}

// SoftDelete hides the plan without removing it.
func (p *Plan) SoftDelete(now time.Time) {
	p.IsDeleted = true
	p.ModifiedAt = now
}
