package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"taskflow/internal/clock"
	"taskflow/internal/model"
)

// ReviewReminderJob is the scheduler id of the daily review reminder.
const ReviewReminderJob = "review-reminder"

// ReminderService builds the evening review reminder and keeps its daily
// job in line with the settings.
type ReminderService struct {
	summary   *SummaryService
	tasks     *TaskService
	reviews   *ReviewService
	scheduler NotificationScheduler
	clock     clock.Clock
	log       *zap.Logger

	mu       sync.RWMutex
	notifier Notifier
}

func NewReminderService(summary *SummaryService, tasks *TaskService, reviews *ReviewService, scheduler NotificationScheduler, notifier Notifier, c clock.Clock, log *zap.Logger) *ReminderService {
	return &ReminderService{
		summary:   summary,
		tasks:     tasks,
		reviews:   reviews,
		scheduler: scheduler,
		clock:     c,
		notifier:  notifier,
		log:       log.Named("reminder"),
	}
}

// SetNotifier swaps the delivery target, e.g. once the bot is connected.
func (s *ReminderService) SetNotifier(n Notifier) {
	s.mu.Lock()
	s.notifier = n
	s.mu.Unlock()
}

// Sync schedules the reminder at the configured time when enabled and
// cancels it otherwise.
func (s *ReminderService) Sync(ctx context.Context, settings model.Settings) error {
	if !settings.ReviewReminderEnabled {
		s.scheduler.Cancel(ReviewReminderJob)
		s.log.Info("review reminder disabled")
		return nil
	}

	err := s.scheduler.ScheduleDaily(ReviewReminderJob, settings.ReviewReminderTime, func() {
		s.fire(context.WithoutCancel(ctx))
	})
	if err != nil {
		return fmt.Errorf("schedule review reminder: %w", err)
	}
	s.log.Info("review reminder scheduled", zap.String("at", settings.ReviewReminderTime))
	return nil
}

func (s *ReminderService) fire(ctx context.Context) {
	text, err := s.Text(ctx, s.clock.Now())
	if err != nil {
		s.log.Error("build review reminder", zap.Error(err))
		return
	}

	s.mu.RLock()
	n := s.notifier
	s.mu.RUnlock()
	if n == nil {
		return
	}
	if err := n.Notify(ctx, text); err != nil {
		s.log.Error("send review reminder", zap.Error(err))
	}
}

// Text renders today's summary and the tasks still open, formatted as
// Telegram HTML.
func (s *ReminderService) Text(ctx context.Context, now time.Time) (string, error) {
	_, metrics, err := s.summary.Summary(ctx, RangeToday)
	if err != nil {
		return "", err
	}
	tasks, err := s.tasks.Today(ctx)
	if err != nil {
		return "", err
	}
	review, err := s.reviews.Today(ctx)
	if err != nil {
		return "", err
	}

	var pending []model.Task
	for _, task := range tasks {
		if !task.IsFinished {
			pending = append(pending, task)
		}
	}

	var builder strings.Builder
	builder.WriteString("📋 <b>Daily review</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", now.Format("2006-01-02")))

	builder.WriteString(fmt.Sprintf("🍅 Pomodoros: %d finished, %d abandoned\n", metrics.FinishedPomodoros, metrics.AbandonedPomodoros))
	builder.WriteString(fmt.Sprintf("✅ Tasks: %d finished, %d pending\n", metrics.FinishedTasks, metrics.PendingTasks))
	if metrics.FinishedPlans > 0 || metrics.OverduePlans > 0 {
		builder.WriteString(fmt.Sprintf("🎯 Plans: %d finished, %d overdue\n", metrics.FinishedPlans, metrics.OverduePlans))
	}

	builder.WriteString("\n🔥 <b>Still open</b>\n")
	if len(pending) == 0 {
		builder.WriteString("— nothing left, well done\n")
	} else {
		for _, task := range pending {
			builder.WriteString(formatTask(task))
		}
	}

	builder.WriteByte('\n')
	if review != nil && review.Written() {
		builder.WriteString(fmt.Sprintf("📝 Review written, score %d/%d.", review.Score, model.MaxReviewScore))
	} else {
		builder.WriteString("📝 How did today go? Send /review &lt;score&gt; &lt;text&gt;.")
	}

	return strings.TrimSpace(builder.String()), nil
}

func formatTask(task model.Task) string {
	var sb strings.Builder

	icon := "🟢"
	switch task.Quadrant() {
	case model.QuadrantUrgentImportant:
		icon = "🔴"
	case model.QuadrantImportant:
		icon = "🟠"
	case model.QuadrantUrgent:
		icon = "🟡"
	}
	sb.WriteString(fmt.Sprintf("%s %s", icon, html.EscapeString(strings.TrimSpace(task.Name))))

	if task.Tag != nil {
		if tag := strings.TrimSpace(*task.Tag); tag != "" {
			sb.WriteString(fmt.Sprintf(" <i>(%s)</i>", html.EscapeString(tag)))
		}
	}
	if task.Note != nil {
		if note := strings.TrimSpace(*task.Note); note != "" {
			sb.WriteString(fmt.Sprintf("\n   📝 %s", html.EscapeString(note)))
		}
	}

	sb.WriteByte('\n')
	return sb.String()
}
