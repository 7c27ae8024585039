package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"taskflow/internal/bot"
	"taskflow/internal/clock"
	"taskflow/internal/config"
	"taskflow/internal/logger"
	"taskflow/internal/model"
	"taskflow/internal/pomodoro"
	"taskflow/internal/repository"
	"taskflow/internal/service"
)

const (
	dailyTasksJob  = "daily-tasks"
	dailyTasksTime = "00:00"
	jobTimeout     = 30 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to an optional YAML config file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	appLog, err := logger.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = appLog.Sync() }()

	// Both were validated by config.Load.
	loc, _ := cfg.Location()
	weekStart, _ := cfg.FirstWeekday()

	db, err := repository.NewDB(cfg.DatabaseURL, appLog)
	if err != nil {
		appLog.Fatal("open database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	planRepo := repository.NewPlanRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	pomodoroRepo := repository.NewPomodoroRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	markerRepo := repository.NewDayMarkerRepository(db)

	clk := clock.NewSystem(loc)

	settingsSvc := service.NewSettingsService(settingsRepo, appLog)
	dailySvc := service.NewDailyTaskService(planRepo, taskRepo, markerRepo, clk, appLog)
	taskSvc := service.NewTaskService(taskRepo, planRepo, clk)
	planSvc := service.NewPlanService(planRepo, taskRepo, clk)
	quadrantSvc := service.NewQuadrantService(taskRepo, planRepo, clk)
	reviewSvc := service.NewReviewService(reviewRepo, clk)
	summarySvc := service.NewSummaryService(pomodoroRepo, taskRepo, planRepo, reviewRepo, clk, weekStart)
	scheduler := service.NewSchedulerService(loc)
	reminderSvc := service.NewReminderService(summarySvc, taskSvc, reviewSvc, scheduler, service.NewLogNotifier(appLog), clk, appLog)

	settings, err := settingsSvc.Load(ctx)
	if err != nil {
		appLog.Fatal("load settings", zap.Error(err))
	}

	loop := pomodoro.NewLoop(64)
	timer := pomodoro.New(clk, pomodoroRepo, pomodoro.NewLoopInterval(loop, time.Second), appLog)
	timer.Configure(settings.WorkMinutes, settings.RelaxMinutes)

	settingsSvc.OnChange(func(ctx context.Context, s model.Settings) {
		if err := loop.Post(func(context.Context) { timer.Configure(s.WorkMinutes, s.RelaxMinutes) }); err != nil {
			appLog.Warn("configure timer", zap.Error(err))
		}
		if err := reminderSvc.Sync(ctx, s); err != nil {
			appLog.Error("sync review reminder", zap.Error(err))
		}
	})

	ensureToday := func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		if _, err := dailySvc.EnsureTodayTasks(jobCtx, clk.Now()); err != nil {
			appLog.Error("generate daily tasks", zap.Error(err))
		}
	}
	ensureToday()

	if err := scheduler.ScheduleDaily(dailyTasksJob, dailyTasksTime, ensureToday); err != nil {
		appLog.Fatal("schedule daily tasks", zap.Error(err))
	}
	if err := reminderSvc.Sync(ctx, settings); err != nil {
		appLog.Error("sync review reminder", zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	var telegramBot *bot.Bot
	if cfg.BotEnabled() {
		telegramBot, err = bot.New(cfg.TelegramToken, cfg.OwnerChatID, bot.Services{
			Tasks:     taskSvc,
			Plans:     planSvc,
			Quadrants: quadrantSvc,
			Reviews:   reviewSvc,
			Summary:   summarySvc,
			Settings:  settingsSvc,
			Reminder:  reminderSvc,
		}, loop, timer, clk, appLog)
		if err != nil {
			appLog.Fatal("create bot", zap.Error(err))
		}
		reminderSvc.SetNotifier(telegramBot)
	}

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			appLog.Error("event loop stopped", zap.Error(err))
		}
	}()

	appLog.Info("taskflow started", zap.String("database", cfg.DatabaseURL), zap.Stringer("timezone", loc))
	if telegramBot != nil {
		if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			appLog.Error("bot stopped with error", zap.Error(err))
		}
	} else {
		appLog.Info("no telegram token configured, reminders go to the log")
		<-ctx.Done()
	}

	stop()
	<-loopDone
	appLog.Info("shutdown complete")
}
