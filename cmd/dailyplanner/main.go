package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"backlog-planner/internal/backup"
	"backlog-planner/internal/bot"
	"backlog-planner/internal/config"
	"backlog-planner/internal/repository"
	"backlog-planner/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	store, err := repository.Open(repository.Options{DSN: cfg.DatabaseURL})
	if err != nil {
		log.Printf("[warn] storage unavailable, running without persistence: %v", err)
	}
	defer store.Close()

	tasks := repository.Tasks(store)
	backups := backup.ForStore(store, time.Now)

	telegramBot, err := bot.New(cfg.TelegramToken, bot.Services{
		Tasks:     service.NewTaskService(tasks, time.Now),
		Plan:      service.NewPlanSession(tasks, repository.History(store), time.Now),
		Journal:   service.NewJournalService(store),
		Reminders: service.NewReminderService(tasks),
		Backups:   backups,
	}, &cfg)
	if err != nil {
		log.Fatalf("bot: %v", err)
	}

	scheduler := service.NewSchedulerService(cfg.Timezone, 30*time.Second)
	if cfg.ReportInterval > 0 {
		if _, err := scheduler.ScheduleInterval("report", cfg.ReportInterval, telegramBot.SendDailyReports); err != nil {
			log.Fatalf("schedule reports: %v", err)
		}
	}
	if cfg.BackupTime != "" {
		job := service.NewBackupJob(store, backups, cfg.BackupDir, cfg.BackupKeep)
		if _, err := scheduler.ScheduleDaily("backup", cfg.BackupTime, job.Job()); err != nil {
			log.Fatalf("schedule backups: %v", err)
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	log.Println("[info] backlog planner bot started")
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("bot stopped with error: %v", err)
	}
	log.Println("[info] shutdown complete")
}
