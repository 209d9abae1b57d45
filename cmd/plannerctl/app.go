package main

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm/logger"

	"backlog-planner/internal/backup"
	"backlog-planner/internal/config"
	"backlog-planner/internal/repository"
	"backlog-planner/internal/service"
)

// app holds what every subcommand needs, opened once per invocation.
type app struct {
	dsn     string
	cfg     config.Config
	store   *repository.Store
	tasks   *service.TaskService
	plan    *service.PlanSession
	journal *service.JournalService
	backups *backup.Manager
}

func (a *app) open(cmd *cobra.Command) error {
	cfg, err := config.LoadLocal()
	if err != nil {
		return err
	}
	if a.dsn != "" {
		cfg.DatabaseURL = a.dsn
	}
	a.cfg = cfg

	store, err := repository.Open(repository.Options{
		DSN:    cfg.DatabaseURL,
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		// Reads still work against a degraded store; writes report the cause.
		log.Printf("[warn] %v", err)
	}
	a.store = store

	tasks := repository.Tasks(store)
	a.tasks = service.NewTaskService(tasks, time.Now)
	a.plan = service.NewPlanSession(tasks, repository.History(store), time.Now)
	a.journal = service.NewJournalService(store)
	a.backups = backup.ForStore(store, time.Now)
	return nil
}

func (a *app) close() error {
	if a.store == nil {
		return nil
	}
	if err := a.store.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	return nil
}
