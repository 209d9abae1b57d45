package service

import (
	"context"
	"fmt"
	"log"

	"backlog-planner/internal/backup"
	"backlog-planner/internal/repository"
)

// BackupJob writes a dated backup file and keeps only the newest few.
type BackupJob struct {
	store   *repository.Store
	manager *backup.Manager
	dir     string
	keep    int
}

func NewBackupJob(store *repository.Store, manager *backup.Manager, dir string, keep int) *BackupJob {
	return &BackupJob{store: store, manager: manager, dir: dir, keep: keep}
}

// Run exports every collection to the backup directory and returns the file
// path. A degraded store would export empty collections over the day's file,
// so Run writes nothing and prunes nothing until storage is back.
func (j *BackupJob) Run(ctx context.Context) (string, error) {
	if !j.store.Available() {
		log.Printf("[warn] backup skipped, storage unavailable: %v", j.store.Err())
		return "", fmt.Errorf("skip backup: %w: %w", repository.ErrStorageUnavailable, j.store.Err())
	}

	bundle := j.manager.ExportAll(ctx)
	path, err := backup.WriteFile(j.dir, bundle)
	if err != nil {
		return "", err
	}
	log.Printf("[info] backup written path=%s", path)

	removed, err := backup.Prune(j.dir, j.keep)
	if err != nil {
		return path, err
	}
	for _, old := range removed {
		log.Printf("[info] backup pruned path=%s", old)
	}
	return path, nil
}

// Job adapts Run to the scheduler.
func (j *BackupJob) Job() Job {
	return func(ctx context.Context) error {
		_, err := j.Run(ctx)
		return err
	}
}
