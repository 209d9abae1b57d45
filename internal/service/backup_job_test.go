package service

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"backlog-planner/internal/backup"
	"backlog-planner/internal/repository"
)

func TestBackupJobWritesAndPrunes(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	store := newTestStore(t, clock)
	if _, err := NewTaskService(repository.Tasks(store), clock.Now).CreateTask(ctx, QuickInput("water plants")); err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	job := NewBackupJob(store, backup.ForStore(store, clock.Now), dir, 2)

	var paths []string
	for i := 0; i < 3; i++ {
		path, err := job.Run(ctx)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		paths = append(paths, path)
		clock.Advance(24 * time.Hour)
	}

	if filepath.Base(paths[0]) != "growth_backup_2026-06-01.json" {
		t.Fatalf("path=%s", paths[0])
	}
	if _, err := os.Stat(paths[0]); !os.IsNotExist(err) {
		t.Fatalf("oldest backup should be pruned, stat err=%v", err)
	}
	for _, p := range paths[1:] {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("backup %s missing: %v", p, err)
		}
	}

	bundle, err := backup.ReadFile(paths[2])
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if _, ok := bundle.Collections["tasks"]; !ok {
		t.Fatalf("bundle has no tasks: %v", bundle.Names())
	}
}

func TestBackupJobAdaptsToScheduler(t *testing.T) {
	clock := newClock()
	store := newTestStore(t, clock)
	dir := t.TempDir()
	job := NewBackupJob(store, backup.ForStore(store, clock.Now), dir, 5).Job()

	if err := job(context.Background()); err != nil {
		t.Fatalf("job: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries=%d, want 1", len(entries))
	}
}

func TestBackupJobSkipsDegradedStore(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	store := newTestStore(t, clock)
	if _, err := NewTaskService(repository.Tasks(store), clock.Now).CreateTask(ctx, QuickInput("water plants")); err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	good, err := NewBackupJob(store, backup.ForStore(store, clock.Now), dir, 1).Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	degraded := repository.Unavailable(errors.New("disk gone"))
	path, err := NewBackupJob(degraded, backup.ForStore(degraded, clock.Now), dir, 1).Run(ctx)
	if !errors.Is(err, repository.ErrStorageUnavailable) {
		t.Fatalf("err=%v, want ErrStorageUnavailable", err)
	}
	if path != "" {
		t.Fatalf("path=%q, want none", path)
	}

	bundle, err := backup.ReadFile(good)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var tasks []map[string]any
	if err := json.Unmarshal(bundle.Collections["tasks"], &tasks); err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 1 {
		t.Fatalf("good backup now holds %d tasks, want 1", len(tasks))
	}
}
