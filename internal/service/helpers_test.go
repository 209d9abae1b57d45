package service

import (
	"path/filepath"
	"testing"
	"time"

	"gorm.io/gorm/logger"

	"backlog-planner/internal/repository"
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestStore(t *testing.T, clock *testClock) *repository.Store {
	t.Helper()
	store, err := repository.Open(repository.Options{
		DSN:    filepath.Join(t.TempDir(), "planner.db"),
		Logger: logger.Default.LogMode(logger.Silent),
		Now:    clock.Now,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newClock() *testClock {
	return &testClock{now: time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)}
}
