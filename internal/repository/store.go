package repository

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"backlog-planner/internal/model"
)

var (
	// ErrStorageUnavailable is returned by every write when the medium failed to open.
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrDuplicateKey       = errors.New("duplicate key")
	ErrNotFound           = errors.New("record not found")
	// ErrMalformedRecord marks a record that cannot be stored verbatim, e.g. one without an id.
	ErrMalformedRecord = errors.New("malformed record")
)

// Options configures Open. Zero values fall back to defaults.
type Options struct {
	DSN    string
	Logger logger.Interface
	Now    func() time.Time
	NewID  func() string
}

// Store owns the persistent medium shared by all collections.
// A Store whose medium failed to open stays usable in degraded mode:
// reads return nothing and writes fail with ErrStorageUnavailable.
type Store struct {
	db      *gorm.DB
	initErr error
	now     func() time.Time
	newID   func() string
}

// Open opens a SQLite database and migrates every collection. On failure the
// returned Store is non-nil and degraded, so callers may log the error and go on.
func Open(opts Options) (*Store, error) {
	s := &Store{now: opts.Now, newID: opts.NewID}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = newUUID
	}

	db, err := openDB(opts)
	if err != nil {
		s.initErr = err
		return s, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	s.db = db
	return s, nil
}

// Unavailable returns a degraded Store, as if the medium failed with cause.
func Unavailable(cause error) *Store {
	if cause == nil {
		cause = errors.New("no medium configured")
	}
	return &Store{initErr: cause, now: time.Now, newID: newUUID}
}

// Available reports whether the medium opened successfully.
func (s *Store) Available() bool {
	return s.db != nil
}

// Err returns the initialization failure, if any.
func (s *Store) Err() error {
	return s.initErr
}

// Close releases the medium. Closing a degraded store is a no-op.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) conn() (*gorm.DB, error) {
	if s.db == nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, s.initErr)
	}
	return s.db, nil
}

func openDB(opts Options) (*gorm.DB, error) {
	dsn := opts.DSN
	if dsn == "" {
		dsn = "daily_planner.db"
	}

	if err := ensureDirForSQLite(dsn); err != nil {
		return nil, err
	}

	dbLogger := opts.Logger
	if dbLogger == nil {
		dbLogger = logger.New(
			log.New(os.Stdout, "", log.LstdFlags),
			logger.Config{
				SlowThreshold:             time.Second,
				LogLevel:                  logger.Warn,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		)
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         dbLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One connection keeps SQLite writers serialized and :memory: databases shared.
	sqlDB.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if err := db.Exec(pragma).Error; err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("exec %q: %w", pragma, err)
		}
	}

	if err := db.AutoMigrate(
		&model.Task{},
		&model.HistoryEntry{},
		&model.DesignCase{},
		&model.Term{},
		&model.EmotionLog{},
	); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate db: %w", err)
	}

	return db, nil
}

// ensureDirForSQLite creates parent dir for SQLite file if needed.
func ensureDirForSQLite(dsn string) error {
	// Ignore DSNs with explicit mode=memory or network.
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	// Strip file: prefix if present.
	clean := strings.TrimPrefix(dsn, "file:")
	clean = strings.Split(clean, "?")[0]
	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db dir %q: %w", dir, err)
	}
	return nil
}

// newUUID allocates time-ordered ids; v7 stays unique across calls in the same millisecond.
func newUUID() string {
	return uuid.Must(uuid.NewV7()).String()
}
