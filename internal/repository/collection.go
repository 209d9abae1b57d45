package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"backlog-planner/internal/model"
)

// Patch merges a partial update onto a stored record.
type Patch[T any] interface {
	Apply(*T)
}

// Snapshotter is the untyped view of a collection used by backups.
type Snapshotter interface {
	Name() string
	Dump(ctx context.Context) ([]byte, error)
	Restore(ctx context.Context, data []byte) (int, error)
}

// Collection is a keyed set of homogeneous records backed by one table.
type Collection[T any, PT interface {
	*T
	model.Record
}] struct {
	store *Store
	name  string
}

type (
	TaskCollection       = Collection[model.Task, *model.Task]
	HistoryCollection    = Collection[model.HistoryEntry, *model.HistoryEntry]
	DesignCaseCollection = Collection[model.DesignCase, *model.DesignCase]
	TermCollection       = Collection[model.Term, *model.Term]
	EmotionLogCollection = Collection[model.EmotionLog, *model.EmotionLog]
)

func NewCollection[T any, PT interface {
	*T
	model.Record
}](s *Store) *Collection[T, PT] {
	var zero T
	return &Collection[T, PT]{store: s, name: PT(&zero).TableName()}
}

func Tasks(s *Store) *TaskCollection {
	return NewCollection[model.Task, *model.Task](s)
}

func History(s *Store) *HistoryCollection {
	return NewCollection[model.HistoryEntry, *model.HistoryEntry](s)
}

func DesignCases(s *Store) *DesignCaseCollection {
	return NewCollection[model.DesignCase, *model.DesignCase](s)
}

func Terms(s *Store) *TermCollection {
	return NewCollection[model.Term, *model.Term](s)
}

func EmotionLogs(s *Store) *EmotionLogCollection {
	return NewCollection[model.EmotionLog, *model.EmotionLog](s)
}

// Snapshotters returns every collection of s in export order.
func (s *Store) Snapshotters() []Snapshotter {
	return []Snapshotter{Tasks(s), History(s), DesignCases(s), Terms(s), EmotionLogs(s)}
}

func (c *Collection[T, PT]) Name() string {
	return c.name
}

// ListAll returns every record, oldest first. A degraded store yields an
// empty slice and no error.
func (c *Collection[T, PT]) ListAll(ctx context.Context) ([]T, error) {
	records := make([]T, 0)
	db, err := c.store.conn()
	if err != nil {
		return records, nil
	}
	if err := db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", c.name, err)
	}
	return records, nil
}

func (c *Collection[T, PT]) Get(ctx context.Context, id string) (T, error) {
	var record T
	db, err := c.store.conn()
	if err != nil {
		return record, err
	}
	if err := db.WithContext(ctx).Where("id = ?", id).First(PT(&record)).Error; err != nil {
		return record, c.wrap("get", err)
	}
	return record, nil
}

// Insert stores record, assigning an id and creation time when missing.
func (c *Collection[T, PT]) Insert(ctx context.Context, record T) (T, error) {
	var zero T
	db, err := c.store.conn()
	if err != nil {
		return zero, err
	}

	meta := PT(&record).Meta()
	if meta.ID == "" {
		meta.ID = c.store.newID()
	}
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = c.store.now()
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(PT(new(T))).Where("id = ?", meta.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateKey
		}
		return tx.Create(PT(&record)).Error
	})
	if err != nil {
		return zero, c.wrap("insert", err)
	}
	return record, nil
}

// Update merges patch onto the record with the given id. It never creates a
// record: a missing id yields ErrNotFound.
func (c *Collection[T, PT]) Update(ctx context.Context, id string, patch Patch[T]) (T, error) {
	var record T
	db, err := c.store.conn()
	if err != nil {
		return record, err
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(PT(&record)).Error; err != nil {
			return err
		}
		meta := *PT(&record).Meta()
		patch.Apply(&record)
		*PT(&record).Meta() = meta
		return tx.Save(PT(&record)).Error
	})
	if err != nil {
		var zero T
		return zero, c.wrap("update", err)
	}
	return record, nil
}

// Remove deletes the record with the given id and reports whether one existed.
// Removing a missing id is not an error.
func (c *Collection[T, PT]) Remove(ctx context.Context, id string) (bool, error) {
	db, err := c.store.conn()
	if err != nil {
		return false, err
	}
	res := db.WithContext(ctx).Where("id = ?", id).Delete(PT(new(T)))
	if res.Error != nil {
		return false, c.wrap("remove", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// ReplaceAll clears the collection and stores records verbatim, ids included,
// in one transaction. On error the previous contents are kept.
func (c *Collection[T, PT]) ReplaceAll(ctx context.Context, records []T) error {
	db, err := c.store.conn()
	if err != nil {
		return err
	}

	batch := make([]T, len(records))
	copy(batch, records)
	seen := make(map[string]struct{}, len(batch))
	for i := range batch {
		id := PT(&batch[i]).Meta().ID
		if id == "" {
			return c.wrap("replace", fmt.Errorf("%w: record %d has no id", ErrMalformedRecord, i))
		}
		if _, dup := seen[id]; dup {
			return c.wrap("replace", fmt.Errorf("%w: %s", ErrDuplicateKey, id))
		}
		seen[id] = struct{}{}
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(PT(new(T))).Error; err != nil {
			return fmt.Errorf("clear: %w", err)
		}
		if len(batch) == 0 {
			return nil
		}
		return tx.CreateInBatches(batch, 100).Error
	})
	if err != nil {
		return c.wrap("replace", err)
	}
	return nil
}

// Dump encodes every record as a JSON array.
func (c *Collection[T, PT]) Dump(ctx context.Context) ([]byte, error) {
	records, err := c.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", c.name, err)
	}
	return data, nil
}

// Restore decodes a JSON array produced by Dump and replaces the collection with it.
func (c *Collection[T, PT]) Restore(ctx context.Context, data []byte) (int, error) {
	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return 0, c.wrap("restore", fmt.Errorf("%w: %w", ErrMalformedRecord, err))
	}
	if err := c.ReplaceAll(ctx, records); err != nil {
		return 0, err
	}
	return len(records), nil
}

func (c *Collection[T, PT]) wrap(op string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		err = ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey) && !errors.Is(err, ErrDuplicateKey):
		err = fmt.Errorf("%w: %w", ErrDuplicateKey, err)
	}
	return fmt.Errorf("%s %s: %w", op, c.name, err)
}
