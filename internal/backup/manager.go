// Package backup exports every collection into one bundle and restores a
// bundle by replacing collection contents one collection at a time.
package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"backlog-planner/internal/repository"
)

// ErrPartialImport means at least one collection failed to restore. Other
// collections in the same bundle may already have been replaced.
var ErrPartialImport = errors.New("partial import")

// Collection is the untyped view of a stored collection.
type Collection interface {
	Name() string
	Dump(ctx context.Context) ([]byte, error)
	Restore(ctx context.Context, data []byte) (int, error)
}

// Manager snapshots and restores a fixed set of collections.
type Manager struct {
	collections []Collection
	now         func() time.Time
}

func New(now func() time.Time, collections ...Collection) *Manager {
	if now == nil {
		now = time.Now
	}
	return &Manager{collections: collections, now: now}
}

// ForStore manages every collection of store.
func ForStore(store *repository.Store, now func() time.Time) *Manager {
	snapshotters := store.Snapshotters()
	collections := make([]Collection, 0, len(snapshotters))
	for _, s := range snapshotters {
		collections = append(collections, s)
	}
	return New(now, collections...)
}

// ExportAll never fails: a collection that cannot be read is exported empty.
func (m *Manager) ExportAll(ctx context.Context) Bundle {
	b := Bundle{
		Version:     CurrentVersion,
		ExportedAt:  m.now().UTC(),
		Collections: make(map[string]json.RawMessage, len(m.collections)),
	}
	for _, c := range m.collections {
		data, err := c.Dump(ctx)
		if err != nil {
			log.Printf("[warn] export %s: %v", c.Name(), err)
			data = json.RawMessage("[]")
		}
		b.Collections[c.Name()] = data
	}
	return b
}

// Result is the outcome of restoring one collection.
type Result struct {
	Collection string
	Restored   int
	Err        error
}

// Report lists per-collection outcomes in restore order. Skipped holds
// bundle keys that match no known collection.
type Report struct {
	Results []Result
	Skipped []string
}

func (r Report) Failed() []Result {
	var failed []Result
	for _, res := range r.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

func (r Report) OK() bool {
	return len(r.Failed()) == 0
}

// ImportAll replaces every collection present in b, sequentially. The
// bundle is validated first; a malformed bundle touches nothing. Collections
// missing from b are left as they are. Failures do not stop later
// collections and are reported per collection, with ErrPartialImport.
func (m *Manager) ImportAll(ctx context.Context, b Bundle) (Report, error) {
	var report Report
	if err := b.Validate(); err != nil {
		return report, err
	}

	known := make(map[string]bool, len(m.collections))
	for _, c := range m.collections {
		known[c.Name()] = true
	}
	for _, name := range b.Names() {
		if !known[name] {
			report.Skipped = append(report.Skipped, name)
		}
	}

	for _, c := range m.collections {
		data, ok := b.Collections[c.Name()]
		if !ok {
			continue
		}
		n, err := c.Restore(ctx, data)
		if err != nil {
			log.Printf("[warn] import %s: %v", c.Name(), err)
		} else {
			log.Printf("[info] import %s: %d records", c.Name(), n)
		}
		report.Results = append(report.Results, Result{Collection: c.Name(), Restored: n, Err: err})
	}

	if failed := report.Failed(); len(failed) > 0 {
		names := make([]string, 0, len(failed))
		for _, f := range failed {
			names = append(names, f.Collection)
		}
		return report, fmt.Errorf("%w: %s", ErrPartialImport, strings.Join(names, ", "))
	}
	return report, nil
}
