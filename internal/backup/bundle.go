package backup

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"
)

// CurrentVersion is the bundle format written by ExportAll. Bundles without
// a version field predate versioning: they are read as version 1 after
// upgradeLegacy rewrites their numeric ids and timestamps.
const CurrentVersion = 1

const (
	versionKey    = "version"
	exportedAtKey = "exportedAt"
)

var (
	ErrMalformedBundle    = errors.New("malformed backup bundle")
	ErrIncompatibleBundle = errors.New("incompatible backup bundle")
)

// Bundle is a snapshot of every collection. Collections maps a collection
// name to the JSON array of its records.
type Bundle struct {
	Version     int
	ExportedAt  time.Time
	Collections map[string]json.RawMessage
}

// Names returns the collection names present in b, sorted.
func (b Bundle) Names() []string {
	names := make([]string, 0, len(b.Collections))
	for name := range b.Collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MarshalJSON writes one flat object: version, exportedAt and one array per collection.
func (b Bundle) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(b.Collections)+2)
	for name, records := range b.Collections {
		if len(bytes.TrimSpace(records)) == 0 {
			records = json.RawMessage("[]")
		}
		out[name] = records
	}
	version, err := json.Marshal(b.Version)
	if err != nil {
		return nil, err
	}
	out[versionKey] = version
	if !b.ExportedAt.IsZero() {
		exportedAt, err := json.Marshal(b.ExportedAt)
		if err != nil {
			return nil, err
		}
		out[exportedAtKey] = exportedAt
	}
	return json.Marshal(out)
}

func (b *Bundle) UnmarshalJSON(data []byte) error {
	decoded, err := Decode(data)
	if err != nil {
		return err
	}
	*b = decoded
	return nil
}

// Decode parses and validates a backup file.
func Decode(data []byte) (Bundle, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Bundle{}, fmt.Errorf("%w: %w", ErrMalformedBundle, err)
	}
	if raw == nil {
		return Bundle{}, fmt.Errorf("%w: not an object", ErrMalformedBundle)
	}

	b := Bundle{Version: 1, Collections: make(map[string]json.RawMessage, len(raw))}
	v, versioned := raw[versionKey]
	if versioned {
		if err := json.Unmarshal(v, &b.Version); err != nil {
			return Bundle{}, fmt.Errorf("%w: version: %w", ErrMalformedBundle, err)
		}
		delete(raw, versionKey)
	}
	if v, ok := raw[exportedAtKey]; ok {
		if err := json.Unmarshal(v, &b.ExportedAt); err != nil {
			return Bundle{}, fmt.Errorf("%w: exportedAt: %w", ErrMalformedBundle, err)
		}
		delete(raw, exportedAtKey)
	}
	for name, records := range raw {
		if !versioned {
			upgraded, err := upgradeLegacy(records)
			if err != nil {
				return Bundle{}, fmt.Errorf("%w: collection %q: %w", ErrMalformedBundle, name, err)
			}
			records = upgraded
		}
		b.Collections[name] = records
	}

	if err := b.Validate(); err != nil {
		return Bundle{}, err
	}
	return b, nil
}

// Validate checks the version and that every collection is an array of
// objects carrying a non-empty string id.
func (b Bundle) Validate() error {
	if b.Version < 1 {
		return fmt.Errorf("%w: version %d", ErrMalformedBundle, b.Version)
	}
	if b.Version > CurrentVersion {
		return fmt.Errorf("%w: version %d is newer than %d", ErrIncompatibleBundle, b.Version, CurrentVersion)
	}
	for _, name := range b.Names() {
		raw := bytes.TrimSpace(b.Collections[name])
		if !bytes.HasPrefix(raw, []byte("[")) {
			return fmt.Errorf("%w: collection %q is not an array", ErrMalformedBundle, name)
		}
		var entries []map[string]json.RawMessage
		if err := json.Unmarshal(raw, &entries); err != nil {
			return fmt.Errorf("%w: collection %q: %w", ErrMalformedBundle, name, err)
		}
		for i, entry := range entries {
			var id string
			if err := json.Unmarshal(entry["id"], &id); err != nil || id == "" {
				return fmt.Errorf("%w: collection %q entry %d has no id", ErrMalformedBundle, name, i)
			}
		}
	}
	return nil
}
