package backup

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// legacyTimeKeys are the timestamp fields that unversioned bundles may hold
// as epoch milliseconds or as date-only strings.
var legacyTimeKeys = []string{"createdAt", "dueDate", "completedAt"}

// upgradeLegacy rewrites one collection of an unversioned bundle into the
// current record shape: numeric ids become strings, epoch milliseconds and
// YYYY-MM-DD dates become RFC 3339 timestamps. Anything that is not an array
// of objects is returned unchanged for Validate to reject.
func upgradeLegacy(records json.RawMessage) (json.RawMessage, error) {
	var entries []map[string]json.RawMessage
	if !bytes.HasPrefix(bytes.TrimSpace(records), []byte("[")) || json.Unmarshal(records, &entries) != nil {
		return records, nil
	}

	changed := false
	for i, entry := range entries {
		if entry == nil {
			continue
		}
		if id, ok := legacyID(entry["id"]); ok {
			entry["id"] = id
			changed = true
		}
		for _, key := range legacyTimeKeys {
			value, ok := entry[key]
			if !ok {
				continue
			}
			ts, ok, err := legacyTime(value)
			if err != nil {
				return nil, fmt.Errorf("entry %d %s: %w", i, key, err)
			}
			if ok {
				entry[key] = ts
				changed = true
			}
		}
	}
	if !changed {
		return records, nil
	}
	return json.Marshal(entries)
}

// legacyID turns a numeric id such as Date.now() output into its string form.
func legacyID(raw json.RawMessage) (json.RawMessage, bool) {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil || !isNumber(raw) {
		return nil, false
	}
	id, err := json.Marshal(n.String())
	if err != nil {
		return nil, false
	}
	return id, true
}

// legacyTime reports ok=false when raw is already usable as a timestamp.
func legacyTime(raw json.RawMessage) (json.RawMessage, bool, error) {
	if isNumber(raw) {
		var ms float64
		if err := json.Unmarshal(raw, &ms); err != nil {
			return nil, false, err
		}
		ts, err := json.Marshal(time.UnixMilli(int64(ms)).UTC())
		return ts, err == nil, err
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, false, nil
	}
	day, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, false, nil
	}
	ts, err := json.Marshal(day.UTC())
	return ts, err == nil, err
}

func isNumber(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return false
	}
	c := raw[0]
	return c == '-' || (c >= '0' && c <= '9')
}
