package transaction

import (
	"encoding/json"
	"fmt"
)

// DecodePending parses a stored pending list. A corrupt blob yields an empty
// list so that a single bad write never blocks new appends.
func DecodePending(raw []byte) []*Record {
	if len(raw) == 0 {
		return []*Record{}
	}
	var records []*Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return []*Record{}
	}
	out := records[:0]
	for _, r := range records {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

// EncodePending serializes the pending list.
func EncodePending(records []*Record) ([]byte, error) {
	if records == nil {
		records = []*Record{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("failed to encode pending list: %w", err)
	}
	return data, nil
}

// RemoveByID returns records without the entry whose id matches, and the removed entry.
func RemoveByID(records []*Record, id string) ([]*Record, *Record) {
	for i, r := range records {
		if r.ID == id {
			rest := make([]*Record, 0, len(records)-1)
			rest = append(rest, records[:i]...)
			rest = append(rest, records[i+1:]...)
			return rest, r
		}
	}
	return records, nil
}

// ContainsID reports whether a record with id is present.
func ContainsID(records []*Record, id string) bool {
	for _, r := range records {
		if r.ID == id {
			return true
		}
	}
	return false
}
