package pebblestore

import (
	"encoding/json"

	"github.com/cockroachdb/pebble"
)

// BatchSetJSON marshals v and stages it under key in b.
func BatchSetJSON(b *pebble.Batch, key []byte, v any) error {
	buf, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return b.Set(key, buf, nil)
}

// DecodeJSON unmarshals raw (typically an iterator value) into v.
func DecodeJSON(raw []byte, v any) error {
	return json.Unmarshal(raw, v)
}
