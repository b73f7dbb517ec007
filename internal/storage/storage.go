// internal/storage/storage.go

// Package storage is the durable key-value store behind roadmap, canvas and
// funding records. Values are opaque JSON strings.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when the key is absent or expired.
var ErrNotFound = errors.New("NOT_FOUND")

// KVStore is a string key-value store.
type KVStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// GetJSON reads key and decodes it into v.
func GetJSON(ctx context.Context, s KVStore, key string, v interface{}) error {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// SetJSON encodes v and writes it under key, replacing any prior value.
func SetJSON(ctx context.Context, s KVStore, key string, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, string(b))
}
