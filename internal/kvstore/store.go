// Package kvstore is a demo key-value service backed by a pluggable storage
// driver: in-memory, or persisted with badger.
package kvstore

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned by a Store when a key has no value.
var ErrNotFound = errors.New("key not found")

// Store is a storage driver for JSON values.
type Store interface {
	// Get returns the value of key, or ErrNotFound.
	Get(key string) (json.RawMessage, error)
	// Set stores value under key, replacing any previous value.
	Set(key string, value json.RawMessage) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
	Close() error
}

// Open returns the Store for the named driver. The "persist" and "badger"
// drivers keep their data in dir.
func Open(driver string, dir string) (Store, error) {
	switch driver {
	case "memory":
		return MemoryStore(), nil
	case "persist", "badger":
		s, err := OpenBadger(dir)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("storage driver not implemented: %s", driver)
}
