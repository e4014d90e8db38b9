package kvstore

import (
	"encoding/json"
	"errors"

	"github.com/vipnode/jsonrpc/jsonrpc2"
)

// ErrCodeNotFound is the application error code for a missing key.
const ErrCodeNotFound = -32004

// Service exposes a Store over JSONRPC. Registered with the "kv_" prefix it
// serves kv_get, kv_set and kv_delete.
type Service struct {
	Store Store
}

func checkKey(key string) error {
	if key == "" {
		return jsonrpc2.ErrInvalidParams("key must not be empty")
	}
	return nil
}

// Get returns the stored value of key.
func (s *Service) Get(key string) (json.RawMessage, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	value, err := s.Store.Get(key)
	if errors.Is(err, ErrNotFound) {
		return nil, jsonrpc2.NewError(ErrCodeNotFound, "key not found", key)
	} else if err != nil {
		return nil, err
	}
	return value, nil
}

// Set stores any JSON value under key.
func (s *Service) Set(key string, value json.RawMessage) error {
	if err := checkKey(key); err != nil {
		return err
	}
	logger.Printf("kv_set %q (%d bytes)", key, len(value))
	return s.Store.Set(key, value)
}

// Delete removes key.
func (s *Service) Delete(key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	logger.Printf("kv_delete %q", key)
	return s.Store.Delete(key)
}

// Register adds the kv_ methods for version 2.0.
func Register(srv *jsonrpc2.Server, store Store) error {
	return srv.Register("kv_", &Service{Store: store})
}
