package kvstore

import (
	"encoding/json"

	"github.com/dgraph-io/badger"
)

var keyPrefix = []byte("kv:")

func badgerKey(key string) []byte {
	return append(append([]byte{}, keyPrefix...), key...)
}

// OpenBadger returns a Store using Badger as the storage driver, with its
// data in dir. The store should be .Close()'d after use.
func OpenBadger(dir string) (*badgerStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(badgerLogger{})
	return openBadger(opts)
}

func openBadger(opts badger.Options) (*badgerStore, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &badgerStore{db: db}, nil
}

var _ Store = &badgerStore{}

type badgerStore struct {
	db *badger.DB
}

func (s *badgerStore) Get(key string) (json.RawMessage, error) {
	var value json.RawMessage
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(key))
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		} else if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			value = append(json.RawMessage{}, val...)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *badgerStore) Set(key string, value json.RawMessage) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerKey(key), value)
	})
}

func (s *badgerStore) Delete(key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(badgerKey(key))
	})
}

func (s *badgerStore) Close() error {
	return s.db.Close()
}

// badgerLogger routes badger's own logging to this package's logger.
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...interface{}) {
	logger.Printf("badger error: "+format, args...)
}

func (badgerLogger) Warningf(format string, args ...interface{}) {
	logger.Printf("badger warning: "+format, args...)
}

func (badgerLogger) Infof(format string, args ...interface{}) {
	logger.Printf("badger: "+format, args...)
}

func (badgerLogger) Debugf(format string, args ...interface{}) {}
