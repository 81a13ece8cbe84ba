package storage

import (
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

const (
	bucketDispatches    = "dispatches"
	bucketDispatchIndex = "dispatch_index"
)

// ErrNotFound is returned when a journal entry does not exist.
var ErrNotFound = errors.New("journal entry not found")

// Journal wraps a bbolt database recording dispatches made from this client
type Journal struct {
	db  *bbolt.DB
	now func() time.Time
}

// Open opens a bbolt database at the given path and initializes required buckets
func Open(path string) (*Journal, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening journal %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{bucketDispatches, bucketDispatchIndex} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing journal buckets: %w", err)
	}

	return &Journal{db: db, now: time.Now}, nil
}

// Close closes the bbolt database
func (j *Journal) Close() error {
	return j.db.Close()
}
