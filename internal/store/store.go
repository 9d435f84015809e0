// Package store keeps a local dump of extracted movements, keyed by source
// document, for debugging and backup. It is not on the extraction path.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	bolt "go.etcd.io/bbolt"

	"github.com/davidmtz-dev/bancos-reader/internal/models"
)

var movementsBucket = []byte("movements")

// Store is a bbolt-backed movement dump.
type Store struct {
	db *bolt.DB
}

// Open creates or opens the store at the given path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(movementsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &Store{db: db}, nil
}

// Save stores the movements extracted from one source document,
// replacing any previous dump for the same source.
func (s *Store) Save(source string, movements []models.Movement) error {
	data, err := json.Marshal(movements)
	if err != nil {
		return fmt.Errorf("failed to encode movements for %s: %w", source, err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(movementsBucket).Put([]byte(source), data)
	})
}

// Load returns the stored movements for a source document, or nil when the
// source has no dump.
func (s *Store) Load(source string) ([]models.Movement, error) {
	var movements []models.Movement
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(movementsBucket).Get([]byte(source))
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &movements)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load movements for %s: %w", source, err)
	}
	return movements, nil
}

// Clear removes the dump for a source document. Clearing an unknown source
// is a no-op.
func (s *Store) Clear(source string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(movementsBucket).Delete([]byte(source))
	})
}

// List returns the source documents that have a dump.
func (s *Store) List() ([]string, error) {
	var sources []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(movementsBucket).ForEach(func(k, _ []byte) error {
			sources = append(sources, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return sources, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
