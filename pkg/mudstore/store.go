// Package mudstore persists player characters in a bbolt database:
// one gob-encoded record per player, keyed by lower-cased name, with
// bcrypt password hashes stored inside the record.
package mudstore

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	bbolt "go.etcd.io/bbolt"
)

// ErrNoPlayer is returned when a player name has no saved record.
var ErrNoPlayer = errors.New("mudstore: no such player")

// Bucket name constants for bbolt storage.
var (
	bucketMeta    = []byte("meta")
	bucketPlayers = []byte("players")
)

var keySchema = []byte("schema")

// schemaVersion is bumped whenever PlayerRecord changes incompatibly.
const schemaVersion = 1

// Store wraps a bbolt database of player records.
type Store struct {
	bolt *bbolt.DB
}

// Open opens or creates a bbolt database file and ensures all buckets
// exist. A database written by a newer schema is refused.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("mudstore: open %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketMeta, bucketPlayers} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		meta := tx.Bucket(bucketMeta)
		if v := meta.Get(keySchema); v != nil {
			if got := int(v[0]); got > schemaVersion {
				return fmt.Errorf("mudstore: database schema %d newer than supported %d", got, schemaVersion)
			}
		}
		return meta.Put(keySchema, []byte{schemaVersion})
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{bolt: db}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	if s.bolt != nil {
		return s.bolt.Close()
	}
	return nil
}

// Path returns the filesystem path of the underlying bbolt database.
func (s *Store) Path() string {
	if s.bolt != nil {
		return s.bolt.Path()
	}
	return ""
}

func playerKey(name string) []byte {
	return []byte(strings.ToLower(name))
}

// PutPlayer persists a single player record (write-through).
func (s *Store) PutPlayer(rec *PlayerRecord) error {
	data, err := encodeRecord(rec)
	if err != nil {
		return fmt.Errorf("mudstore: encode player %q: %w", rec.Name, err)
	}
	return s.bolt.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketPlayers).Put(playerKey(rec.Name), data)
	})
}

// GetPlayer loads one player record by name, case-insensitively.
func (s *Store) GetPlayer(name string) (*PlayerRecord, error) {
	var rec *PlayerRecord
	err := s.bolt.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketPlayers).Get(playerKey(name))
		if data == nil {
			return fmt.Errorf("mudstore: player %q: %w", name, ErrNoPlayer)
		}
		var err error
		rec, err = decodeRecord(data)
		if err != nil {
			return fmt.Errorf("mudstore: decode player %q: %w", name, err)
		}
		return nil
	})
	return rec, err
}

// DeletePlayer removes one player record.
func (s *Store) DeletePlayer(name string) error {
	return s.bolt.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketPlayers).Delete(playerKey(name))
	})
}

// PlayerNames returns every saved player's name in key order.
func (s *Store) PlayerNames() ([]string, error) {
	var names []string
	err := s.bolt.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketPlayers).ForEach(func(k, v []byte) error {
			rec, err := decodeRecord(v)
			if err != nil {
				return fmt.Errorf("mudstore: decode player %q: %w", string(k), err)
			}
			names = append(names, rec.Name)
			return nil
		})
	})
	return names, err
}

// PutPlayers persists multiple records in a single transaction.
func (s *Store) PutPlayers(recs ...*PlayerRecord) error {
	return s.bolt.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketPlayers)
		for _, rec := range recs {
			if rec == nil {
				continue
			}
			data, err := encodeRecord(rec)
			if err != nil {
				return fmt.Errorf("mudstore: encode player %q: %w", rec.Name, err)
			}
			if err := b.Put(playerKey(rec.Name), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// HasData returns true if any player records are stored.
func (s *Store) HasData() bool {
	hasData := false
	s.bolt.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketPlayers).Stats().KeyN > 0 {
			hasData = true
		}
		return nil
	})
	return hasData
}

// Backup creates a hot snapshot of the database using tx.WriteTo().
func (s *Store) Backup(path string) error {
	return s.bolt.View(func(tx *bbolt.Tx) error {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("mudstore: create backup %s: %w", path, err)
		}
		defer f.Close()
		if _, err := tx.WriteTo(f); err != nil {
			return fmt.Errorf("mudstore: write backup: %w", err)
		}
		log.Printf("mudstore: backup written to %s", path)
		return nil
	})
}
