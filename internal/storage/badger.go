package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// Storage keys
const (
	keyStats      = "stats"
	keyGamePrefix = "game:"
)

// BadgerStore keeps saved games and stats in a local BadgerDB.
type BadgerStore struct {
	db *badger.DB
}

// OpenDefault opens the store in the platform data directory.
func OpenDefault() (*BadgerStore, error) {
	dbDir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}
	return OpenBadger(dbDir)
}

// OpenBadger opens (or creates) a store in dir.
func OpenBadger(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// Close closes the database
func (s *BadgerStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveGame stores g under its id, replacing any earlier save.
func (s *BadgerStore) SaveGame(_ context.Context, g SavedGame) error {
	data, err := json.Marshal(g)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyGamePrefix+g.ID), data)
	})
}

// LoadGame loads the game saved under id.
func (s *BadgerStore) LoadGame(_ context.Context, id string) (SavedGame, error) {
	var g SavedGame
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyGamePrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("game %s: %w", id, ErrNotFound)
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &g)
		})
	})
	return g, err
}

// DeleteGame removes a saved game. Deleting an unknown id is not an error.
func (s *BadgerStore) DeleteGame(_ context.Context, id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(keyGamePrefix + id))
	})
}

// RecordResult records a completed game and updates statistics
func (s *BadgerStore) RecordResult(_ context.Context, result GameResult) error {
	return s.db.Update(func(txn *badger.Txn) error {
		stats, err := loadStats(txn)
		if err != nil {
			return err
		}
		stats.Record(result)
		data, err := json.Marshal(stats)
		if err != nil {
			return err
		}
		return txn.Set([]byte(keyStats), data)
	})
}

// Stats loads game statistics, returns empty stats if not found
func (s *BadgerStore) Stats(_ context.Context) (*GameStats, error) {
	var stats *GameStats
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		stats, err = loadStats(txn)
		return err
	})
	return stats, err
}

func loadStats(txn *badger.Txn) (*GameStats, error) {
	stats := NewGameStats()
	item, err := txn.Get([]byte(keyStats))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return stats, nil // Use empty stats
	}
	if err != nil {
		return nil, err
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, stats)
	})
	return stats, err
}
