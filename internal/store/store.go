// Mediagram - Plex to Chat Notification Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediagram

// Package store provides the shared BadgerDB-backed key-value store with
// TTL expiry. It holds the two logical namespaces of the service: cached
// thumbnail blobs and notification suppression markers.
//
// The store offers get/set/exists/setex semantics with binary-safe values.
// A miss is a valid state, never an error; callers treat store failures as
// best-effort degradations, so no method here panics or retries.
package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/mediagram/internal/config"
	"github.com/tomtom215/mediagram/internal/logging"
)

// Store wraps a Badger database with TTL-aware key-value semantics.
type Store struct {
	db *badger.DB
}

// Open creates (or opens) the store at the configured path. With
// cfg.InMemory set, Badger runs without disk persistence, which is the mode
// used by tests and small deployments.
func Open(cfg *config.StoreConfig) (*Store, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(cfg.Path)
	}

	// Reduce logging verbosity; Badger's own logger is noisy at startup.
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Msg("Key-value store opened")

	return &Store{db: db}, nil
}

// Get returns the value for key. A missing or expired key yields
// (nil, false, nil); errors are reserved for store failures.
func (s *Store) Get(key string) ([]byte, bool, error) {
	var val []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	return val, true, nil
}

// SetTTL stores value under key with the given lifetime. Writes are
// idempotent: last writer wins and an overwrite refreshes the TTL.
func (s *Store) SetTTL(key string, value []byte, ttl time.Duration) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), value)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Exists reports whether key holds an unexpired value.
func (s *Store) Exists(key string) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(key))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("exists %s: %w", key, err)
	}
	return true, nil
}

// Ping verifies the database still accepts transactions. Used by the
// health endpoint.
func (s *Store) Ping() error {
	if s.db.IsClosed() {
		return errors.New("store is closed")
	}
	return s.db.View(func(*badger.Txn) error { return nil })
}

// Close flushes and closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
