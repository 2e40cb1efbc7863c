// Tactica - Chess Puzzle Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tactica

package daily

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

// PointerKey is the KV key holding the current daily puzzle id.
const PointerKey = "puzzle_of_the_day_id"

// ErrPointerNotSet is returned when no daily puzzle has been selected yet.
var ErrPointerNotSet = errors.New("daily puzzle pointer not set")

// PointerStore holds the single daily puzzle id. Set overwrites; there is
// no history.
type PointerStore interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, puzzleID string) error
}

// BadgerPointerStore keeps the pointer in BadgerDB.
type BadgerPointerStore struct {
	db *badger.DB
}

// NewBadgerPointerStore wraps an open BadgerDB.
func NewBadgerPointerStore(db *badger.DB) *BadgerPointerStore {
	return &BadgerPointerStore{db: db}
}

// Get returns the stored id or ErrPointerNotSet.
func (s *BadgerPointerStore) Get(_ context.Context) (string, error) {
	var id string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(PointerKey))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			id = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", ErrPointerNotSet
	}
	if err != nil {
		return "", fmt.Errorf("read daily pointer: %w", err)
	}
	if id == "" {
		return "", ErrPointerNotSet
	}
	return id, nil
}

// Set overwrites the stored id.
func (s *BadgerPointerStore) Set(_ context.Context, puzzleID string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(PointerKey), []byte(puzzleID))
	})
	if err != nil {
		return fmt.Errorf("write daily pointer: %w", err)
	}
	return nil
}

// MemoryPointerStore is a PointerStore for tests and single-shot CLI use.
type MemoryPointerStore struct {
	mu sync.RWMutex
	id string
}

// NewMemoryPointerStore returns an empty store.
func NewMemoryPointerStore() *MemoryPointerStore {
	return &MemoryPointerStore{}
}

func (s *MemoryPointerStore) Get(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.id == "" {
		return "", ErrPointerNotSet
	}
	return s.id, nil
}

func (s *MemoryPointerStore) Set(_ context.Context, puzzleID string) error {
	s.mu.Lock()
	s.id = puzzleID
	s.mu.Unlock()
	return nil
}
