// Tactica - Chess Puzzle Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tactica

package puzzleimport

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// progressKeyPrefix namespaces import progress in the shared KV store.
const progressKeyPrefix = "import:progress:"

func progressKey(p Pipeline) []byte {
	return []byte(progressKeyPrefix + string(p))
}

// ProgressTracker stores the latest stats of each pipeline.
type ProgressTracker interface {
	// Save persists stats under stats.Pipeline.
	Save(ctx context.Context, stats *ImportStats) error

	// Load returns the last saved stats for p, or nil, nil if none.
	Load(ctx context.Context, p Pipeline) (*ImportStats, error)

	// Clear removes saved stats for every pipeline.
	Clear(ctx context.Context) error
}

// BadgerProgress keeps progress in BadgerDB so the last run of each
// pipeline survives restarts.
type BadgerProgress struct {
	db *badger.DB
}

// NewBadgerProgress creates a tracker over an open BadgerDB.
func NewBadgerProgress(db *badger.DB) *BadgerProgress {
	return &BadgerProgress{db: db}
}

// Save writes stats as JSON.
func (p *BadgerProgress) Save(_ context.Context, stats *ImportStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}
	return p.db.Update(func(txn *badger.Txn) error {
		return txn.Set(progressKey(stats.Pipeline), data)
	})
}

// Load reads the saved stats for a pipeline.
func (p *BadgerProgress) Load(_ context.Context, pipeline Pipeline) (*ImportStats, error) {
	var stats *ImportStats
	err := p.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(progressKey(pipeline))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			stats = &ImportStats{}
			return json.Unmarshal(val, stats)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	return stats, nil
}

// Clear drops every saved pipeline entry.
func (p *BadgerProgress) Clear(_ context.Context) error {
	return p.db.DropPrefix([]byte(progressKeyPrefix))
}

// InMemoryProgress is a ProgressTracker for tests and dry runs.
type InMemoryProgress struct {
	mu    sync.Mutex
	stats map[Pipeline]ImportStats
	saves int
}

// NewInMemoryProgress creates an empty tracker.
func NewInMemoryProgress() *InMemoryProgress {
	return &InMemoryProgress{stats: make(map[Pipeline]ImportStats)}
}

// Save stores a copy of stats.
func (p *InMemoryProgress) Save(_ context.Context, stats *ImportStats) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stats[stats.Pipeline] = *stats
	p.saves++
	return nil
}

// Load returns a copy of the stored stats.
func (p *InMemoryProgress) Load(_ context.Context, pipeline Pipeline) (*ImportStats, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.stats[pipeline]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

// Clear removes all stored stats.
func (p *InMemoryProgress) Clear(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stats = make(map[Pipeline]ImportStats)
	return nil
}

// Saves reports how many times Save was called.
func (p *InMemoryProgress) Saves() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.saves
}
