// Tactica - Chess Puzzle Content API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tactica

package main

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/tactica/internal/config"
	"github.com/tomtom215/tactica/internal/database"
	"github.com/tomtom215/tactica/internal/logging"
)

// stores holds the two embedded databases every command opens.
type stores struct {
	db *database.DB
	kv *badger.DB
}

func openStores(cfg *config.Config) (*stores, error) {
	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open catalog database: %w", err)
	}

	kv, err := openKV(&cfg.KV)
	if err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error().Err(closeErr).Msg("Error closing database")
		}
		return nil, err
	}

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("kv_path", cfg.KV.Path).
		Bool("kv_in_memory", cfg.KV.InMemory).
		Msg("Stores opened")
	return &stores{db: db, kv: kv}, nil
}

func openKV(cfg *config.KVConfig) (*badger.DB, error) {
	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil

	kv, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger store: %w", err)
	}
	return kv, nil
}

func (s *stores) Close() error {
	return errors.Join(s.kv.Close(), s.db.Close())
}

func (s *stores) closeWithLog() {
	if err := s.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing stores")
	}
}
