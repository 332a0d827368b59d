// Copyright 2021 Optakt Labs OÜ
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

// Package store persists generated pattern trees to disk, keyed by a
// content hash of the parameters that produced them, so that trees built
// from equal parameters are stored under the same key. The store does not
// decide whether to build: the generator binary always builds and then saves.
// A badger database holds the compressed, encoded trees; a ristretto cache
// keeps recently used, already-decoded trees in memory.
package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v2"
	"github.com/dgraph-io/ristretto"
	"github.com/fxamacker/cbor/v2"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/OneOfOne/xxhash"
	"github.com/patterntrack/roadfinder/codec"
	"github.com/patterntrack/roadfinder/pattern"
	"github.com/patterntrack/roadfinder/tree"
)

// flushInterval is how often the store commits its current transaction even
// absent an explicit Close, bounding how much work a crash could lose.
const flushInterval = time.Second

// record is the on-disk representation of one stored tree: its generation
// parameters (needed to size the deserializer's fields), the number of
// distinct patterns it contains, and the serialized body. The codec
// compresses the encoded record as a whole.
type record struct {
	Params pattern.Params `cbor:"params"`
	Count  int            `cbor:"count"`
	Blob   []byte         `cbor:"blob"`
}

// Store is a badger-backed, ristretto-cached persistence layer for
// generated pattern trees.
type Store struct {
	log zerolog.Logger

	db    *badger.DB
	tx    *badger.Txn
	mutex *sync.RWMutex
	sema  *semaphore.Weighted
	wg    *sync.WaitGroup
	errs  chan error
	done  chan struct{}

	cache *ristretto.Cache
	codec *codec.Codec
}

// NewStore opens (or creates) the badger database at the configured storage
// path and an in-memory decode cache for it.
func NewStore(log zerolog.Logger, opts ...Option) (*Store, error) {
	logger := log.With().Str("component", "tree_store").Logger()

	config := DefaultConfig
	for _, opt := range opts {
		opt(&config)
	}

	badgerOpts := badger.DefaultOptions(config.StoragePath)
	badgerOpts.Logger = nil
	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("could not open tree database: %w", err)
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: config.CacheCounters * 10,
		MaxCost:     config.CacheCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create decode cache: %w", err)
	}

	cdc, err := codec.New()
	if err != nil {
		return nil, fmt.Errorf("could not create codec: %w", err)
	}

	s := Store{
		log:   logger,
		db:    db,
		tx:    db.NewTransaction(true),
		mutex: &sync.RWMutex{},
		sema:  semaphore.NewWeighted(16),
		wg:    &sync.WaitGroup{},
		errs:  make(chan error, 16),
		done:  make(chan struct{}),
		cache: cache,
		codec: cdc,
	}

	s.wg.Add(1)
	go s.flush()

	return &s, nil
}

// Close commits any pending writes and shuts the store down.
func (s *Store) Close() error {
	close(s.done)
	s.wg.Wait()

	s.mutex.Lock()
	err := s.tx.Commit()
	s.mutex.Unlock()
	if err != nil {
		return fmt.Errorf("could not commit final transaction: %w", err)
	}

	_ = s.sema.Acquire(context.Background(), 16)
	s.db.Close()
	s.cache.Close()
	close(s.errs)

	var merr *multierror.Error
	for err := range s.errs {
		merr = multierror.Append(merr, err)
	}
	return merr.ErrorOrNil()
}

// Key returns the content-addressed key a tree built from params would be
// stored under.
func Key(params pattern.Params) (string, error) {
	data, err := cbor.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("could not encode parameters: %w", err)
	}
	sum := xxhash.Checksum64(data)
	return fmt.Sprintf("%016x", sum), nil
}

// SaveTree compresses and persists t, keyed by a hash of its parameters, and
// primes the in-memory cache with the decoded value so a subsequent LoadTree
// in the same process avoids round-tripping through badger.
func (s *Store) SaveTree(t *tree.PatternTree) (string, error) {
	key, err := Key(t.Params())
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if _, err := tree.Serialize(t, &buf); err != nil {
		return "", fmt.Errorf("could not serialize tree: %w", err)
	}

	rec := record{Params: t.Params(), Count: t.PatternCount(), Blob: buf.Bytes()}
	data, err := s.codec.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("could not encode record: %w", err)
	}

	if err := s.write(key, data); err != nil {
		return "", err
	}

	s.cache.Set(key, t, int64(len(data)))
	return key, nil
}

// LoadTree retrieves the tree stored under key, from the decode cache if
// present, otherwise from badger.
func (s *Store) LoadTree(key string) (*tree.PatternTree, error) {
	if v, ok := s.cache.Get(key); ok {
		return v.(*tree.PatternTree), nil
	}

	data, err := s.read(key)
	if err != nil {
		return nil, err
	}

	var rec record
	if err := s.codec.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("could not decode record: %w", err)
	}

	root, _, err := tree.Deserialize(bytes.NewReader(rec.Blob), rec.Params.NPlanes(), rec.Params.Width, rec.Count)
	if err != nil {
		return nil, fmt.Errorf("could not deserialize tree: %w", err)
	}

	t := tree.New(root, rec.Params, rec.Count)
	s.cache.Set(key, t, int64(len(data)))
	return t, nil
}

func (s *Store) write(key string, value []byte) error {
	select {
	case err := <-s.errs:
		return fmt.Errorf("could not commit transaction: %w", err)
	default:
	}

	s.mutex.Lock()
	err := s.tx.Set([]byte(key), value)
	if errors.Is(err, badger.ErrTxnTooBig) {
		_ = s.sema.Acquire(context.Background(), 1)
		s.tx.CommitWith(s.committed)
		s.tx = s.db.NewTransaction(true)
		err = s.tx.Set([]byte(key), value)
	}
	s.mutex.Unlock()
	if errors.Is(err, badger.ErrDiscardedTxn) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("could not store record: %w", err)
	}
	return nil
}

func (s *Store) read(key string) ([]byte, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	item, err := s.tx.Get([]byte(key))
	if err != nil {
		return nil, fmt.Errorf("could not read record %q: %w", key, err)
	}
	return item.ValueCopy(nil)
}

func (s *Store) committed(err error) {
	if err != nil {
		s.errs <- err
	}
	s.sema.Release(1)
}

func (s *Store) flush() {
	defer s.wg.Done()

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mutex.Lock()
			_ = s.sema.Acquire(context.Background(), 1)
			s.tx.CommitWith(s.committed)
			s.tx = s.db.NewTransaction(true)
			s.mutex.Unlock()

		case <-s.done:
			return
		}
	}
}
