// Flashpath - Adaptive Flashcard Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flashpath

package docstore

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// keySeparator splits collection and id inside a Badger key.
const keySeparator = "\x00"

// BadgerConfig configures a BadgerStore.
type BadgerConfig struct {
	// Path is the data directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps everything in RAM (tests, ephemeral deployments).
	InMemory bool

	// SyncWrites fsyncs every commit.
	SyncWrites bool
}

// BadgerStore is a Store backed by BadgerDB. Every record is stored under
// "<collection>\x00<_id>" as JSON.
type BadgerStore struct {
	db     *badger.DB
	closed atomic.Bool
}

// OpenBadger opens (or creates) a Badger-backed store.
func OpenBadger(cfg BadgerConfig) (*BadgerStore, error) {
	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// NewBadgerStore wraps an already open database.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

func recordKey(collection, id string) []byte {
	return []byte(collection + keySeparator + id)
}

func collectionPrefix(collection string) []byte {
	return []byte(collection + keySeparator)
}

// FindOne implements Store.
func (s *BadgerStore) FindOne(ctx context.Context, collection string, filter Filter) (Document, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	cf, err := compileFilter(filter)
	if err != nil {
		return nil, err
	}

	var found Document
	err = s.db.View(func(txn *badger.Txn) error {
		doc, err := firstMatch(txn, collection, filter, cf)
		found = doc
		return err
	})
	if err != nil {
		return nil, classifyBadger("find one", err)
	}
	if found == nil {
		return nil, ErrNoDocuments
	}
	return found, nil
}

// Find implements Store. Results are ordered by "_id".
func (s *BadgerStore) Find(ctx context.Context, collection string, filter Filter, projection Projection) ([]Document, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	cf, err := compileFilter(filter)
	if err != nil {
		return nil, err
	}

	var out []Document
	err = s.db.View(func(txn *badger.Txn) error {
		if id, ok := filter.pinnedID(); ok {
			doc, err := getDocument(txn, collection, id)
			if err != nil || doc == nil {
				return err
			}
			if cf.matches(doc) {
				out = append(out, project(doc, projection))
			}
			return nil
		}
		return scan(ctx, txn, collection, func(doc Document) (bool, error) {
			if cf.matches(doc) {
				out = append(out, project(doc, projection))
			}
			return true, nil
		})
	})
	if err != nil {
		return nil, classifyBadger("find", err)
	}
	return out, nil
}

// UpdateOne implements Store. The read and write happen in one transaction.
func (s *BadgerStore) UpdateOne(ctx context.Context, collection string, filter Filter, update Update, upsert bool) (UpdateResult, error) {
	if err := s.check(ctx); err != nil {
		return UpdateResult{}, err
	}
	if err := validateUpdate(update); err != nil {
		return UpdateResult{}, err
	}
	cf, err := compileFilter(filter)
	if err != nil {
		return UpdateResult{}, err
	}

	var result UpdateResult
	err = s.db.Update(func(txn *badger.Txn) error {
		current, err := firstMatch(txn, collection, filter, cf)
		if err != nil {
			return err
		}

		var next Document
		switch {
		case current != nil:
			result.Matched = true
			next, err = applySet(current, update)
		case upsert:
			next, err = upsertDocument(cf, update)
			if err == nil {
				result.UpsertedID = next.ID()
			}
		default:
			return nil
		}
		if err != nil {
			return err
		}
		return putDocument(txn, collection, next)
	})
	if err != nil {
		return UpdateResult{}, classifyBadger("update one", err)
	}
	return result, nil
}

// DeleteOne implements Store.
func (s *BadgerStore) DeleteOne(ctx context.Context, collection string, filter Filter) (bool, error) {
	if err := s.check(ctx); err != nil {
		return false, err
	}
	cf, err := compileFilter(filter)
	if err != nil {
		return false, err
	}

	deleted := false
	err = s.db.Update(func(txn *badger.Txn) error {
		doc, err := firstMatch(txn, collection, filter, cf)
		if err != nil || doc == nil {
			return err
		}
		deleted = true
		return txn.Delete(recordKey(collection, doc.ID()))
	})
	if err != nil {
		return false, classifyBadger("delete one", err)
	}
	return deleted, nil
}

// Close closes the database. Further calls return ErrClosed.
func (s *BadgerStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}

func (s *BadgerStore) check(ctx context.Context) error {
	if s.closed.Load() {
		return ErrClosed
	}
	return ctx.Err()
}

// firstMatch finds the first record matching the filter. A pinned "_id"
// is a point lookup; anything else scans the collection.
func firstMatch(txn *badger.Txn, collection string, filter Filter, cf compiledFilter) (Document, error) {
	if id, ok := filter.pinnedID(); ok {
		doc, err := getDocument(txn, collection, id)
		if err != nil || doc == nil {
			return nil, err
		}
		if !cf.matches(doc) {
			return nil, nil
		}
		return doc, nil
	}

	var found Document
	err := scan(context.Background(), txn, collection, func(doc Document) (bool, error) {
		if cf.matches(doc) {
			found = doc
			return false, nil
		}
		return true, nil
	})
	return found, err
}

func getDocument(txn *badger.Txn, collection, id string) (Document, error) {
	item, err := txn.Get(recordKey(collection, id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	var doc Document
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &doc)
	})
	if err != nil {
		return nil, fmt.Errorf("decode %s/%s: %w", collection, id, err)
	}
	return doc, nil
}

func putDocument(txn *badger.Txn, collection string, doc Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	return txn.Set(recordKey(collection, doc.ID()), data)
}

// scan visits every record of a collection in key order until fn returns false.
func scan(ctx context.Context, txn *badger.Txn, collection string, fn func(Document) (bool, error)) error {
	opts := badger.DefaultIteratorOptions
	prefix := collectionPrefix(collection)
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		var doc Document
		if err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &doc)
		}); err != nil {
			return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
		}
		more, err := fn(doc)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
	return nil
}

// classifyBadger marks transaction conflicts and I/O faults as retryable.
func classifyBadger(op string, err error) error {
	switch {
	case errors.Is(err, ErrInvalidUpdate), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, badger.ErrConflict), errors.Is(err, badger.ErrBlockedWrites), errors.Is(err, badger.ErrDBClosed):
		return unavailable(op, err)
	default:
		return fmt.Errorf("badger %s: %w", op, err)
	}
}
