package capture

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"

	badgerdb "github.com/dgraph-io/badger/v4"

	"github.com/marmos91/nfscall/internal/logger"
)

const prefixCall = "call:"

// BadgerStore persists records in a BadgerDB directory. Keys are
// "call:" + a UUIDv7, so key order is capture order.
type BadgerStore struct {
	db     *badgerdb.DB
	closed atomic.Bool
}

// OpenBadger opens (or creates) a store rooted at path.
func OpenBadger(path string) (*BadgerStore, error) {
	opts := badgerdb.DefaultOptions(path).WithLogger(badgerLogger{})
	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open capture store %q: %w", path, err)
	}
	logger.Debug("Capture store opened", logger.KeyPath, path)
	return &BadgerStore{db: db}, nil
}

func keyCall(id string) []byte {
	return []byte(prefixCall + id)
}

// Put stores r under a fresh time-ordered key.
func (s *BadgerStore) Put(ctx context.Context, r *Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.closed.Load() {
		return ErrClosed
	}
	if r.ID == "" {
		id, err := newID()
		if err != nil {
			return err
		}
		r.ID = id
	}

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal capture record: %w", err)
	}
	return s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set(keyCall(r.ID), data)
	})
}

// List walks the call prefix in reverse.
func (s *BadgerStore) List(ctx context.Context, limit int) ([]*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.closed.Load() {
		return nil, ErrClosed
	}

	var out []*Record
	err := s.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = []byte(prefixCall)
		it := txn.NewIterator(opts)
		defer it.Close()

		// Reverse iteration starts at the last key <= seek.
		seek := append([]byte(prefixCall), 0xff)
		for it.Seek(seek); it.ValidForPrefix(opts.Prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			r := &Record{}
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, r)
			}); err != nil {
				return fmt.Errorf("decode capture record %s: %w", it.Item().Key(), err)
			}
			out = append(out, r)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Close flushes and closes the database. Calling it twice is a no-op.
func (s *BadgerStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.db.Close()
}

// badgerLogger routes badger's internal logging into the structured logger.
// Badger is chatty at info level, so everything below warnings goes to debug.
type badgerLogger struct{}

func (badgerLogger) Errorf(f string, args ...any) {
	logger.Error("badger: " + trimMsg(f, args))
}

func (badgerLogger) Warningf(f string, args ...any) {
	logger.Warn("badger: " + trimMsg(f, args))
}

func (badgerLogger) Infof(f string, args ...any) {
	logger.Debug("badger: " + trimMsg(f, args))
}

func (badgerLogger) Debugf(f string, args ...any) {
	logger.Debug("badger: " + trimMsg(f, args))
}

func trimMsg(f string, args []any) string {
	return strings.TrimRight(fmt.Sprintf(f, args...), "\n")
}
