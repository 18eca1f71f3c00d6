package session

import (
	"context"
	"errors"
	"log"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

const badgerKeyPrefix = "call:"

// Badger is a Store backed by BadgerDB v4. Entry expiry is delegated to
// the engine's per-entry TTL, so a crashed process never leaks entries.
type Badger struct {
	db  *badger.DB
	ttl time.Duration
}

// BadgerOptions configures the Badger store.
type BadgerOptions struct {
	// Dir is the directory for BadgerDB data files. Required unless
	// InMemory is set.
	Dir string

	// InMemory runs BadgerDB without disk persistence. Useful for tests
	// that want the real engine's TTL behavior.
	InMemory bool

	// TTL bounds entry lifetime. Zero means DefaultTTL.
	TTL time.Duration

	// Logger sets the badger logger. If nil, a quiet wrapper around the
	// standard log package is used.
	Logger badger.Logger
}

// NewBadger opens a Badger-backed Store.
func NewBadger(opts BadgerOptions) (*Badger, error) {
	if !opts.InMemory && opts.Dir == "" {
		return nil, errors.New("session: BadgerOptions.Dir is required for on-disk mode")
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	dbOpts := badger.DefaultOptions(opts.Dir)
	if opts.InMemory {
		dbOpts = dbOpts.WithInMemory(true)
	}
	if opts.Logger != nil {
		dbOpts = dbOpts.WithLogger(opts.Logger)
	} else {
		dbOpts = dbOpts.WithLogger(quietLogger{})
	}
	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, err
	}
	return &Badger{db: db, ttl: ttl}, nil
}

func badgerKey(transactionID string) []byte {
	return append([]byte(badgerKeyPrefix), transactionID...)
}

func (s *Badger) Put(_ context.Context, transactionID string, m Metadata) error {
	val, err := encodeMetadata(m)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(badgerKey(transactionID), val).WithTTL(s.ttl)
		return txn.SetEntry(e)
	})
}

func (s *Badger) Get(_ context.Context, transactionID string) (Metadata, error) {
	var val []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(transactionID))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Metadata{}, ErrNotFound
	}
	if err != nil {
		return Metadata{}, err
	}
	return decodeMetadata(val)
}

func (s *Badger) Delete(_ context.Context, transactionID string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(badgerKey(transactionID))
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	return err
}

func (s *Badger) List(_ context.Context, fn func(transactionID string, m Metadata) bool) error {
	prefix := []byte(badgerKeyPrefix)
	return s.db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = prefix
		it := txn.NewIterator(iterOpts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			id := string(item.KeyCopy(nil)[len(prefix):])
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			m, err := decodeMetadata(val)
			if err != nil {
				return err
			}
			if !fn(id, m) {
				return nil
			}
		}
		return nil
	})
}

func (s *Badger) Close() error {
	return s.db.Close()
}

// quietLogger wraps the standard log package for badger, dropping debug
// and info level messages.
type quietLogger struct{}

func (quietLogger) Errorf(f string, v ...interface{}) { log.Printf("[badger] ERROR: "+f, v...) }
func (quietLogger) Warningf(f string, v ...interface{}) {
	log.Printf("[badger] WARN: "+f, v...)
}
func (quietLogger) Infof(string, ...interface{})  {}
func (quietLogger) Debugf(string, ...interface{}) {}
