package storage

import (
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v3"
	units "github.com/docker/go-units"
	"github.com/rs/zerolog/log"
)

// BadgerDB implements KeyValue and represents the application's connection
// to BadgerDB.
type BadgerDB struct {
	connection   *badger.DB
	maxValueSize int64 // bound on a serialized value before we log it as oversized
}

// NewBadgerDB initializes the BadgerDB embedded database. It is up to the
// caller to close the database with Close().
func NewBadgerDB(conf *KVConfig) (*BadgerDB, error) {
	// Open the Badger database at dirPath.
	// See: https://dgraph.io/docs/badger/get-started/#opening-a-database
	db, err := badger.Open(badger.DefaultOptions(conf.StorageDirPath))

	if err != nil {
		return &BadgerDB{}, fmt.Errorf("can't open the db connection: %v", err)
	}

	ms := conf.MaxValueSize
	if ms == 0 {
		ms = DefaultMaxValueSize
	}

	return &BadgerDB{
		connection:   db,
		maxValueSize: ms,
	}, nil
}

// Put upserts an entry
func (db *BadgerDB) Put(entry KVEntry) error {
	if int64(len(entry.Value)) > db.maxValueSize {
		// Oversized values are a configuration concern, not a write error, so
		// warn rather than fail.
		log.Warn().
			Int("valueBytes", len(entry.Value)).
			Str("maxRecordSize", units.BytesSize(float64(db.maxValueSize))).
			Msg("writing a value larger than the configured max record size")
	}
	err := db.connection.Update(func(txn *badger.Txn) error {
		err := txn.Set(entry.Key, entry.Value)
		if err != nil {
			return fmt.Errorf("could not set the KV pair: %v", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("transaction failed: %v", err)
	}
	return nil
}

// Read returns an entry by key. Returns ErrNoEntry if no entry exists at the
// key.
func (db *BadgerDB) Read(key []byte) (KVEntry, error) {
	var val []byte
	// See: https://dgraph.io/docs/badger/get-started/#read-only-transactions
	err := db.connection.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)

		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNoEntry
		}
		if err != nil {
			return fmt.Errorf("can't retrieve a value for the key provided: %v", err)
		}

		// We copy values rather than return them directly because item.Value()
		// is considered undefined behavior outside a transaction.
		// https://godoc.org/github.com/dgraph-io/badger#Item.Value
		val, err = item.ValueCopy(nil)

		if err != nil {
			return fmt.Errorf("can't copy the value from the database: %v", err)
		}
		return nil
	})
	if err != nil {
		return KVEntry{}, err
	}
	return KVEntry{
		Key:   key,
		Value: val,
	}, nil
}

// Delete removes the entry at key. Returns ErrNoEntry if no entry exists
// there, since Badger's own Delete is a silent no-op for missing keys.
func (db *BadgerDB) Delete(key []byte) error {
	err := db.connection.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNoEntry
		}
		if err != nil {
			return fmt.Errorf("can't check for the key provided: %v", err)
		}
		return txn.Delete(key)
	})
	if errors.Is(err, ErrNoEntry) {
		return ErrNoEntry
	}
	if err != nil {
		return fmt.Errorf("transaction failed: %v", err)
	}
	return nil
}

// Close tears down the database connection. You should defer this.
func (db *BadgerDB) Close() error {
	err := db.connection.Close()
	if err != nil {
		return fmt.Errorf("could not close the database: %v", err)
	}
	return nil
}
