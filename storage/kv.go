package storage

import (
	"errors"
	"fmt"

	"github.com/alecthomas/units"
)

// ErrNoEntry is returned by Read and Delete when no entry exists at the key
// provided. Callers decide whether absence is an error condition; the storage
// layer just reports it.
var ErrNoEntry = errors.New("no entry at the key provided")

// DefaultMaxValueSize is the fallback bound on a single serialized value.
// Values above the bound are still written, but logged as oversized.
const DefaultMaxValueSize = int64(units.KiB)

// KVConfig contains settings specific to BadgerDB connections
type KVConfig struct {
	StorageDirPath string
	MaxValueSize   int64
}

// UnmarshalYAML parses a user-provided KV store configuration, returning any
// parsing errors.
func (c *KVConfig) UnmarshalYAML(unmarshal func(interface{}) error) error {
	v := make(map[string]string)
	err := unmarshal(&v)

	if err != nil {
		return fmt.Errorf("can't parse the storage config: %v", err)
	}

	sp, ok := v["storageDir"]
	if !ok || sp == "" {
		return errors.New("storage config must include a storageDir")
	}
	c.StorageDirPath = sp

	ms, ok := v["maxRecordSize"]
	if !ok {
		c.MaxValueSize = DefaultMaxValueSize
		return nil
	}

	parsed, err := units.ParseBase2Bytes(ms)
	if err != nil {
		return fmt.Errorf(
			"can't parse the user-provided max record size as a byte count: %v",
			err,
		)
	}
	if parsed <= 0 {
		return errors.New("max record size must be positive")
	}
	c.MaxValueSize = int64(parsed)

	return nil
}

// KeyValue exposes a common interface for performing CRUD operations on an
// underlying storage layer. Assumes some kind of persistent KV store for
// book records and the id sequence.
//
// Implementations need to include connection logic in code to initialize
// a store.
type KeyValue interface {
	// Replace the value at a key or create a new entry if it doesn't exist
	Put(KVEntry) error
	// Return an entry given its key; ErrNoEntry if absent
	Read(key []byte) (KVEntry, error)
	// Remove the entry at a key; ErrNoEntry if absent
	Delete(key []byte) error
	// Drain/tear down the connection, or something analogous for
	// an embedded database
	Close() error
}

// KVEntry is what we'll write to and read from the KV store
type KVEntry struct {
	Key   []byte
	Value []byte
}
