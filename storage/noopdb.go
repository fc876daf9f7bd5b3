package storage

import "errors"

// NoOpDB is used when we need to avoid touching the storage layer while still
// preserving our interactions with an abstract database. The strategy is to
// return whatever value will prevent the calling context from further
// interacting with the storage layer.
//
// For read, write, and delete operations, we always return an error, so the
// caller knows that no actual data has been read or written.
//
// For database-wide operations, such as closing the database, we always
// return a nil error. This is because, since there is nothing to close, the
// operation is always successful.
type NoOpDB struct{}

// Put always returns an error so callers don't assume a new key has been
// written.
func (n *NoOpDB) Put(KVEntry) error {
	return errors.New("unable to write to the no-op database")
}

// Read always returns an error so callers don't assume a key has been read.
func (n *NoOpDB) Read(key []byte) (KVEntry, error) {
	return KVEntry{}, errors.New("entry not found in the no-op database")
}

// Delete always returns an error so callers don't assume a key has been
// removed.
func (n *NoOpDB) Delete(key []byte) error {
	return errors.New("unable to delete from the no-op database")
}

// Close is no-op
func (n *NoOpDB) Close() error {
	return nil
}
