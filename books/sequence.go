package books

import (
	"encoding/binary"
	"errors"
	"fmt"

	"bookshelf/storage"
)

// sequenceKey is where the next id to assign is persisted. It sits outside
// the book keyspace so it can never collide with a record.
var sequenceKey = []byte("sequence:books")

// Sequence hands out unique, strictly increasing uint64 ids, persisting its
// counter through the same KeyValue store as the records it names. Ids are
// never reused: deleting a record never decrements the counter, so a retired
// id stays retired for the lifetime of the store.
//
// Sequence does no locking of its own. The Service serializes calls to Next
// with its record writes under one mutex.
type Sequence struct {
	db storage.KeyValue
}

// NewSequence returns a Sequence backed by db. No state is touched until the
// first call to Next or Current.
func NewSequence(db storage.KeyValue) *Sequence {
	return &Sequence{db: db}
}

// Next allocates an id: it reads the stored counter, persists counter+1, and
// returns the pre-increment value. A fresh store hands out 0 first. An error
// means the counter itself could not be read or written, and the caller must
// abort whatever needed the id rather than fabricate one.
func (s *Sequence) Next() (uint64, error) {
	cur, err := s.Current()

	if err != nil {
		return 0, err
	}

	next := make([]byte, 8)
	binary.BigEndian.PutUint64(next, cur+1)

	err = s.db.Put(storage.KVEntry{
		Key:   sequenceKey,
		Value: next,
	})

	if err != nil {
		return 0, fmt.Errorf("can't advance the id sequence: %v", err)
	}

	return cur, nil
}

// Current returns the id the next call to Next would hand out, without
// advancing anything.
func (s *Sequence) Current() (uint64, error) {
	entry, err := s.db.Read(sequenceKey)

	if errors.Is(err, storage.ErrNoEntry) {
		return 0, nil
	}

	if err != nil {
		return 0, fmt.Errorf("can't read the id sequence: %v", err)
	}

	if len(entry.Value) != 8 {
		return 0, fmt.Errorf(
			"the stored id sequence is %v bytes long, expected 8",
			len(entry.Value),
		)
	}

	return binary.BigEndian.Uint64(entry.Value), nil
}
