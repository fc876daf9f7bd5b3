package books

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"bookshelf/storage"
)

// keyPrefix separates book records from other entries in the shared KV
// store, such as the id sequence.
const keyPrefix = "book:"

// Book is the single record type the application persists.
type Book struct {
	// Assigned once by the id sequence at creation and never changed
	ID     uint64 `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	// Captured at creation and never changed
	CreatedAt time.Time `json:"created_at"`
	// Nil until the record's first successful update
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Key returns the KV key for the book with the given id. The id is encoded
// big-endian so the byte order of keys in the store matches the numeric
// order of ids, keeping the stored map ordered by id.
func Key(id uint64) []byte {
	k := make([]byte, len(keyPrefix)+8)
	copy(k, keyPrefix)
	binary.BigEndian.PutUint64(k[len(keyPrefix):], id)
	return k
}

// Serialize makes the Book suitable for writing to disk or comparing with
// in-memory records.
func (b Book) Serialize() ([]byte, error) {
	return json.Marshal(b)
}

// NewKVEntry prepares the Book to be saved in the KV database
func (b Book) NewKVEntry() (storage.KVEntry, error) {
	v, err := b.Serialize()

	if err != nil {
		return storage.KVEntry{}, err
	}

	return storage.KVEntry{
		Key:   Key(b.ID),
		Value: v,
	}, nil
}

// IsTheSameAs indicates whether the Book has the same values/properties as
// the other Book, comparing serialized forms so that incidental differences
// in timestamp representation (wall clock readings, zone pointers) don't
// matter.
func (b Book) IsTheSameAs(other Book) (bool, error) {
	b1, err := b.Serialize()

	if err != nil {
		return false, err
	}

	b2, err := other.Serialize()

	if err != nil {
		return false, err
	}

	return bytes.Equal(b1, b2), nil
}

// deserializeBook restores a Book from its stored form.
func deserializeBook(d []byte) (Book, error) {
	var b Book
	if err := json.Unmarshal(d, &b); err != nil {
		return Book{}, fmt.Errorf("can't parse the stored book record: %v", err)
	}
	return b, nil
}

// Payload is the caller-supplied title/author pair used to create or update
// a Book. It never carries an id: ids come from the sequence on creation,
// or from the lookup key on update.
type Payload struct {
	Title  string `json:"title"`
	Author string `json:"author"`
}

// Validate reports whether the payload can produce a valid Book.
func (p Payload) Validate() error {
	if p.Title == "" || p.Author == "" {
		return &InvalidInputError{
			Msg: "all fields must be provided and non-empty",
		}
	}
	return nil
}
