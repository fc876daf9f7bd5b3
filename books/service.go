package books

import (
	"errors"
	"fmt"
	"sync"

	"bookshelf/storage"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog/log"
)

// Service composes the id sequence and the KV store into the four book
// operations. It holds no record state of its own, only the connection, the
// sequence, and a mutex.
//
// The mutex covers each operation's whole read-modify-write span, so an
// allocate-then-insert or lookup-then-overwrite never interleaves with
// another operation. Without it, concurrent adds could hand two records the
// same id and concurrent updates could lose writes.
type Service struct {
	mu    sync.Mutex
	db    storage.KeyValue
	seq   *Sequence
	clock clock.Clock
}

// NewService returns a Service persisting through db. The clock stamps
// created_at/updated_at; pass nil to use the real one, or a mock in tests.
func NewService(db storage.KeyValue, c clock.Clock) *Service {
	if c == nil {
		c = clock.New()
	}
	return &Service{
		db:    db,
		seq:   NewSequence(db),
		clock: c,
	}
}

// Get returns the book stored at id. Fails with NotFoundError if there is no
// record at id. No side effects.
func (s *Service) Get(id uint64) (Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok, err := s.read(id)

	if err != nil {
		return Book{}, err
	}
	if !ok {
		return Book{}, &NotFoundError{
			Msg: fmt.Sprintf("a book with id=%v not found", id),
		}
	}
	return b, nil
}

// Add validates the payload, allocates a fresh id, and stores a new book
// with created_at set to now and updated_at unset. Validation happens before
// the sequence is touched, so a rejected payload never burns an id.
func (s *Service) Add(p Payload) (Book, error) {
	if err := p.Validate(); err != nil {
		return Book{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.seq.Next()

	if err != nil {
		return Book{}, err
	}

	b := Book{
		ID:        id,
		Title:     p.Title,
		Author:    p.Author,
		CreatedAt: s.clock.Now(),
	}

	if err := s.write(b); err != nil {
		return Book{}, err
	}

	log.Debug().
		Uint64("id", b.ID).
		Msg("added a book record")

	return b, nil
}

// Update replaces the title and author of the book at id and stamps
// updated_at, leaving id and created_at alone. Validation runs before the
// existence check: updating a missing id with an empty payload reports
// InvalidInputError, not NotFoundError.
func (s *Service) Update(id uint64, p Payload) (Book, error) {
	if err := p.Validate(); err != nil {
		return Book{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok, err := s.read(id)

	if err != nil {
		return Book{}, err
	}
	if !ok {
		return Book{}, &NotFoundError{
			Msg: fmt.Sprintf("couldn't update a book with id=%v. book not found", id),
		}
	}

	now := s.clock.Now()
	b.Title = p.Title
	b.Author = p.Author
	b.UpdatedAt = &now

	if err := s.write(b); err != nil {
		return Book{}, err
	}

	log.Debug().
		Uint64("id", b.ID).
		Msg("updated a book record")

	return b, nil
}

// Delete removes the book at id and returns it. The id is retired for good:
// the sequence is never rolled back, so no later add can revive it.
func (s *Service) Delete(id uint64) (Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok, err := s.read(id)

	if err != nil {
		return Book{}, err
	}
	if !ok {
		return Book{}, &NotFoundError{
			Msg: fmt.Sprintf("couldn't delete a book with id=%v. book not found.", id),
		}
	}

	if err := s.db.Delete(Key(id)); err != nil {
		return Book{}, fmt.Errorf("can't delete the book record: %v", err)
	}

	log.Debug().
		Uint64("id", b.ID).
		Msg("deleted a book record")

	return b, nil
}

// read fetches and decodes the record at id. The boolean reports presence;
// callers build their own NotFoundError since each operation words absence
// differently. Callers must hold the mutex.
func (s *Service) read(id uint64) (Book, bool, error) {
	entry, err := s.db.Read(Key(id))

	if errors.Is(err, storage.ErrNoEntry) {
		return Book{}, false, nil
	}
	if err != nil {
		return Book{}, false, fmt.Errorf("can't read the book record: %v", err)
	}

	b, err := deserializeBook(entry.Value)

	if err != nil {
		return Book{}, false, err
	}

	return b, true, nil
}

// write serializes and stores the record under its own id. Callers must hold
// the mutex.
func (s *Service) write(b Book) error {
	entry, err := b.NewKVEntry()

	if err != nil {
		return fmt.Errorf("can't serialize the book record: %v", err)
	}

	if err := s.db.Put(entry); err != nil {
		return fmt.Errorf("can't write the book record: %v", err)
	}

	return nil
}
