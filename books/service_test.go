package books

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"bookshelf/storage"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *clock.Mock) {
	t.Helper()
	mock := clock.NewMock()
	return NewService(newTestDB(t), mock), mock
}

func TestAddThenGet(t *testing.T) {
	svc, _ := newTestService(t)

	added, err := svc.Add(Payload{Title: "Dune", Author: "Herbert"})
	require.NoError(t, err)

	got, err := svc.Get(added.ID)
	require.NoError(t, err)

	same, err := added.IsTheSameAs(got)
	require.NoError(t, err)
	assert.True(t, same, "the book returned by Get must match the one returned by Add")
}

func TestAddAssignsSequentialIDs(t *testing.T) {
	svc, _ := newTestService(t)

	for want := uint64(0); want < 4; want++ {
		b, err := svc.Add(Payload{
			Title:  fmt.Sprintf("Book %v", want),
			Author: "Somebody",
		})
		require.NoError(t, err)
		assert.Equal(t, want, b.ID)
	}
}

func TestAddRejectsEmptyFields(t *testing.T) {
	svc, _ := newTestService(t)

	for _, p := range []Payload{
		{Title: "", Author: "X"},
		{Title: "X", Author: ""},
	} {
		_, err := svc.Add(p)
		var ii *InvalidInputError
		require.True(t, errors.As(err, &ii), "wanted InvalidInputError, got %v", err)
	}

	// Failed validation must not burn ids: the first successful add still
	// gets the id a fresh store would assign.
	b, err := svc.Add(Payload{Title: "Dune", Author: "Herbert"})
	require.NoError(t, err)
	assert.Equal(t, uint64(0), b.ID)
}

func TestGetMissingID(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Get(42)

	var nf *NotFoundError
	require.True(t, errors.As(err, &nf), "wanted NotFoundError, got %v", err)
	assert.Contains(t, nf.Msg, "id=42", "the error message must name the missing id")
}

func TestUpdateChangesPayloadFieldsOnly(t *testing.T) {
	svc, mock := newTestService(t)

	added, err := svc.Add(Payload{Title: "Dune", Author: "Herbert"})
	require.NoError(t, err)
	require.Nil(t, added.UpdatedAt)

	mock.Add(time.Minute)

	updated, err := svc.Update(added.ID, Payload{
		Title:  "Dune (rev)",
		Author: "Herbert",
	})
	require.NoError(t, err)

	assert.Equal(t, added.ID, updated.ID)
	assert.True(t, added.CreatedAt.Equal(updated.CreatedAt), "created_at must not change on update")
	assert.Equal(t, "Dune (rev)", updated.Title)
	require.NotNil(t, updated.UpdatedAt)
	assert.True(t, updated.UpdatedAt.Equal(mock.Now()))

	// A second update moves updated_at again
	mock.Add(time.Minute)

	updated2, err := svc.Update(added.ID, Payload{
		Title:  "Dune (rev 2)",
		Author: "Herbert",
	})
	require.NoError(t, err)
	require.NotNil(t, updated2.UpdatedAt)
	assert.True(t, updated2.UpdatedAt.After(*updated.UpdatedAt))
}

func TestUpdateValidatesBeforeLookup(t *testing.T) {
	svc, _ := newTestService(t)

	// The id doesn't exist, but the empty payload must be reported first
	_, err := svc.Update(99, Payload{Title: "", Author: "Y"})

	var ii *InvalidInputError
	require.True(t, errors.As(err, &ii), "wanted InvalidInputError, got %v", err)
}

func TestUpdateMissingID(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Update(7, Payload{Title: "Dune", Author: "Herbert"})

	var nf *NotFoundError
	require.True(t, errors.As(err, &nf), "wanted NotFoundError, got %v", err)
	assert.Contains(t, nf.Msg, "id=7")
}

func TestDeleteRetiresTheRecord(t *testing.T) {
	svc, _ := newTestService(t)

	added, err := svc.Add(Payload{Title: "Dune", Author: "Herbert"})
	require.NoError(t, err)

	removed, err := svc.Delete(added.ID)
	require.NoError(t, err)

	same, err := added.IsTheSameAs(removed)
	require.NoError(t, err)
	assert.True(t, same, "Delete must return the record it removed")

	var nf *NotFoundError

	_, err = svc.Get(added.ID)
	require.True(t, errors.As(err, &nf), "wanted NotFoundError after deletion, got %v", err)

	_, err = svc.Delete(added.ID)
	require.True(t, errors.As(err, &nf), "wanted NotFoundError for a repeated delete, got %v", err)
}

// Deleting a record must never free its id for reuse: a logically new record
// always gets a new id.
func TestDeletedIDsAreNeverReused(t *testing.T) {
	svc, _ := newTestService(t)

	added, err := svc.Add(Payload{Title: "Dune", Author: "Herbert"})
	require.NoError(t, err)

	_, err = svc.Delete(added.ID)
	require.NoError(t, err)

	readded, err := svc.Add(Payload{Title: "Dune", Author: "Herbert"})
	require.NoError(t, err)
	assert.Greater(t, readded.ID, added.ID)

	_, err = svc.Get(added.ID)
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf), "re-adding must not revive a deleted id")
}

// An unusable storage layer must abort the add outright, with neither of the
// two caller-facing error kinds.
func TestAddAbortsWhenStorageIsUnavailable(t *testing.T) {
	svc := NewService(&storage.NoOpDB{}, clock.NewMock())

	_, err := svc.Add(Payload{Title: "Dune", Author: "Herbert"})
	require.Error(t, err)

	var nf *NotFoundError
	var ii *InvalidInputError
	assert.False(t, errors.As(err, &nf))
	assert.False(t, errors.As(err, &ii))
}

// The canonical lifecycle: add, update, delete, and then the id is gone.
func TestBookLifecycle(t *testing.T) {
	svc, mock := newTestService(t)

	added, err := svc.Add(Payload{Title: "Dune", Author: "Herbert"})
	require.NoError(t, err)
	assert.Equal(t, uint64(0), added.ID)
	assert.Equal(t, "Dune", added.Title)
	assert.Equal(t, "Herbert", added.Author)
	assert.True(t, added.CreatedAt.Equal(mock.Now()))
	assert.Nil(t, added.UpdatedAt)

	mock.Add(time.Hour)

	updated, err := svc.Update(added.ID, Payload{
		Title:  "Dune (rev)",
		Author: "Herbert",
	})
	require.NoError(t, err)
	assert.Equal(t, added.ID, updated.ID)
	assert.True(t, added.CreatedAt.Equal(updated.CreatedAt))
	assert.Equal(t, "Dune (rev)", updated.Title)
	require.NotNil(t, updated.UpdatedAt)

	removed, err := svc.Delete(added.ID)
	require.NoError(t, err)
	same, err := updated.IsTheSameAs(removed)
	require.NoError(t, err)
	assert.True(t, same)

	_, err = svc.Get(added.ID)
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
}

// Records and the id counter both live in the database, so a restarted
// process picks up exactly where it stopped.
func TestServiceSurvivesReopen(t *testing.T) {
	conf := storage.KVConfig{
		StorageDirPath: t.TempDir(),
	}
	db, err := storage.NewBadgerDB(&conf)
	require.NoError(t, err)

	svc := NewService(db, clock.NewMock())

	added, err := svc.Add(Payload{Title: "Dune", Author: "Herbert"})
	require.NoError(t, err)

	_, err = svc.Delete(added.ID)
	require.NoError(t, err)

	kept, err := svc.Add(Payload{Title: "Hyperion", Author: "Simmons"})
	require.NoError(t, err)

	require.NoError(t, db.Close())

	db2, err := storage.NewBadgerDB(&conf)
	require.NoError(t, err)
	defer db2.Close()

	svc2 := NewService(db2, clock.NewMock())

	got, err := svc2.Get(kept.ID)
	require.NoError(t, err)
	same, err := kept.IsTheSameAs(got)
	require.NoError(t, err)
	assert.True(t, same)

	next, err := svc2.Add(Payload{Title: "Endymion", Author: "Simmons"})
	require.NoError(t, err)
	assert.Equal(t, kept.ID+1, next.ID, "the id sequence must continue across restarts")
}
