// Package storagetest holds the behavioural suite every storage.Storage
// backend must pass. Backend packages call Run from their own tests.
package storagetest

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/estudiantes-api/internal/storage"
	"github.com/aanand-mishra/estudiantes-api/internal/types"
)

// Factory builds an empty backend driven by the given clock.
type Factory func(t *testing.T, now func() time.Time) storage.Storage

// Clock is a manual clock that advances one second per call.
type Clock struct {
	t time.Time
}

// NewClock starts a Clock at a fixed instant.
func NewClock() *Clock {
	return &Clock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

// Now returns the current instant and then advances.
func (c *Clock) Now() time.Time {
	now := c.t
	c.t = c.t.Add(time.Second)
	return now
}

// Input returns a valid StudentInput for the given carnet.
func Input(carnet string) types.StudentInput {
	return types.StudentInput{
		Carnet:   carnet,
		Nombre:   "Ana",
		Apellido: "Pérez",
		Grado:    "5to Bachillerato",
	}
}

// Run executes the suite against fresh backends from newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("EmptyList", func(t *testing.T) {
		s := newStore(t, NewClock().Now)

		students, err := s.GetStudents()
		require.NoError(t, err)
		assert.NotNil(t, students)
		assert.Empty(t, students)
	})

	t.Run("CreateThenListOnce", func(t *testing.T) {
		s := newStore(t, NewClock().Now)

		created, err := s.CreateStudent(Input("2024-001"))
		require.NoError(t, err)
		assert.Equal(t, "1", created.ID)
		assert.Equal(t, types.EstadoActivo, created.Estado)
		assert.Equal(t, created.CreatedAt, created.UpdatedAt)

		students, err := s.GetStudents()
		require.NoError(t, err)

		var matches int
		for _, st := range students {
			if st.ID == created.ID {
				matches++
				if diff := cmp.Diff(created, st); diff != "" {
					t.Errorf("listed record mismatch (-created +listed):\n%s", diff)
				}
			}
		}
		assert.Equal(t, 1, matches)
	})

	t.Run("GetByID", func(t *testing.T) {
		s := newStore(t, NewClock().Now)

		created, err := s.CreateStudent(Input("2024-001"))
		require.NoError(t, err)

		got, err := s.GetStudentByID(created.ID)
		require.NoError(t, err)
		if diff := cmp.Diff(created, got); diff != "" {
			t.Errorf("GetStudentByID mismatch (-want +got):\n%s", diff)
		}

		_, err = s.GetStudentByID("999")
		assert.True(t, errors.Is(err, storage.ErrNotFound), "got %v", err)
	})

	t.Run("DuplicateCarnetRejected", func(t *testing.T) {
		s := newStore(t, NewClock().Now)

		_, err := s.CreateStudent(Input("2024-001"))
		require.NoError(t, err)

		_, err = s.CreateStudent(Input("2024-001"))
		assert.True(t, errors.Is(err, storage.ErrCarnetTaken), "got %v", err)

		students, err := s.GetStudents()
		require.NoError(t, err)
		assert.Len(t, students, 1)
	})

	t.Run("MissingFieldsRejected", func(t *testing.T) {
		s := newStore(t, NewClock().Now)

		in := Input("2024-001")
		in.Nombre = ""
		in.Grado = ""
		_, err := s.CreateStudent(in)

		var verr *storage.ValidationError
		require.True(t, errors.As(err, &verr), "got %v", err)
		assert.Len(t, verr.Fields, 2)

		in = Input("2024-001")
		in.Estado = "Suspendido"
		_, err = s.CreateStudent(in)
		assert.True(t, errors.As(err, &verr), "got %v", err)
	})

	t.Run("SequentialIDs", func(t *testing.T) {
		s := newStore(t, NewClock().Now)

		for i, carnet := range []string{"A", "B", "C"} {
			st, err := s.CreateStudent(Input(carnet))
			require.NoError(t, err)
			assert.Equal(t, []string{"1", "2", "3"}[i], st.ID)
		}

		// Deleting the highest id frees it; deleting a lower one does not.
		_, err := s.DeleteStudentByID("1")
		require.NoError(t, err)
		st, err := s.CreateStudent(Input("D"))
		require.NoError(t, err)
		assert.Equal(t, "4", st.ID)

		_, err = s.DeleteStudentByID("4")
		require.NoError(t, err)
		st, err = s.CreateStudent(Input("E"))
		require.NoError(t, err)
		assert.Equal(t, "4", st.ID)
	})

	t.Run("UpdateKeepsCreatedAt", func(t *testing.T) {
		s := newStore(t, NewClock().Now)

		created, err := s.CreateStudent(Input("2024-001"))
		require.NoError(t, err)

		in := Input("2024-001")
		in.Nombre = "Beatriz"
		in.Estado = types.EstadoInactivo
		updated, err := s.UpdateStudentByID(created.ID, in)
		require.NoError(t, err)

		assert.Equal(t, created.ID, updated.ID)
		assert.True(t, created.CreatedAt.Equal(updated.CreatedAt), "createdAt changed: %v -> %v", created.CreatedAt, updated.CreatedAt)
		assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
		assert.Equal(t, "Beatriz", updated.Nombre)
		assert.Equal(t, types.EstadoInactivo, updated.Estado)

		got, err := s.GetStudentByID(created.ID)
		require.NoError(t, err)
		if diff := cmp.Diff(updated, got); diff != "" {
			t.Errorf("stored record mismatch (-updated +stored):\n%s", diff)
		}
	})

	t.Run("UpdateDefaultsEstado", func(t *testing.T) {
		s := newStore(t, NewClock().Now)

		in := Input("2024-001")
		in.Estado = types.EstadoInactivo
		created, err := s.CreateStudent(in)
		require.NoError(t, err)

		updated, err := s.UpdateStudentByID(created.ID, Input("2024-001"))
		require.NoError(t, err)
		assert.Equal(t, types.EstadoActivo, updated.Estado)
	})

	t.Run("UpdateErrors", func(t *testing.T) {
		s := newStore(t, NewClock().Now)

		a, err := s.CreateStudent(Input("A"))
		require.NoError(t, err)
		_, err = s.CreateStudent(Input("B"))
		require.NoError(t, err)

		_, err = s.UpdateStudentByID("42", Input("Z"))
		assert.True(t, errors.Is(err, storage.ErrNotFound), "got %v", err)

		_, err = s.UpdateStudentByID(a.ID, Input("B"))
		assert.True(t, errors.Is(err, storage.ErrCarnetTaken), "got %v", err)

		// Keeping one's own carnet is not a collision.
		_, err = s.UpdateStudentByID(a.ID, Input("A"))
		assert.NoError(t, err)

		// Validation wins over not-found.
		_, err = s.UpdateStudentByID("42", types.StudentInput{})
		var verr *storage.ValidationError
		assert.True(t, errors.As(err, &verr), "got %v", err)
	})

	t.Run("Delete", func(t *testing.T) {
		s := newStore(t, NewClock().Now)

		created, err := s.CreateStudent(Input("2024-001"))
		require.NoError(t, err)

		deleted, err := s.DeleteStudentByID(created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, deleted.ID)

		_, err = s.GetStudentByID(created.ID)
		assert.True(t, errors.Is(err, storage.ErrNotFound), "got %v", err)

		_, err = s.DeleteStudentByID(created.ID)
		assert.True(t, errors.Is(err, storage.ErrNotFound), "got %v", err)

		// The freed carnet can be reused.
		_, err = s.CreateStudent(Input("2024-001"))
		assert.NoError(t, err)
	})
}
