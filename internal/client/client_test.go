package client

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/estudiantes-api/internal/http/router"
	"github.com/aanand-mishra/estudiantes-api/internal/storage/jsonfile"
	"github.com/aanand-mishra/estudiantes-api/internal/types"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	store, err := jsonfile.New(filepath.Join(t.TempDir(), "estudiantes.json"))
	require.NoError(t, err)

	srv := httptest.NewServer(router.New(store, router.Options{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return c
}

func input(carnet string) types.StudentInput {
	return types.StudentInput{Carnet: carnet, Nombre: "Luis", Apellido: "Gómez", Grado: "3ro Básico"}
}

func TestClient_RoundTrip(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	students, err := c.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, students)

	created, err := c.Create(ctx, input("B-01"))
	require.NoError(t, err)
	assert.Equal(t, "1", created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := c.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "B-01", got.Carnet)

	in := input("B-02")
	in.Estado = types.EstadoInactivo
	updated, err := c.Update(ctx, created.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "B-02", updated.Carnet)
	assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))

	students, err = c.List(ctx)
	require.NoError(t, err)
	require.Len(t, students, 1)

	deleted, err := c.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, deleted.ID)

	_, err = c.Get(ctx, created.ID)
	assert.True(t, IsNotFound(err), "got %v", err)
}

func TestClient_APIErrors(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	_, err := c.Create(ctx, input("X"))
	require.NoError(t, err)

	_, err = c.Create(ctx, input("X"))
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr), "got %v", err)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Ya existe un estudiante con ese carnet", apiErr.Message)

	_, err = c.Create(ctx, types.StudentInput{Carnet: "Y"})
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Todos los campos son obligatorios", apiErr.Message)
	assert.Contains(t, apiErr.Detail, "field nombre is required")

	_, err = c.Delete(ctx, "404")
	assert.True(t, IsNotFound(err))
}

func TestClient_PathEscaping(t *testing.T) {
	c := newTestClient(t)

	_, err := c.Get(context.Background(), "no existe")
	assert.True(t, IsNotFound(err), "got %v", err)
}

func TestNew_BadURL(t *testing.T) {
	_, err := New("localhost:4000")
	assert.Error(t, err)

	_, err = New("://nope")
	assert.Error(t, err)

	c, err := New("http://localhost:4000/")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:4000", c.baseURL)
}

func TestAPIError_Error(t *testing.T) {
	assert.Equal(t, "404 Estudiante no encontrado", (&APIError{StatusCode: 404, Message: "Estudiante no encontrado"}).Error())
	assert.Equal(t, "400 x: y", (&APIError{StatusCode: 400, Message: "x", Detail: "y"}).Error())
}
