package student

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/aanand-mishra/estudiantes-api/internal/storage"
	"github.com/aanand-mishra/estudiantes-api/internal/types"
	"github.com/aanand-mishra/estudiantes-api/internal/utils/response"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// ── mock storage ──

type mockStorage struct {
	students []types.Student
	err      error

	lastID    string
	lastInput types.StudentInput
}

func (m *mockStorage) CreateStudent(in types.StudentInput) (types.Student, error) {
	m.lastInput = in
	if m.err != nil {
		return types.Student{}, m.err
	}
	s := storage.NewStudent("1", in, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	return s, nil
}

func (m *mockStorage) GetStudentByID(id string) (types.Student, error) {
	m.lastID = id
	if m.err != nil {
		return types.Student{}, m.err
	}
	return types.Student{ID: id, Carnet: "C-" + id}, nil
}

func (m *mockStorage) GetStudents() ([]types.Student, error) {
	return m.students, m.err
}

func (m *mockStorage) UpdateStudentByID(id string, in types.StudentInput) (types.Student, error) {
	m.lastID, m.lastInput = id, in
	if m.err != nil {
		return types.Student{}, m.err
	}
	return types.Student{ID: id, Carnet: in.Carnet, Nombre: in.Nombre}, nil
}

func (m *mockStorage) DeleteStudentByID(id string) (types.Student, error) {
	m.lastID = id
	if m.err != nil {
		return types.Student{}, m.err
	}
	return types.Student{ID: id}, nil
}

func (m *mockStorage) Close() error { return nil }

// ── helpers ──

func serve(store storage.Storage, method, target, body string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/estudiantes", GetList(store))
	mux.HandleFunc("POST /api/estudiantes", New(store))
	mux.HandleFunc("GET /api/estudiantes/{id}", GetByID(store))
	mux.HandleFunc("PUT /api/estudiantes/{id}", Update(store))
	mux.HandleFunc("DELETE /api/estudiantes/{id}", Delete(store))

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, response.StatusError, resp.Status)
	return resp
}

func validationErr(t *testing.T, in types.StudentInput) error {
	t.Helper()
	_, err := storage.Normalize(in)
	var verr *storage.ValidationError
	require.True(t, errors.As(err, &verr))
	return verr
}

const validBody = `{"carnet":"2024-001","nombre":"Ana","apellido":"Pérez","grado":"5to"}`

// ── tests ──

func TestNew_Created(t *testing.T) {
	store := &mockStorage{}
	w := serve(store, http.MethodPost, "/api/estudiantes", validBody)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp struct {
		Message    string        `json:"message"`
		Estudiante types.Student `json:"estudiante"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, MsgCreated, resp.Message)
	assert.Equal(t, "1", resp.Estudiante.ID)
	assert.Equal(t, "2024-001", store.lastInput.Carnet)
}

func TestNew_BadBodies(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty", ""},
		{"malformed", `{"carnet":`},
		{"wrong type", `{"carnet": 12}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(&mockStorage{}, http.MethodPost, "/api/estudiantes", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, response.MsgInvalidBody, resp.Message)
		})
	}
}

func TestNew_StoreErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"validation", validationErr(t, types.StudentInput{Carnet: "x"}), http.StatusBadRequest, response.MsgRequiredFields},
		{"duplicate carnet", fmt.Errorf("CreateStudent: %w", storage.ErrCarnetTaken), http.StatusBadRequest, response.MsgCarnetTaken},
		{"io failure", errors.New("disk on fire"), http.StatusInternalServerError, response.MsgInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(&mockStorage{err: tt.err}, http.MethodPost, "/api/estudiantes", validBody)
			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, tt.wantMsg, resp.Message)
			assert.NotContains(t, w.Body.String(), "disk on fire")
		})
	}
}

func TestNew_ValidationDetail(t *testing.T) {
	err := validationErr(t, types.StudentInput{Carnet: "x", Estado: "Otro"})
	w := serve(&mockStorage{err: err}, http.MethodPost, "/api/estudiantes", validBody)

	resp := decodeError(t, w)
	assert.Contains(t, resp.Error, "field nombre is required")
	assert.Contains(t, resp.Error, "field estado must be one of [Activo Inactivo]")
}

func TestGetList(t *testing.T) {
	store := &mockStorage{students: []types.Student{}}
	w := serve(store, http.MethodGet, "/api/estudiantes", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	store.students = []types.Student{{ID: "1"}, {ID: "2"}}
	w = serve(store, http.MethodGet, "/api/estudiantes", "")
	var got []types.Student
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Len(t, got, 2)
}

func TestGetByID(t *testing.T) {
	store := &mockStorage{}
	w := serve(store, http.MethodGet, "/api/estudiantes/7", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "7", store.lastID)

	var got types.Student
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "C-7", got.Carnet)
}

func TestGetByID_NotFound(t *testing.T) {
	store := &mockStorage{err: fmt.Errorf("GetStudentByID: %w", storage.ErrNotFound)}
	w := serve(store, http.MethodGet, "/api/estudiantes/99", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, response.MsgNotFound, decodeError(t, w).Message)
}

func TestUpdate(t *testing.T) {
	store := &mockStorage{}
	w := serve(store, http.MethodPut, "/api/estudiantes/3", validBody)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "3", store.lastID)
	assert.Contains(t, w.Body.String(), MsgUpdated)
}

func TestUpdate_Errors(t *testing.T) {
	w := serve(&mockStorage{err: storage.ErrCarnetTaken}, http.MethodPut, "/api/estudiantes/3", validBody)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, response.MsgCarnetTakenOther, decodeError(t, w).Message)

	w = serve(&mockStorage{err: storage.ErrNotFound}, http.MethodPut, "/api/estudiantes/3", validBody)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(&mockStorage{}, http.MethodPut, "/api/estudiantes/3", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDelete(t *testing.T) {
	store := &mockStorage{}
	w := serve(store, http.MethodDelete, "/api/estudiantes/5", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "5", store.lastID)
	assert.Contains(t, w.Body.String(), MsgDeleted)

	w = serve(&mockStorage{err: storage.ErrNotFound}, http.MethodDelete, "/api/estudiantes/5", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNew_BodyTooLarge(t *testing.T) {
	store := &mockStorage{}
	handler := New(store)

	body := `{"carnet":"` + strings.Repeat("x", 256) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/estudiantes", strings.NewReader(body))
	w := httptest.NewRecorder()
	req.Body = http.MaxBytesReader(w, req.Body, 64)

	handler(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestReadHandlers_StoreErrors(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		target     string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"list failure", http.MethodGet, "/api/estudiantes", errors.New("disk on fire"), http.StatusInternalServerError, response.MsgInternal},
		{"get not found", http.MethodGet, "/api/estudiantes/1", storage.ErrNotFound, http.StatusNotFound, response.MsgNotFound},
		{"get failure", http.MethodGet, "/api/estudiantes/1", errors.New("disk on fire"), http.StatusInternalServerError, response.MsgInternal},
		{"delete failure", http.MethodDelete, "/api/estudiantes/1", errors.New("disk on fire"), http.StatusInternalServerError, response.MsgInternal},
		// Only writes can collide on carnet; anywhere else it is a server fault.
		{"delete carnet", http.MethodDelete, "/api/estudiantes/1", storage.ErrCarnetTaken, http.StatusInternalServerError, response.MsgInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(&mockStorage{err: tt.err}, tt.method, tt.target, "")
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantMsg, decodeError(t, w).Message)
		})
	}
}
