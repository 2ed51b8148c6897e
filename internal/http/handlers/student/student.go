// Package student contains the HTTP handlers for the estudiantes resource.
//
// Each exported function is a factory: it is called once at startup with
// the storage dependency and returns the http.HandlerFunc the router
// invokes on every request.
//
//	router.HandleFunc("POST /api/estudiantes", student.New(store))
package student

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/estudiantes-api/internal/storage"
	"github.com/aanand-mishra/estudiantes-api/internal/types"
	"github.com/aanand-mishra/estudiantes-api/internal/utils/response"
)

// Success messages returned in the mutation envelope.
const (
	MsgCreated = "Estudiante creado exitosamente"
	MsgUpdated = "Estudiante actualizado exitosamente"
	MsgDeleted = "Estudiante eliminado exitosamente"
)

// decodeInput reads a StudentInput from the body. It writes the 4xx
// response itself and reports false when the handler should stop.
func decodeInput(w http.ResponseWriter, r *http.Request) (types.StudentInput, bool) {
	var in types.StudentInput
	err := json.NewDecoder(r.Body).Decode(&in)

	var tooLarge *http.MaxBytesError
	switch {
	case err == nil:
		return in, true
	case errors.Is(err, io.EOF):
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(response.MsgInvalidBody, errors.New("request body is empty")))
	case errors.As(err, &tooLarge):
		response.WriteJSON(w, http.StatusRequestEntityTooLarge,
			response.Message(response.MsgBodyTooLarge))
	default:
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(response.MsgInvalidBody, err))
	}
	return in, false
}

// writeMutationError handles the errors only create and update can produce,
// then falls back to writeStoreError. carnetMsg differs between the two.
func writeMutationError(w http.ResponseWriter, r *http.Request, err error, carnetMsg string) {
	var verr *storage.ValidationError
	switch {
	case errors.As(err, &verr):
		response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(verr.Fields))
	case errors.Is(err, storage.ErrCarnetTaken):
		response.WriteJSON(w, http.StatusBadRequest, response.Message(carnetMsg))
	default:
		writeStoreError(w, r, err)
	}
}

// writeStoreError maps a storage error onto a status code and body.
func writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		response.WriteJSON(w, http.StatusNotFound, response.Message(response.MsgNotFound))
	default:
		slog.ErrorContext(r.Context(), "storage failure",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
		response.WriteJSON(w, http.StatusInternalServerError, response.Message(response.MsgInternal))
	}
}

// New handles POST /api/estudiantes.
//
// Request body:
//
//	{ "carnet": "2024-001", "nombre": "Ana", "apellido": "Pérez", "grado": "5to", "estado": "Activo" }
//
// 201 with { "message": ..., "estudiante": {...} }; 400 on bad input or a
// duplicate carnet; 500 on storage failure.
func New(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a student")

		in, ok := decodeInput(w, r)
		if !ok {
			return
		}

		created, err := store.CreateStudent(in)
		if err != nil {
			writeMutationError(w, r, err, response.MsgCarnetTaken)
			return
		}

		slog.Info("student created", slog.String("id", created.ID))
		response.WriteJSON(w, http.StatusCreated, response.Mutation{Message: MsgCreated, Estudiante: created})
	}
}

// GetByID handles GET /api/estudiantes/{id}. 404 when the id is unknown.
func GetByID(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("getting a student", slog.String("id", id))

		student, err := store.GetStudentByID(id)
		if err != nil {
			writeStoreError(w, r, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, student)
	}
}

// GetList handles GET /api/estudiantes. Always a JSON array, [] when empty.
func GetList(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting all students")

		students, err := store.GetStudents()
		if err != nil {
			writeStoreError(w, r, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, students)
	}
}

// Update handles PUT /api/estudiantes/{id}. Every writable field is
// replaced; id and createdAt are kept.
func Update(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("updating a student", slog.String("id", id))

		in, ok := decodeInput(w, r)
		if !ok {
			return
		}

		updated, err := store.UpdateStudentByID(id, in)
		if err != nil {
			writeMutationError(w, r, err, response.MsgCarnetTakenOther)
			return
		}

		slog.Info("student updated", slog.String("id", id))
		response.WriteJSON(w, http.StatusOK, response.Mutation{Message: MsgUpdated, Estudiante: updated})
	}
}

// Delete handles DELETE /api/estudiantes/{id} and echoes the removed record.
func Delete(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("deleting a student", slog.String("id", id))

		deleted, err := store.DeleteStudentByID(id)
		if err != nil {
			writeStoreError(w, r, err)
			return
		}

		slog.Info("student deleted", slog.String("id", id))
		response.WriteJSON(w, http.StatusOK, response.Mutation{Message: MsgDeleted, Estudiante: deleted})
	}
}
