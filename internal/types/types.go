// Package types holds the shared data structures used across the
// application. Handlers, storage backends and the HTTP client all import
// it, so it must not import any of them.
package types

import (
	"encoding/json"
	"time"
)

// Estado is the enrolment status of a student.
type Estado string

const (
	EstadoActivo   Estado = "Activo"
	EstadoInactivo Estado = "Inactivo"
)

// Student is a persisted student record.
//
// The JSON keys are the ones stored in data/estudiantes.json and served by
// the REST API, so they must not change.
type Student struct {
	ID        string    `json:"id"`
	Carnet    string    `json:"carnet"`
	Nombre    string    `json:"nombre"`
	Apellido  string    `json:"apellido"`
	Grado     string    `json:"grado"`
	Estado    Estado    `json:"estado"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TimeLayout is how createdAt and updatedAt are written: UTC, RFC 3339,
// always three fractional digits (2024-03-01T09:00:00.000Z).
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatTime renders t in TimeLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// MarshalJSON writes the timestamps in TimeLayout. The default time.Time
// encoding drops trailing zeros from the fraction. Decoding needs no
// counterpart since TimeLayout is valid RFC 3339.
func (s Student) MarshalJSON() ([]byte, error) {
	type plain Student
	return json.Marshal(struct {
		plain
		CreatedAt string `json:"createdAt"`
		UpdatedAt string `json:"updatedAt"`
	}{
		plain:     plain(s),
		CreatedAt: FormatTime(s.CreatedAt),
		UpdatedAt: FormatTime(s.UpdatedAt),
	})
}

// StudentInput is the writable part of a Student: the body of POST and PUT.
//
// validate:"..." tags are checked by go-playground/validator before any
// backend touches its data.
type StudentInput struct {
	Carnet   string `json:"carnet"   validate:"required"`
	Nombre   string `json:"nombre"   validate:"required"`
	Apellido string `json:"apellido" validate:"required"`
	Grado    string `json:"grado"    validate:"required"`
	Estado   Estado `json:"estado"   validate:"omitempty,oneof=Activo Inactivo"`
}

// Document is the on-disk shape of the JSON store.
type Document struct {
	Estudiantes []Student `json:"estudiantes"`
}
