// Package storage defines the Storage interface that every record store
// backend must satisfy, together with the rules all backends share:
// input validation, id assignment and carnet uniqueness.
//
// Handlers depend only on this package. Switching from the JSON file to
// SQLite is a config change; no handler code moves.
package storage

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/aanand-mishra/estudiantes-api/internal/types"
	"github.com/go-playground/validator/v10"
)

// Storage is the record store contract.
type Storage interface {
	// CreateStudent validates in, assigns a new id and persists the record.
	CreateStudent(in types.StudentInput) (types.Student, error)

	// GetStudentByID returns ErrNotFound when no record has the given id.
	GetStudentByID(id string) (types.Student, error)

	// GetStudents returns every record in stored order. Never nil.
	GetStudents() ([]types.Student, error)

	// UpdateStudentByID replaces every writable field of an existing record.
	// id and createdAt are kept, updatedAt is regenerated.
	UpdateStudentByID(id string, in types.StudentInput) (types.Student, error)

	// DeleteStudentByID removes a record and returns it.
	DeleteStudentByID(id string) (types.Student, error)

	Close() error
}

var (
	// ErrNotFound is returned when no student has the requested id.
	ErrNotFound = errors.New("estudiante no encontrado")

	// ErrCarnetTaken is returned when a write would give two students the
	// same carnet.
	ErrCarnetTaken = errors.New("carnet ya registrado")

	// ErrIDExhausted is returned when the highest stored id is already
	// math.MaxInt64 and max+1 would wrap around.
	ErrIDExhausted = errors.New("no quedan ids disponibles")
)

// ValidationError reports which fields of a StudentInput failed validation.
type ValidationError struct {
	Fields validator.ValidationErrors
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, fmt.Sprintf("%s(%s)", f.Field(), f.ActualTag()))
	}
	return "invalid student: " + strings.Join(names, ", ")
}

// validate is safe for concurrent use and caches struct metadata, so one
// instance serves the whole process.
var validate = validator.New()

// Normalize validates in and fills defaults. Backends call it before reading
// their data so that a bad request never costs a file read.
func Normalize(in types.StudentInput) (types.StudentInput, error) {
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return in, &ValidationError{Fields: verrs}
		}
		return in, fmt.Errorf("Normalize: %w", err)
	}
	if in.Estado == "" {
		in.Estado = types.EstadoActivo
	}
	return in, nil
}

// NextID returns max(numeric ids)+1 as a string. Ids that are not integers
// count as zero, so an empty or fully non-numeric set yields "1".
func NextID(students []types.Student) (string, error) {
	var highest int64
	for _, s := range students {
		n, err := strconv.ParseInt(s.ID, 10, 64)
		if err != nil {
			continue
		}
		if n > highest {
			highest = n
		}
	}
	if highest == math.MaxInt64 {
		return "", ErrIDExhausted
	}
	return strconv.FormatInt(highest+1, 10), nil
}

// IndexOf returns the position of the record with the given id, or -1.
func IndexOf(students []types.Student, id string) int {
	for i, s := range students {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// CarnetTaken reports whether any record other than exceptID holds carnet.
// Pass an empty exceptID when creating.
func CarnetTaken(students []types.Student, carnet, exceptID string) bool {
	for _, s := range students {
		if s.Carnet == carnet && s.ID != exceptID {
			return true
		}
	}
	return false
}

// NewStudent builds a fresh record from validated input.
func NewStudent(id string, in types.StudentInput, now time.Time) types.Student {
	return types.Student{
		ID:        id,
		Carnet:    in.Carnet,
		Nombre:    in.Nombre,
		Apellido:  in.Apellido,
		Grado:     in.Grado,
		Estado:    in.Estado,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Apply replaces the writable fields of s with in and stamps updatedAt.
func Apply(s types.Student, in types.StudentInput, now time.Time) types.Student {
	s.Carnet = in.Carnet
	s.Nombre = in.Nombre
	s.Apellido = in.Apellido
	s.Grado = in.Grado
	s.Estado = in.Estado
	s.UpdatedAt = now
	return s
}

// Now is the default clock: UTC at millisecond precision, which is what the
// stored ISO timestamps carry.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// Options carries the knobs shared by every backend.
type Options struct {
	Now func() time.Time
}

// Option configures a backend at construction time.
type Option func(*Options)

// WithClock replaces the clock used for createdAt and updatedAt.
func WithClock(now func() time.Time) Option {
	return func(o *Options) { o.Now = now }
}

// BuildOptions applies opts over the defaults.
func BuildOptions(opts ...Option) Options {
	o := Options{Now: Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
