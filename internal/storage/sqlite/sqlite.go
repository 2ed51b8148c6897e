// Package sqlite implements storage.Storage on a SQLite file, for
// deployments that prefer a database file to a JSON document.
//
// The semantics match the JSON store exactly: string ids assigned as
// max+1, carnet uniqueness checked before every write, createdAt kept on
// update. The UNIQUE constraint on carnet is a backstop for writers that
// race past the check.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aanand-mishra/estudiantes-api/internal/storage"
	"github.com/aanand-mishra/estudiantes-api/internal/types"

	"github.com/mattn/go-sqlite3"
)

// SQLite is the database-backed implementation of storage.Storage.
// *sql.DB is a connection pool and is safe for concurrent use.
type SQLite struct {
	Db  *sql.DB
	now func() time.Time
}

// New opens (or creates) the database at path and makes sure the
// estudiantes table exists.
func New(path string, opts ...storage.Option) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("sqlite.New: create data dir: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// seq only preserves insertion order; id is the public key.
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS estudiantes (
			seq        INTEGER PRIMARY KEY AUTOINCREMENT,
			id         TEXT NOT NULL UNIQUE,
			carnet     TEXT NOT NULL UNIQUE,
			nombre     TEXT NOT NULL,
			apellido   TEXT NOT NULL,
			grado      TEXT NOT NULL,
			estado     TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	o := storage.BuildOptions(opts...)
	return &SQLite{Db: db, now: o.Now}, nil
}

const selectColumns = "SELECT id, carnet, nombre, apellido, grado, estado, created_at, updated_at FROM estudiantes"

type scanner interface {
	Scan(dest ...any) error
}

func scanStudent(row scanner) (types.Student, error) {
	var (
		s                types.Student
		estado           string
		created, updated string
	)
	if err := row.Scan(&s.ID, &s.Carnet, &s.Nombre, &s.Apellido, &s.Grado, &estado, &created, &updated); err != nil {
		return types.Student{}, err
	}
	s.Estado = types.Estado(estado)

	var err error
	if s.CreatedAt, err = time.Parse(time.RFC3339, created); err != nil {
		return types.Student{}, fmt.Errorf("parse created_at: %w", err)
	}
	if s.UpdatedAt, err = time.Parse(time.RFC3339, updated); err != nil {
		return types.Student{}, fmt.Errorf("parse updated_at: %w", err)
	}
	return s, nil
}

func formatTime(t time.Time) string {
	return types.FormatTime(t)
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

func (s *SQLite) GetStudents() ([]types.Student, error) {
	rows, err := s.Db.Query(selectColumns + " ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("GetStudents: query: %w", err)
	}
	defer rows.Close()

	students := make([]types.Student, 0)
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("GetStudents: scan row: %w", err)
		}
		students = append(students, student)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetStudents: rows iteration: %w", err)
	}
	return students, nil
}

func (s *SQLite) GetStudentByID(id string) (types.Student, error) {
	student, err := scanStudent(s.Db.QueryRow(selectColumns+" WHERE id = ? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return types.Student{}, fmt.Errorf("GetStudentByID %q: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return types.Student{}, fmt.Errorf("GetStudentByID: scan: %w", err)
	}
	return student, nil
}

// carnetOwner returns the id holding carnet, or "" when it is free.
func (s *SQLite) carnetOwner(carnet string) (string, error) {
	var id string
	err := s.Db.QueryRow("SELECT id FROM estudiantes WHERE carnet = ? LIMIT 1", carnet).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return id, err
}

func (s *SQLite) nextID() (string, error) {
	rows, err := s.Db.Query("SELECT id FROM estudiantes")
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var ids []types.Student
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", err
		}
		ids = append(ids, types.Student{ID: id})
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	return storage.NextID(ids)
}

func (s *SQLite) CreateStudent(in types.StudentInput) (types.Student, error) {
	in, err := storage.Normalize(in)
	if err != nil {
		return types.Student{}, err
	}

	owner, err := s.carnetOwner(in.Carnet)
	if err != nil {
		return types.Student{}, fmt.Errorf("CreateStudent: carnet lookup: %w", err)
	}
	if owner != "" {
		return types.Student{}, fmt.Errorf("CreateStudent %q: %w", in.Carnet, storage.ErrCarnetTaken)
	}

	id, err := s.nextID()
	if err != nil {
		return types.Student{}, fmt.Errorf("CreateStudent: next id: %w", err)
	}
	student := storage.NewStudent(id, in, s.now())

	_, err = s.Db.Exec(
		`INSERT INTO estudiantes (id, carnet, nombre, apellido, grado, estado, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		student.ID, student.Carnet, student.Nombre, student.Apellido, student.Grado,
		string(student.Estado), formatTime(student.CreatedAt), formatTime(student.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return types.Student{}, fmt.Errorf("CreateStudent %q: %w", in.Carnet, storage.ErrCarnetTaken)
	}
	if err != nil {
		return types.Student{}, fmt.Errorf("CreateStudent: exec: %w", err)
	}
	return student, nil
}

func (s *SQLite) UpdateStudentByID(id string, in types.StudentInput) (types.Student, error) {
	in, err := storage.Normalize(in)
	if err != nil {
		return types.Student{}, err
	}

	current, err := s.GetStudentByID(id)
	if err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudentByID: %w", err)
	}

	owner, err := s.carnetOwner(in.Carnet)
	if err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudentByID: carnet lookup: %w", err)
	}
	if owner != "" && owner != id {
		return types.Student{}, fmt.Errorf("UpdateStudentByID %q: %w", in.Carnet, storage.ErrCarnetTaken)
	}

	updated := storage.Apply(current, in, s.now())
	_, err = s.Db.Exec(
		`UPDATE estudiantes
		 SET carnet = ?, nombre = ?, apellido = ?, grado = ?, estado = ?, updated_at = ?
		 WHERE id = ?`,
		updated.Carnet, updated.Nombre, updated.Apellido, updated.Grado,
		string(updated.Estado), formatTime(updated.UpdatedAt), id,
	)
	if isUniqueViolation(err) {
		return types.Student{}, fmt.Errorf("UpdateStudentByID %q: %w", in.Carnet, storage.ErrCarnetTaken)
	}
	if err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudentByID: exec: %w", err)
	}
	return updated, nil
}

func (s *SQLite) DeleteStudentByID(id string) (types.Student, error) {
	current, err := s.GetStudentByID(id)
	if err != nil {
		return types.Student{}, fmt.Errorf("DeleteStudentByID: %w", err)
	}

	res, err := s.Db.Exec("DELETE FROM estudiantes WHERE id = ?", id)
	if err != nil {
		return types.Student{}, fmt.Errorf("DeleteStudentByID: exec: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return types.Student{}, fmt.Errorf("DeleteStudentByID: rows affected: %w", err)
	}
	if n == 0 {
		return types.Student{}, fmt.Errorf("DeleteStudentByID %q: %w", id, storage.ErrNotFound)
	}
	return current, nil
}

func (s *SQLite) Close() error {
	return s.Db.Close()
}

var _ storage.Storage = (*SQLite)(nil)
