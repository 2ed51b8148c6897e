// Package jsonfile implements storage.Storage on top of a single JSON
// document of the form { "estudiantes": [...] }.
//
// Every call reads the whole file and every mutation rewrites it. Nothing
// is cached between calls, so edits made to the file by hand are picked up
// on the next request.
//
// There is no locking around the read-modify-write cycle: two concurrent
// writers can lose one of the updates. Writes are atomic (temp file plus
// rename), so the file itself is never left half written.
package jsonfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/aanand-mishra/estudiantes-api/internal/storage"
	"github.com/aanand-mishra/estudiantes-api/internal/types"
)

// JSONFile is the file-backed implementation of storage.Storage.
type JSONFile struct {
	path string
	now  func() time.Time
}

// New makes sure the directory holding path exists and returns a store
// bound to it. The file itself is created lazily on first read.
func New(path string, opts ...storage.Option) (*JSONFile, error) {
	if path == "" {
		return nil, errors.New("jsonfile.New: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("jsonfile.New: create data dir: %w", err)
	}
	o := storage.BuildOptions(opts...)
	return &JSONFile{path: path, now: o.Now}, nil
}

// Path returns the location of the backing file.
func (s *JSONFile) Path() string { return s.path }

// read loads the document. A missing file is replaced by an empty one; a
// file that exists but does not parse is an error.
func (s *JSONFile) read() (types.Document, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		doc := types.Document{Estudiantes: []types.Student{}}
		if err := s.write(doc); err != nil {
			return types.Document{}, err
		}
		return doc, nil
	}
	if err != nil {
		return types.Document{}, fmt.Errorf("read %s: %w", s.path, err)
	}

	var doc types.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return types.Document{}, fmt.Errorf("parse %s: %w", s.path, err)
	}
	if doc.Estudiantes == nil {
		doc.Estudiantes = []types.Student{}
	}
	return doc, nil
}

func (s *JSONFile) write(doc types.Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}

func (s *JSONFile) GetStudents() ([]types.Student, error) {
	doc, err := s.read()
	if err != nil {
		return nil, fmt.Errorf("GetStudents: %w", err)
	}
	return doc.Estudiantes, nil
}

func (s *JSONFile) GetStudentByID(id string) (types.Student, error) {
	doc, err := s.read()
	if err != nil {
		return types.Student{}, fmt.Errorf("GetStudentByID: %w", err)
	}
	i := storage.IndexOf(doc.Estudiantes, id)
	if i < 0 {
		return types.Student{}, fmt.Errorf("GetStudentByID %q: %w", id, storage.ErrNotFound)
	}
	return doc.Estudiantes[i], nil
}

func (s *JSONFile) CreateStudent(in types.StudentInput) (types.Student, error) {
	in, err := storage.Normalize(in)
	if err != nil {
		return types.Student{}, err
	}

	doc, err := s.read()
	if err != nil {
		return types.Student{}, fmt.Errorf("CreateStudent: %w", err)
	}
	if storage.CarnetTaken(doc.Estudiantes, in.Carnet, "") {
		return types.Student{}, fmt.Errorf("CreateStudent %q: %w", in.Carnet, storage.ErrCarnetTaken)
	}

	id, err := storage.NextID(doc.Estudiantes)
	if err != nil {
		return types.Student{}, fmt.Errorf("CreateStudent: %w", err)
	}
	student := storage.NewStudent(id, in, s.now())
	doc.Estudiantes = append(doc.Estudiantes, student)

	if err := s.write(doc); err != nil {
		return types.Student{}, fmt.Errorf("CreateStudent: %w", err)
	}
	return student, nil
}

func (s *JSONFile) UpdateStudentByID(id string, in types.StudentInput) (types.Student, error) {
	in, err := storage.Normalize(in)
	if err != nil {
		return types.Student{}, err
	}

	doc, err := s.read()
	if err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudentByID: %w", err)
	}
	i := storage.IndexOf(doc.Estudiantes, id)
	if i < 0 {
		return types.Student{}, fmt.Errorf("UpdateStudentByID %q: %w", id, storage.ErrNotFound)
	}
	if storage.CarnetTaken(doc.Estudiantes, in.Carnet, id) {
		return types.Student{}, fmt.Errorf("UpdateStudentByID %q: %w", in.Carnet, storage.ErrCarnetTaken)
	}

	doc.Estudiantes[i] = storage.Apply(doc.Estudiantes[i], in, s.now())

	if err := s.write(doc); err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudentByID: %w", err)
	}
	return doc.Estudiantes[i], nil
}

func (s *JSONFile) DeleteStudentByID(id string) (types.Student, error) {
	doc, err := s.read()
	if err != nil {
		return types.Student{}, fmt.Errorf("DeleteStudentByID: %w", err)
	}
	i := storage.IndexOf(doc.Estudiantes, id)
	if i < 0 {
		return types.Student{}, fmt.Errorf("DeleteStudentByID %q: %w", id, storage.ErrNotFound)
	}

	deleted := doc.Estudiantes[i]
	doc.Estudiantes = append(doc.Estudiantes[:i], doc.Estudiantes[i+1:]...)

	if err := s.write(doc); err != nil {
		return types.Student{}, fmt.Errorf("DeleteStudentByID: %w", err)
	}
	return deleted, nil
}

// Close is a no-op; the store holds no open handles between calls.
func (s *JSONFile) Close() error { return nil }

var _ storage.Storage = (*JSONFile)(nil)
