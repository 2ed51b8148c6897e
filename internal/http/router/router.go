// Package router builds the API's http.Handler: the route table plus the
// middleware chain around it.
package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aanand-mishra/estudiantes-api/internal/http/handlers/health"
	"github.com/aanand-mishra/estudiantes-api/internal/http/handlers/student"
	"github.com/aanand-mishra/estudiantes-api/internal/http/middleware"
	"github.com/aanand-mishra/estudiantes-api/internal/storage"
)

// DefaultMaxBodyBytes applies when Options.MaxBodyBytes is zero.
const DefaultMaxBodyBytes = 1 << 20

// Options tunes the middleware chain. The zero value is usable.
type Options struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	MaxBodyBytes   int64
	Now            func() time.Time
}

// New returns the full handler.
//
// Route table:
//
//	GET    /                      liveness
//	GET    /api/estudiantes       list all students
//	POST   /api/estudiantes       create a student
//	GET    /api/estudiantes/{id}  get one student
//	PUT    /api/estudiantes/{id}  replace a student
//	DELETE /api/estudiantes/{id}  delete a student
func New(store storage.Storage, opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", health.New(opts.Now))

	mux.HandleFunc("GET /api/estudiantes", student.GetList(store))
	mux.HandleFunc("POST /api/estudiantes", student.New(store))
	mux.HandleFunc("GET /api/estudiantes/{id}", student.GetByID(store))
	mux.HandleFunc("PUT /api/estudiantes/{id}", student.Update(store))
	mux.HandleFunc("DELETE /api/estudiantes/{id}", student.Delete(store))

	return middleware.Chain(mux,
		middleware.RequestID(),
		middleware.Logger(opts.Logger),
		middleware.CORS(opts.AllowedOrigins),
		middleware.BodyLimit(opts.MaxBodyBytes),
	)
}
