package client

import (
	"context"
	"math"
	"strings"

	"github.com/aanand-mishra/estudiantes-api/internal/types"
)

// Stats summarises a set of students.
type Stats struct {
	Total     int `json:"total"`
	Activos   int `json:"activos"`
	Inactivos int `json:"inactivos"`
	// PorcentajeActivos is activos/total as a rounded whole percentage, 0
	// when there are no students.
	PorcentajeActivos int            `json:"porcentajeActivos"`
	GradosCount       map[string]int `json:"gradosCount"`
}

// Filter returns the students whose nombre, apellido, carnet or grado
// contains term, ignoring case. An empty term matches everything.
func Filter(students []types.Student, term string) []types.Student {
	if term == "" {
		return students
	}
	term = strings.ToLower(term)

	matches := make([]types.Student, 0)
	for _, s := range students {
		for _, field := range []string{s.Nombre, s.Apellido, s.Carnet, s.Grado} {
			if strings.Contains(strings.ToLower(field), term) {
				matches = append(matches, s)
				break
			}
		}
	}
	return matches
}

// Summarize counts students by estado and by grado.
func Summarize(students []types.Student) Stats {
	stats := Stats{Total: len(students), GradosCount: make(map[string]int)}
	for _, s := range students {
		switch s.Estado {
		case types.EstadoActivo:
			stats.Activos++
		case types.EstadoInactivo:
			stats.Inactivos++
		}
		stats.GradosCount[s.Grado]++
	}
	if stats.Total > 0 {
		stats.PorcentajeActivos = int(math.Round(float64(stats.Activos) / float64(stats.Total) * 100))
	}
	return stats
}

// Search lists every student and keeps those matching term (see Filter).
// The API has no search endpoint, so the filtering happens here.
func (c *Client) Search(ctx context.Context, term string) ([]types.Student, error) {
	students, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	return Filter(students, term), nil
}

// Stats lists every student and summarises them.
func (c *Client) Stats(ctx context.Context) (Stats, error) {
	students, err := c.List(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Summarize(students), nil
}
