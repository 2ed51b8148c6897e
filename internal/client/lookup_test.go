package client

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/estudiantes-api/internal/types"
)

func roster() []types.Student {
	return []types.Student{
		{ID: "1", Carnet: "2024-001", Nombre: "Ana", Apellido: "Pérez", Grado: "5to", Estado: types.EstadoActivo},
		{ID: "2", Carnet: "2024-002", Nombre: "Luis", Apellido: "Gómez", Grado: "5to", Estado: types.EstadoInactivo},
		{ID: "3", Carnet: "B-77", Nombre: "Sofía", Apellido: "Ramírez", Grado: "1ro", Estado: types.EstadoActivo},
	}
}

func ids(students []types.Student) []string {
	out := make([]string, 0, len(students))
	for _, s := range students {
		out = append(out, s.ID)
	}
	return out
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name string
		term string
		want []string
	}{
		{"empty term keeps all", "", []string{"1", "2", "3"}},
		{"nombre ignores case", "aNa", []string{"1"}},
		{"apellido substring", "mírez", []string{"3"}},
		{"carnet", "b-7", []string{"3"}},
		{"grado", "5TO", []string{"1", "2"}},
		{"no match", "zzz", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Filter(roster(), tt.term)))
		})
	}
}

func TestSummarize(t *testing.T) {
	got := Summarize(roster())
	want := Stats{
		Total:             3,
		Activos:           2,
		Inactivos:         1,
		PorcentajeActivos: 67,
		GradosCount:       map[string]int{"5to": 2, "1ro": 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Summarize mismatch (-want +got):\n%s", diff)
	}
}

func TestSummarize_Empty(t *testing.T) {
	got := Summarize(nil)
	assert.Equal(t, 0, got.Total)
	assert.Equal(t, 0, got.PorcentajeActivos)
	assert.Empty(t, got.GradosCount)
}

func TestClient_SearchAndStats(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.PorcentajeActivos)

	_, err = c.Create(ctx, input("B-01"))
	require.NoError(t, err)
	in := input("C-02")
	in.Nombre = "Marta"
	in.Estado = types.EstadoInactivo
	_, err = c.Create(ctx, in)
	require.NoError(t, err)

	found, err := c.Search(ctx, "MARTA")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "C-02", found[0].Carnet)

	stats, err = c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 50, stats.PorcentajeActivos)
	assert.Equal(t, map[string]int{"3ro Básico": 2}, stats.GradosCount)
}
