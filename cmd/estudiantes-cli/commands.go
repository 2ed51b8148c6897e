package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/aanand-mishra/estudiantes-api/internal/client"
	"github.com/aanand-mishra/estudiantes-api/internal/types"
)

const envServerURL = "ESTUDIANTES_API_URL"

type rootOptions struct {
	server  string
	timeout time.Duration
	asJSON  bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	defaultServer := os.Getenv(envServerURL)
	if defaultServer == "" {
		defaultServer = client.DefaultBaseURL
	}

	root := &cobra.Command{
		Use:           "estudiantes-cli",
		Short:         "Manage student records through the estudiantes API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.server, "server", defaultServer, "API base URL (env "+envServerURL+")")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "per-request timeout")
	root.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "print raw JSON instead of a table")

	root.AddCommand(
		newListCmd(opts),
		newGetCmd(opts),
		newCreateCmd(opts),
		newUpdateCmd(opts),
		newDeleteCmd(opts),
		newSearchCmd(opts),
		newStatsCmd(opts),
	)
	return root
}

func (o *rootOptions) newClient() (*client.Client, error) {
	return client.New(o.server)
}

func (o *rootOptions) withTimeout(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), o.timeout)
}

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all students",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.newClient()
			if err != nil {
				return err
			}
			ctx, cancel := opts.withTimeout(cmd)
			defer cancel()

			students, err := c.List(ctx)
			if err != nil {
				return err
			}
			return opts.printList(cmd.OutOrStdout(), students)
		},
	}
}

func newGetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get [id]",
		Short: "Show one student",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.newClient()
			if err != nil {
				return err
			}
			ctx, cancel := opts.withTimeout(cmd)
			defer cancel()

			student, err := c.Get(ctx, args[0])
			if err != nil {
				return err
			}
			return opts.printOne(cmd.OutOrStdout(), student)
		},
	}
}

// bindInputFlags registers the writable fields as flags on cmd.
func bindInputFlags(cmd *cobra.Command, in *types.StudentInput) {
	f := cmd.Flags()
	f.StringVar(&in.Carnet, "carnet", "", "student id code (unique)")
	f.StringVar(&in.Nombre, "nombre", "", "first name")
	f.StringVar(&in.Apellido, "apellido", "", "last name")
	f.StringVar(&in.Grado, "grado", "", "grade or class")
	f.StringVar((*string)(&in.Estado), "estado", "", "Activo or Inactivo (default Activo)")
	for _, name := range []string{"carnet", "nombre", "apellido", "grado"} {
		cmd.MarkFlagRequired(name)
	}
}

func newCreateCmd(opts *rootOptions) *cobra.Command {
	var in types.StudentInput
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a student",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.newClient()
			if err != nil {
				return err
			}
			ctx, cancel := opts.withTimeout(cmd)
			defer cancel()

			student, err := c.Create(ctx, in)
			if err != nil {
				return err
			}
			return opts.printOne(cmd.OutOrStdout(), student)
		},
	}
	bindInputFlags(cmd, &in)
	return cmd
}

func newUpdateCmd(opts *rootOptions) *cobra.Command {
	var in types.StudentInput
	cmd := &cobra.Command{
		Use:   "update [id]",
		Short: "Replace every field of a student",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.newClient()
			if err != nil {
				return err
			}
			ctx, cancel := opts.withTimeout(cmd)
			defer cancel()

			student, err := c.Update(ctx, args[0], in)
			if err != nil {
				return err
			}
			return opts.printOne(cmd.OutOrStdout(), student)
		},
	}
	bindInputFlags(cmd, &in)
	return cmd
}

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a student",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.newClient()
			if err != nil {
				return err
			}
			ctx, cancel := opts.withTimeout(cmd)
			defer cancel()

			student, err := c.Delete(ctx, args[0])
			if err != nil {
				return err
			}
			return opts.printOne(cmd.OutOrStdout(), student)
		},
	}
}

func newSearchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search [term]",
		Short: "List students whose nombre, apellido, carnet or grado contains term",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.newClient()
			if err != nil {
				return err
			}
			ctx, cancel := opts.withTimeout(cmd)
			defer cancel()

			students, err := c.Search(ctx, args[0])
			if err != nil {
				return err
			}
			return opts.printList(cmd.OutOrStdout(), students)
		},
	}
}

func newStatsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show totals by estado and grado",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.newClient()
			if err != nil {
				return err
			}
			ctx, cancel := opts.withTimeout(cmd)
			defer cancel()

			stats, err := c.Stats(ctx)
			if err != nil {
				return err
			}
			if opts.asJSON {
				return writeJSON(cmd.OutOrStdout(), stats)
			}
			return writeStats(cmd.OutOrStdout(), stats)
		},
	}
}

// printOne writes a single record as indented JSON or as a one-row table.
func (o *rootOptions) printOne(w io.Writer, s types.Student) error {
	if o.asJSON {
		return writeJSON(w, s)
	}
	return writeTable(w, []types.Student{s})
}

// printList writes records as an indented JSON array or as a table.
func (o *rootOptions) printList(w io.Writer, students []types.Student) error {
	if o.asJSON {
		if students == nil {
			students = []types.Student{}
		}
		return writeJSON(w, students)
	}
	return writeTable(w, students)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeTable(w io.Writer, students []types.Student) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCARNET\tNOMBRE\tAPELLIDO\tGRADO\tESTADO")
	for _, s := range students {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", s.ID, s.Carnet, s.Nombre, s.Apellido, s.Grado, s.Estado)
	}
	return tw.Flush()
}

func writeStats(w io.Writer, stats client.Stats) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Total\t%d\n", stats.Total)
	fmt.Fprintf(tw, "Activos\t%d (%d%%)\n", stats.Activos, stats.PorcentajeActivos)
	fmt.Fprintf(tw, "Inactivos\t%d\n", stats.Inactivos)

	grados := make([]string, 0, len(stats.GradosCount))
	for g := range stats.GradosCount {
		grados = append(grados, g)
	}
	sort.Strings(grados)
	for _, g := range grados {
		fmt.Fprintf(tw, "  %s\t%d\n", g, stats.GradosCount[g])
	}
	return tw.Flush()
}
