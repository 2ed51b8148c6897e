// Command estudiantes-cli manages student records through a running
// estudiantes API server.
//
//	estudiantes-cli list
//	estudiantes-cli create --carnet 2024-001 --nombre Ana --apellido Pérez --grado 5to
//	estudiantes-cli update 1 --carnet 2024-001 --nombre Ana --apellido Pérez --grado 6to --estado Inactivo
//	estudiantes-cli delete 1
//
// The server URL comes from --server or ESTUDIANTES_API_URL.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
