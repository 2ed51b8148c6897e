// Package response provides helpers for writing consistent JSON HTTP
// responses.
//
// Success bodies are whatever the handler passes in (a student, a list, a
// message envelope). Error bodies always look like:
//
//	{ "status": "error", "message": "Estudiante no encontrado" }
//
// The "message" key is what browser clients display to the user; "error"
// carries optional detail such as the failing fields.
package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Response is the standard envelope returned for error cases.
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// Status string constants.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// User-facing messages. Browser clients show these verbatim.
const (
	MsgRequiredFields   = "Todos los campos son obligatorios"
	MsgInvalidBody      = "Cuerpo de la solicitud inválido"
	MsgCarnetTaken      = "Ya existe un estudiante con ese carnet"
	MsgCarnetTakenOther = "Ya existe otro estudiante con ese carnet"
	MsgNotFound         = "Estudiante no encontrado"
	MsgInternal         = "Error interno del servidor"
	MsgBodyTooLarge     = "Cuerpo de la solicitud demasiado grande"
)

// Mutation is the body returned by create, update and delete.
type Mutation struct {
	Message    string `json:"message"`
	Estudiante any    `json:"estudiante"`
}

// WriteJSON writes data as JSON with the given HTTP status code.
// Headers must be set before WriteHeader; the body follows.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// Message builds an error envelope with a user-facing message only.
func Message(msg string) Response {
	return Response{Status: StatusError, Message: msg}
}

// GeneralError wraps err under a user-facing message. Only use it for
// errors whose text is safe to show to clients (decode errors and the
// like); internal failures should go through Message(MsgInternal).
func GeneralError(msg string, err error) Response {
	return Response{
		Status:  StatusError,
		Message: msg,
		Error:   err.Error(),
	}
}

// ValidationError converts validator field errors into a single envelope.
//
// Example output:
//
//	{ "status": "error", "message": "Todos los campos son obligatorios",
//	  "error": "field carnet is required, field estado must be one of [Activo Inactivo]" }
func ValidationError(errs validator.ValidationErrors) Response {
	var errMessages []string

	for _, e := range errs {
		field := strings.ToLower(e.Field())
		switch e.ActualTag() {
		case "required":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is required", field))
		case "oneof":
			errMessages = append(errMessages,
				fmt.Sprintf("field %s must be one of [%s]", field, e.Param()))
		default:
			errMessages = append(errMessages,
				fmt.Sprintf("field %s is invalid", field))
		}
	}

	return Response{
		Status:  StatusError,
		Message: MsgRequiredFields,
		Error:   strings.Join(errMessages, ", "),
	}
}
