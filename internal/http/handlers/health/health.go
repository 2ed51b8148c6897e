// Package health serves the liveness endpoint at GET /.
package health

import (
	"net/http"
	"time"

	"github.com/aanand-mishra/estudiantes-api/internal/types"
	"github.com/aanand-mishra/estudiantes-api/internal/utils/response"
)

// MsgRunning is the body message of a healthy server.
const MsgRunning = "API de Estudiantes funcionando correctamente"

// Status is the liveness body. Timestamp is in types.TimeLayout.
type Status struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// New returns the liveness handler. now is injectable for tests; nil means
// time.Now.
func New(now func() time.Time) http.HandlerFunc {
	if now == nil {
		now = time.Now
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusOK, Status{
			Message:   MsgRunning,
			Timestamp: types.FormatTime(now()),
		})
	}
}
