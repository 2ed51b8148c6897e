package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// Logger logs one line per request. 5xx log at error, 4xx at warn, the
// rest at info.
func Logger(log *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}

			next.ServeHTTP(rec, r)

			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}
			attrs := []any{
				slog.Int("status", status),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("query", r.URL.RawQuery),
				slog.String("remote", r.RemoteAddr),
				slog.Int("bytes", rec.bytes),
				slog.Duration("latency", time.Since(start)),
				slog.String("request_id", RequestIDFrom(r.Context())),
			}

			switch {
			case status >= 500:
				log.ErrorContext(r.Context(), "request failed", attrs...)
			case status >= 400:
				log.WarnContext(r.Context(), "client error", attrs...)
			default:
				log.InfoContext(r.Context(), "request completed", attrs...)
			}
		})
	}
}
