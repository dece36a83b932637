package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/DaniilDDDDD/Cloud-File-Storage/internal/ctxkeys"
)

// statusRecorder captures the status code and body size for the access log.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
	wrote  bool
}

func (sr *statusRecorder) WriteHeader(code int) {
	if !sr.wrote {
		sr.status = code
		sr.wrote = true
		sr.ResponseWriter.WriteHeader(code)
	}
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if !sr.wrote {
		sr.WriteHeader(http.StatusOK)
	}
	n, err := sr.ResponseWriter.Write(b)
	sr.bytes += n
	return n, err
}

// Probes and metrics scrapes are too chatty to keep in the access log.
var unloggedPaths = map[string]bool{
	"/healthz": true,
	"/metrics": true,
}

// RequestLogging writes one access-log line per request, including the
// resolved principal. Must run after Identity in the chain.
func RequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if unloggedPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		user := "anonymous"
		if ident := ctxkeys.Identity(r.Context()); ident.Authenticated() {
			user = ident.UserID
		}

		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"bytes", rec.bytes,
			"duration_ms", time.Since(start).Milliseconds(),
			"user", user,
			"remote_addr", r.RemoteAddr,
		)
	})
}
