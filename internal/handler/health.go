package handler

import "net/http"

// Healthz is a liveness probe.
func Healthz(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
