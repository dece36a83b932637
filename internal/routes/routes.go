package routes

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/DaniilDDDDD/Cloud-File-Storage/internal/app"
	"github.com/DaniilDDDDD/Cloud-File-Storage/internal/handler"
	"github.com/DaniilDDDDD/Cloud-File-Storage/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	files := handler.NewFilesHandler(app.FileService, app.RetrievalService, app.ListingService, app.Cfg.MaxUploadSize)

	uploadLimiter := middleware.NewRateLimiter(app.Cfg.UploadRateLimit, app.Cfg.UploadRateWindow)

	mux := http.NewServeMux()

	// Operational
	mux.HandleFunc("GET /healthz", handler.Healthz)
	mux.Handle("GET /metrics", promhttp.Handler())

	// File records
	mux.HandleFunc("GET /files", files.List)
	mux.HandleFunc("POST /files", uploadLimiter.Limit(files.Create))
	mux.HandleFunc("GET /files/{id}", files.Get)
	mux.HandleFunc("PATCH /files/{id}", files.UpdateAccess)
	mux.HandleFunc("DELETE /files/{id}", files.Delete)
	mux.HandleFunc("GET /files/{id}/link", files.Link)

	// Link resolution (policy re-checked on every fetch)
	mux.HandleFunc("GET /files/view/{filename}", files.View)
	mux.HandleFunc("GET /files/download/{filename}", files.Download)

	return middleware.Chain(mux,
		middleware.Identity(app.Cfg.JWTSecret),
		middleware.RequestLogging,
		middleware.Metrics,
	)
}
