package httpx

import (
	"log/slog"
	"net/http"

	"github.com/jobrelay/jobrelay/internal/service"
)

// RouterServices groups the dependencies the router needs.
type RouterServices struct {
	Jobs     *service.JobService
	Executor *service.Executor
	DB       Pinger
	Logger   *slog.Logger
}

// NewRouter builds the HTTP handler with all routes and middleware.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	jobs := &JobHandlers{Jobs: services.Jobs, Executor: services.Executor}
	mux.HandleFunc("POST /jobs", jobs.CreateJob)
	mux.HandleFunc("GET /jobs", jobs.ListJobs)
	mux.HandleFunc("GET /jobs/stats", jobs.JobStats)
	mux.HandleFunc("GET /jobs/{id}", jobs.GetJob)
	mux.HandleFunc("POST /run-job/{id}", jobs.RunJob)

	webhook := &WebhookTestHandler{Logger: services.Logger}
	mux.HandleFunc("POST /webhook-test", webhook.Receive)

	health := &HealthHandler{DB: services.DB}
	mux.HandleFunc("GET /healthz", health.Health)
	mux.HandleFunc("HEAD /healthz", health.Health)

	logging := Logging(services.Logger.With("component", "http"))
	recovery := Recover(services.Logger.With("component", "http"))

	return recovery(logging(mux))
}
