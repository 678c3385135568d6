package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"interview-coach-service/internal/app"
)

// Container holds every dependency of the router.
type Container struct {
	Sessions  *app.SessionService
	Progress  *app.ProgressService
	Evaluator app.Evaluator
}

// NewRouter builds the REST, WebSocket and operational routes.
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	sessions := NewSessionHandler(c.Sessions)
	progress := NewProgressHandler(c.Progress)
	evaluate := NewEvaluateHandler(c.Evaluator)
	ws := NewWSHandler(c.Sessions)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/sessions", sessions.Create).Methods("POST")
	api.HandleFunc("/sessions/{id}", sessions.Get).Methods("GET")
	api.HandleFunc("/sessions/{id}/start", sessions.Start).Methods("POST")
	api.HandleFunc("/sessions/{id}/question", sessions.CurrentQuestion).Methods("GET")
	api.HandleFunc("/sessions/{id}/answers", sessions.SubmitAnswer).Methods("POST")
	api.HandleFunc("/sessions/{id}/skip", sessions.Skip).Methods("POST")
	api.HandleFunc("/sessions/{id}/complete", sessions.Complete).Methods("POST")
	api.HandleFunc("/users/{userId}/sessions", sessions.ListByUser).Methods("GET")

	api.HandleFunc("/users/{userId}/progress", progress.Summary).Methods("GET")
	api.HandleFunc("/users/{userId}/analytics", progress.Analytics).Methods("GET")
	api.HandleFunc("/users/{userId}/learning-path", progress.LearningPath).Methods("GET")
	api.HandleFunc("/users/{userId}/milestones", progress.Milestones).Methods("GET")
	api.HandleFunc("/compare", progress.Compare).Methods("GET")

	api.HandleFunc("/evaluate", evaluate.Evaluate).Methods("POST")

	r.HandleFunc("/ws", ws.ServeWS).Methods("GET")
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	return r
}
