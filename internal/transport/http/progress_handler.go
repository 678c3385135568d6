package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"interview-coach-service/internal/app"
	"interview-coach-service/internal/domain"
)

// ProgressHandler serves the read-only progress endpoints.
type ProgressHandler struct {
	service *app.ProgressService
}

func NewProgressHandler(service *app.ProgressService) *ProgressHandler {
	return &ProgressHandler{service: service}
}

// Summary handles GET /api/users/{userId}/progress
func (h *ProgressHandler) Summary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.service.GetUserProgress(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// Analytics handles GET /api/users/{userId}/analytics?period=30d
func (h *ProgressHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	period, err := domain.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out, err := h.service.GetProgressAnalytics(r.Context(), mux.Vars(r)["userId"], period)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// LearningPath handles GET /api/users/{userId}/learning-path
func (h *ProgressHandler) LearningPath(w http.ResponseWriter, r *http.Request) {
	path, err := h.service.GetLearningPath(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, path)
}

// Milestones handles GET /api/users/{userId}/milestones
func (h *ProgressHandler) Milestones(w http.ResponseWriter, r *http.Request) {
	milestones, err := h.service.GetMilestones(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, milestones)
}

// Compare handles GET /api/compare?baseline={id}&compared={id}
func (h *ProgressHandler) Compare(w http.ResponseWriter, r *http.Request) {
	baseline := r.URL.Query().Get("baseline")
	compared := r.URL.Query().Get("compared")
	if baseline == "" || compared == "" {
		writeError(w, http.StatusBadRequest, "missing baseline or compared")
		return
	}
	cmp, err := h.service.CompareSessions(r.Context(), baseline, compared)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}
