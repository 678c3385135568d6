package http

import (
	"encoding/json"
	"net/http"

	"interview-coach-service/internal/app"
	"interview-coach-service/internal/domain"
	"interview-coach-service/internal/evaluation"
)

// EvaluateHandler scores a single answer outside of any session.
type EvaluateHandler struct {
	evaluator app.Evaluator
}

func NewEvaluateHandler(evaluator app.Evaluator) *EvaluateHandler {
	return &EvaluateHandler{evaluator: evaluator}
}

type evaluateRequest struct {
	QuestionText    string   `json:"questionText"`
	QuestionType    string   `json:"questionType"`
	ExpectedOutline string   `json:"expectedOutline"`
	SkillsTested    []string `json:"skillsTested"`
	Answer          string   `json:"answer"`
	Role            string   `json:"role"`
}

// Evaluate handles POST /api/evaluate
func (h *EvaluateHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	qt := domain.QuestionTechnical
	if req.QuestionType != "" {
		parsed, err := domain.ParseQuestionType(req.QuestionType)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		qt = parsed
	}
	ev, err := h.evaluator.Evaluate(r.Context(), evaluation.Request{
		QuestionText:    req.QuestionText,
		QuestionType:    qt,
		ExpectedOutline: req.ExpectedOutline,
		SkillsTested:    req.SkillsTested,
		Answer:          req.Answer,
		Role:            req.Role,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}
