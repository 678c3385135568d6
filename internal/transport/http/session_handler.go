package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"interview-coach-service/internal/app"
	"interview-coach-service/internal/domain"
)

// SessionHandler serves the session state-machine endpoints.
type SessionHandler struct {
	service *app.SessionService
}

func NewSessionHandler(service *app.SessionService) *SessionHandler {
	return &SessionHandler{service: service}
}

type createSessionRequest struct {
	UserID          string               `json:"userId"`
	Candidate       domain.CandidateMeta `json:"candidate"`
	Role            string               `json:"role"`
	ExperienceLevel string               `json:"experienceLevel"`
	Mode            string               `json:"mode"`
	QuestionCounts  map[string]int       `json:"questionCounts"`
}

type createSessionResponse struct {
	Session *domain.Session `json:"session"`

	// Warning is set when some question types came back short.
	Warning    string                       `json:"warning,omitempty"`
	Shortfalls []domain.GenerationShortfall `json:"shortfalls,omitempty"`
}

type answerRequest struct {
	Answer           string  `json:"answer"`
	TimeSpentSeconds float64 `json:"timeSpentSeconds"`
	QuestionIndex    *int    `json:"questionIndex,omitempty"`
}

type skipRequest struct {
	QuestionIndex *int `json:"questionIndex,omitempty"`
}

type answerResponse struct {
	Evaluation *domain.AnswerEvaluation `json:"evaluation"`
	Session    *domain.Session          `json:"session"`
}

// questionView is what a candidate sees of a question; the expected outline stays server-side.
type questionView struct {
	Index        int                 `json:"index"`
	QuestionID   string              `json:"questionId,omitempty"`
	Text         string              `json:"text"`
	Type         domain.QuestionType `json:"type"`
	Difficulty   domain.Difficulty   `json:"difficulty"`
	SkillsTested []string            `json:"skillsTested,omitempty"`
}

func newQuestionView(r *domain.QuestionResponse) questionView {
	return questionView{
		Index:        r.Index,
		QuestionID:   r.QuestionID,
		Text:         r.QuestionText,
		Type:         r.Type,
		Difficulty:   r.Difficulty,
		SkillsTested: r.SkillsTested,
	}
}

// Create handles POST /api/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	mode, err := domain.ParseSessionMode(req.Mode)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	counts := make(map[domain.QuestionType]int, len(req.QuestionCounts))
	for raw, n := range req.QuestionCounts {
		qt, err := domain.ParseQuestionType(raw)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		counts[qt] += n
	}

	session, err := h.service.CreateSession(r.Context(), app.CreateSessionRequest{
		UserID:          req.UserID,
		Candidate:       req.Candidate,
		Role:            req.Role,
		ExperienceLevel: req.ExperienceLevel,
		Mode:            mode,
		QuestionCounts:  counts,
	})
	var partial *domain.PartialGenerationError
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, createSessionResponse{Session: session})
	case errors.As(err, &partial) && !partial.Fatal && session != nil:
		writeJSON(w, http.StatusCreated, createSessionResponse{
			Session:    session,
			Warning:    partial.Error(),
			Shortfalls: partial.Shortfalls,
		})
	default:
		writeDomainError(w, err)
	}
}

// Get handles GET /api/sessions/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.GetSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// Start handles POST /api/sessions/{id}/start
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.StartSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// CurrentQuestion handles GET /api/sessions/{id}/question
func (h *SessionHandler) CurrentQuestion(w http.ResponseWriter, r *http.Request) {
	q, err := h.service.GetCurrentQuestion(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if q == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, newQuestionView(q))
}

// SubmitAnswer handles POST /api/sessions/{id}/answers
func (h *SessionHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	session, ev, err := h.service.SubmitAnswer(r.Context(), mux.Vars(r)["id"], domain.AnswerSubmission{
		Answer:        req.Answer,
		TimeSpent:     secondsToDuration(req.TimeSpentSeconds),
		QuestionIndex: req.QuestionIndex,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answerResponse{Evaluation: ev, Session: session})
}

// Skip handles POST /api/sessions/{id}/skip
func (h *SessionHandler) Skip(w http.ResponseWriter, r *http.Request) {
	var req skipRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	session, err := h.service.SkipQuestion(r.Context(), mux.Vars(r)["id"], req.QuestionIndex)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// Complete handles POST /api/sessions/{id}/complete
func (h *SessionHandler) Complete(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.CompleteSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// ListByUser handles GET /api/users/{userId}/sessions
func (h *SessionHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.service.ListUserSessions(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func secondsToDuration(s float64) time.Duration {
	if s <= 0 {
		return 0
	}
	return time.Duration(s * float64(time.Second))
}
