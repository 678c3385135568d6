package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"interview-coach-service/internal/app"
	"interview-coach-service/internal/domain"
)

func TestRESTSessionLifecycle(t *testing.T) {
	server, _ := newTestServer(t)

	var created createSessionResponse
	status := doJSON(t, server.URL, "POST", "/api/sessions", map[string]any{
		"userId":         "u1",
		"role":           "Engineering Manager",
		"mode":           "mock",
		"questionCounts": map[string]int{"behavioral": 1, "system-design": 1},
	}, &created)
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d", status)
	}
	id := created.Session.ID
	if created.Session.Type != domain.SessionMixed || len(created.Session.Responses) != 2 {
		t.Fatalf("unexpected session %+v", created.Session)
	}

	if status := doJSON(t, server.URL, "POST", "/api/sessions/"+id+"/answers", map[string]any{"answer": "too early"}, nil); status != http.StatusConflict {
		t.Fatalf("expected 409 before start, got %d", status)
	}
	if status := doJSON(t, server.URL, "POST", "/api/sessions/"+id+"/start", nil, nil); status != http.StatusOK {
		t.Fatalf("expected 200 on start, got %d", status)
	}

	var q questionView
	if status := doJSON(t, server.URL, "GET", "/api/sessions/"+id+"/question", nil, &q); status != http.StatusOK || q.Type != domain.QuestionBehavioral {
		t.Fatalf("expected behavioral question, got %d %+v", status, q)
	}

	var answered answerResponse
	status = doJSON(t, server.URL, "POST", "/api/sessions/"+id+"/answers", map[string]any{
		"answer":           "",
		"timeSpentSeconds": 5,
		"questionIndex":    0,
	}, &answered)
	if status != http.StatusOK {
		t.Fatalf("expected 200 for empty answer, got %d", status)
	}
	if answered.Evaluation.OverallScore > 20 || answered.Evaluation.Tier != domain.TierPoor {
		t.Fatalf("expected low score for empty answer, got %+v", answered.Evaluation)
	}

	if status := doJSON(t, server.URL, "POST", "/api/sessions/"+id+"/skip", nil, nil); status != http.StatusOK {
		t.Fatalf("expected 200 on skip, got %d", status)
	}
	if status := doJSON(t, server.URL, "GET", "/api/sessions/"+id+"/question", nil, nil); status != http.StatusNoContent {
		t.Fatalf("expected 204 with no current question, got %d", status)
	}

	var done domain.Session
	if status := doJSON(t, server.URL, "POST", "/api/sessions/"+id+"/complete", nil, &done); status != http.StatusOK {
		t.Fatalf("expected 200 on complete, got %d", status)
	}
	if done.Metrics == nil || done.Metrics.QuestionsSkipped != 1 {
		t.Fatalf("unexpected metrics %+v", done.Metrics)
	}

	var sum domain.ProgressSummary
	if status := doJSON(t, server.URL, "GET", "/api/users/u1/progress", nil, &sum); status != http.StatusOK || sum.CompletedSessions != 1 {
		t.Fatalf("unexpected progress %d %+v", status, sum)
	}
	var path domain.LearningPath
	if status := doJSON(t, server.URL, "GET", "/api/users/u1/learning-path", nil, &path); status != http.StatusOK || path.CurrentLevel != domain.LevelBeginner {
		t.Fatalf("unexpected learning path %d %+v", status, path)
	}
	if status := doJSON(t, server.URL, "GET", "/api/users/u1/analytics?period=fortnight", nil, nil); status != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown period, got %d", status)
	}
}

func TestRESTErrorMapping(t *testing.T) {
	server, sessions := newTestServer(t)

	if status := doJSON(t, server.URL, "GET", "/api/sessions/missing", nil, nil); status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
	if status := doJSON(t, server.URL, "POST", "/api/sessions", map[string]any{"userId": "u1", "questionCounts": map[string]int{"trivia": 1}}, nil); status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}

	a := completedSession(t, sessions, "alice")
	b := completedSession(t, sessions, "bob")
	if status := doJSON(t, server.URL, "GET", fmt.Sprintf("/api/compare?baseline=%s&compared=%s", a, b), nil, nil); status != http.StatusForbidden {
		t.Fatalf("expected 403 for cross-user compare, got %d", status)
	}
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domain.ErrSessionNotFound, http.StatusNotFound},
		{&domain.InvalidTransitionError{Op: "start", From: domain.StatusCompleted}, http.StatusConflict},
		{fmt.Errorf("store session: %w", domain.ErrVersionConflict), http.StatusConflict},
		{&domain.PartialGenerationError{Fatal: true}, http.StatusUnprocessableEntity},
		{domain.ErrCrossUserComparison, http.StatusForbidden},
		{domain.ErrInvalidInput, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := statusFor(tc.err); got != tc.want {
			t.Errorf("statusFor(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestEvaluateEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	var ev domain.AnswerEvaluation
	status := doJSON(t, server.URL, "POST", "/api/evaluate", map[string]any{
		"questionText": "Design a URL shortener.",
		"questionType": "system_design",
		"answer":       "I would use a key-value store with base62 ids, a cache in front for hot links, and shard by id to scale writes.",
	}, &ev)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if ev.Source != domain.SourceRules || len(ev.Feedback) < 2 {
		t.Fatalf("unexpected evaluation %+v", ev)
	}
	if _, ok := ev.CriterionScores[domain.CriterionScalability]; !ok {
		t.Fatalf("expected scalability criterion for system design")
	}

	if status := doJSON(t, server.URL, "POST", "/api/evaluate", map[string]any{"answer": "no question"}, nil); status != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing question text, got %d", status)
	}
}

func completedSession(t *testing.T, sessions *app.SessionService, userID string) string {
	t.Helper()
	ctx := context.Background()
	session, err := sessions.CreateSession(ctx, app.CreateSessionRequest{
		UserID:         userID,
		QuestionCounts: map[domain.QuestionType]int{domain.QuestionCoding: 1},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := sessions.StartSession(ctx, session.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := sessions.CompleteSession(ctx, session.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	return session.ID
}

func doJSON(t *testing.T, base, method, path string, body any, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, base+path, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return resp.StatusCode
}
