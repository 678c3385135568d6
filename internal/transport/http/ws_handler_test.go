package http

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"interview-coach-service/internal/analytics"
	"interview-coach-service/internal/app"
	"interview-coach-service/internal/domain"
	"interview-coach-service/internal/evaluation"
	"interview-coach-service/internal/infra/memory"
	"interview-coach-service/internal/questiongen"
)

func TestWebSocketInterviewFlow(t *testing.T) {
	server, sessions := newTestServer(t)
	session, err := sessions.CreateSession(context.Background(), app.CreateSessionRequest{
		UserID:         "u1",
		Role:           "Backend Engineer",
		QuestionCounts: map[domain.QuestionType]int{domain.QuestionTechnical: 1, domain.QuestionBehavioral: 1},
	})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	u := "ws" + server.URL[len("http"):] + "/ws?sessionId=" + session.ID
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Expect the snapshot first.
	readUntil(t, conn, "session")

	send(t, conn, map[string]any{"type": "start"})
	q := readUntil(t, conn, "question")
	if q["index"] != float64(0) {
		t.Fatalf("expected first question, got %+v", q)
	}
	if _, leaked := q["expectedOutline"]; leaked {
		t.Fatalf("expected outline must not be sent to the candidate")
	}

	send(t, conn, map[string]any{"type": "answer", "payload": map[string]any{
		"answer":           "An index lets the database find matching rows without scanning the whole table, for example a B-tree on user_id.",
		"timeSpentSeconds": 45,
		"questionIndex":    0,
	}})
	ev := readUntil(t, conn, "evaluation")
	if ev["questionIndex"] != float64(0) || ev["evaluation"] == nil {
		t.Fatalf("unexpected evaluation payload %+v", ev)
	}
	readUntil(t, conn, "question")

	// wrong index is rejected without closing the socket
	send(t, conn, map[string]any{"type": "skip", "payload": map[string]any{"questionIndex": 0}})
	e := readUntil(t, conn, "error")
	if e["status"] != float64(409) {
		t.Fatalf("expected 409 error, got %+v", e)
	}

	send(t, conn, map[string]any{"type": "skip", "payload": map[string]any{"questionIndex": 1}})
	send(t, conn, map[string]any{"type": "complete"})
	done := readUntil(t, conn, "completed")
	if done["status"] != string(domain.StatusCompleted) {
		t.Fatalf("expected completed session, got %+v", done["status"])
	}
}

func TestWebSocketUnknownSession(t *testing.T) {
	server, _ := newTestServer(t)
	u := "ws" + server.URL[len("http"):] + "/ws?sessionId=missing"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Fatalf("expected handshake failure")
	}
	if resp == nil || resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %+v", resp)
	}
}

func send(t *testing.T, conn *websocket.Conn, msg map[string]any) {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write %v: %v", msg["type"], err)
	}
}

// readUntil skips session broadcasts and other messages until one of type expect arrives.
func readUntil(t *testing.T, conn *websocket.Conn, expect string) map[string]any {
	t.Helper()
	for i := 0; i < 20; i++ {
		var msg struct {
			Type    string         `json:"type"`
			Payload map[string]any `json:"payload"`
		}
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read json waiting for %s: %v", expect, err)
		}
		if msg.Type == expect {
			return msg.Payload
		}
		if msg.Type == "error" && expect != "error" {
			t.Fatalf("unexpected error while waiting for %s: %+v", expect, msg.Payload)
		}
	}
	t.Fatalf("no %s message received", expect)
	return nil
}

func newTestServer(t *testing.T) (*httptest.Server, *app.SessionService) {
	t.Helper()
	store := memory.NewSessionStore()
	cache := memory.NewProgressCache(time.Minute)
	engine := evaluation.NewEngine(nil, evaluation.DefaultConfig())
	sessions := app.NewSessionService(store,
		questiongen.NewBankGenerator(questiongen.NewStaticSource(questiongen.BuiltinQuestions())),
		engine,
		app.WithProgressCache(cache))
	progress := app.NewProgressService(store, cache, analytics.New(analytics.DefaultThresholds()))

	server := httptest.NewServer(NewRouter(&Container{Sessions: sessions, Progress: progress, Evaluator: engine}))
	t.Cleanup(server.Close)
	return server, sessions
}
