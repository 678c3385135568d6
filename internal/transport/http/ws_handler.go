package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"interview-coach-service/internal/app"
	"interview-coach-service/internal/domain"
)

// WSHandler runs a live interview over a websocket. Clients drive the session
// with start, answer, skip and complete messages.
type WSHandler struct {
	service  *app.SessionService
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

func NewWSHandler(service *app.SessionService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: slog.Default().With(slog.String("component", "ws")),
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

type evaluationPayload struct {
	QuestionIndex int                      `json:"questionIndex"`
	Evaluation    *domain.AnswerEvaluation `json:"evaluation"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into the session use cases.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		http.Error(w, "missing sessionId", http.StatusBadRequest)
		return
	}
	session, err := h.service.GetSession(r.Context(), sessionID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	updates, cancel, err := h.service.Subscribe(r.Context(), sessionID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: wsError(err)})
		return
	}
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// single writer: gorilla connections do not support concurrent writes
	go func() {
		defer close(writerDone)
		failed := false
		for msg := range send {
			if failed {
				continue
			}
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Debug("ws write error", slog.String("session_id", sessionID), slog.String("error", err.Error()))
				// unblocks the reader; keep draining so senders never stall
				failed = true
				_ = conn.Close()
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "session", Payload: update}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "session", Payload: app.SessionUpdate{Op: "snapshot", Session: session}}
	if cur := session.Current(); cur != nil && session.Status == domain.StatusInProgress {
		send <- outboundMessage[any]{Type: "question", Payload: newQuestionView(cur)}
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		for _, msg := range h.handle(r, sessionID, inbound) {
			send <- msg
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

// handle runs one inbound message and returns the direct replies.
func (h *WSHandler) handle(r *http.Request, sessionID string, inbound inboundMessage) []outboundMessage[any] {
	ctx := r.Context()
	switch inbound.Type {
	case "start":
		session, err := h.service.StartSession(ctx, sessionID)
		if err != nil {
			return errorReply(err)
		}
		return nextQuestion(session)

	case "answer":
		var payload answerRequest
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return []outboundMessage[any]{{Type: "error", Payload: errorPayload{Message: "invalid answer payload", Status: http.StatusBadRequest}}}
		}
		session, ev, err := h.service.SubmitAnswer(ctx, sessionID, domain.AnswerSubmission{
			Answer:        payload.Answer,
			TimeSpent:     secondsToDuration(payload.TimeSpentSeconds),
			QuestionIndex: payload.QuestionIndex,
		})
		if err != nil {
			return errorReply(err)
		}
		out := []outboundMessage[any]{{Type: "evaluation", Payload: evaluationPayload{
			QuestionIndex: session.CurrentIndex - 1,
			Evaluation:    ev,
		}}}
		return append(out, nextQuestion(session)...)

	case "skip":
		var payload skipRequest
		if len(inbound.Payload) > 0 {
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				return []outboundMessage[any]{{Type: "error", Payload: errorPayload{Message: "invalid skip payload", Status: http.StatusBadRequest}}}
			}
		}
		session, err := h.service.SkipQuestion(ctx, sessionID, payload.QuestionIndex)
		if err != nil {
			return errorReply(err)
		}
		return nextQuestion(session)

	case "complete":
		session, err := h.service.CompleteSession(ctx, sessionID)
		if err != nil {
			return errorReply(err)
		}
		return []outboundMessage[any]{{Type: "completed", Payload: session}}
	}
	return []outboundMessage[any]{{Type: "error", Payload: errorPayload{Message: "unsupported message type", Status: http.StatusBadRequest}}}
}

// nextQuestion is empty once every question is resolved; the client then sends complete.
func nextQuestion(session *domain.Session) []outboundMessage[any] {
	cur := session.Current()
	if cur == nil {
		return nil
	}
	return []outboundMessage[any]{{Type: "question", Payload: newQuestionView(cur)}}
}

func errorReply(err error) []outboundMessage[any] {
	return []outboundMessage[any]{{Type: "error", Payload: wsError(err)}}
}

func wsError(err error) errorPayload {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	return errorPayload{Message: msg, Status: status}
}
