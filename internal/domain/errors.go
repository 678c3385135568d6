package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrSessionNotFound is returned when no session exists for the given id.
	ErrSessionNotFound = errors.New("interview session not found")
	// ErrUserNotFound is returned when a user id is empty or unknown.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidState is returned when an operation is attempted in the wrong session status.
	ErrInvalidState = errors.New("invalid session state")
	// ErrOutOfOrderSubmission indicates a submission targeted a question other than the current one.
	ErrOutOfOrderSubmission = errors.New("submission does not target the current question")
	// ErrNoCurrentQuestion indicates the cursor has moved past the last question.
	ErrNoCurrentQuestion = errors.New("no current question")
	// ErrPartialGeneration indicates the question generator returned fewer questions than requested.
	ErrPartialGeneration = errors.New("question generation returned fewer questions than requested")
	// ErrCrossUserComparison indicates two sessions of different users were compared.
	ErrCrossUserComparison = errors.New("sessions belong to different users")
	// ErrVersionConflict indicates the stored session advanced since it was read.
	ErrVersionConflict = errors.New("session version conflict")
	// ErrInvalidInput indicates structurally invalid input such as a missing question text.
	ErrInvalidInput = errors.New("invalid input")
)

// InvalidTransitionError describes a rejected state-machine operation.
type InvalidTransitionError struct {
	SessionID string
	Op        string
	From      SessionStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s session %s in status %q", e.Op, e.SessionID, e.From)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidState }

// GenerationShortfall records how many questions of a type were requested and returned.
type GenerationShortfall struct {
	Type      QuestionType `json:"type"`
	Requested int          `json:"requested"`
	Returned  int          `json:"returned"`
}

// PartialGenerationError lists every question type the generator under-delivered on.
// Fatal is set when at least one type came back empty; in that case no session was created.
type PartialGenerationError struct {
	Shortfalls []GenerationShortfall
	Fatal      bool
}

func (e *PartialGenerationError) Error() string {
	parts := make([]string, 0, len(e.Shortfalls))
	for _, s := range e.Shortfalls {
		parts = append(parts, fmt.Sprintf("%s %d/%d", s.Type, s.Returned, s.Requested))
	}
	sort.Strings(parts)
	return fmt.Sprintf("%v: %s", ErrPartialGeneration, strings.Join(parts, ", "))
}

func (e *PartialGenerationError) Unwrap() error { return ErrPartialGeneration }
