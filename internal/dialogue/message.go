// Package dialogue implements the client-side conversational session core:
// an append-only message log with strict ordering invariants and the state
// machine that drives a question/answer exchange against the classification
// backend.
package dialogue

import (
	"github.com/google/uuid"

	"github.com/visitlens/visitlens/internal/domain"
)

// Kind discriminates the three message types in a dialogue.
type Kind string

const (
	KindQuestion       Kind = "question"
	KindAnswer         Kind = "answer"
	KindClassification Kind = "classification"
)

// Message is one entry in the dialogue log. Seq strictly increases with
// append order. Answered is meaningful for questions only.
type Message struct {
	ID             uuid.UUID
	Kind           Kind
	Seq            int
	Content        string
	Options        []string
	Classification *domain.Classification
	Answered       bool
}

// Status is the derived state of a dialogue. It is computed from the log
// and the in-flight flag, never stored.
type Status string

const (
	StatusIdle           Status = "idle"
	StatusAwaitingAnswer Status = "awaiting_answer"
	StatusSubmitting     Status = "submitting"
	StatusCompleted      Status = "completed"
	StatusFailed         Status = "failed"
)

// Scope separates URL-submission errors from answer-submission errors so
// one never shadows or clears the other.
type Scope string

const (
	ScopeURL    Scope = "url"
	ScopeAnswer Scope = "answer"
)

// Error is a user-facing dialogue error in one of the two scopes.
type Error struct {
	Scope   Scope
	Message string
}
