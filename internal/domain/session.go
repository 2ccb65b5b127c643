package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Session is one server-side classification dialogue, keyed by the opaque
// token handed to the client on /api/scrape.
type Session struct {
	ID        uuid.UUID
	URL       string
	Analysis  ContentAnalysis
	CreatedAt time.Time
}

// QA pairs an asked question with the visitor's answer.
type QA struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// SessionState is the hot dialogue state kept in the cache between turns:
// the question currently awaiting an answer and everything answered so far.
type SessionState struct {
	URL             string          `json:"url"`
	Analysis        ContentAnalysis `json:"content_analysis"`
	CurrentQuestion Question        `json:"current_question"`
	Responses       []QA            `json:"responses"`
}

// VisitorResponse is one answered question, persisted for later analysis.
type VisitorResponse struct {
	ID        int64
	SessionID uuid.UUID
	Question  string
	Answer    string
	CreatedAt time.Time
}

// SessionRepository persists dialogue sessions.
type SessionRepository interface {
	Create(ctx context.Context, s *Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*Session, error)
}

// ResponseRepository persists answered questions per session.
type ResponseRepository interface {
	Append(ctx context.Context, r *VisitorResponse) error
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*VisitorResponse, error)
}
