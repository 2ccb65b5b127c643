package domain_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/visitlens/visitlens/internal/domain"
)

func TestSessionState_Fields(t *testing.T) {
	t.Parallel()

	state := domain.SessionState{
		URL: "https://example.com",
		Analysis: domain.ContentAnalysis{
			Topics:   []string{"sports", "music"},
			Audience: []string{"fans"},
			Sections: []string{"Sports", "Music"},
		},
		CurrentQuestion: domain.Question{
			Text:    "Do you like sports?",
			Options: []string{"Yes", "No"},
		},
	}

	assert.Equal(t, "https://example.com", state.URL)
	assert.Len(t, state.Analysis.Topics, 2)
	assert.Equal(t, "Do you like sports?", state.CurrentQuestion.Text)
	assert.Empty(t, state.Responses)
}

func TestVisitorResponse_ZeroValue(t *testing.T) {
	t.Parallel()

	var r domain.VisitorResponse

	assert.Zero(t, r.ID)
	assert.Equal(t, uuid.Nil, r.SessionID)
	assert.Empty(t, r.Question)
	assert.Empty(t, r.Answer)
	assert.True(t, r.CreatedAt.IsZero())
}

func TestSession_Fields(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	now := time.Now()

	s := domain.Session{
		ID:        id,
		URL:       "https://example.com",
		CreatedAt: now,
	}

	assert.Equal(t, id, s.ID)
	assert.Equal(t, now, s.CreatedAt)
}

// Compile-time interface satisfaction checks.
var (
	_ domain.SessionRepository  = (*sessionRepoStub)(nil)
	_ domain.ResponseRepository = (*responseRepoStub)(nil)
)

type sessionRepoStub struct{}

func (s *sessionRepoStub) Create(_ context.Context, _ *domain.Session) error { return nil }
func (s *sessionRepoStub) GetByID(_ context.Context, _ uuid.UUID) (*domain.Session, error) {
	return nil, nil
}

type responseRepoStub struct{}

func (s *responseRepoStub) Append(_ context.Context, _ *domain.VisitorResponse) error { return nil }
func (s *responseRepoStub) ListBySession(_ context.Context, _ uuid.UUID) ([]*domain.VisitorResponse, error) {
	return nil, nil
}
