// Package session implements the server-side dialogue lifecycle: creating
// a session from a scraped URL, advancing it answer by answer, and deciding
// when to stop asking and classify.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/visitlens/visitlens/internal/domain"
	"github.com/visitlens/visitlens/internal/engine"
	"github.com/visitlens/visitlens/internal/scrape"
)

// minResponsesForClassify is how many answers must exist before the engine
// is even consulted about classifying.
const minResponsesForClassify = 2

// Cache is the hot-state store for in-progress dialogues.
type Cache interface {
	GetState(ctx context.Context, sessionID uuid.UUID) (*domain.SessionState, error)
	SetState(ctx context.Context, sessionID uuid.UUID, state *domain.SessionState) error
	GetPage(ctx context.Context, url string) (*domain.PageSnapshot, error)
	SetPage(ctx context.Context, url string, page *domain.PageSnapshot) error
	GetClassification(ctx context.Context, sessionID uuid.UUID) (*domain.Classification, error)
	SetClassification(ctx context.Context, sessionID uuid.UUID, cls *domain.Classification) error
}

// Scraper fetches and revalidates page content.
type Scraper interface {
	Fetch(ctx context.Context, url string) (*scrape.Result, error)
	Fresh(ctx context.Context, url, etag, lastModified string) (bool, error)
}

// Turn is the outcome of one answered question: the next question, or the
// terminal classification, never both.
type Turn struct {
	Question       *domain.Question
	Classification *domain.Classification
}

// Service drives server-side dialogue sessions.
type Service struct {
	cache        Cache
	engine       engine.Engine
	scraper      Scraper
	sessions     domain.SessionRepository
	responses    domain.ResponseRepository
	maxQuestions int
	now          func() time.Time
	logger       zerolog.Logger
}

// NewService creates a Service. maxQuestions bounds how many questions a
// dialogue may ask before classification is forced.
func NewService(cache Cache, eng engine.Engine, scraper Scraper, sessions domain.SessionRepository, responses domain.ResponseRepository, maxQuestions int) *Service {
	return &Service{
		cache:        cache,
		engine:       eng,
		scraper:      scraper,
		sessions:     sessions,
		responses:    responses,
		maxQuestions: maxQuestions,
		now:          time.Now,
		logger:       log.With().Str("component", "session").Logger(),
	}
}

// Start scrapes (or revalidates) the URL, creates a session and returns its
// id with the first question.
func (s *Service) Start(ctx context.Context, url string) (uuid.UUID, domain.Question, error) {
	analysis, err := s.analyzePage(ctx, url)
	if err != nil {
		return uuid.Nil, domain.Question{}, fmt.Errorf("session.Start: %w", err)
	}

	sessionID := uuid.New()
	sess := &domain.Session{
		ID:        sessionID,
		URL:       url,
		Analysis:  analysis,
		CreatedAt: s.now(),
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return uuid.Nil, domain.Question{}, fmt.Errorf("session.Start: %w", err)
	}

	question, err := s.engine.NextQuestion(ctx, analysis, nil)
	if err != nil {
		return uuid.Nil, domain.Question{}, fmt.Errorf("session.Start: %w", err)
	}

	state := &domain.SessionState{
		URL:             url,
		Analysis:        analysis,
		CurrentQuestion: question,
	}
	if err := s.cache.SetState(ctx, sessionID, state); err != nil {
		return uuid.Nil, domain.Question{}, fmt.Errorf("session.Start: %w", err)
	}

	s.logger.Info().Stringer("session_id", sessionID).Str("url", url).Msg("session started")

	return sessionID, question, nil
}

// Respond records an answer and advances the dialogue. An unknown session
// id yields domain.ErrSessionExpired.
func (s *Service) Respond(ctx context.Context, sessionID uuid.UUID, answer string) (*Turn, error) {
	state, err := s.cache.GetState(ctx, sessionID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("session.Respond: %w", domain.ErrSessionExpired)
	}
	if err != nil {
		return nil, fmt.Errorf("session.Respond: %w", err)
	}

	state.Responses = append(state.Responses, domain.QA{
		Question: state.CurrentQuestion.Text,
		Answer:   answer,
	})

	// Persisting the response is best-effort: losing one analytics row must
	// not break the dialogue.
	if err := s.responses.Append(ctx, &domain.VisitorResponse{
		SessionID: sessionID,
		Question:  state.CurrentQuestion.Text,
		Answer:    answer,
		CreatedAt: s.now(),
	}); err != nil {
		s.logger.Warn().Err(err).Stringer("session_id", sessionID).Msg("failed to persist response")
	}

	if s.shouldClassify(ctx, state) {
		cls, err := s.classify(ctx, sessionID, state)
		if err != nil {
			return nil, fmt.Errorf("session.Respond: %w", err)
		}
		return &Turn{Classification: cls}, nil
	}

	question, err := s.engine.NextQuestion(ctx, state.Analysis, state.Responses)
	if err != nil {
		return nil, fmt.Errorf("session.Respond: %w", err)
	}

	state.CurrentQuestion = question
	if err := s.cache.SetState(ctx, sessionID, state); err != nil {
		return nil, fmt.Errorf("session.Respond: %w", err)
	}

	return &Turn{Question: &question}, nil
}

// shouldClassify decides whether to stop asking. The question budget is a
// hard ceiling; below it, the engine is consulted once enough answers
// exist.
func (s *Service) shouldClassify(ctx context.Context, state *domain.SessionState) bool {
	if len(state.Responses) >= s.maxQuestions {
		return true
	}
	if len(state.Responses) < minResponsesForClassify {
		return false
	}

	ok, err := s.engine.ShouldClassify(ctx, state.Analysis, state.Responses)
	if err != nil {
		s.logger.Warn().Err(err).Msg("classification decision failed, continuing dialogue")
		return false
	}
	return ok
}

func (s *Service) classify(ctx context.Context, sessionID uuid.UUID, state *domain.SessionState) (*domain.Classification, error) {
	if cached, err := s.cache.GetClassification(ctx, sessionID); err == nil {
		return cached, nil
	}

	cls, err := s.engine.Classify(ctx, state.Analysis, state.Responses)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetClassification(ctx, sessionID, &cls); err != nil {
		s.logger.Warn().Err(err).Stringer("session_id", sessionID).Msg("failed to cache classification")
	}

	s.logger.Info().Stringer("session_id", sessionID).
		Int("responses", len(state.Responses)).Msg("session classified")

	return &cls, nil
}

// analyzePage returns the content analysis for a URL, reusing the cached
// snapshot while its validators still hold.
func (s *Service) analyzePage(ctx context.Context, url string) (domain.ContentAnalysis, error) {
	if page, err := s.cache.GetPage(ctx, url); err == nil {
		fresh, ferr := s.scraper.Fresh(ctx, url, page.ETag, page.LastModified)
		if ferr != nil {
			s.logger.Debug().Err(ferr).Str("url", url).Msg("revalidation failed, refetching")
		}
		if fresh {
			return page.Analysis, nil
		}
	}

	result, err := s.scraper.Fetch(ctx, url)
	if err != nil {
		return domain.ContentAnalysis{}, err
	}

	analysis, err := s.engine.AnalyzeContent(ctx, result.Text)
	if err != nil {
		return domain.ContentAnalysis{}, err
	}

	if err := s.cache.SetPage(ctx, url, &domain.PageSnapshot{
		Analysis:     analysis,
		ETag:         result.ETag,
		LastModified: result.LastModified,
	}); err != nil {
		s.logger.Warn().Err(err).Str("url", url).Msg("failed to cache page analysis")
	}

	return analysis, nil
}
