// Package v1 exposes the dialogue API: one endpoint to open a session from
// a URL and one to answer the current question.
package v1

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/visitlens/visitlens/internal/domain"
	"github.com/visitlens/visitlens/internal/session"
)

// DialogueService abstracts the session lifecycle for handler testing.
// *session.Service satisfies this interface.
type DialogueService interface {
	Start(ctx context.Context, url string) (uuid.UUID, domain.Question, error)
	Respond(ctx context.Context, sessionID uuid.UUID, answer string) (*session.Turn, error)
}

type ScrapeInput struct {
	Body struct {
		URL string `json:"url" minLength:"1" maxLength:"2048" doc:"Website URL to analyze"`
	}
}

type ScrapeOutput struct {
	Body struct {
		SessionID string   `json:"session_id" doc:"Opaque session token"`
		Question  string   `json:"question" doc:"First clarifying question"`
		Options   []string `json:"options" doc:"Suggested answers"`
	}
}

type RespondInput struct {
	SessionID string `header:"Session-Id" required:"true" doc:"Session token from /scrape"`
	Body      struct {
		Answer string `json:"answer" minLength:"1" maxLength:"1000" doc:"Answer to the current question"`
	}
}

type RespondOutput struct {
	Body struct {
		Question       string                 `json:"question,omitempty" doc:"Next clarifying question"`
		Options        []string               `json:"options,omitempty" doc:"Suggested answers"`
		Classification *domain.Classification `json:"classification,omitempty" doc:"Terminal interest classification"`
	}
}

func RegisterDialogueRoutes(api huma.API, svc DialogueService) {
	huma.Register(api, huma.Operation{
		OperationID: "scrape",
		Method:      http.MethodPost,
		Path:        "/scrape",
		Summary:     "Start a session from a website URL",
		Tags:        []string{"Dialogue"},
	}, func(ctx context.Context, input *ScrapeInput) (*ScrapeOutput, error) {
		if err := validateURL(input.Body.URL); err != nil {
			return nil, huma.Error400BadRequest("invalid url: " + input.Body.URL)
		}

		sessionID, question, err := svc.Start(ctx, input.Body.URL)
		if err != nil {
			return nil, huma.Error502BadGateway("failed to analyze url", err)
		}

		out := &ScrapeOutput{}
		out.Body.SessionID = sessionID.String()
		out.Body.Question = question.Text
		out.Body.Options = question.Options
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "respond",
		Method:      http.MethodPost,
		Path:        "/respond",
		Summary:     "Answer the current question",
		Tags:        []string{"Dialogue"},
	}, func(ctx context.Context, input *RespondInput) (*RespondOutput, error) {
		sessionID, err := uuid.Parse(input.SessionID)
		if err != nil {
			// An unparseable token is indistinguishable from an expired one.
			return nil, huma.NewError(http.StatusGone, "session expired")
		}

		turn, err := svc.Respond(ctx, sessionID, input.Body.Answer)
		if err != nil {
			if errors.Is(err, domain.ErrSessionExpired) {
				return nil, huma.NewError(http.StatusGone, "session expired")
			}
			return nil, huma.Error500InternalServerError("failed to process answer", err)
		}

		out := &RespondOutput{}
		if turn.Classification != nil {
			out.Body.Classification = turn.Classification
			return out, nil
		}
		out.Body.Question = turn.Question.Text
		out.Body.Options = turn.Question.Options
		return out, nil
	})
}

// validateURL requires an absolute http(s) URL with a host.
func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return domain.ErrInvalidURL
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return domain.ErrInvalidURL
	}
	return nil
}
