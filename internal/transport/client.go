// Package transport implements the HTTP client for the classification
// backend. It performs exactly one request/response exchange per call and
// maps all failure modes into a typed *Error; retry policy belongs to the
// caller.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/visitlens/visitlens/internal/domain"
)

const defaultTimeout = 30 * time.Second

// sessionHeader carries the opaque session token on /api/respond.
const sessionHeader = "Session-Id"

// StartResult is the backend's answer to a URL submission: a fresh session
// and the first clarifying question.
type StartResult struct {
	SessionID string
	Question  domain.Question
}

// TurnResult is the backend's answer to a submitted answer: either the next
// question or the terminal classification, never both.
type TurnResult struct {
	Question       *domain.Question
	Classification *domain.Classification
}

// Client talks to the classification backend.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client against the given base URL. httpClient may be nil,
// in which case a client with a bounded default timeout is used.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{baseURL: baseURL, http: httpClient}
}

type scrapeRequest struct {
	URL string `json:"url"`
}

type respondRequest struct {
	Answer string `json:"answer"`
}

type turnPayload struct {
	SessionID      string                 `json:"session_id"`
	Question       string                 `json:"question"`
	Options        []string               `json:"options"`
	Classification *domain.Classification `json:"classification"`
}

// StartSession submits a URL and returns the new session with its first
// question.
func (c *Client) StartSession(ctx context.Context, url string) (*StartResult, error) {
	payload, err := c.exchange(ctx, "/api/scrape", "", scrapeRequest{URL: url})
	if err != nil {
		return nil, err
	}

	if payload.SessionID == "" || payload.Question == "" {
		return nil, &Error{Kind: KindUnexpected, cause: fmt.Errorf("scrape response missing session_id or question")}
	}

	return &StartResult{
		SessionID: payload.SessionID,
		Question:  domain.Question{Text: payload.Question, Options: payload.Options},
	}, nil
}

// SubmitAnswer submits an answer for the given session and returns either
// the next question or the terminal classification.
func (c *Client) SubmitAnswer(ctx context.Context, sessionID, answer string) (*TurnResult, error) {
	payload, err := c.exchange(ctx, "/api/respond", sessionID, respondRequest{Answer: answer})
	if err != nil {
		return nil, err
	}

	if payload.Classification != nil {
		return &TurnResult{Classification: payload.Classification}, nil
	}
	if payload.Question == "" {
		return nil, &Error{Kind: KindUnexpected, cause: fmt.Errorf("respond response carries neither question nor classification")}
	}

	return &TurnResult{
		Question: &domain.Question{Text: payload.Question, Options: payload.Options},
	}, nil
}

// exchange performs one POST and decodes the shared turn payload shape.
func (c *Client) exchange(ctx context.Context, path, sessionID string, body any) (*turnPayload, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, &Error{Kind: KindUnexpected, cause: fmt.Errorf("transport.exchange: marshal: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return nil, &Error{Kind: KindUnexpected, cause: fmt.Errorf("transport.exchange: build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	if sessionID != "" {
		req.Header.Set(sessionHeader, sessionID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindNetworkUnavailable, cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusGone:
		// The backend signals an unknown or stale session id with 410.
		return nil, &Error{Kind: KindSessionExpired}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		log.Debug().Str("path", path).Int("status", resp.StatusCode).Msg("backend returned error status")
		return nil, &Error{Kind: KindServerError, Status: resp.StatusCode}
	}

	var payload turnPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &Error{Kind: KindUnexpected, cause: fmt.Errorf("transport.exchange: decode: %w", err)}
	}

	return &payload, nil
}
