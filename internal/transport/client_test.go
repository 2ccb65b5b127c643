package transport_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visitlens/visitlens/internal/transport"
)

func TestStartSession(t *testing.T) {
	t.Parallel()

	t.Run("happy path", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/scrape", r.URL.Path)

			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "https://example.com", body["url"])

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"session_id":"s1","question":"Do you like sports?","options":["Yes","No"]}`))
		}))
		defer srv.Close()

		client := transport.New(srv.URL, srv.Client())
		result, err := client.StartSession(context.Background(), "https://example.com")
		require.NoError(t, err)

		assert.Equal(t, "s1", result.SessionID)
		assert.Equal(t, "Do you like sports?", result.Question.Text)
		assert.Equal(t, []string{"Yes", "No"}, result.Question.Options)
	})

	t.Run("server error carries status", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		client := transport.New(srv.URL, srv.Client())
		_, err := client.StartSession(context.Background(), "https://example.com")

		var terr *transport.Error
		require.ErrorAs(t, err, &terr)
		assert.Equal(t, transport.KindServerError, terr.Kind)
		assert.Equal(t, http.StatusInternalServerError, terr.Status)
	})

	t.Run("network failure maps to network unavailable", func(t *testing.T) {
		t.Parallel()

		// Server closed before the request is issued.
		srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		srv.Close()

		client := transport.New(srv.URL, nil)
		_, err := client.StartSession(context.Background(), "https://example.com")

		var terr *transport.Error
		require.ErrorAs(t, err, &terr)
		assert.Equal(t, transport.KindNetworkUnavailable, terr.Kind)
	})

	t.Run("missing session id is unexpected", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"question":"Q?","options":[]}`))
		}))
		defer srv.Close()

		client := transport.New(srv.URL, srv.Client())
		_, err := client.StartSession(context.Background(), "https://example.com")

		var terr *transport.Error
		require.ErrorAs(t, err, &terr)
		assert.Equal(t, transport.KindUnexpected, terr.Kind)
	})
}

func TestSubmitAnswer(t *testing.T) {
	t.Parallel()

	t.Run("next question", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/respond", r.URL.Path)
			assert.Equal(t, "s1", r.Header.Get("Session-Id"))

			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "Yes", body["answer"])

			_, _ = w.Write([]byte(`{"question":"Favorite genre?","options":["Rock","Jazz"]}`))
		}))
		defer srv.Close()

		client := transport.New(srv.URL, srv.Client())
		result, err := client.SubmitAnswer(context.Background(), "s1", "Yes")
		require.NoError(t, err)

		require.NotNil(t, result.Question)
		assert.Nil(t, result.Classification)
		assert.Equal(t, "Favorite genre?", result.Question.Text)
	})

	t.Run("classification is terminal", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"classification":{"interests":["sports","music"],"relevant_sections":["Sports","Music"]}}`))
		}))
		defer srv.Close()

		client := transport.New(srv.URL, srv.Client())
		result, err := client.SubmitAnswer(context.Background(), "s1", "Rock")
		require.NoError(t, err)

		assert.Nil(t, result.Question)
		require.NotNil(t, result.Classification)
		assert.Equal(t, []string{"sports", "music"}, result.Classification.Interests)
	})

	t.Run("410 maps to session expired", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusGone)
		}))
		defer srv.Close()

		client := transport.New(srv.URL, srv.Client())
		_, err := client.SubmitAnswer(context.Background(), "stale", "Yes")

		var terr *transport.Error
		require.ErrorAs(t, err, &terr)
		assert.Equal(t, transport.KindSessionExpired, terr.Kind)
	})

	t.Run("empty body is unexpected", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		client := transport.New(srv.URL, srv.Client())
		_, err := client.SubmitAnswer(context.Background(), "s1", "Yes")

		var terr *transport.Error
		require.ErrorAs(t, err, &terr)
		assert.Equal(t, transport.KindUnexpected, terr.Kind)
	})
}

func TestErrorUnwrap(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	client := transport.New(srv.URL, nil)
	_, err := client.StartSession(context.Background(), "https://example.com")

	var terr *transport.Error
	require.ErrorAs(t, err, &terr)
	assert.Error(t, errors.Unwrap(terr))
}
