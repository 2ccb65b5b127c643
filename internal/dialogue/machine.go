package dialogue

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/visitlens/visitlens/internal/sessionstore"
	"github.com/visitlens/visitlens/internal/transport"
)

// ErrNotAnswerable is returned when SubmitAnswer is called while a request
// is in flight or no open question exists. The call is a no-op: the log is
// unchanged and no request is issued.
var ErrNotAnswerable = errors.New("dialogue: no answerable question")

// ErrBusy is returned when StartSession is called while a request is in
// flight.
var ErrBusy = errors.New("dialogue: request already in flight")

// Transport issues the two network operations against the backend.
type Transport interface {
	StartSession(ctx context.Context, url string) (*transport.StartResult, error)
	SubmitAnswer(ctx context.Context, sessionID, answer string) (*transport.TurnResult, error)
}

// SessionStore persists the session token across client restarts.
type SessionStore interface {
	Get() (sessionstore.Session, bool)
	Save(sessionstore.Session) error
	Clear() error
}

// Machine coordinates one classification dialogue. All mutation of the
// message log and session store is funneled through StartSession,
// SubmitAnswer and Reset; it processes one user-initiated action at a time
// and rejects out-of-turn submissions at the state level rather than
// relying on the rendering layer.
type Machine struct {
	mu        sync.Mutex
	transport Transport
	sessions  SessionStore
	now       func() time.Time
	logger    zerolog.Logger

	log       *Log
	sessionID string
	inFlight  bool
	epoch     uint64 // bumped on every issued request and on reset

	urlErr    *Error
	answerErr *Error
}

// NewMachine creates a Machine with the given collaborators. A session
// token persisted by a previous run is adopted if still valid.
func NewMachine(t Transport, s SessionStore) *Machine {
	m := &Machine{
		transport: t,
		sessions:  s,
		now:       time.Now,
		logger:    log.With().Str("component", "dialogue").Logger(),
		log:       NewLog(),
	}
	if sess, ok := s.Get(); ok {
		m.sessionID = sess.ID
	}
	return m
}

// SetClock overrides the wall clock, for tests.
func (m *Machine) SetClock(now func() time.Time) { m.now = now }

// StartSession submits a URL and begins a fresh dialogue. Any prior log and
// persisted session are discarded first. On transport failure the machine
// returns to the empty state with the URL error scope set.
func (m *Machine) StartSession(ctx context.Context, rawURL string) error {
	m.mu.Lock()
	if m.inFlight {
		m.mu.Unlock()
		return ErrBusy
	}

	normalized, err := normalizeURL(rawURL)
	if err != nil {
		m.urlErr = &Error{Scope: ScopeURL, Message: "please enter a valid URL"}
		m.mu.Unlock()
		return err
	}

	// A fresh URL always begins a new dialogue.
	m.log = NewLog()
	m.sessionID = ""
	_ = m.sessions.Clear()
	m.urlErr = nil
	m.inFlight = true
	m.epoch++
	ep := m.epoch
	m.mu.Unlock()

	result, err := m.transport.StartSession(ctx, normalized)

	m.mu.Lock()
	defer m.mu.Unlock()

	if ep != m.epoch {
		// A reset happened while the request was in flight; the response
		// no longer belongs to this dialogue.
		m.logger.Debug().Uint64("epoch", ep).Msg("discarding stale start response")
		return nil
	}
	m.inFlight = false

	if err != nil {
		m.urlErr = &Error{Scope: ScopeURL, Message: userMessage(err)}
		return err
	}

	m.sessionID = result.SessionID
	if saveErr := m.sessions.Save(sessionstore.Session{ID: result.SessionID, CreatedAt: m.now()}); saveErr != nil {
		m.logger.Warn().Err(saveErr).Msg("failed to persist session")
	}

	m.appendLocked(Message{
		ID:      uuid.New(),
		Kind:    KindQuestion,
		Seq:     m.log.NextSeq(),
		Content: result.Question.Text,
		Options: result.Question.Options,
	})

	return nil
}

// SubmitAnswer answers the open question. The optimistic log update (mark
// answered, append the answer, go in flight) is applied as one transition;
// on transport failure the answered flag is rolled back so the question
// becomes answerable again. A SessionExpired failure resets the dialogue.
func (m *Machine) SubmitAnswer(ctx context.Context, answer string) error {
	m.mu.Lock()
	if m.inFlight || m.log.IsTerminal() {
		m.mu.Unlock()
		return ErrNotAnswerable
	}

	qIdx, ok := m.log.AnswerOpen()
	if !ok {
		m.mu.Unlock()
		return ErrNotAnswerable
	}

	m.appendLocked(Message{
		ID:      uuid.New(),
		Kind:    KindAnswer,
		Seq:     m.log.NextSeq(),
		Content: answer,
	})

	m.inFlight = true
	m.epoch++
	ep := m.epoch
	sid := m.sessionID
	m.mu.Unlock()

	result, err := m.transport.SubmitAnswer(ctx, sid, answer)

	m.mu.Lock()
	defer m.mu.Unlock()

	if ep != m.epoch || sid != m.sessionID {
		m.logger.Debug().Uint64("epoch", ep).Msg("discarding stale answer response")
		return nil
	}
	m.inFlight = false

	if err != nil {
		var terr *transport.Error
		if errors.As(err, &terr) && terr.Kind == transport.KindSessionExpired {
			// A dead session id is unrecoverable; drop everything so the
			// user can start over.
			m.resetLocked()
			m.urlErr = &Error{Scope: ScopeURL, Message: "your session has expired, please start over"}
			return err
		}

		m.answerErr = &Error{Scope: ScopeAnswer, Message: userMessage(err)}
		if reopenErr := m.log.Reopen(qIdx); reopenErr != nil {
			m.logger.Error().Err(reopenErr).Msg("log invariant violation on rollback")
		}
		return err
	}

	m.answerErr = nil

	if result.Classification != nil {
		m.appendLocked(Message{
			ID:             uuid.New(),
			Kind:           KindClassification,
			Seq:            m.log.NextSeq(),
			Classification: result.Classification,
		})
		return nil
	}

	m.appendLocked(Message{
		ID:      uuid.New(),
		Kind:    KindQuestion,
		Seq:     m.log.NextSeq(),
		Content: result.Question.Text,
		Options: result.Question.Options,
	})

	return nil
}

// Reset clears the log, the persisted session and both error scopes. It is
// safe in any state; a response still in flight becomes stale and is
// discarded on arrival.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetLocked()
}

func (m *Machine) resetLocked() {
	m.epoch++
	m.inFlight = false
	m.log = NewLog()
	m.sessionID = ""
	m.urlErr = nil
	m.answerErr = nil
	_ = m.sessions.Clear()
}

// appendLocked appends to the log, treating a violation as a logic bug:
// it is logged loudly and the message dropped rather than corrupting the
// log.
func (m *Machine) appendLocked(msg Message) {
	if err := m.log.Append(msg); err != nil {
		m.logger.Error().Err(err).Str("kind", string(msg.Kind)).Int("seq", msg.Seq).
			Msg("log invariant violation")
	}
}

// normalizeURL validates the submitted URL, defaulting the scheme to https
// when absent.
func normalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("dialogue: empty url")
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || !strings.Contains(u.Host, ".") && u.Host != "localhost" {
		return "", errors.New("dialogue: invalid url")
	}
	return u.String(), nil
}

// userMessage maps a transport failure to a message fit for display.
func userMessage(err error) string {
	var terr *transport.Error
	if !errors.As(err, &terr) {
		return "something went wrong, please try again"
	}
	switch terr.Kind {
	case transport.KindNetworkUnavailable:
		return "network error, please check your connection"
	case transport.KindServerError:
		return "server error, please try again later"
	case transport.KindSessionExpired:
		return "your session has expired, please start over"
	default:
		return "something went wrong, please try again"
	}
}
