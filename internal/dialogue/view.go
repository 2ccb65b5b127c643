package dialogue

import "github.com/visitlens/visitlens/internal/domain"

// MessageView is one rendered dialogue entry. Answerable is true only for
// the open question.
type MessageView struct {
	Kind           Kind
	Content        string
	Options        []string
	Classification *domain.Classification
	Answerable     bool
}

// View is a read-only projection of the dialogue for the rendering layer.
// It is recomputed on every call and never mutated in place.
type View struct {
	Messages    []MessageView
	Status      Status
	SessionID   string
	URLError    string
	AnswerError string
}

// Snapshot computes the current view from the message log and the
// in-flight flag.
func (m *Machine) Snapshot() View {
	m.mu.Lock()
	defer m.mu.Unlock()

	msgs := m.log.Messages()
	openID, hasOpen := m.log.OpenQuestionID()

	views := make([]MessageView, len(msgs))
	for i, msg := range msgs {
		views[i] = MessageView{
			Kind:           msg.Kind,
			Content:        msg.Content,
			Options:        msg.Options,
			Classification: msg.Classification,
			Answerable:     hasOpen && msg.ID == openID && !m.inFlight,
		}
	}

	v := View{
		Messages:  views,
		Status:    m.statusLocked(),
		SessionID: m.sessionID,
	}
	if m.urlErr != nil {
		v.URLError = m.urlErr.Message
	}
	if m.answerErr != nil {
		v.AnswerError = m.answerErr.Message
	}
	return v
}

// Status returns the derived dialogue status.
func (m *Machine) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statusLocked()
}

// statusLocked derives the status; it is never stored, which keeps it from
// diverging from the log it summarizes.
func (m *Machine) statusLocked() Status {
	if m.inFlight {
		return StatusSubmitting
	}
	if m.log.IsTerminal() {
		return StatusCompleted
	}
	if _, ok := m.log.OpenQuestionID(); ok {
		return StatusAwaitingAnswer
	}
	if m.urlErr != nil || m.answerErr != nil {
		return StatusFailed
	}
	return StatusIdle
}
